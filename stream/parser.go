package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/zostay/go-mimestream/header"
	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/header/param"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/transfer"
)

// frame is the parse state of one open entity.
type frame struct {
	depth  int
	state  State
	header *header.Header

	field    []byte // the field being collected, folding included
	hasField bool
	dropping bool // continuation lines belong to a dropped line
	fields   int

	digest   bool   // parent is multipart/digest
	boundary []byte // "--" + boundary while the multipart is open
	desc     *BodyDescriptor
	skip     bool

	dec  io.WriteCloser
	out  *bufio.Writer
	sink storage.Sink

	eol []byte // line break held back until the next line is known
}

// run holds the state of a single call to Parse.
type run struct {
	cfg      Config
	h        Handler
	wh       WarningHandler
	provider storage.Provider

	br        *bufio.Reader
	chunkSize int
	atStart   bool
	line      int
	lineBuf   []byte

	stack []*frame
}

// Parse reads a MIME entity from r and reports its structure to h. The parse
// is lenient by default: problems are worked around and reported as warnings
// to h if it implements WarningHandler. See ParseOption for the settings.
//
// Errors returned by h are returned unchanged, except ErrStop, which ends
// the parse with a nil error. A *StructureError is returned for structure
// problems that are fatal, an *IOError for read failures. When the parse does
// not complete, every body still being stored is aborted.
func Parse(r io.Reader, h Handler, opts ...ParseOption) error {
	pr := defaultParser.clone()
	for _, opt := range opts {
		opt(pr)
	}

	rn := pr.newRun(r, h)
	err := rn.parse()
	if err != nil {
		rn.abort()
		if errors.Is(err, ErrStop) {
			log.Debugf("parse stopped by handler at line %d", rn.line)
			return nil
		}
		return err
	}
	return nil
}

func (pr *parser) newRun(r io.Reader, h Handler) *run {
	chunkSize := pr.cfg.ChunkSize
	if chunkSize < MinChunkSize {
		chunkSize = MinChunkSize
	}

	var provider storage.Provider
	switch {
	case pr.noStorage:
	case pr.provider != nil:
		provider = pr.provider
	default:
		provider = storage.NewThresholdProvider(pr.cfg.StorageThreshold, nil)
	}

	wh, _ := h.(WarningHandler)
	return &run{
		cfg:       pr.cfg,
		h:         h,
		wh:        wh,
		provider:  provider,
		br:        bufio.NewReaderSize(r, chunkSize),
		chunkSize: chunkSize,
		atStart:   true,
	}
}

func (rn *run) top() *frame {
	return rn.stack[len(rn.stack)-1]
}

func (rn *run) parse() error {
	if err := rn.push(false); err != nil {
		return err
	}

	for len(rn.stack) > 0 {
		var err error
		switch f := rn.top(); f.state {
		case AwaitingHeaders, InHeaders:
			err = rn.headerLine(f)
		default:
			err = rn.bodyLine()
		}

		if err == io.EOF {
			return rn.finish()
		} else if err != nil {
			return err
		}
	}

	return nil
}

// abort gives up on every body still being written.
func (rn *run) abort() {
	for _, f := range rn.stack {
		f.state = Failed
		if f.sink == nil {
			continue
		}

		if err := f.sink.Abort(); err != nil {
			log.Warnf("unable to abort body storage at depth %d: %v", f.depth, err)
		}
		f.sink = nil
	}
}

func (rn *run) warn(f *frame, err error) {
	w := &Warning{Line: rn.line, Depth: f.depth, Err: err}
	log.Warnf("%v", w)
	if rn.wh != nil {
		rn.wh.Warning(w)
	}
}

// problem fails in strict mode and warns otherwise.
func (rn *run) problem(f *frame, err error) error {
	if rn.cfg.Strict {
		return &StructureError{Line: rn.line, Depth: f.depth, Err: err}
	}

	rn.warn(f, err)
	return nil
}

// readFragment returns the next line of input, or the part of it that fits
// in the buffer. The slice is only valid until the next read.
func (rn *run) readFragment() (frag []byte, start, complete bool, err error) {
	start = rn.atStart
	frag, err = rn.br.ReadSlice('\n')
	switch {
	case err == nil:
	case err == bufio.ErrBufferFull:
		rn.atStart = false
		return frag, start, false, nil
	case err == io.EOF:
		if len(frag) == 0 {
			return nil, start, false, io.EOF
		}
	default:
		return nil, start, false, &IOError{Err: err}
	}

	rn.atStart = true
	rn.line++
	return frag, start, true, nil
}

// readHeaderLine returns a complete physical line, truncated to the
// maximum header line length.
func (rn *run) readHeaderLine(f *frame) ([]byte, error) {
	rn.lineBuf = rn.lineBuf[:0]
	limit := rn.cfg.MaxHeaderLineLength
	truncated := false
	for {
		frag, _, complete, err := rn.readFragment()
		if err == io.EOF && len(rn.lineBuf) > 0 {
			return rn.lineBuf, nil
		} else if err != nil {
			return nil, err
		}

		content, eol := splitEOL(frag)
		if !truncated {
			rn.lineBuf = append(rn.lineBuf, content...)
			if limit > 0 && len(rn.lineBuf) > limit {
				if err := rn.problem(f, ErrHeaderLineTooLong); err != nil {
					return nil, err
				}
				rn.lineBuf = rn.lineBuf[:limit]
				truncated = true
			}
		}

		if complete {
			rn.lineBuf = append(rn.lineBuf, eol...)
			return rn.lineBuf, nil
		}
	}
}

// matchOpen finds the innermost open multipart whose boundary the line
// delimits. It returns -1 when there is none.
func (rn *run) matchOpen(line []byte) (int, bool) {
	if !bytes.HasPrefix(line, dashes) {
		return -1, false
	}

	for i := len(rn.stack) - 1; i >= 0; i-- {
		f := rn.stack[i]
		if f.boundary == nil || f.state == InEpilogue {
			continue
		}

		if match, closing := matchDelimiter(line, f.boundary); match {
			return i, closing
		}
	}
	return -1, false
}

// push starts a new entity.
func (rn *run) push(digest bool) error {
	depth := len(rn.stack)
	if rn.cfg.MaxDepth >= 0 && depth > rn.cfg.MaxDepth {
		return &StructureError{Line: rn.line, Depth: depth, Err: ErrMaxDepth}
	}

	rn.stack = append(rn.stack, &frame{
		depth:  depth,
		state:  AwaitingHeaders,
		header: header.New(header.CRLF),
		digest: digest,
	})

	log.Tracef("start entity at depth %d, line %d", depth, rn.line+1)
	return rn.h.StartEntity(depth)
}

func (rn *run) headerLine(f *frame) error {
	line, err := rn.readHeaderLine(f)
	if err != nil {
		return err
	}

	if f.state == AwaitingHeaders {
		f.header.SetBreak(header.DetectBreak(line))
		f.state = InHeaders
	}

	if m, closing := rn.matchOpen(line); m >= 0 {
		return rn.delimiter(m, closing)
	}

	content, _ := splitEOL(line)
	if len(content) == 0 {
		return rn.endHeader(f)
	}

	if field.IsContinuation(line) {
		if f.hasField {
			f.field = append(f.field, line...)
			return nil
		}

		if f.dropping {
			return nil
		}

		f.dropping = true
		return rn.problem(f, fmt.Errorf("%w: continuation without a field: %q", ErrBadHeaderLine, content))
	}

	if err := rn.flushField(f); err != nil {
		return err
	}

	if !field.ValidName(line) {
		f.dropping = true
		return rn.problem(f, fmt.Errorf("%w: %q", ErrBadHeaderLine, content))
	}

	f.dropping = false
	f.hasField = true
	f.field = append(f.field[:0], line...)
	return nil
}

// flushField completes the field being collected.
func (rn *run) flushField(f *frame) error {
	if !f.hasField {
		return nil
	}
	f.hasField = false

	f.fields++
	if limit := rn.cfg.MaxHeaderCount; limit > 0 && f.fields > limit {
		f.dropping = true
		if f.fields == limit+1 {
			return rn.problem(f, ErrTooManyHeaders)
		}
		return nil
	}

	raw := field.Parse(f.field)
	f.header.Append(raw)
	return rn.h.HeaderField(raw)
}

func (rn *run) endHeader(f *frame) error {
	if err := rn.flushField(f); err != nil {
		return err
	}

	f.state = AwaitingBody
	return rn.startBody(f)
}

func defaultContentType(digest bool) *header.ContentTypeValue {
	if digest {
		return header.NewContentType("message/rfc822", nil)
	}

	ps := param.NewList()
	ps.Add(param.Charset, "us-ascii")
	return header.NewContentType("text/plain", ps)
}

func (rn *run) headerOpts(f *frame) []header.ParseOption {
	opts := []header.ParseOption{
		header.WithWarnings(func(err error) {
			rn.warn(f, fmt.Errorf("%w: %v", ErrBadFieldValue, err))
		}),
	}
	if rn.cfg.Strict {
		opts = append(opts, header.Strict())
	}
	return opts
}

func (rn *run) decodeOpts(f *frame) []transfer.DecodeOption {
	opts := []transfer.DecodeOption{
		transfer.OnWarning(func(err error) { rn.warn(f, err) }),
	}
	if rn.cfg.Strict {
		opts = append(opts, transfer.Strict())
	}
	return opts
}

// describe works out the effective content type and transfer encoding.
func (rn *run) describe(f *frame) *BodyDescriptor {
	var ct *header.ContentTypeValue
	if ixs := f.header.IndexesNamed(header.ContentType); len(ixs) > 0 {
		raw := f.header.Field(ixs[0])
		parsed, err := header.ParseContentType(raw, rn.headerOpts(f)...)
		if err != nil {
			rn.warn(f, fmt.Errorf("%w: %s: %v", ErrBadFieldValue, raw.Name(), err))
		} else {
			ct = parsed
		}
	}

	if ct == nil {
		ct = defaultContentType(f.digest)
	}

	d := &BodyDescriptor{
		Depth:            f.depth,
		Header:           f.header,
		ContentType:      ct,
		MediaType:        ct.MediaType(),
		Charset:          ct.Charset(),
		TransferEncoding: transfer.Bit7,
		Multipart:        ct.IsMultipart(),
	}

	if d.Charset == "" && ct.Type == "text" {
		d.Charset = "us-ascii"
	}

	if ixs := f.header.IndexesNamed(header.ContentTransferEncoding); len(ixs) > 0 {
		if enc := header.ParseTransferEncoding(f.header.Field(ixs[0])); enc != "" {
			d.TransferEncoding = enc
		}
	}

	if d.Multipart {
		d.Boundary = ct.Boundary()
		if d.Boundary == "" {
			rn.warn(f, ErrNoBoundary)
			d.Multipart = false
		}
	}

	return d
}

func (rn *run) startBody(f *frame) error {
	d := rn.describe(f)
	f.desc = d

	if d.Multipart {
		dash := []byte("--" + d.Boundary)
		for _, anc := range rn.stack {
			if anc != f && bytes.Equal(anc.boundary, dash) {
				err := rn.problem(f, fmt.Errorf("%w: %q", ErrDuplicateBoundary, d.Boundary))
				if err != nil {
					return err
				}
				d.Multipart = false
				d.Boundary = ""
				break
			}
		}
	}

	log.Debugf("body at depth %d: %s (%s)", f.depth, d.MediaType, d.TransferEncoding)

	if err := rn.h.StartBody(d); errors.Is(err, ErrSkipBody) {
		f.skip = true
	} else if err != nil {
		return err
	}

	if d.Multipart && !f.skip {
		f.boundary = []byte("--" + d.Boundary)
		f.state = InPreamble
		return nil
	}

	f.state = InSimpleBody
	if f.skip {
		return nil
	}
	return rn.openBody(f)
}

// openBody sets up the decoding and storage of a simple body.
func (rn *run) openBody(f *frame) error {
	var sink storage.Sink
	if rn.provider != nil {
		sizeHint := int64(-1)
		if cd, err := f.header.GetContentDisposition(); err == nil {
			sizeHint = cd.Size()
		}

		s, err := rn.provider.Open(sizeHint)
		if err != nil {
			return err
		}
		sink = s
	}

	f.sink = sink
	f.out = bufio.NewWriterSize(&bodyWriter{h: rn.h, sink: sink}, rn.chunkSize)

	enc := f.desc.TransferEncoding
	if !rn.cfg.DecodeTransferEncoding {
		f.dec = transfer.NewAsIsDecoder(f.out)
		return nil
	}

	if !transfer.IsKnown(enc) {
		rn.warn(f, fmt.Errorf("%w: %q", ErrUnknownTransferEncoding, enc))
	}
	f.dec = transfer.NewDecoder(f.out, enc, rn.decodeOpts(f)...)
	return nil
}

func (rn *run) bodyLine() error {
	frag, start, complete, err := rn.readFragment()
	if err != nil {
		return err
	}

	if start && complete {
		if m, closing := rn.matchOpen(frag); m >= 0 {
			return rn.delimiter(m, closing)
		}
	}

	f := rn.top()

	// A CR at the end of a fragment may be the start of the next line break.
	if !start && len(frag) == 1 && frag[0] == '\n' && bytes.Equal(f.eol, []byte{'\r'}) {
		f.eol = append(f.eol, '\n')
		return nil
	}

	held := f.eol
	f.eol = nil

	var content, eol []byte
	if complete {
		content, eol = splitEOL(frag)
	} else if n := len(frag); n > 0 && frag[n-1] == '\r' {
		content, eol = frag[:n-1], frag[n-1:]
	} else {
		content = frag
	}

	if err := rn.deliver(f, held, content); err != nil {
		return err
	}

	if len(eol) > 0 {
		f.eol = append([]byte(nil), eol...)
	}
	return nil
}

// deliver passes body bytes to the frame's body, preamble or epilogue.
func (rn *run) deliver(f *frame, held, content []byte) error {
	if len(held) == 0 && len(content) == 0 {
		return nil
	}

	switch f.state {
	case InSimpleBody:
		if f.skip {
			return nil
		}
		if len(held) > 0 {
			if _, err := f.dec.Write(held); err != nil {
				return err
			}
		}
		if len(content) > 0 {
			if _, err := f.dec.Write(content); err != nil {
				return err
			}
		}
		return nil
	case InPreamble:
		return rn.h.PreambleData(joinChunk(held, content))
	case InEpilogue:
		return rn.h.EpilogueData(joinChunk(held, content))
	}
	return nil
}

func joinChunk(a, b []byte) []byte {
	chunk := make([]byte, 0, len(a)+len(b))
	chunk = append(chunk, a...)
	return append(chunk, b...)
}

// delimiter handles a delimiter line of the multipart at stack index m.
func (rn *run) delimiter(m int, closing bool) error {
	rn.top().eol = nil

	for len(rn.stack)-1 > m {
		if err := rn.closeTop(ErrImplicitClose); err != nil {
			return err
		}
	}

	mf := rn.stack[m]
	if closing {
		log.Tracef("close delimiter at depth %d, line %d", mf.depth, rn.line)
		mf.state = InEpilogue
		return nil
	}

	log.Tracef("delimiter at depth %d, line %d", mf.depth, rn.line)
	mf.state = InPart
	return rn.push(mf.desc.ContentType.Subtype == "digest")
}

// endBody completes a simple body and hands its storage to the handler.
func (rn *run) endBody(f *frame) error {
	if f.skip {
		return rn.h.EndBody(nil)
	}

	if err := f.dec.Close(); err != nil {
		return err
	}

	if err := f.out.Flush(); err != nil {
		return err
	}

	var handle storage.Handle
	if f.sink != nil {
		sink := f.sink
		f.sink = nil

		h, err := sink.Finish()
		if err != nil {
			if aerr := sink.Abort(); aerr != nil {
				log.Warnf("unable to abort body storage at depth %d: %v", f.depth, aerr)
			}
			return err
		}
		handle = h
	}

	return rn.h.EndBody(handle)
}

// closeTop ends the innermost entity. An open multipart is closed with the
// given problem.
func (rn *run) closeTop(unclosed error) error {
	f := rn.top()
	if f.state == AwaitingHeaders || f.state == InHeaders {
		if err := rn.endHeader(f); err != nil {
			return err
		}
	}

	switch f.state {
	case InSimpleBody:
		if err := rn.endBody(f); err != nil {
			return err
		}
	case InPreamble, InPart:
		if err := rn.problem(f, unclosed); err != nil {
			return err
		}
		fallthrough
	case InEpilogue:
		if err := rn.h.EndBody(nil); err != nil {
			return err
		}
	}

	f.state = Done
	rn.stack = rn.stack[:len(rn.stack)-1]
	log.Tracef("end entity at depth %d", f.depth)
	return rn.h.EndEntity()
}

// finish closes everything still open at the end of the input.
func (rn *run) finish() error {
	f := rn.top()
	held := f.eol
	f.eol = nil
	if err := rn.deliver(f, held, nil); err != nil {
		return err
	}

	for len(rn.stack) > 0 {
		if err := rn.closeTop(ErrMissingCloseDelimiter); err != nil {
			return err
		}
	}
	return nil
}

// bodyWriter delivers decoded body bytes to the handler and the sink.
type bodyWriter struct {
	h    Handler
	sink storage.Sink
}

func (w *bodyWriter) Write(p []byte) (int, error) {
	chunk := make([]byte, len(p))
	copy(chunk, p)
	if err := w.h.BodyData(chunk); err != nil {
		return 0, err
	}

	if w.sink != nil {
		if _, err := w.sink.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}
