package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/zostay/go-mimestream/header/field"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
	MaxDepth:                3,
}

// eventPrinter is a stream.Handler that prints every event.
type eventPrinter struct {
	w     io.Writer
	dump  bool
	depth int
}

var _ stream.WarningHandler = (*eventPrinter)(nil)

func (p *eventPrinter) printf(event, format string, args ...interface{}) error {
	line := strings.Repeat("  ", p.depth) + event
	if msg := fmt.Sprintf(format, args...); msg != "" {
		line += " " + msg
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func (p *eventPrinter) StartEntity(depth int) error {
	p.depth = depth
	return p.printf("start-entity", "depth=%d", depth)
}

func (p *eventPrinter) HeaderField(f *field.Raw) error {
	return p.printf("header-field", "%s: %s", f.Name(), f.Body())
}

func (p *eventPrinter) StartBody(d *stream.BodyDescriptor) error {
	if err := p.printf("start-body", "%s charset=%q encoding=%q multipart=%t",
		d.MediaType, d.Charset, d.TransferEncoding, d.Multipart); err != nil {
		return err
	}

	if p.dump {
		dumpConfig.Fdump(p.w, d.ContentType.Params)
	}
	return nil
}

func (p *eventPrinter) BodyData(chunk []byte) error {
	return p.printf("body-data", "%d bytes", len(chunk))
}

func (p *eventPrinter) EndBody(h storage.Handle) error {
	if h == nil {
		return p.printf("end-body", "")
	}

	defer func() { _ = h.Release() }()
	return p.printf("end-body", "stored=%d", h.Size())
}

func (p *eventPrinter) PreambleData(chunk []byte) error {
	return p.printf("preamble", "%q", chunk)
}

func (p *eventPrinter) EpilogueData(chunk []byte) error {
	return p.printf("epilogue", "%q", chunk)
}

func (p *eventPrinter) EndEntity() error {
	err := p.printf("end-entity", "")
	p.depth--
	return err
}

func (p *eventPrinter) Warning(w *stream.Warning) {
	_ = p.printf("warning", "%v", w)
}

func newEventsCmd(o *options) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "events message",
		Short: "Print the parse events of a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withParser(cmd, func(cfg *Config, sp storage.Provider) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()

				p := &eventPrinter{w: cmd.OutOrStdout(), dump: dump}
				return stream.Parse(f, p, cfg.ParseOptions(sp)...)
			})
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump the content type parameters of each body")
	return cmd
}
