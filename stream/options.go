package stream

import (
	"github.com/zostay/go-mimestream/storage"
)

type parser struct {
	cfg       Config
	provider  storage.Provider
	noStorage bool
}

func (pr *parser) clone() *parser {
	p := *pr
	return &p
}

var defaultParser = &parser{
	cfg: DefaultConfig(),
}

// ParseOption refers to options that may be passed to the Parse function to
// modify how the parser works.
type ParseOption func(pr *parser)

// WithConfig is a ParseOption that replaces all the settings at once. Options
// given after it adjust the new settings.
func WithConfig(cfg Config) ParseOption {
	return func(pr *parser) { pr.cfg = cfg }
}

// WithMaxHeaderLineLength is a ParseOption that sets the maximum length of a
// physical header line. Longer lines are truncated with a warning, or fail the
// parse in strict mode. Zero or less removes the limit.
func WithMaxHeaderLineLength(n int) ParseOption {
	return func(pr *parser) { pr.cfg.MaxHeaderLineLength = n }
}

// WithMaxHeaderCount is a ParseOption that sets the maximum number of fields
// in the header of an entity. Extra fields are skipped with a warning, or
// fail the parse in strict mode. Zero or less removes the limit.
func WithMaxHeaderCount(n int) ParseOption {
	return func(pr *parser) { pr.cfg.MaxHeaderCount = n }
}

// WithMaxDepth is a ParseOption that controls how deeply entities may nest.
// An entity deeper than this fails the parse with ErrMalformedStructure. This
// is set to DefaultMaxDepth by default.
func WithMaxDepth(maxDepth int) ParseOption {
	return func(pr *parser) { pr.cfg.MaxDepth = maxDepth }
}

// WithUnlimitedRecursion is a ParseOption that will allow the parser to parse
// sub-parts of any depth.
func WithUnlimitedRecursion() ParseOption {
	return func(pr *parser) { pr.cfg.MaxDepth = -1 }
}

// Strict is a ParseOption that turns every recoverable problem into a
// failure.
func Strict() ParseOption {
	return func(pr *parser) { pr.cfg.Strict = true }
}

// WithoutTransferDecoding is a ParseOption that delivers and stores bodies
// exactly as they appear in the input, ignoring Content-transfer-encoding.
func WithoutTransferDecoding() ParseOption {
	return func(pr *parser) { pr.cfg.DecodeTransferEncoding = false }
}

// WithChunkSize is a ParseOption that controls how many bytes to read at a time
// while parsing an email message. The default chunk size is DefaultChunkSize.
// Values below MinChunkSize are raised to it.
func WithChunkSize(chunkSize int) ParseOption {
	return func(pr *parser) { pr.cfg.ChunkSize = chunkSize }
}

// WithStorageThreshold is a ParseOption that sets the memory threshold of the
// default storage provider. It has no effect along with WithStorage.
func WithStorageThreshold(n int64) ParseOption {
	return func(pr *parser) { pr.cfg.StorageThreshold = n }
}

// WithStorage is a ParseOption that stores bodies with the given provider.
func WithStorage(p storage.Provider) ParseOption {
	return func(pr *parser) {
		pr.provider = p
		pr.noStorage = false
	}
}

// WithoutStorage is a ParseOption that turns off body storage. Bodies are
// only delivered through Handler.BodyData and EndBody receives nil.
func WithoutStorage() ParseOption {
	return func(pr *parser) {
		pr.provider = nil
		pr.noStorage = true
	}
}
