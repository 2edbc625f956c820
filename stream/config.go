package stream

import (
	"github.com/zostay/go-mimestream/storage"
)

// Constants related to Config defaults.
const (
	// DefaultMaxHeaderLineLength is the default maximum length in bytes of a
	// single physical header line, not counting the line break.
	DefaultMaxHeaderLineLength = 1000

	// DefaultMaxHeaderCount is the default maximum number of fields in the
	// header of one entity.
	DefaultMaxHeaderCount = 1000

	// DefaultMaxDepth is the default maximum nesting depth of entities. The
	// top-level entity is at depth 0.
	DefaultMaxDepth = 100

	// DefaultChunkSize the default size of chunks to read from the input.
	// Defaults to 16K, though this could change at any time. Delimiter lines
	// longer than this are not recognized.
	DefaultChunkSize = 16_384

	// MinChunkSize is the smallest chunk size the parser will use.
	MinChunkSize = 128

	// DefaultStorageThreshold is the size at which the default storage
	// provider moves a body from memory to a temporary file.
	DefaultStorageThreshold = storage.DefaultThreshold
)

// Config holds the settings of the parser. The zero value is not useful; start
// from DefaultConfig. The field tags allow a Config to be loaded from a TOML
// file.
type Config struct {
	// MaxHeaderLineLength limits the length of a physical header line. Zero
	// or less means no limit.
	MaxHeaderLineLength int `toml:"max_header_line_length"`

	// MaxHeaderCount limits the number of fields in one header. Zero or less
	// means no limit.
	MaxHeaderCount int `toml:"max_header_count"`

	// MaxDepth limits the nesting depth of entities. Less than zero means no
	// limit.
	MaxDepth int `toml:"max_depth"`

	// Strict turns the problems that are normally worked around with a
	// warning into failures.
	Strict bool `toml:"strict"`

	// DecodeTransferEncoding decodes bodies according to their
	// Content-transfer-encoding before they are delivered and stored.
	DecodeTransferEncoding bool `toml:"decode_transfer_encoding"`

	// StorageThreshold is the memory threshold of the default storage
	// provider.
	StorageThreshold int64 `toml:"storage_threshold"`

	// ChunkSize is the size of the read buffer, which also bounds the size of
	// the chunks delivered to the handler.
	ChunkSize int `toml:"chunk_size"`
}

// DefaultConfig returns the default settings: lenient parsing with transfer
// decoding enabled.
func DefaultConfig() Config {
	return Config{
		MaxHeaderLineLength:    DefaultMaxHeaderLineLength,
		MaxHeaderCount:         DefaultMaxHeaderCount,
		MaxDepth:               DefaultMaxDepth,
		Strict:                 false,
		DecodeTransferEncoding: true,
		StorageThreshold:       DefaultStorageThreshold,
		ChunkSize:              DefaultChunkSize,
	}
}
