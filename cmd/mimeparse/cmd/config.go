package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

// Storage backends selectable in the configuration.
const (
	BackendThreshold = "threshold"
	BackendMemory    = "memory"
	BackendTempFile  = "tempfile"
	BackendBolt      = "bolt"
)

// StorageConfig selects where parsed bodies are kept.
type StorageConfig struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	BoltPath string `toml:"bolt_path"`
}

// Config is the configuration file of mimeparse.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Parser   stream.Config `toml:"parser"`
	Storage  StorageConfig `toml:"storage"`
}

// DefaultConfig returns the settings used when there is no configuration
// file.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
		Parser:   stream.DefaultConfig(),
		Storage:  StorageConfig{Backend: BackendThreshold},
	}
}

// LoadConfig reads the TOML file at path over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration %q: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown configuration key %q in %q", undecoded[0].String(), path)
	}

	return cfg, nil
}

// Provider builds the storage provider. The returned function closes it.
func (c *Config) Provider() (storage.Provider, func() error, error) {
	noop := func() error { return nil }
	switch c.Storage.Backend {
	case BackendMemory:
		return storage.MemoryProvider{}, noop, nil
	case BackendTempFile:
		return &storage.TempFileProvider{Dir: c.Storage.Dir}, noop, nil
	case BackendBolt:
		if c.Storage.BoltPath == "" {
			return nil, nil, fmt.Errorf("the %s storage backend needs bolt_path", BackendBolt)
		}
		p, err := storage.OpenBoltProvider(c.Storage.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "", BackendThreshold:
		backend := &storage.TempFileProvider{Dir: c.Storage.Dir}
		return storage.NewThresholdProvider(c.Parser.StorageThreshold, backend), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
}

// ParseOptions returns the parser options for this configuration.
func (c *Config) ParseOptions(p storage.Provider) []stream.ParseOption {
	return []stream.ParseOption{
		stream.WithConfig(c.Parser),
		stream.WithStorage(p),
	}
}
