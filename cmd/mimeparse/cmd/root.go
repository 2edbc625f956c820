package cmd

import (
	"github.com/spf13/cobra"

	// registers the charsets of golang.org/x/text for encoded words
	_ "github.com/zostay/go-mimestream/header/encoding"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

// options holds the flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	strict     bool
	maxDepth   int
	noDecode   bool
	backend    string
	storageDir string
	boltPath   string
}

// NewRootCmd builds the mimeparse command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}
	rootCmd := &cobra.Command{
		Use:          "mimeparse",
		Short:        "Inspect MIME messages with the streaming parser",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "TOML configuration file")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, critical or off")
	pf.BoolVar(&o.strict, "strict", false, "fail on any malformed input")
	pf.IntVar(&o.maxDepth, "max-depth", stream.DefaultMaxDepth, "maximum nesting depth, -1 for none")
	pf.BoolVar(&o.noDecode, "no-decode", false, "keep bodies in their transfer encoding")
	pf.StringVar(&o.backend, "storage", "", "body storage: threshold, memory, tempfile or bolt")
	pf.StringVar(&o.storageDir, "storage-dir", "", "directory for spooled bodies")
	pf.StringVar(&o.boltPath, "bolt", "", "bolt database for the bolt storage backend")

	rootCmd.AddCommand(newEventsCmd(o))
	rootCmd.AddCommand(newTreeCmd(o))
	rootCmd.AddCommand(newExtractCmd(o))
	rootCmd.AddCommand(newMboxCmd(o))
	rootCmd.AddCommand(newRoundtripCmd(o))

	return rootCmd
}

// Execute runs the mimeparse command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads the configuration, applies the flags set on the command line
// and starts logging.
func (o *options) setup(cmd *cobra.Command) (*Config, error) {
	cfg, err := LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("strict") {
		cfg.Parser.Strict = o.strict
	}
	if flags.Changed("max-depth") {
		cfg.Parser.MaxDepth = o.maxDepth
	}
	if flags.Changed("no-decode") {
		cfg.Parser.DecodeTransferEncoding = !o.noDecode
	}
	if flags.Changed("storage") {
		cfg.Storage.Backend = o.backend
	}
	if flags.Changed("storage-dir") {
		cfg.Storage.Dir = o.storageDir
	}
	if flags.Changed("bolt") {
		cfg.Storage.BoltPath = o.boltPath
	}

	if err := setupLogging(cmd.ErrOrStderr(), cfg.LogLevel); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withParser runs fn with the configuration and an open storage provider.
func (o *options) withParser(cmd *cobra.Command, fn func(cfg *Config, p storage.Provider) error) error {
	cfg, err := o.setup(cmd)
	if err != nil {
		return err
	}

	p, closeProvider, err := cfg.Provider()
	if err != nil {
		return err
	}

	err = fn(cfg, p)
	if cerr := closeProvider(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
