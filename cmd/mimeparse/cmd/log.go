package cmd

import (
	"fmt"
	"io"

	"github.com/btcsuite/btclog"

	"github.com/zostay/go-mimestream/entity"
	"github.com/zostay/go-mimestream/storage"
	"github.com/zostay/go-mimestream/stream"
)

// subsystems maps each logging subsystem to the package logger it feeds.
var subsystems = map[string]func(btclog.Logger){
	"PARS": stream.UseLogger,
	"STOR": storage.UseLogger,
	"ENTY": entity.UseLogger,
}

// setupLogging routes the package loggers to w at the named level.
func setupLogging(w io.Writer, level string) error {
	lvl, ok := btclog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("unknown log level %q", level)
	}

	backend := btclog.NewBackend(w)
	for id, use := range subsystems {
		logger := backend.Logger(id)
		logger.SetLevel(lvl)
		use(logger)
	}
	return nil
}
