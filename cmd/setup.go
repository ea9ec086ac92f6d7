package cmd

import (
	"fmt"
	"log/slog"

	"github.com/chboard/chboard/internal/config"
	"github.com/chboard/chboard/internal/engine"
	"github.com/chboard/chboard/internal/logging"
)

// newEngine loads settings, sets up logging, and builds the shared pipeline
// engine. Every command starts here; validation failures abort before any
// connection attempt.
func newEngine() (*engine.Engine, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.Setup(level, cfg.Logging.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}

	return engine.New(cfg, logger), logger, nil
}
