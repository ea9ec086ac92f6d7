package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/chboard/chboard/internal/clickhouse"
	"github.com/chboard/chboard/internal/compression"
	"github.com/chboard/chboard/internal/config"
	"github.com/chboard/chboard/internal/report"
)

// Connector opens a ClickHouse connection from settings. Swapped for a stub
// in tests.
type Connector func(ctx context.Context, cfg *config.ClickHouseConfig) (clickhouse.Conn, error)

// Engine runs the report pipeline shared by the web, CLI and TUI surfaces.
// Each render cycle opens a fresh connection, extracts, shapes, and closes;
// nothing is cached across runs.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	connect Connector
}

// Option configures the engine.
type Option func(*Engine)

// WithConnector overrides how connections are opened.
func WithConnector(c Connector) Option {
	return func(e *Engine) {
		e.connect = c
	}
}

// New creates an Engine with the given immutable config.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: logger,
		connect: func(ctx context.Context, c *config.ClickHouseConfig) (clickhouse.Conn, error) {
			return clickhouse.Connect(ctx, c)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the engine's settings.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Run performs one full render cycle: connect, generate, execute, shape.
// Any stage failure aborts the cycle and propagates.
func (e *Engine) Run(ctx context.Context) (*report.Report, error) {
	start := time.Now()

	conn, err := e.connect(ctx, &e.cfg.ClickHouse)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	logical, physical, err := compression.Extract(ctx, conn, e.cfg.ClickHouse.Database, e.cfg.Compat.MetaQueries)
	if err != nil {
		return nil, err
	}

	r, err := report.Shape(e.cfg.ClickHouse.Database, logical, physical)
	if err != nil {
		return nil, err
	}

	e.logger.Info("report generated",
		"database", e.cfg.ClickHouse.Database,
		"tables", len(r.TableNames()),
		"duration", time.Since(start),
	)
	return r, nil
}

// TestConnection opens and closes a connection without running any queries.
func (e *Engine) TestConnection(ctx context.Context) error {
	conn, err := e.connect(ctx, &e.cfg.ClickHouse)
	if err != nil {
		return err
	}
	return conn.Close()
}
