package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/chboard/chboard/internal/clickhouse"
	"github.com/chboard/chboard/internal/compression"
	"github.com/chboard/chboard/internal/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.ClickHouse.BaseURL = "ch.example.com"
	cfg.ClickHouse.Port = 9440
	cfg.ClickHouse.User = "reporter"
	cfg.ClickHouse.Password = "secret"
	cfg.ClickHouse.Database = "default"
	cfg.ClickHouse.CompressionProtocol = "lz4"
	cfg.Server.Port = 8230
	return cfg
}

func stubConn(tables ...string) *clickhouse.MockConn {
	catalog := fmt.Sprintf(
		"SELECT DISTINCT name FROM system.tables WHERE database = '%s' AND name NOT ILIKE '%%MV' ORDER BY name",
		"default")
	rows := map[string][][]any{catalog: {}}
	for _, t := range tables {
		rows[catalog] = append(rows[catalog], []any{t})
		rows[compression.LogicalQuery("default", t)] = [][]any{
			{t, uint64(100), uint64(50), 0.5, 50.0},
		}
		rows[compression.PhysicalQuery("default", t)] = [][]any{
			{t, "1.00 MiB", "4.00 MiB", 0.25, 75.0},
		}
	}
	return &clickhouse.MockConn{QueryRows: rows}
}

func testEngine(conn clickhouse.Conn, connectErr error) *Engine {
	return New(testConfig(), slog.Default(), WithConnector(
		func(_ context.Context, _ *config.ClickHouseConfig) (clickhouse.Conn, error) {
			if connectErr != nil {
				return nil, connectErr
			}
			return conn, nil
		}))
}

func TestRunRoundTrip(t *testing.T) {
	conn := stubConn("a", "b", "c")
	eng := testEngine(conn, nil)

	r, err := eng.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(r.Logical) != 3 || len(r.Physical) != 3 {
		t.Fatalf("logical = %d, physical = %d, want 3 each", len(r.Logical), len(r.Physical))
	}

	seen := map[string]bool{}
	for _, name := range r.TableNames() {
		seen[name] = true
	}
	for _, want := range []string{"a", "b", "c"} {
		if !seen[want] {
			t.Errorf("report missing table %q", want)
		}
	}

	if !conn.Closed {
		t.Error("connection not closed after run")
	}
}

func TestRunConnectionFailureStopsPipeline(t *testing.T) {
	conn := stubConn("a")
	connErr := &clickhouse.ConnectionError{Host: "ch.example.com:9440", Err: errors.New("refused")}
	eng := testEngine(conn, connErr)

	_, err := eng.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *clickhouse.ConnectionError
	if !errors.As(err, &ce) {
		t.Fatalf("error type = %T, want *ConnectionError", err)
	}

	// No generation or execution may happen after a failed connect.
	if len(conn.Executed) != 0 {
		t.Errorf("executed %d statements after connection failure", len(conn.Executed))
	}
}

func TestRunExecutionFailureAborts(t *testing.T) {
	conn := stubConn("a", "b")
	// Drop one logical statement so execution fails midway.
	delete(conn.QueryRows, compression.LogicalQuery("default", "b"))
	eng := testEngine(conn, nil)

	_, err := eng.Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var execErr *compression.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error type = %T, want *ExecutionError", err)
	}
	if !conn.Closed {
		t.Error("connection not closed after failed run")
	}
}

func TestTestConnection(t *testing.T) {
	conn := stubConn()
	eng := testEngine(conn, nil)

	if err := eng.TestConnection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conn.Executed) != 0 {
		t.Error("TestConnection must not execute queries")
	}
	if !conn.Closed {
		t.Error("TestConnection must close the connection")
	}
}
