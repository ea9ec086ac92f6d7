package clickhouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"reflect"
	"strings"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/chboard/chboard/internal/config"
)

// Conn provides read-only access to a ClickHouse server for report queries.
type Conn interface {
	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Query executes a statement and returns every row as a slice of
	// driver-native scalar values, in column order.
	Query(ctx context.Context, sql string) ([][]any, error)

	// Command executes a single-column statement and returns the result rows
	// joined with newlines, mirroring a CLI-style text response.
	Command(ctx context.Context, sql string) (string, error)

	// Close releases the underlying connection.
	Close() error
}

// ConnectionError reports a failure to establish or verify the connection.
type ConnectionError struct {
	Host string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to ClickHouse at %s: %v", e.Host, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Client implements Conn using the native ClickHouse protocol.
type Client struct {
	conn driver.Conn
}

// Connect opens a secure, compressed connection using the given settings and
// verifies it with a ping before returning.
func Connect(ctx context.Context, cfg *config.ClickHouseConfig) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.BaseURL, cfg.Port)

	settings := ch.Settings{
		"insert_deduplicate": 0,
	}
	if cfg.BatchSize > 0 {
		settings["max_block_size"] = cfg.BatchSize
	}

	conn, err := ch.Open(&ch.Options{
		Addr: []string{addr},
		Auth: ch.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		TLS:         &tls.Config{},
		Compression: &ch.Compression{Method: compressionMethod(cfg.CompressionProtocol)},
		Settings:    settings,
	})
	if err != nil {
		return nil, &ConnectionError{Host: addr, Err: err}
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, &ConnectionError{Host: addr, Err: err}
	}

	return &Client{conn: conn}, nil
}

func compressionMethod(name string) ch.CompressionMethod {
	switch strings.ToLower(name) {
	case "zstd":
		return ch.CompressionZSTD
	case "gzip":
		return ch.CompressionGZIP
	case "deflate":
		return ch.CompressionDeflate
	case "br":
		return ch.CompressionBrotli
	case "none":
		return ch.CompressionNone
	default:
		return ch.CompressionLZ4
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *Client) Query(ctx context.Context, sql string) ([][]any, error) {
	rows, err := c.conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	types := rows.ColumnTypes()
	var results [][]any
	for rows.Next() {
		dest := make([]any, len(types))
		for i, ct := range types {
			dest[i] = reflect.New(ct.ScanType()).Interface()
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		vals := make([]any, len(dest))
		for i, d := range dest {
			vals[i] = reflect.ValueOf(d).Elem().Interface()
		}
		results = append(results, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return results, nil
}

func (c *Client) Command(ctx context.Context, sql string) (string, error) {
	rows, err := c.Query(ctx, sql)
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) != 1 {
			return "", fmt.Errorf("command expects a single column, got %d", len(row))
		}
		s, ok := row[0].(string)
		if !ok {
			return "", fmt.Errorf("command expects a text column, got %T", row[0])
		}
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n"), nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
