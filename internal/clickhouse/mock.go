package clickhouse

import (
	"context"
	"fmt"
)

// MockConn is a test double for the Conn interface. Queries and Commands are
// answered from scripted maps keyed by statement text.
type MockConn struct {
	PingErr    error
	QueryRows  map[string][][]any
	QueryErr   error
	Commands   map[string]string
	CommandErr error

	Executed []string
	Closed   bool
}

func (m *MockConn) Ping(_ context.Context) error {
	return m.PingErr
}

func (m *MockConn) Query(_ context.Context, sql string) ([][]any, error) {
	m.Executed = append(m.Executed, sql)
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if m.QueryRows != nil {
		if rows, ok := m.QueryRows[sql]; ok {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("no rows configured for query %q", sql)
}

func (m *MockConn) Command(_ context.Context, sql string) (string, error) {
	m.Executed = append(m.Executed, sql)
	if m.CommandErr != nil {
		return "", m.CommandErr
	}
	if m.Commands != nil {
		if out, ok := m.Commands[sql]; ok {
			return out, nil
		}
	}
	return "", fmt.Errorf("no output configured for command %q", sql)
}

func (m *MockConn) Close() error {
	m.Closed = true
	return nil
}
