package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chboard/chboard/internal/clickhouse"
	"github.com/chboard/chboard/internal/compression"
	"github.com/chboard/chboard/internal/config"
	"github.com/chboard/chboard/internal/engine"
)

func testModel(t *testing.T, tables ...string) Model {
	t.Helper()

	cfg := &config.Config{}
	cfg.ClickHouse.Database = "default"
	catalog := fmt.Sprintf(
		"SELECT DISTINCT name FROM system.tables WHERE database = '%s' AND name NOT ILIKE '%%MV' ORDER BY name",
		"default")
	rows := map[string][][]any{catalog: {}}
	logical := make([][]any, 0, len(tables))
	physical := make([][]any, 0, len(tables))
	for _, tbl := range tables {
		rows[catalog] = append(rows[catalog], []any{tbl})
		logical = append(logical, []any{tbl, uint64(100), uint64(50), 0.5, 50.0})
		physical = append(physical, []any{tbl, "1.00 MiB", "4.00 MiB", 0.25, 75.0})
	}
	eng := engine.New(cfg, slog.Default(), engine.WithConnector(
		func(_ context.Context, _ *config.ClickHouseConfig) (clickhouse.Conn, error) {
			conn := &clickhouse.MockConn{QueryRows: rows}
			for i, tbl := range tables {
				conn.QueryRows[compression.LogicalQuery("default", tbl)] = [][]any{logical[i]}
				conn.QueryRows[compression.PhysicalQuery("default", tbl)] = [][]any{physical[i]}
			}
			return conn, nil
		}))

	m := New(eng)
	rep, err := eng.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	updated, _ := m.Update(reportMsg{rep: rep})
	return updated.(Model)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestReportLoadSelectsAllTables(t *testing.T) {
	m := testModel(t, "a", "b", "c")

	if len(m.entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(m.entries))
	}
	for _, e := range m.entries {
		if !e.selected {
			t.Errorf("table %q not selected by default", e.name)
		}
	}
}

func TestToggleSelection(t *testing.T) {
	m := testModel(t, "a", "b")

	updated, _ := m.Update(key(" "))
	m = updated.(Model)
	if m.entries[0].selected {
		t.Error("space should deselect the table under the cursor")
	}

	view := m.View()
	if strings.Count(view, "[x]") != 1 {
		t.Errorf("expected exactly one selected checkbox in view")
	}
}

func TestSelectNoneHidesRows(t *testing.T) {
	m := testModel(t, "a", "b")

	updated, _ := m.Update(key("n"))
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "(no rows)") {
		t.Error("deselecting all tables should leave both datasets empty")
	}
}

func TestViewShowsBothDatasets(t *testing.T) {
	m := testModel(t, "events")

	view := m.View()
	for _, want := range []string{"Logical Compression", "Physical Compression", "events", "1.00 MiB"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestErrorView(t *testing.T) {
	cfg := &config.Config{}
	eng := engine.New(cfg, slog.Default(), engine.WithConnector(
		func(_ context.Context, _ *config.ClickHouseConfig) (clickhouse.Conn, error) {
			return nil, fmt.Errorf("connection refused")
		}))
	m := New(eng)

	rep, err := eng.Run(context.Background())
	updated, _ := m.Update(reportMsg{rep: rep, err: err})
	m = updated.(Model)

	if !strings.Contains(m.View(), "connection refused") {
		t.Error("view should surface the pipeline error")
	}
}

func TestFilterNarrowsVisibleEntries(t *testing.T) {
	m := testModel(t, "events", "sessions", "clicks")

	updated, _ := m.Update(key("/"))
	m = updated.(Model)
	if !m.filtering {
		t.Fatal("/ should enter filter mode")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ev")})
	m = updated.(Model)

	visible := m.visibleIndexes()
	if len(visible) != 1 || m.entries[visible[0]].name != "events" {
		t.Errorf("visible entries = %v", visible)
	}
}
