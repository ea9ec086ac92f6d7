package compression

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chboard/chboard/internal/clickhouse"
)

func catalogRows(names ...string) map[string][][]any {
	rows := make([][]any, len(names))
	for i, n := range names {
		rows[i] = []any{n}
	}
	return map[string][][]any{
		fmt.Sprintf(catalogQuery, quoteString("default")): rows,
	}
}

func TestGenerateOneStatementPerTable(t *testing.T) {
	conn := &clickhouse.MockConn{QueryRows: catalogRows("a", "b", "c")}
	qs, err := NewGenerator(conn, "default", false).Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(qs.Tables) != 3 {
		t.Fatalf("tables = %d, want 3", len(qs.Tables))
	}
	if len(qs.Logical) != 3 || len(qs.Physical) != 3 {
		t.Fatalf("logical = %d, physical = %d, want 3 each", len(qs.Logical), len(qs.Physical))
	}

	for i, table := range qs.Tables {
		want := "'" + table + "' AS Table"
		if !strings.Contains(qs.Logical[i], want) {
			t.Errorf("logical[%d] missing %q: %s", i, want, qs.Logical[i])
		}
		if !strings.Contains(qs.Physical[i], want) {
			t.Errorf("physical[%d] missing %q: %s", i, want, qs.Physical[i])
		}
	}
}

func TestGenerateExcludesMaterializedViews(t *testing.T) {
	conn := &clickhouse.MockConn{QueryRows: catalogRows("events", "eventsMV", "sessions_mv", "clicks")}
	qs, err := NewGenerator(conn, "default", false).Generate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"events", "clicks"}
	if len(qs.Tables) != len(want) {
		t.Fatalf("tables = %v, want %v", qs.Tables, want)
	}
	for i, n := range want {
		if qs.Tables[i] != n {
			t.Errorf("tables[%d] = %q, want %q", i, qs.Tables[i], n)
		}
	}
	if len(qs.Logical) != 2 || len(qs.Physical) != 2 {
		t.Errorf("logical = %d, physical = %d, want 2 each", len(qs.Logical), len(qs.Physical))
	}
}

func TestGenerateCatalogFailure(t *testing.T) {
	conn := &clickhouse.MockConn{QueryErr: errors.New("table catalog unavailable")}
	_, err := NewGenerator(conn, "default", false).Generate(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T, want *GenerationError", err)
	}
	if genErr.Phase != "catalog" {
		t.Errorf("phase = %q, want catalog", genErr.Phase)
	}
}

func TestLogicalQueryShape(t *testing.T) {
	q := LogicalQuery("default", "events")

	for _, want := range []string{
		"'events' AS Table",
		"SUM(`Event Count`) AS `Event Count`",
		"COUNT(*) AS `Row Count`",
		"(`Row Count` / `Event Count`) AS Ratio",
		"((1 - (`Row Count` / `Event Count`)) * 100) AS `Logical Compression`",
		"FROM `default`.`events`",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("logical query missing %q:\n%s", want, q)
		}
	}
}

func TestPhysicalQueryShape(t *testing.T) {
	q := PhysicalQuery("default", "events")

	for _, want := range []string{
		"'events' AS Table",
		"formatReadableSize(SUM(data_compressed_bytes)) AS `Compressed Size`",
		"formatReadableSize(SUM(data_uncompressed_bytes)) AS `Uncompressed Size`",
		"((1 - (SUM(data_compressed_bytes) / SUM(data_uncompressed_bytes))) * 100) AS `Physical Compression`",
		"FROM system.parts WHERE database = 'default' AND table = 'events' AND active",
	} {
		if !strings.Contains(q, want) {
			t.Errorf("physical query missing %q:\n%s", want, q)
		}
	}
}

func TestQuoting(t *testing.T) {
	if got := quoteIdent("we`ird"); got != "`we``ird`" {
		t.Errorf("quoteIdent = %q", got)
	}
	if got := quoteString(`o'clock`); got != `'o\'clock'` {
		t.Errorf("quoteString = %q", got)
	}
}
