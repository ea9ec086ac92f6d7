package compression

import (
	"context"
	"fmt"
	"strings"

	"github.com/chboard/chboard/internal/clickhouse"
)

// QuerySet is the per-table statements for one report run.
type QuerySet struct {
	// Tables are the catalog table names the statements were generated for,
	// in execution order. Empty in meta mode, where the statements arrive as
	// opaque text.
	Tables   []string
	Logical  []string
	Physical []string
}

// GenerationError reports a failed or unparseable introspection phase.
type GenerationError struct {
	Phase string // "catalog", "logical" or "physical"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generating %s queries: %v", e.Phase, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator produces one logical and one physical compression statement per
// user table of a database. Tables whose name carries the materialized-view
// suffix (case-insensitive "MV") are excluded.
type Generator struct {
	conn clickhouse.Conn
	db   string
	meta bool
}

// NewGenerator creates a Generator. When meta is set, the statements are built
// as text by ClickHouse itself (the original panel's queries-generating-queries
// pattern); otherwise table names are read from the catalog and expanded into
// templates in-process.
func NewGenerator(conn clickhouse.Conn, database string, meta bool) *Generator {
	return &Generator{conn: conn, db: database, meta: meta}
}

// Generate produces the statements for one run.
func (g *Generator) Generate(ctx context.Context) (*QuerySet, error) {
	if g.meta {
		return g.generateMeta(ctx)
	}
	return g.generateFromCatalog(ctx)
}

const catalogQuery = "SELECT DISTINCT name FROM system.tables WHERE database = %s AND name NOT ILIKE '%%MV' ORDER BY name"

func (g *Generator) generateFromCatalog(ctx context.Context) (*QuerySet, error) {
	rows, err := g.conn.Query(ctx, fmt.Sprintf(catalogQuery, quoteString(g.db)))
	if err != nil {
		return nil, &GenerationError{Phase: "catalog", Err: err}
	}

	var names []string
	for _, row := range rows {
		if len(row) != 1 {
			return nil, &GenerationError{Phase: "catalog", Err: fmt.Errorf("expected 1 column, got %d", len(row))}
		}
		name, ok := row[0].(string)
		if !ok {
			return nil, &GenerationError{Phase: "catalog", Err: fmt.Errorf("expected text column, got %T", row[0])}
		}
		names = append(names, name)
	}
	names = ExcludeMaterializedViews(names)

	qs := &QuerySet{Tables: names}
	for _, t := range names {
		qs.Logical = append(qs.Logical, LogicalQuery(g.db, t))
		qs.Physical = append(qs.Physical, PhysicalQuery(g.db, t))
	}
	return qs, nil
}

// LogicalQuery builds the logical compression statement for one table: how
// many raw events collapsed into each stored row.
func LogicalQuery(db, table string) string {
	return fmt.Sprintf(
		"SELECT %s AS Table, "+
			"SUM(`Event Count`) AS `Event Count`, "+
			"COUNT(*) AS `Row Count`, "+
			"(`Row Count` / `Event Count`) AS Ratio, "+
			"((1 - (`Row Count` / `Event Count`)) * 100) AS `Logical Compression` "+
			"FROM %s.%s",
		quoteString(table), quoteIdent(db), quoteIdent(table))
}

// PhysicalQuery builds the physical compression statement for one table:
// on-disk compressed bytes against uncompressed bytes, from active parts.
func PhysicalQuery(db, table string) string {
	return fmt.Sprintf(
		"SELECT %s AS Table, "+
			"formatReadableSize(SUM(data_compressed_bytes)) AS `Compressed Size`, "+
			"formatReadableSize(SUM(data_uncompressed_bytes)) AS `Uncompressed Size`, "+
			"(SUM(data_compressed_bytes) / SUM(data_uncompressed_bytes)) AS Ratio, "+
			"((1 - (SUM(data_compressed_bytes) / SUM(data_uncompressed_bytes))) * 100) AS `Physical Compression` "+
			"FROM system.parts WHERE database = %s AND table = %s AND active",
		quoteString(table), quoteString(db), quoteString(table))
}

// ExcludeMaterializedViews drops names ending in the materialized-view suffix,
// matching the catalog predicate NOT ILIKE '%MV'.
func ExcludeMaterializedViews(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if strings.HasSuffix(strings.ToUpper(n), "MV") {
			continue
		}
		out = append(out, n)
	}
	return out
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

func quoteString(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}
