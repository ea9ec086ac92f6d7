package compression

import (
	"context"
	"fmt"
	"strings"
)

// Meta mode reproduces the original panel behavior: ClickHouse concatenates
// the per-table statement text itself and returns it as data. Kept for
// output-compatible deployments; the catalog mode is the default.

const logicalMetaQuery = `
WITH user_tables AS (
    SELECT
        DISTINCT name as Table
    FROM
        system.tables
    WHERE
        database = %s
        AND name NOT ILIKE '%%MV'
)
SELECT
    'SELECT ''' || Table || ''' AS Table, ' || 'SUM(` + "`" + `Event Count` + "`" + `) AS ` + "`" + `Event Count` + "`" + `, ' || 'COUNT(*) AS ` + "`" + `Row Count` + "`" + `, ' || '(` + "`" + `Row Count` + "`" + ` / ` + "`" + `Event Count` + "`" + `) AS ` + "`" + `Ratio` + "`" + `, ' || '((1 - (` + "`" + `Row Count` + "`" + ` / ` + "`" + `Event Count` + "`" + `)) * 100) AS ` + "`" + `Logical Compression` + "`" + `' || 'FROM %s.' || Table || ';' AS generated_sql
FROM
    user_tables;
`

const physicalMetaQuery = `
WITH user_tables AS (
    SELECT
        DISTINCT name as Table
    FROM
        system.tables
    WHERE
        database = %s
        AND name NOT ILIKE '%%MV'
)
SELECT
    'SELECT ''' || Table || ''' AS Table, ' || 'formatReadableSize(SUM(data_compressed_bytes)) AS ` + "`" + `Compressed Size` + "`" + `, ' || 'formatReadableSize(SUM(data_uncompressed_bytes)) AS ` + "`" + `Uncompressed Size` + "`" + `, ' || '(SUM(data_compressed_bytes) / SUM(data_uncompressed_bytes)) AS ` + "`" + `Ratio` + "`" + `, ' || '((1 - (SUM(data_compressed_bytes) / SUM(data_uncompressed_bytes))) * 100) AS ` + "`" + `Physical Compression` + "`" + `' || 'FROM system.parts' || ';' AS generated_sql
FROM user_tables;
`

func (g *Generator) generateMeta(ctx context.Context) (*QuerySet, error) {
	logicalBlob, err := g.conn.Command(ctx, fmt.Sprintf(logicalMetaQuery, quoteString(g.db), g.db))
	if err != nil {
		return nil, &GenerationError{Phase: "logical", Err: err}
	}
	physicalBlob, err := g.conn.Command(ctx, fmt.Sprintf(physicalMetaQuery, quoteString(g.db)))
	if err != nil {
		return nil, &GenerationError{Phase: "physical", Err: err}
	}

	logical, err := SplitScript(logicalBlob)
	if err != nil {
		return nil, &GenerationError{Phase: "logical", Err: err}
	}
	physical, err := SplitScript(physicalBlob)
	if err != nil {
		return nil, &GenerationError{Phase: "physical", Err: err}
	}

	return &QuerySet{Logical: logical, Physical: physical}, nil
}

// SplitScript turns a generated statement blob into individual statements:
// escaped quotes are unescaped, newlines stripped, and the text split on the
// statement terminator. The terminal separator always produces one trailing
// empty segment, which is discarded and never executed.
func SplitScript(blob string) ([]string, error) {
	if blob == "" {
		return nil, nil
	}
	cleaned := strings.ReplaceAll(blob, `\'`, `'`)
	cleaned = strings.ReplaceAll(cleaned, "\n", "")

	segments := strings.Split(cleaned, ";")
	last := segments[len(segments)-1]
	if strings.TrimSpace(last) != "" {
		return nil, fmt.Errorf("generated script does not end with a statement terminator: %q", last)
	}
	return segments[:len(segments)-1], nil
}
