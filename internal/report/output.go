package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteJSON writes the report as JSON.
func WriteJSON(r *Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON reads a report from a JSON file.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	r := &Report{}
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return r, nil
}

// WriteText writes the report as human-readable text.
func WriteText(r *Report, path string, legacyText bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	return os.WriteFile(path, []byte(FormatText(r, legacyText)), 0o644)
}

// FormatText renders both datasets as aligned text tables.
// legacyText renders the physical compression column the way the original
// panel typed it (as text) instead of as a rounded percentage.
func FormatText(r *Report, legacyText bool) string {
	var b strings.Builder

	b.WriteString("=== ClickHouse Compression Report ===\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", r.GeneratedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Database:  %s\n\n", r.Database))

	b.WriteString("Logical Compression:\n")
	b.WriteString(fmt.Sprintf("  %-30s %15s %15s %10s %12s\n",
		"Table", "Event Count", "Row Count", "Ratio", "Compression"))
	for _, row := range r.Logical {
		b.WriteString(fmt.Sprintf("  %-30s %15d %15d %10.4f %11.2f%%\n",
			row.Table, row.EventCount, row.RowCount, row.Ratio, row.LogicalCompression))
	}
	if len(r.Logical) == 0 {
		b.WriteString("  (no rows)\n")
	}
	b.WriteString("\n")

	b.WriteString("Physical Compression:\n")
	b.WriteString(fmt.Sprintf("  %-30s %15s %17s %10s %12s\n",
		"Table", "Compressed", "Uncompressed", "Ratio", "Compression"))
	for _, row := range r.Physical {
		compression := fmt.Sprintf("%11.2f%%", row.PhysicalCompression)
		if legacyText {
			compression = fmt.Sprintf("%12s", FormatPercent(row.PhysicalCompression))
		}
		b.WriteString(fmt.Sprintf("  %-30s %15s %17s %10.4f %s\n",
			row.Table, row.CompressedSize, row.UncompressedSize, row.Ratio, compression))
	}
	if len(r.Physical) == 0 {
		b.WriteString("  (no rows)\n")
	}

	return b.String()
}
