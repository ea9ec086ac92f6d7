package api

import (
	"time"

	"github.com/chboard/chboard/internal/report"
)

// ReportResponse is the API response for GET /api/report. Tables always
// lists every table of the unfiltered report so the UI can build the
// multi-select; the row sets honor the requested filter.
type ReportResponse struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Database    string               `json:"database"`
	Tables      []string             `json:"tables"`
	Logical     []report.LogicalRow  `json:"logical"`
	Physical    []PhysicalRowPayload `json:"physical"`
}

// PhysicalRowPayload mirrors report.PhysicalRow with the compression column
// rendered per the compatibility setting (number by default, text when the
// legacy flag is on).
type PhysicalRowPayload struct {
	Table               string  `json:"table"`
	CompressedSize      string  `json:"compressed_size"`
	UncompressedSize    string  `json:"uncompressed_size"`
	Ratio               float64 `json:"ratio"`
	PhysicalCompression any     `json:"physical_compression"`
}

func physicalPayload(rows []report.PhysicalRow, legacyText bool) []PhysicalRowPayload {
	out := make([]PhysicalRowPayload, len(rows))
	for i, row := range rows {
		p := PhysicalRowPayload{
			Table:               row.Table,
			CompressedSize:      row.CompressedSize,
			UncompressedSize:    row.UncompressedSize,
			Ratio:               row.Ratio,
			PhysicalCompression: row.PhysicalCompression,
		}
		if legacyText {
			p.PhysicalCompression = report.FormatPercent(row.PhysicalCompression)
		}
		out[i] = p
	}
	return out
}
