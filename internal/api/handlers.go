package api

import (
	"net/http"
	"strings"
)

// handleReport runs one full pipeline cycle and returns both datasets.
// The optional tables query parameter is a comma-separated inclusion filter:
// absent means all tables, present-but-empty means zero rows.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.engine.Run(r.Context())
	if err != nil {
		errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	allTables := rep.TableNames()

	if r.URL.Query().Has("tables") {
		var selected []string
		if raw := r.URL.Query().Get("tables"); raw != "" {
			selected = strings.Split(raw, ",")
		} else {
			selected = []string{}
		}
		rep = rep.Filter(selected)
	}

	legacyText := s.engine.Config().Compat.TextCompression
	jsonResponse(w, http.StatusOK, ReportResponse{
		GeneratedAt: rep.GeneratedAt,
		Database:    rep.Database,
		Tables:      allTables,
		Logical:     rep.Logical,
		Physical:    physicalPayload(rep.Physical, legacyText),
	})
}
