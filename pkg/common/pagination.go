package common

import (
	"fmt"
	"net/http"
	"strconv"

	"kgms-backend/domain/graph"
)

// PageLimits bounds list requests
type PageLimits struct {
	Default int
	Max     int
}

// ExtractPage reads limit and skip from the query string.
// A missing or non-positive limit falls back to the default and a limit above
// the maximum is capped. Negative skip is treated as zero. Non-numeric values
// are rejected.
func ExtractPage(r *http.Request, limits PageLimits) (graph.Page, error) {
	page := graph.Page{Limit: limits.Default}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return graph.Page{}, fmt.Errorf("limit must be an integer, got %q", raw)
		}
		if limit > 0 {
			page.Limit = limit
		}
	}
	if limits.Max > 0 && page.Limit > limits.Max {
		page.Limit = limits.Max
	}

	if raw := r.URL.Query().Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil {
			return graph.Page{}, fmt.Errorf("skip must be an integer, got %q", raw)
		}
		if skip > 0 {
			page.Skip = skip
		}
	}

	return page, nil
}
