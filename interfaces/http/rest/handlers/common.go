package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"kgms-backend/domain/graph"
	"kgms-backend/pkg/common"
	apperrors "kgms-backend/pkg/errors"
	"kgms-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// Limits holds the list limits. They can change at runtime when the
// configuration file is reloaded.
type Limits struct {
	mu    sync.RWMutex
	nodes common.PageLimits
	edges common.PageLimits
}

// NewLimits creates a limits holder
func NewLimits(defaultNodes, defaultEdges, max int) *Limits {
	l := &Limits{}
	l.Set(defaultNodes, defaultEdges, max)
	return l
}

// Set replaces the limits
func (l *Limits) Set(defaultNodes, defaultEdges, max int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nodes = common.PageLimits{Default: defaultNodes, Max: max}
	l.edges = common.PageLimits{Default: defaultEdges, Max: max}
}

// Nodes returns the node list limits
func (l *Limits) Nodes() common.PageLimits {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nodes
}

// Edges returns the edge list limits
func (l *Limits) Edges() common.PageLimits {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.edges
}

// decodeBody decodes a JSON body, keeping numbers as json.Number so that
// integers survive, then validates it.
func decodeBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperrors.NewValidationError("failed to read request body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperrors.NewValidationError("request body is required")
	}
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return apperrors.NewValidationError("Invalid request body: " + err.Error())
	}
	if err := utils.ValidateStruct(v); err != nil {
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// pathParam returns the decoded URL parameter. chi routes on RawPath when
// the request has one, and only then is the parameter still escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if value, err := url.PathUnescape(raw); err == nil {
		return value
	}
	return raw
}

func extractPage(r *http.Request, limits common.PageLimits) (graph.Page, error) {
	page, err := common.ExtractPage(r, limits)
	if err != nil {
		return graph.Page{}, apperrors.NewValidationError(err.Error())
	}
	return page, nil
}

func listMeta(page graph.Page, count int) *common.ListMeta {
	return &common.ListMeta{Limit: page.Limit, Skip: page.Skip, Total: count}
}

func notFound(kind, id string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s %s", kind, id))
}
