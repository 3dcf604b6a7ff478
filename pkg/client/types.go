package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// DeleteOutcome is the result of a delete request as seen by the caller.
// A timed out request may still complete on the server, so it is reported
// as Indeterminate rather than as a failure.
type DeleteOutcome int

const (
	DeleteFailed DeleteOutcome = iota
	Deleted
	DeleteIndeterminate
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case DeleteIndeterminate:
		return "indeterminate"
	default:
		return "failed"
	}
}

// DeleteResult carries the outcome and, unless Deleted, the reason
type DeleteResult struct {
	Outcome DeleteOutcome
	Err     error
}

// ListOptions selects a window of a collection
type ListOptions struct {
	Limit int
	Skip  int
	// Label filters nodes, Type filters edges
	Label string
	Type  string
}

// CreateEdgeRequest is the body of POST /api/edges
type CreateEdgeRequest struct {
	StartNodeID string                 `json:"startNodeId"`
	EndNodeID   string                 `json:"endNodeId"`
	Type        string                 `json:"type"`
	Properties  map[string]interface{} `json:"properties,omitempty"`
}

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s (%s)", e.Status, http.StatusText(e.Status), e.Message, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`
}
