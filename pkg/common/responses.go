package common

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the success envelope for single records and messages
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse is the success envelope for collections
type ListResponse struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Data    interface{} `json:"data"`
	Meta    *ListMeta   `json:"meta,omitempty"`
}

// ListMeta echoes the effective window of a list request
type ListMeta struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
	Total int `json:"total"`
}

// RespondJSON writes v as JSON with the given status
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RespondData sends {success, data}
func RespondData(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, APIResponse{Success: true, Data: data})
}

// RespondMessage sends {success, message, data?}
func RespondMessage(w http.ResponseWriter, status int, message string, data interface{}) {
	RespondJSON(w, status, APIResponse{Success: true, Message: message, Data: data})
}

// RespondList sends a collection with its count and optional window metadata
func RespondList(w http.ResponseWriter, items interface{}, count int, meta *ListMeta) {
	RespondJSON(w, http.StatusOK, ListResponse{
		Success: true,
		Count:   count,
		Data:    items,
		Meta:    meta,
	})
}

// ExtractRequestID extracts the request ID from the request headers
func ExtractRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	if id := r.Header.Get("X-Amzn-Trace-Id"); id != "" {
		return id
	}
	return ""
}
