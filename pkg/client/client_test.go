package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kgms-backend/domain/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_Nodes(t *testing.T) {
	t.Run("Should list nodes with window parameters", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/nodes", r.URL.Path)
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "10", r.URL.Query().Get("skip"))
			assert.Equal(t, "Person", r.URL.Query().Get("label"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"count":   1,
				"data": []map[string]interface{}{
					{"id": "n1", "labels": []string{"Person"}, "properties": map[string]interface{}{"id": "n1", "age": 36, "score": 1.5}},
				},
			})
		}))
		defer server.Close()

		nodes, err := NewClient(server.URL).ListNodes(context.Background(), ListOptions{Limit: 5, Skip: 10, Label: "Person"})
		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "n1", nodes[0].ID)
		assert.Equal(t, int64(36), nodes[0].Properties["age"])
		assert.Equal(t, 1.5, nodes[0].Properties["score"])
	})

	t.Run("Should send the create body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []interface{}{"Person"}, body["labels"])
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"success": true,
				"message": "Node created successfully",
				"data":    map[string]interface{}{"id": "new", "labels": []string{"Person"}, "properties": map[string]interface{}{"name": "Ada"}},
			})
		}))
		defer server.Close()

		node, err := NewClient(server.URL).CreateNode(context.Background(), map[string]interface{}{"name": "Ada"}, []string{"Person"})
		require.NoError(t, err)
		assert.Equal(t, "new", node.ID)
	})

	t.Run("Should escape path segments", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/nodes/search/name/Ada%20Lovelace", r.URL.EscapedPath())
			writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "count": 0, "data": []interface{}{}})
		}))
		defer server.Close()

		nodes, err := NewClient(server.URL).SearchNodes(context.Background(), "name", "Ada Lovelace", ListOptions{})
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("Should return API errors with detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false,
				"message": "node x not found",
			})
		}))
		defer server.Close()

		_, err := NewClient(server.URL).GetNode(context.Background(), "x")
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "node x not found")
	})
}

func TestClient_Edges(t *testing.T) {
	t.Run("Should request edges for a node in a direction", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/edges/node/n1", r.URL.Path)
			assert.Equal(t, "outgoing", r.URL.Query().Get("direction"))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"count":   1,
				"data": []map[string]interface{}{{
					"id":         "e1",
					"type":       "KNOWS",
					"properties": map[string]interface{}{"since": 2020},
					"startNode":  map[string]interface{}{"id": "n1"},
					"endNode":    map[string]interface{}{"id": "n2"},
				}},
			})
		}))
		defer server.Close()

		edges, err := NewClient(server.URL).EdgesForNode(context.Background(), "n1", graph.DirectionOutgoing, ListOptions{})
		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "n2", edges[0].EndNode.ID)
		assert.Equal(t, int64(2020), edges[0].Properties["since"])
	})
}

func TestClient_Delete(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		timeout time.Duration
		want    DeleteOutcome
	}{
		{
			name: "confirmed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Node deleted successfully"})
			},
			timeout: time.Second,
			want:    Deleted,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "message": "node x not found"})
			},
			timeout: time.Second,
			want:    DeleteFailed,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "message": "boom"})
			},
			timeout: time.Second,
			want:    DeleteFailed,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			timeout: 50 * time.Millisecond,
			want:    DeleteIndeterminate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewClient(server.URL, WithTimeout(tt.timeout))
			result := c.DeleteNode(context.Background(), "x")
			assert.Equal(t, tt.want, result.Outcome, "%v", result.Err)
			if tt.want == Deleted {
				assert.NoError(t, result.Err)
			} else {
				assert.Error(t, result.Err)
			}
		})
	}

	t.Run("Should treat an expired context as indeterminate", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		result := NewClient(server.URL).DeleteEdge(ctx, "e1")
		assert.Equal(t, DeleteIndeterminate, result.Outcome)
	})
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("")
	assert.Equal(t, DefaultEndpoint, c.Endpoint())
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
	assert.Equal(t, "failed", DeleteFailed.String())
	assert.Equal(t, "indeterminate", DeleteIndeterminate.String())
}
