// Package client is a Go client for the knowledge graph HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kgms-backend/domain/graph"
)

const (
	// DefaultEndpoint is the address of a locally running API
	DefaultEndpoint = "http://localhost:3000"
	// DefaultTimeout aborts requests that take longer than this
	DefaultTimeout = 30 * time.Second
)

// Client talks to the /api routes
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient creates a new client.
// endpoint defaults to DefaultEndpoint if empty.
func NewClient(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the base URL of the API
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Health checks that the API is up
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/health", nil)
	return err
}

// ListNodes fetches a window of nodes
func (c *Client) ListNodes(ctx context.Context, opts ListOptions) ([]*graph.Node, error) {
	q := opts.query()
	if opts.Label != "" {
		q.Set("label", opts.Label)
	}
	return decodeNodes(c.do(ctx, http.MethodGet, "/api/nodes"+encode(q), nil))
}

// GetNode fetches a node by application id
func (c *Client) GetNode(ctx context.Context, id string) (*graph.Node, error) {
	return decodeNode(c.do(ctx, http.MethodGet, "/api/nodes/"+url.PathEscape(id), nil))
}

// CreateNode creates a node and returns it with its generated id
func (c *Client) CreateNode(ctx context.Context, properties map[string]interface{}, labels []string) (*graph.Node, error) {
	body := map[string]interface{}{"properties": properties, "labels": labels}
	return decodeNode(c.do(ctx, http.MethodPost, "/api/nodes", body))
}

// UpdateNode merges properties into a node
func (c *Client) UpdateNode(ctx context.Context, id string, properties map[string]interface{}) (*graph.Node, error) {
	body := map[string]interface{}{"properties": properties}
	return decodeNode(c.do(ctx, http.MethodPut, "/api/nodes/"+url.PathEscape(id), body))
}

// DeleteNode deletes a node and its relationships
func (c *Client) DeleteNode(ctx context.Context, id string) DeleteResult {
	return deleteResult(c.do(ctx, http.MethodDelete, "/api/nodes/"+url.PathEscape(id), nil))
}

// SearchNodes finds nodes whose key property equals value
func (c *Client) SearchNodes(ctx context.Context, key, value string, opts ListOptions) ([]*graph.Node, error) {
	path := "/api/nodes/search/" + url.PathEscape(key) + "/" + url.PathEscape(value)
	return decodeNodes(c.do(ctx, http.MethodGet, path+encode(opts.query()), nil))
}

// ListEdges fetches a window of relationships
func (c *Client) ListEdges(ctx context.Context, opts ListOptions) ([]*graph.Edge, error) {
	q := opts.query()
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	return decodeEdges(c.do(ctx, http.MethodGet, "/api/edges"+encode(q), nil))
}

// GetEdge fetches a relationship by application id
func (c *Client) GetEdge(ctx context.Context, id string) (*graph.Edge, error) {
	return decodeEdge(c.do(ctx, http.MethodGet, "/api/edges/"+url.PathEscape(id), nil))
}

// CreateEdge links two existing nodes
func (c *Client) CreateEdge(ctx context.Context, req CreateEdgeRequest) (*graph.Edge, error) {
	return decodeEdge(c.do(ctx, http.MethodPost, "/api/edges", req))
}

// UpdateEdge merges properties into a relationship
func (c *Client) UpdateEdge(ctx context.Context, id string, properties map[string]interface{}) (*graph.Edge, error) {
	body := map[string]interface{}{"properties": properties}
	return decodeEdge(c.do(ctx, http.MethodPut, "/api/edges/"+url.PathEscape(id), body))
}

// DeleteEdge deletes a relationship by application or internal id
func (c *Client) DeleteEdge(ctx context.Context, id string) DeleteResult {
	return deleteResult(c.do(ctx, http.MethodDelete, "/api/edges/"+url.PathEscape(id), nil))
}

// EdgesForNode lists the relationships touching a node
func (c *Client) EdgesForNode(ctx context.Context, nodeID string, direction graph.Direction, opts ListOptions) ([]*graph.Edge, error) {
	q := opts.query()
	if direction != "" {
		q.Set("direction", string(direction))
	}
	return decodeEdges(c.do(ctx, http.MethodGet, "/api/edges/node/"+url.PathEscape(nodeID)+encode(q), nil))
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (*envelope, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: env.Message, Detail: env.Error}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return &env, nil
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Skip > 0 {
		q.Set("skip", strconv.Itoa(o.Skip))
	}
	return q
}

func encode(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// IsTimeout reports whether err is a client side timeout
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNotFound reports whether the server answered 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func deleteResult(_ *envelope, err error) DeleteResult {
	switch {
	case err == nil:
		return DeleteResult{Outcome: Deleted}
	case IsTimeout(err):
		return DeleteResult{Outcome: DeleteIndeterminate, Err: err}
	default:
		return DeleteResult{Outcome: DeleteFailed, Err: err}
	}
}

func unmarshalData(env *envelope, v interface{}) error {
	decoder := json.NewDecoder(bytes.NewReader(env.Data))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}
	return nil
}

func decodeNode(env *envelope, err error) (*graph.Node, error) {
	if err != nil {
		return nil, err
	}
	var node graph.Node
	if err := unmarshalData(env, &node); err != nil {
		return nil, err
	}
	return &node, node.Normalize()
}

func decodeNodes(env *envelope, err error) ([]*graph.Node, error) {
	if err != nil {
		return nil, err
	}
	nodes := make([]*graph.Node, 0, env.Count)
	if err := unmarshalData(env, &nodes); err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if err := n.Normalize(); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

func decodeEdge(env *envelope, err error) (*graph.Edge, error) {
	if err != nil {
		return nil, err
	}
	var edge graph.Edge
	if err := unmarshalData(env, &edge); err != nil {
		return nil, err
	}
	return &edge, edge.Normalize()
}

func decodeEdges(env *envelope, err error) ([]*graph.Edge, error) {
	if err != nil {
		return nil, err
	}
	edges := make([]*graph.Edge, 0, env.Count)
	if err := unmarshalData(env, &edges); err != nil {
		return nil, err
	}
	for _, e := range edges {
		if err := e.Normalize(); err != nil {
			return nil, err
		}
	}
	return edges, nil
}
