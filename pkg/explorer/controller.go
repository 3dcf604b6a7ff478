// Package explorer keeps a local mirror of the graph for interactive
// clients. It fetches collections, caches detail records for a short time
// and reconciles deletes whose outcome is unknown.
package explorer

import (
	"context"
	"fmt"
	"sync"

	"kgms-backend/domain/graph"
	"kgms-backend/pkg/cache"
	"kgms-backend/pkg/client"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatusDeleteUnknown is shown when a delete timed out
const StatusDeleteUnknown = "deletion status unknown, verify manually"

// API is the subset of the HTTP client the controller needs
type API interface {
	ListNodes(ctx context.Context, opts client.ListOptions) ([]*graph.Node, error)
	GetNode(ctx context.Context, id string) (*graph.Node, error)
	CreateNode(ctx context.Context, properties map[string]interface{}, labels []string) (*graph.Node, error)
	UpdateNode(ctx context.Context, id string, properties map[string]interface{}) (*graph.Node, error)
	DeleteNode(ctx context.Context, id string) client.DeleteResult
	SearchNodes(ctx context.Context, key, value string, opts client.ListOptions) ([]*graph.Node, error)
	ListEdges(ctx context.Context, opts client.ListOptions) ([]*graph.Edge, error)
	GetEdge(ctx context.Context, id string) (*graph.Edge, error)
	CreateEdge(ctx context.Context, req client.CreateEdgeRequest) (*graph.Edge, error)
	UpdateEdge(ctx context.Context, id string, properties map[string]interface{}) (*graph.Edge, error)
	DeleteEdge(ctx context.Context, id string) client.DeleteResult
}

// Metrics receives cache hit and miss counts
type Metrics interface {
	IncrementCounter(name string, tags map[string]string)
}

// ViewState is the state of the detail panel
type ViewState int

const (
	StateIdle ViewState = iota
	StateLoading
	StateFromCache
	StateFromLocal
	StateFromFetch
	StateError
)

func (s ViewState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateFromCache:
		return "displayed-from-cache"
	case StateFromLocal:
		return "displayed-from-local-collection"
	case StateFromFetch:
		return "displayed-from-fetch"
	case StateError:
		return "error-shown"
	default:
		return "idle"
	}
}

// Detail is what the detail panel shows
type Detail struct {
	State ViewState
	Kind  SelectionKind
	ID    string
	Node  *graph.Node
	Edge  *graph.Edge
	Err   error
}

// Options configures a Controller
type Options struct {
	MaxNodes  int
	MaxEdges  int
	NodeCache cache.Store[*graph.Node]
	EdgeCache cache.Store[*graph.Edge]
	Metrics   Metrics
	Logger    *zap.Logger
}

type pendingDelete struct {
	kind SelectionKind
	id   string
}

// ReconcileReport lists what the follow-up read found for each pending
// delete
type ReconcileReport struct {
	Deleted []string
	Present []string
}

// Controller orchestrates fetch, mirror and render for one client
type Controller struct {
	api       API
	maxNodes  int
	maxEdges  int
	nodeCache cache.Store[*graph.Node]
	edgeCache cache.Store[*graph.Edge]
	metrics   Metrics
	logger    *zap.Logger

	mu      sync.RWMutex
	nodes   []*graph.Node
	edges   []*graph.Edge
	detail  Detail
	status  string
	pending []pendingDelete
}

// NewController creates a controller. Missing caches default to in-memory
// caches with cache.DefaultTTL.
func NewController(api API, opts Options) *Controller {
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = 10000
	}
	if opts.MaxEdges <= 0 {
		opts.MaxEdges = 10000
	}
	if opts.NodeCache == nil {
		opts.NodeCache = cache.NewTTLCache[*graph.Node](cache.DefaultTTL)
	}
	if opts.EdgeCache == nil {
		opts.EdgeCache = cache.NewTTLCache[*graph.Edge](cache.DefaultTTL)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		api:       api,
		maxNodes:  opts.MaxNodes,
		maxEdges:  opts.MaxEdges,
		nodeCache: opts.NodeCache,
		edgeCache: opts.EdgeCache,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
	}
}

// Load replaces the mirror with fresh collections
func (c *Controller) Load(ctx context.Context) error {
	var nodes []*graph.Node
	var edges []*graph.Edge

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodes, err = c.api.ListNodes(gctx, client.ListOptions{Limit: c.maxNodes})
		return err
	})
	g.Go(func() error {
		var err error
		edges, err = c.api.ListEdges(gctx, client.ListOptions{Limit: c.maxEdges})
		return err
	})
	if err := g.Wait(); err != nil {
		c.setStatus(fmt.Sprintf("failed to load graph: %v", err))
		return err
	}

	if len(nodes) > c.maxNodes {
		nodes = nodes[:c.maxNodes]
	}
	if len(edges) > c.maxEdges {
		edges = edges[:c.maxEdges]
	}

	c.mu.Lock()
	c.nodes = nodes
	c.edges = edges
	c.status = fmt.Sprintf("loaded %d nodes and %d relationships", len(nodes), len(edges))
	c.mu.Unlock()

	c.logger.Debug("Graph loaded", zap.Int("nodes", len(nodes)), zap.Int("edges", len(edges)))
	return nil
}

// View builds the render model of the current mirror
func (c *Controller) View() *GraphView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return BuildGraphView(c.nodes, c.edges)
}

// Nodes returns the mirrored nodes
func (c *Controller) Nodes() []*graph.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*graph.Node(nil), c.nodes...)
}

// Edges returns the mirrored relationships
func (c *Controller) Edges() []*graph.Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*graph.Edge(nil), c.edges...)
}

// Detail returns the detail panel state
func (c *Controller) Detail() Detail {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.detail
}

// Status returns the last status line
func (c *Controller) Status() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// NeedsReconcile reports whether a delete outcome is still unknown
func (c *Controller) NeedsReconcile() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending) > 0
}

// HandleSelection shows the detail of a selected element
func (c *Controller) HandleSelection(ctx context.Context, sel Selection) Detail {
	if sel.Kind == SelectEdge {
		return c.ShowEdge(ctx, sel.ID)
	}
	return c.ShowNode(ctx, sel.ID)
}

// ShowNode resolves a node detail from the cache, then the mirror, then
// the server.
func (c *Controller) ShowNode(ctx context.Context, id string) Detail {
	c.setDetail(Detail{State: StateLoading, Kind: SelectNode, ID: id})

	detail := Detail{Kind: SelectNode, ID: id}
	if entry, ok := c.cachedNode(ctx, id); ok {
		detail.State, detail.Node = StateFromCache, entry
	} else if node := c.localNode(id); node != nil {
		detail.State, detail.Node = StateFromLocal, node
	} else {
		node, err := c.api.GetNode(ctx, id)
		if err != nil {
			detail.State, detail.Err = StateError, err
			c.setDetail(detail)
			return detail
		}
		detail.State, detail.Node = StateFromFetch, node
	}

	if err := c.nodeCache.Put(ctx, id, detail.Node); err != nil {
		c.logger.Warn("Failed to cache node", zap.String("nodeID", id), zap.Error(err))
	}
	c.setDetail(detail)
	return detail
}

// ShowEdge resolves a relationship detail the same way as ShowNode
func (c *Controller) ShowEdge(ctx context.Context, id string) Detail {
	c.setDetail(Detail{State: StateLoading, Kind: SelectEdge, ID: id})

	detail := Detail{Kind: SelectEdge, ID: id}
	if entry, ok := c.cachedEdge(ctx, id); ok {
		detail.State, detail.Edge = StateFromCache, entry
	} else if edge := c.localEdge(id); edge != nil {
		detail.State, detail.Edge = StateFromLocal, edge
	} else {
		edge, err := c.api.GetEdge(ctx, id)
		if err != nil {
			detail.State, detail.Err = StateError, err
			c.setDetail(detail)
			return detail
		}
		detail.State, detail.Edge = StateFromFetch, edge
	}

	if err := c.edgeCache.Put(ctx, id, detail.Edge); err != nil {
		c.logger.Warn("Failed to cache relationship", zap.String("edgeID", id), zap.Error(err))
	}
	c.setDetail(detail)
	return detail
}

// DeleteNode deletes a node. A confirmed delete removes the node and its
// relationships from the mirror; an indeterminate one is queued for
// Reconcile.
func (c *Controller) DeleteNode(ctx context.Context, id string) client.DeleteResult {
	result := c.api.DeleteNode(ctx, id)
	switch {
	case result.Outcome == client.Deleted:
		c.removeNode(ctx, id)
		c.setStatus("node deleted")
	case client.IsNotFound(result.Err):
		result = client.DeleteResult{Outcome: client.Deleted}
		c.removeNode(ctx, id)
		c.setStatus("node already deleted")
	case result.Outcome == client.DeleteIndeterminate:
		c.queue(pendingDelete{kind: SelectNode, id: id})
	default:
		c.setStatus(fmt.Sprintf("failed to delete node: %v", result.Err))
	}
	return result
}

// DeleteEdge deletes a relationship with the same outcome handling as
// DeleteNode
func (c *Controller) DeleteEdge(ctx context.Context, id string) client.DeleteResult {
	result := c.api.DeleteEdge(ctx, id)
	switch {
	case result.Outcome == client.Deleted:
		c.removeEdge(ctx, id)
		c.setStatus("relationship deleted")
	case client.IsNotFound(result.Err):
		result = client.DeleteResult{Outcome: client.Deleted}
		c.removeEdge(ctx, id)
		c.setStatus("relationship already deleted")
	case result.Outcome == client.DeleteIndeterminate:
		c.queue(pendingDelete{kind: SelectEdge, id: id})
	default:
		c.setStatus(fmt.Sprintf("failed to delete relationship: %v", result.Err))
	}
	return result
}

// Reconcile reads back every delete with an unknown outcome and then
// reloads the mirror.
func (c *Controller) Reconcile(ctx context.Context) (ReconcileReport, error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	var report ReconcileReport
	var retry []pendingDelete
	for _, p := range pending {
		var err error
		if p.kind == SelectEdge {
			_, err = c.api.GetEdge(ctx, p.id)
		} else {
			_, err = c.api.GetNode(ctx, p.id)
		}
		switch {
		case client.IsNotFound(err):
			report.Deleted = append(report.Deleted, p.id)
			if p.kind == SelectEdge {
				c.removeEdge(ctx, p.id)
			} else {
				c.removeNode(ctx, p.id)
			}
		case err == nil:
			report.Present = append(report.Present, p.id)
		default:
			retry = append(retry, p)
		}
	}

	if len(retry) > 0 {
		c.mu.Lock()
		c.pending = append(c.pending, retry...)
		c.mu.Unlock()
	}

	if err := c.Load(ctx); err != nil {
		return report, err
	}
	c.setStatus(fmt.Sprintf("verified: %d deleted, %d still present", len(report.Deleted), len(report.Present)))
	return report, nil
}

// Search returns the ids of nodes whose key property equals value
func (c *Controller) Search(ctx context.Context, key, value string) ([]string, error) {
	nodes, err := c.api.SearchNodes(ctx, key, value, client.ListOptions{Limit: c.maxNodes})
	if err != nil {
		c.setStatus(fmt.Sprintf("search failed: %v", err))
		return nil, err
	}
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	c.setStatus(fmt.Sprintf("%d nodes match %s=%s", len(ids), key, value))
	return ids, nil
}

// CreateNode creates a node and refreshes the mirror
func (c *Controller) CreateNode(ctx context.Context, properties map[string]interface{}, labels []string) (*graph.Node, error) {
	node, err := c.api.CreateNode(ctx, properties, labels)
	if err != nil {
		c.setStatus(fmt.Sprintf("failed to create node: %v", err))
		return nil, err
	}
	return node, c.Load(ctx)
}

// UpdateNode merges properties into a node and refreshes the mirror
func (c *Controller) UpdateNode(ctx context.Context, id string, properties map[string]interface{}) (*graph.Node, error) {
	node, err := c.api.UpdateNode(ctx, id, properties)
	if err != nil {
		c.setStatus(fmt.Sprintf("failed to update node: %v", err))
		return nil, err
	}
	c.invalidateNode(ctx, id)
	return node, c.Load(ctx)
}

// CreateEdge links two nodes and refreshes the mirror
func (c *Controller) CreateEdge(ctx context.Context, req client.CreateEdgeRequest) (*graph.Edge, error) {
	edge, err := c.api.CreateEdge(ctx, req)
	if err != nil {
		c.setStatus(fmt.Sprintf("failed to create relationship: %v", err))
		return nil, err
	}
	return edge, c.Load(ctx)
}

// UpdateEdge merges properties into a relationship and refreshes the mirror
func (c *Controller) UpdateEdge(ctx context.Context, id string, properties map[string]interface{}) (*graph.Edge, error) {
	edge, err := c.api.UpdateEdge(ctx, id, properties)
	if err != nil {
		c.setStatus(fmt.Sprintf("failed to update relationship: %v", err))
		return nil, err
	}
	c.invalidateEdge(ctx, id)
	return edge, c.Load(ctx)
}

func (c *Controller) cachedNode(ctx context.Context, id string) (*graph.Node, bool) {
	entry, ok, err := c.nodeCache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("Node cache unavailable", zap.Error(err))
	}
	c.countCache(ok && err == nil)
	if !ok || err != nil || entry.Value == nil {
		return nil, false
	}
	return entry.Value, true
}

func (c *Controller) cachedEdge(ctx context.Context, id string) (*graph.Edge, bool) {
	entry, ok, err := c.edgeCache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("Relationship cache unavailable", zap.Error(err))
	}
	c.countCache(ok && err == nil)
	if !ok || err != nil || entry.Value == nil {
		return nil, false
	}
	return entry.Value, true
}

func (c *Controller) countCache(hit bool) {
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.IncrementCounter("cache_hits", nil)
	} else {
		c.metrics.IncrementCounter("cache_misses", nil)
	}
}

func (c *Controller) localNode(id string) *graph.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, n := range c.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (c *Controller) localEdge(id string) *graph.Edge {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// removeNode drops a node and its incident relationships from the mirror
func (c *Controller) removeNode(ctx context.Context, id string) {
	c.mu.Lock()
	nodes := c.nodes[:0:0]
	for _, n := range c.nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	var removedEdges []string
	edges := c.edges[:0:0]
	for _, e := range c.edges {
		if e.Touches(id) {
			removedEdges = append(removedEdges, e.ID)
			continue
		}
		edges = append(edges, e)
	}
	c.nodes, c.edges = nodes, edges
	if c.detail.Kind == SelectNode && c.detail.ID == id {
		c.detail = Detail{}
	}
	for _, edgeID := range removedEdges {
		if c.detail.Kind == SelectEdge && c.detail.ID == edgeID {
			c.detail = Detail{}
		}
	}
	c.mu.Unlock()

	c.invalidateNode(ctx, id)
	for _, edgeID := range removedEdges {
		c.invalidateEdge(ctx, edgeID)
	}
}

func (c *Controller) removeEdge(ctx context.Context, id string) {
	c.mu.Lock()
	edges := c.edges[:0:0]
	for _, e := range c.edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	c.edges = edges
	if c.detail.Kind == SelectEdge && c.detail.ID == id {
		c.detail = Detail{}
	}
	c.mu.Unlock()

	c.invalidateEdge(ctx, id)
}

func (c *Controller) invalidateNode(ctx context.Context, id string) {
	if err := c.nodeCache.Invalidate(ctx, id); err != nil {
		c.logger.Warn("Failed to invalidate node cache", zap.String("nodeID", id), zap.Error(err))
	}
}

func (c *Controller) invalidateEdge(ctx context.Context, id string) {
	if err := c.edgeCache.Invalidate(ctx, id); err != nil {
		c.logger.Warn("Failed to invalidate relationship cache", zap.String("edgeID", id), zap.Error(err))
	}
}

func (c *Controller) queue(p pendingDelete) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, p)
	c.status = StatusDeleteUnknown
}

func (c *Controller) setDetail(d Detail) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.detail = d
}

func (c *Controller) setStatus(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = s
}
