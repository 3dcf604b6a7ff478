package ports

import (
	"context"

	"kgms-backend/domain/graph"
)

// NodeRepository defines node persistence. Lookups of a missing node
// return a NOT_FOUND application error.
type NodeRepository interface {
	// List returns a window of nodes, optionally restricted to a label
	List(ctx context.Context, page graph.Page, label string) ([]*graph.Node, error)

	// GetByID retrieves a node by its application id
	GetByID(ctx context.Context, id string) (*graph.Node, error)

	// Create persists a node whose id is already assigned
	Create(ctx context.Context, node *graph.Node) (*graph.Node, error)

	// Update merges patch into the node's properties
	Update(ctx context.Context, id string, patch graph.Properties) (*graph.Node, error)

	// Delete removes the node and its incident edges, reporting whether a node was removed
	Delete(ctx context.Context, id string) (bool, error)

	// Search returns nodes whose property key equals any of the candidate values
	Search(ctx context.Context, key string, candidates []any, page graph.Page) ([]*graph.Node, error)
}

// EdgeRepository defines edge persistence
type EdgeRepository interface {
	// List returns a window of edges, optionally restricted to a type
	List(ctx context.Context, page graph.Page, edgeType string) ([]*graph.Edge, error)

	// GetByID retrieves an edge by its application id
	GetByID(ctx context.Context, id string) (*graph.Edge, error)

	// Create links edge.StartNode.ID to edge.EndNode.ID
	Create(ctx context.Context, edge *graph.Edge) (*graph.Edge, error)

	// Update merges patch into the edge's properties
	Update(ctx context.Context, id string, patch graph.Properties) (*graph.Edge, error)

	// Delete removes an edge by application id or numeric internal identity
	Delete(ctx context.Context, id string) (bool, error)

	// ListForNode returns the edges incident to a node in the given direction
	ListForNode(ctx context.Context, nodeID string, direction graph.Direction, page graph.Page) ([]*graph.Edge, error)
}

// Metrics receives business counters
type Metrics interface {
	IncrementCounter(name string, tags map[string]string)
}
