package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"
)

type storedNode struct {
	internalID int64
	labels     []string
	props      graph.Properties
}

type storedEdge struct {
	internalID int64
	edgeType   string
	startID    string
	endID      string
	props      graph.Properties
}

// Store is an in-memory graph used for local development and tests.
// Collections keep insertion order so pagination is stable.
type Store struct {
	mu        sync.RWMutex
	nodes     map[string]*storedNode
	nodeOrder []string
	edges     map[string]*storedEdge
	edgeOrder []string
	nextID    int64
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		nodes: make(map[string]*storedNode),
		edges: make(map[string]*storedEdge),
	}
}

// Nodes returns the node repository backed by this store
func (s *Store) Nodes() *NodeRepository {
	return &NodeRepository{store: s}
}

// Edges returns the edge repository backed by this store
func (s *Store) Edges() *EdgeRepository {
	return &EdgeRepository{store: s}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// checkStorable applies the same property rules as the Neo4j store so both
// backends accept the same documents.
func checkStorable(props graph.Properties) error {
	if key, nested := props.HasNested(); nested {
		return apperrors.NewValidationError(fmt.Sprintf("property %q: nested maps and lists of lists cannot be stored", key))
	}
	return nil
}

func (s *Store) allocateID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// must hold s.mu
func (s *Store) nodeView(id string) *graph.Node {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	return &graph.Node{
		ID:         id,
		Labels:     append([]string{}, n.labels...),
		Properties: n.props.Clone(),
		InternalID: strconv.FormatInt(n.internalID, 10),
	}
}

// must hold s.mu
func (s *Store) edgeView(id string) *graph.Edge {
	e, ok := s.edges[id]
	if !ok {
		return nil
	}
	edge := &graph.Edge{
		ID:         id,
		Type:       e.edgeType,
		Properties: e.props.Clone(),
		InternalID: strconv.FormatInt(e.internalID, 10),
	}
	if start := s.nodeView(e.startID); start != nil {
		edge.StartNode = start.Ref()
	}
	if end := s.nodeView(e.endID); end != nil {
		edge.EndNode = end.Ref()
	}
	return edge
}

func removeID(order []string, id string) []string {
	for i, x := range order {
		if x == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}
