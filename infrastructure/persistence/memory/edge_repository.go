package memory

import (
	"context"
	"fmt"
	"strconv"

	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"
)

// EdgeRepository implements ports.EdgeRepository over a Store
type EdgeRepository struct {
	store *Store
}

// List returns a window of edges in insertion order
func (r *EdgeRepository) List(ctx context.Context, page graph.Page, edgeType string) ([]*graph.Edge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*graph.Edge, 0)
	for _, id := range r.store.edgeOrder {
		if edgeType != "" && r.store.edges[id].edgeType != edgeType {
			continue
		}
		matched = append(matched, r.store.edgeView(id))
	}
	start, end := page.Apply(len(matched))
	return matched[start:end], nil
}

// GetByID retrieves an edge by application id
func (r *EdgeRepository) GetByID(ctx context.Context, id string) (*graph.Edge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	edge := r.store.edgeView(id)
	if edge == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("edge %s", id))
	}
	return edge, nil
}

// Create links two existing nodes
func (r *EdgeRepository) Create(ctx context.Context, edge *graph.Edge) (*graph.Edge, error) {
	if edge.ID == "" {
		return nil, apperrors.NewValidationError(graph.ErrEmptyID.Error())
	}
	if err := checkStorable(edge.Properties); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.nodes[edge.StartNode.ID]; !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("start node %s", edge.StartNode.ID))
	}
	if _, ok := r.store.nodes[edge.EndNode.ID]; !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("end node %s", edge.EndNode.ID))
	}

	props := edge.Properties.Clone()
	props[graph.IDProperty] = edge.ID
	r.store.edges[edge.ID] = &storedEdge{
		internalID: r.store.allocateID(),
		edgeType:   edge.Type,
		startID:    edge.StartNode.ID,
		endID:      edge.EndNode.ID,
		props:      props,
	}
	r.store.edgeOrder = append(r.store.edgeOrder, edge.ID)
	return r.store.edgeView(edge.ID), nil
}

// Update merges patch into the edge's properties
func (r *EdgeRepository) Update(ctx context.Context, id string, patch graph.Properties) (*graph.Edge, error) {
	if err := checkStorable(patch); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.edges[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("edge %s", id))
	}
	e.props.Merge(patch.Without(graph.IDProperty))
	return r.store.edgeView(id), nil
}

// Delete removes an edge addressed by application id or internal identity
func (r *EdgeRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	target := ""
	if _, ok := r.store.edges[id]; ok {
		target = id
	} else if internal, err := strconv.ParseInt(id, 10, 64); err == nil {
		for edgeID, e := range r.store.edges {
			if e.internalID == internal {
				target = edgeID
				break
			}
		}
	}
	if target == "" {
		return false, nil
	}

	delete(r.store.edges, target)
	r.store.edgeOrder = removeID(r.store.edgeOrder, target)
	return true, nil
}

// ListForNode returns the edges incident to nodeID in the given direction
func (r *EdgeRepository) ListForNode(ctx context.Context, nodeID string, direction graph.Direction, page graph.Page) ([]*graph.Edge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*graph.Edge, 0)
	for _, id := range r.store.edgeOrder {
		e := r.store.edges[id]
		var hit bool
		switch direction {
		case graph.DirectionIncoming:
			hit = e.endID == nodeID
		case graph.DirectionOutgoing:
			hit = e.startID == nodeID
		default:
			hit = e.startID == nodeID || e.endID == nodeID
		}
		if hit {
			matched = append(matched, r.store.edgeView(id))
		}
	}
	start, end := page.Apply(len(matched))
	return matched[start:end], nil
}
