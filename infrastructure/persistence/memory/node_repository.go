package memory

import (
	"context"
	"fmt"

	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"
)

// NodeRepository implements ports.NodeRepository over a Store
type NodeRepository struct {
	store *Store
}

// List returns a window of nodes in insertion order
func (r *NodeRepository) List(ctx context.Context, page graph.Page, label string) ([]*graph.Node, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*graph.Node, 0)
	for _, id := range r.store.nodeOrder {
		node := r.store.nodeView(id)
		if label != "" && !node.HasLabel(label) {
			continue
		}
		matched = append(matched, node)
	}
	start, end := page.Apply(len(matched))
	return matched[start:end], nil
}

// GetByID retrieves a node by application id
func (r *NodeRepository) GetByID(ctx context.Context, id string) (*graph.Node, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	node := r.store.nodeView(id)
	if node == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("node %s", id))
	}
	return node, nil
}

// Create stores a node
func (r *NodeRepository) Create(ctx context.Context, node *graph.Node) (*graph.Node, error) {
	if node.ID == "" {
		return nil, apperrors.NewValidationError(graph.ErrEmptyID.Error())
	}
	if err := checkStorable(node.Properties); err != nil {
		return nil, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.nodes[node.ID]; exists {
		return nil, apperrors.NewValidationError(fmt.Sprintf("node %s already exists", node.ID))
	}
	props := node.Properties.Clone()
	props[graph.IDProperty] = node.ID
	r.store.nodes[node.ID] = &storedNode{
		internalID: r.store.allocateID(),
		labels:     append([]string{}, node.Labels...),
		props:      props,
	}
	r.store.nodeOrder = append(r.store.nodeOrder, node.ID)
	return r.store.nodeView(node.ID), nil
}

// Update merges patch into the node's properties
func (r *NodeRepository) Update(ctx context.Context, id string, patch graph.Properties) (*graph.Node, error) {
	if err := checkStorable(patch); err != nil {
		return nil, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.nodes[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("node %s", id))
	}
	n.props.Merge(patch.Without(graph.IDProperty))
	return r.store.nodeView(id), nil
}

// Delete removes a node and all incident edges
func (r *NodeRepository) Delete(ctx context.Context, id string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.nodes[id]; !ok {
		return false, nil
	}
	for edgeID, e := range r.store.edges {
		if e.startID == id || e.endID == id {
			delete(r.store.edges, edgeID)
			r.store.edgeOrder = removeID(r.store.edgeOrder, edgeID)
		}
	}
	delete(r.store.nodes, id)
	r.store.nodeOrder = removeID(r.store.nodeOrder, id)
	return true, nil
}

// Search returns nodes whose key property equals one of the candidates
func (r *NodeRepository) Search(ctx context.Context, key string, candidates []any, page graph.Page) ([]*graph.Node, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]*graph.Node, 0)
	for _, id := range r.store.nodeOrder {
		value, ok := r.store.nodes[id].props[key]
		if !ok {
			continue
		}
		for _, c := range candidates {
			if graph.ValueEqual(value, c) {
				matched = append(matched, r.store.nodeView(id))
				break
			}
		}
	}
	start, end := page.Apply(len(matched))
	return matched[start:end], nil
}
