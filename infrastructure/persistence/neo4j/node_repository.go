package neo4j

import (
	"context"
	"fmt"

	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// NodeRepository implements ports.NodeRepository on Neo4j
type NodeRepository struct {
	runner Runner
}

// NewNodeRepository creates a node repository
func NewNodeRepository(runner Runner) *NodeRepository {
	return &NodeRepository{runner: runner}
}

// List returns a window of nodes, optionally filtered by label
func (r *NodeRepository) List(ctx context.Context, page graph.Page, label string) ([]*graph.Node, error) {
	records, err := r.runner.Read(ctx, listNodesQuery, pageParams(page, map[string]any{
		"label": label,
	}))
	if err != nil {
		return nil, apperrors.NewDatabaseError("list nodes", err)
	}
	return nodesFromRecords(records, "list nodes")
}

// GetByID retrieves a node by its id property
func (r *NodeRepository) GetByID(ctx context.Context, id string) (*graph.Node, error) {
	records, err := r.runner.Read(ctx, getNodeQuery, map[string]any{"id": id})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get node", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("node %s", id))
	}
	node, err := nodeFromRecord(records[0], "n")
	if err != nil {
		return nil, apperrors.NewDatabaseError("get node", err)
	}
	return node, nil
}

// Create stores a node with its labels and properties
func (r *NodeRepository) Create(ctx context.Context, node *graph.Node) (*graph.Node, error) {
	if err := checkStorable(node.Properties); err != nil {
		return nil, err
	}
	labels, err := graph.ValidateLabels(node.Labels)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	props := node.Properties.Clone()
	props[graph.IDProperty] = node.ID

	result, err := r.runner.Write(ctx, createNodeQuery(labels), map[string]any{
		"props": map[string]any(props),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("create node", err)
	}
	if len(result.Records) == 0 {
		return nil, apperrors.NewDatabaseError("create node", fmt.Errorf("no node returned"))
	}
	created, err := nodeFromRecord(result.Records[0], "n")
	if err != nil {
		return nil, apperrors.NewDatabaseError("create node", err)
	}
	return created, nil
}

// Update merges patch into the node's properties
func (r *NodeRepository) Update(ctx context.Context, id string, patch graph.Properties) (*graph.Node, error) {
	if err := checkStorable(patch); err != nil {
		return nil, err
	}
	result, err := r.runner.Write(ctx, updateNodeQuery, map[string]any{
		"id":    id,
		"props": map[string]any(patch.Without(graph.IDProperty)),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("update node", err)
	}
	if len(result.Records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("node %s", id))
	}
	node, err := nodeFromRecord(result.Records[0], "n")
	if err != nil {
		return nil, apperrors.NewDatabaseError("update node", err)
	}
	return node, nil
}

// Delete removes the node and its relationships
func (r *NodeRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.runner.Write(ctx, deleteNodeQuery, map[string]any{"id": id})
	if err != nil {
		return false, apperrors.NewDatabaseError("delete node", err)
	}
	return result.NodesDeleted > 0, nil
}

// Search matches nodes whose key property equals one of the candidates
func (r *NodeRepository) Search(ctx context.Context, key string, candidates []any, page graph.Page) ([]*graph.Node, error) {
	records, err := r.runner.Read(ctx, searchNodesQuery, pageParams(page, map[string]any{
		"key":    key,
		"values": candidates,
	}))
	if err != nil {
		return nil, apperrors.NewDatabaseError("search nodes", err)
	}
	return nodesFromRecords(records, "search nodes")
}

func nodesFromRecords(records []*neo4j.Record, operation string) ([]*graph.Node, error) {
	nodes := make([]*graph.Node, 0, len(records))
	for _, record := range records {
		node, err := nodeFromRecord(record, "n")
		if err != nil {
			return nil, apperrors.NewDatabaseError(operation, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// checkStorable rejects values Neo4j cannot hold as properties
func checkStorable(props graph.Properties) error {
	if key, nested := props.HasNested(); nested {
		return apperrors.NewValidationError(fmt.Sprintf("property %q: nested maps and lists of lists cannot be stored", key))
	}
	return nil
}
