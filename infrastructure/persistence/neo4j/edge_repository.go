package neo4j

import (
	"context"
	"fmt"
	"strconv"

	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// EdgeRepository implements ports.EdgeRepository on Neo4j
type EdgeRepository struct {
	runner Runner
}

// NewEdgeRepository creates an edge repository
func NewEdgeRepository(runner Runner) *EdgeRepository {
	return &EdgeRepository{runner: runner}
}

// List returns a window of edges, optionally filtered by type
func (r *EdgeRepository) List(ctx context.Context, page graph.Page, edgeType string) ([]*graph.Edge, error) {
	records, err := r.runner.Read(ctx, listEdgesQuery, pageParams(page, map[string]any{
		"type": edgeType,
	}))
	if err != nil {
		return nil, apperrors.NewDatabaseError("list edges", err)
	}
	return edgesFromRecords(records, "list edges")
}

// GetByID retrieves an edge by its id property
func (r *EdgeRepository) GetByID(ctx context.Context, id string) (*graph.Edge, error) {
	records, err := r.runner.Read(ctx, getEdgeQuery, map[string]any{"id": id})
	if err != nil {
		return nil, apperrors.NewDatabaseError("get edge", err)
	}
	if len(records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("edge %s", id))
	}
	edge, err := edgeFromRecord(records[0])
	if err != nil {
		return nil, apperrors.NewDatabaseError("get edge", err)
	}
	return edge, nil
}

// Create links the start and end nodes with a new relationship
func (r *EdgeRepository) Create(ctx context.Context, edge *graph.Edge) (*graph.Edge, error) {
	if err := graph.ValidateIdentifier("relationship type", edge.Type); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := checkStorable(edge.Properties); err != nil {
		return nil, err
	}

	props := edge.Properties.Clone()
	props[graph.IDProperty] = edge.ID

	result, err := r.runner.Write(ctx, createEdgeQuery(edge.Type), map[string]any{
		"startId": edge.StartNode.ID,
		"endId":   edge.EndNode.ID,
		"props":   map[string]any(props),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("create edge", err)
	}
	if len(result.Records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("start node %s or end node %s", edge.StartNode.ID, edge.EndNode.ID))
	}
	created, err := edgeFromRecord(result.Records[0])
	if err != nil {
		return nil, apperrors.NewDatabaseError("create edge", err)
	}
	return created, nil
}

// Update merges patch into the edge's properties
func (r *EdgeRepository) Update(ctx context.Context, id string, patch graph.Properties) (*graph.Edge, error) {
	if err := checkStorable(patch); err != nil {
		return nil, err
	}
	result, err := r.runner.Write(ctx, updateEdgeQuery, map[string]any{
		"id":    id,
		"props": map[string]any(patch.Without(graph.IDProperty)),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("update edge", err)
	}
	if len(result.Records) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("edge %s", id))
	}
	edge, err := edgeFromRecord(result.Records[0])
	if err != nil {
		return nil, apperrors.NewDatabaseError("update edge", err)
	}
	return edge, nil
}

// Delete removes an edge by id property or numeric internal identity
func (r *EdgeRepository) Delete(ctx context.Context, id string) (bool, error) {
	internalID := int64(-1)
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		internalID = n
	}
	result, err := r.runner.Write(ctx, deleteEdgeQuery, map[string]any{
		"id":         id,
		"internalId": internalID,
	})
	if err != nil {
		return false, apperrors.NewDatabaseError("delete edge", err)
	}
	return result.RelationshipsDeleted > 0, nil
}

// ListForNode returns the edges incident to a node
func (r *EdgeRepository) ListForNode(ctx context.Context, nodeID string, direction graph.Direction, page graph.Page) ([]*graph.Edge, error) {
	records, err := r.runner.Read(ctx, edgesForNodeQuery(direction), pageParams(page, map[string]any{
		"nodeId": nodeID,
	}))
	if err != nil {
		return nil, apperrors.NewDatabaseError("list node edges", err)
	}
	return edgesFromRecords(records, "list node edges")
}

func edgesFromRecords(records []*neo4j.Record, operation string) ([]*graph.Edge, error) {
	edges := make([]*graph.Edge, 0, len(records))
	for _, record := range records {
		edge, err := edgeFromRecord(record)
		if err != nil {
			return nil, apperrors.NewDatabaseError(operation, err)
		}
		edges = append(edges, edge)
	}
	return edges, nil
}
