package services

import (
	"context"
	"fmt"
	"strings"

	"kgms-backend/application/ports"
	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"

	"go.uber.org/zap"
)

// EdgeService exposes CRUD and lookup over the relationship collection
type EdgeService struct {
	nodes   ports.NodeRepository
	edges   ports.EdgeRepository
	metrics ports.Metrics
	logger  *zap.Logger
}

// NewEdgeService creates a new edge service. metrics may be nil.
func NewEdgeService(
	nodes ports.NodeRepository,
	edges ports.EdgeRepository,
	metrics ports.Metrics,
	logger *zap.Logger,
) *EdgeService {
	return &EdgeService{
		nodes:   nodes,
		edges:   edges,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateEdgeInput carries the fields of a new relationship
type CreateEdgeInput struct {
	StartNodeID string
	EndNodeID   string
	Type        string
	Properties  map[string]any
}

// List returns a window of edges, optionally filtered by type
func (s *EdgeService) List(ctx context.Context, page graph.Page, edgeType string) ([]*graph.Edge, error) {
	return s.edges.List(ctx, page, strings.TrimSpace(edgeType))
}

// GetByID returns a single edge
func (s *EdgeService) GetByID(ctx context.Context, id string) (*graph.Edge, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("edge id is required")
	}
	return s.edges.GetByID(ctx, id)
}

// Create links two existing nodes. Nothing is stored when either endpoint
// is missing.
func (s *EdgeService) Create(ctx context.Context, in CreateEdgeInput) (*graph.Edge, error) {
	if in.StartNodeID == "" || in.EndNodeID == "" || in.Type == "" {
		return nil, apperrors.NewValidationError("startNodeId, endNodeId and type are required")
	}
	if err := graph.ValidateIdentifier("relationship type", in.Type); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	props := graph.Properties{}
	if in.Properties != nil {
		normalized, err := graph.NormalizeProperties(in.Properties)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		props = normalized
	}

	if err := s.requireNode(ctx, "start", in.StartNodeID); err != nil {
		return nil, err
	}
	if err := s.requireNode(ctx, "end", in.EndNodeID); err != nil {
		return nil, err
	}

	id := graph.NewID()
	props = props.Without(graph.IDProperty)
	props[graph.IDProperty] = id

	edge, err := s.edges.Create(ctx, &graph.Edge{
		ID:         id,
		Type:       in.Type,
		Properties: props,
		StartNode:  graph.NodeRef{ID: in.StartNodeID},
		EndNode:    graph.NodeRef{ID: in.EndNodeID},
	})
	if err != nil {
		return nil, err
	}

	s.count("edges_created")
	s.logger.Debug("Edge created",
		zap.String("edgeID", edge.ID),
		zap.String("type", edge.Type),
		zap.String("startNodeID", in.StartNodeID),
		zap.String("endNodeID", in.EndNodeID),
	)
	return edge, nil
}

func (s *EdgeService) requireNode(ctx context.Context, role, id string) error {
	if _, err := s.nodes.GetByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("%s node %s", role, id))
		}
		return err
	}
	return nil
}

// Update merges properties into an existing edge
func (s *EdgeService) Update(ctx context.Context, id string, properties map[string]any) (*graph.Edge, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("edge id is required")
	}
	if properties == nil {
		return nil, apperrors.NewValidationError("properties is required")
	}
	patch, err := graph.NormalizeProperties(properties)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return s.edges.Update(ctx, id, patch.Without(graph.IDProperty))
}

// Delete removes an edge by application id or numeric internal identity
func (s *EdgeService) Delete(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, apperrors.NewValidationError("edge id is required")
	}
	deleted, err := s.edges.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.count("edges_deleted")
	}
	return deleted, nil
}

// GetByType lists edges of one relationship type
func (s *EdgeService) GetByType(ctx context.Context, edgeType string, page graph.Page) ([]*graph.Edge, error) {
	if strings.TrimSpace(edgeType) == "" {
		return nil, apperrors.NewValidationError("type is required")
	}
	return s.edges.List(ctx, page, edgeType)
}

// GetForNode lists the edges incident to a node. An unknown node yields an
// empty list.
func (s *EdgeService) GetForNode(ctx context.Context, nodeID, direction string, page graph.Page) ([]*graph.Edge, error) {
	if strings.TrimSpace(nodeID) == "" {
		return nil, apperrors.NewValidationError("node id is required")
	}
	dir, err := graph.ParseDirection(direction)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return s.edges.ListForNode(ctx, nodeID, dir, page)
}

func (s *EdgeService) count(name string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(name, nil)
	}
}
