package services

import (
	"context"
	"strings"

	"kgms-backend/application/ports"
	"kgms-backend/domain/graph"
	apperrors "kgms-backend/pkg/errors"

	"go.uber.org/zap"
)

// NodeService exposes CRUD and lookup over the node collection
type NodeService struct {
	nodes   ports.NodeRepository
	metrics ports.Metrics
	logger  *zap.Logger
}

// NewNodeService creates a new node service. metrics may be nil.
func NewNodeService(nodes ports.NodeRepository, metrics ports.Metrics, logger *zap.Logger) *NodeService {
	return &NodeService{
		nodes:   nodes,
		metrics: metrics,
		logger:  logger,
	}
}

// List returns a window of nodes, optionally filtered by label
func (s *NodeService) List(ctx context.Context, page graph.Page, label string) ([]*graph.Node, error) {
	return s.nodes.List(ctx, page, strings.TrimSpace(label))
}

// GetByID returns a single node
func (s *NodeService) GetByID(ctx context.Context, id string) (*graph.Node, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("node id is required")
	}
	return s.nodes.GetByID(ctx, id)
}

// Create stores a new node. Any caller supplied "id" property is replaced
// by a generated application id.
func (s *NodeService) Create(ctx context.Context, properties map[string]any, labels []string) (*graph.Node, error) {
	if properties == nil {
		return nil, apperrors.NewValidationError("properties is required")
	}
	props, err := graph.NormalizeProperties(properties)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	labels, err = graph.ValidateLabels(labels)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	id := graph.NewID()
	props = props.Without(graph.IDProperty)
	props[graph.IDProperty] = id

	node, err := s.nodes.Create(ctx, &graph.Node{
		ID:         id,
		Labels:     labels,
		Properties: props,
	})
	if err != nil {
		return nil, err
	}

	s.count("nodes_created")
	s.logger.Debug("Node created",
		zap.String("nodeID", node.ID),
		zap.Strings("labels", node.Labels),
	)
	return node, nil
}

// Update merges the given properties into an existing node. The application
// id cannot be changed.
func (s *NodeService) Update(ctx context.Context, id string, properties map[string]any) (*graph.Node, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewValidationError("node id is required")
	}
	if properties == nil {
		return nil, apperrors.NewValidationError("properties is required")
	}
	patch, err := graph.NormalizeProperties(properties)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return s.nodes.Update(ctx, id, patch.Without(graph.IDProperty))
}

// Delete removes a node and every edge touching it. It reports false when
// no node had the id.
func (s *NodeService) Delete(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, apperrors.NewValidationError("node id is required")
	}
	deleted, err := s.nodes.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.count("nodes_deleted")
		s.logger.Debug("Node deleted", zap.String("nodeID", id))
	}
	return deleted, nil
}

// Search finds nodes whose property key equals value. Numeric and boolean
// literals also match their typed form.
func (s *NodeService) Search(ctx context.Context, key, value string, page graph.Page) ([]*graph.Node, error) {
	if strings.TrimSpace(key) == "" {
		return nil, apperrors.NewValidationError("search key is required")
	}
	return s.nodes.Search(ctx, key, graph.SearchCandidates(value), page)
}

// ListByLabel lists the nodes carrying label
func (s *NodeService) ListByLabel(ctx context.Context, label string, page graph.Page) ([]*graph.Node, error) {
	if strings.TrimSpace(label) == "" {
		return nil, apperrors.NewValidationError("label is required")
	}
	return s.nodes.List(ctx, page, label)
}

func (s *NodeService) count(name string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(name, nil)
	}
}
