package handlers

import (
	"net/http"

	"kgms-backend/application/services"
	"kgms-backend/pkg/common"
	apperrors "kgms-backend/pkg/errors"

	"go.uber.org/zap"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	service *services.NodeService
	limits  *Limits
	errors  *apperrors.ErrorHandler
	logger  *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(
	service *services.NodeService,
	limits *Limits,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *NodeHandler {
	return &NodeHandler{
		service: service,
		limits:  limits,
		errors:  errorHandler,
		logger:  logger,
	}
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Properties map[string]interface{} `json:"properties" validate:"required"`
	Labels     []string               `json:"labels" validate:"omitempty,dive,identifier"`
}

// UpdateNodeRequest represents the request body for updating a node
type UpdateNodeRequest struct {
	Properties map[string]interface{} `json:"properties" validate:"required"`
}

// ListNodes handles GET /nodes
func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	page, err := extractPage(r, h.limits.Nodes())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodes, err := h.service.List(r.Context(), page, r.URL.Query().Get("label"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondList(w, nodes, len(nodes), listMeta(page, len(nodes)))
}

// GetNode handles GET /nodes/{id}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.service.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondData(w, http.StatusOK, node)
}

// CreateNode handles POST /nodes
func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	node, err := h.service.Create(r.Context(), req.Properties, req.Labels)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Node created", zap.String("nodeID", node.ID))
	common.RespondMessage(w, http.StatusCreated, "Node created successfully", node)
}

// UpdateNode handles PUT /nodes/{id}
func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var req UpdateNodeRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	node, err := h.service.Update(r.Context(), pathParam(r, "id"), req.Properties)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusOK, "Node updated successfully", node)
}

// DeleteNode handles DELETE /nodes/{id}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if !deleted {
		h.errors.Handle(w, r, notFound("node", id))
		return
	}

	h.logger.Info("Node deleted", zap.String("nodeID", id))
	common.RespondMessage(w, http.StatusOK, "Node deleted successfully", nil)
}

// SearchNodes handles GET /nodes/search/{key}/{value}
func (h *NodeHandler) SearchNodes(w http.ResponseWriter, r *http.Request) {
	page, err := extractPage(r, h.limits.Nodes())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodes, err := h.service.Search(r.Context(), pathParam(r, "key"), pathParam(r, "value"), page)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondList(w, nodes, len(nodes), listMeta(page, len(nodes)))
}

// ListNodesByLabel handles GET /nodes/label/{label}
func (h *NodeHandler) ListNodesByLabel(w http.ResponseWriter, r *http.Request) {
	page, err := extractPage(r, h.limits.Nodes())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	nodes, err := h.service.ListByLabel(r.Context(), pathParam(r, "label"), page)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondList(w, nodes, len(nodes), listMeta(page, len(nodes)))
}

