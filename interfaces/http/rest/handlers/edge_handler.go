package handlers

import (
	"net/http"

	"kgms-backend/application/services"
	"kgms-backend/pkg/common"
	apperrors "kgms-backend/pkg/errors"
	"kgms-backend/pkg/utils"

	"go.uber.org/zap"
)

// EdgeHandler handles relationship-related HTTP requests
type EdgeHandler struct {
	service *services.EdgeService
	limits  *Limits
	errors  *apperrors.ErrorHandler
	logger  *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(
	service *services.EdgeService,
	limits *Limits,
	errorHandler *apperrors.ErrorHandler,
	logger *zap.Logger,
) *EdgeHandler {
	return &EdgeHandler{
		service: service,
		limits:  limits,
		errors:  errorHandler,
		logger:  logger,
	}
}

// CreateEdgeRequest represents the request body for creating a relationship.
// Missing fields are reported by the service so the message names all three.
type CreateEdgeRequest struct {
	StartNodeID string                 `json:"startNodeId"`
	EndNodeID   string                 `json:"endNodeId"`
	Type        string                 `json:"type"`
	Properties  map[string]interface{} `json:"properties"`
}

// UpdateEdgeRequest represents the request body for updating a relationship
type UpdateEdgeRequest struct {
	Properties map[string]interface{} `json:"properties" validate:"required"`
}

// ListEdges handles GET /edges
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	page, err := extractPage(r, h.limits.Edges())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	edges, err := h.service.List(r.Context(), page, r.URL.Query().Get("type"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondList(w, edges, len(edges), listMeta(page, len(edges)))
}

// GetEdge handles GET /edges/{id}
func (h *EdgeHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	edge, err := h.service.GetByID(r.Context(), pathParam(r, "id"))
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	common.RespondData(w, http.StatusOK, edge)
}

// CreateEdge handles POST /edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var req CreateEdgeRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	edge, err := h.service.Create(r.Context(), services.CreateEdgeInput{
		StartNodeID: req.StartNodeID,
		EndNodeID:   req.EndNodeID,
		Type:        req.Type,
		Properties:  req.Properties,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Relationship created",
		zap.String("edgeID", edge.ID),
		zap.String("type", edge.Type),
	)
	common.RespondMessage(w, http.StatusCreated, "Relationship created successfully", edge)
}

// UpdateEdge handles PUT /edges/{id}
func (h *EdgeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var req UpdateEdgeRequest
	if err := decodeBody(r, &req); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	edge, err := h.service.Update(r.Context(), pathParam(r, "id"), req.Properties)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusOK, "Relationship updated successfully", edge)
}

// DeleteEdge handles DELETE /edges/{id}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	deleted, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if !deleted {
		h.errors.Handle(w, r, notFound("relationship", id))
		return
	}

	h.logger.Info("Relationship deleted", zap.String("edgeID", id))
	common.RespondMessage(w, http.StatusOK, "Relationship deleted successfully", nil)
}

// ListEdgesByType handles GET /edges/type/{type}
func (h *EdgeHandler) ListEdgesByType(w http.ResponseWriter, r *http.Request) {
	page, err := extractPage(r, h.limits.Edges())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	edges, err := h.service.GetByType(r.Context(), pathParam(r, "type"), page)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondList(w, edges, len(edges), listMeta(page, len(edges)))
}

// ListEdgesForNode handles GET /edges/node/{nodeId}?direction=incoming|outgoing|both
func (h *EdgeHandler) ListEdgesForNode(w http.ResponseWriter, r *http.Request) {
	page, err := extractPage(r, h.limits.Edges())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	direction := r.URL.Query().Get("direction")
	if err := utils.ValidateVar("direction", direction, "omitempty,direction"); err != nil {
		h.errors.Handle(w, r, apperrors.NewValidationError(err.Error()))
		return
	}

	edges, err := h.service.GetForNode(r.Context(), pathParam(r, "nodeId"), direction, page)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondList(w, edges, len(edges), listMeta(page, len(edges)))
}
