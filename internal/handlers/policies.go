package handlers

import (
	"fmt"
	"net/http"

	"hunttickets/internal/middleware"
	"hunttickets/internal/models"
	"hunttickets/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const policiesService = "producers-policies"

// PoliciesHealth - GET /producers-policies/health
func (h *Handlers) PoliciesHealth(c *gin.Context) {
	respond(c, http.StatusOK, models.ServiceHealth{
		Status:    "healthy",
		Service:   policiesService,
		Timestamp: h.now().UTC(),
		RequestID: middleware.RequestIDFrom(c),
	}, "Service is healthy")
}

// PoliciesStats - GET /producers-policies/stats
func (h *Handlers) PoliciesStats(c *gin.Context) {
	stats, err := h.services.Policies.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to get policies statistics")
		return
	}

	stats.RequestID = middleware.RequestIDFrom(c)
	respond(c, http.StatusOK, stats, "Policies statistics retrieved successfully")
}

// ListPolicies - GET /producers-policies
func (h *Handlers) ListPolicies(c *gin.Context) {
	filters, res := validation.ParsePoliciesFilters(c.Request.URL.Query())
	if !res.Valid {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", joinErrors(res.Errors), res.Errors)
		return
	}

	list, err := h.services.Policies.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list policies")
		return
	}

	respond(c, http.StatusOK, models.PoliciesList{
		Policies:       list,
		Count:          len(list),
		FiltersApplied: *filters,
		RequestID:      middleware.RequestIDFrom(c),
	}, fmt.Sprintf("Retrieved %d policies", len(list)))
}

// GetPolicies - GET /producers-policies/:producer_id
func (h *Handlers) GetPolicies(c *gin.Context) {
	producerID, ok := h.producerID(c)
	if !ok {
		return
	}

	details, err := h.services.Policies.Get(c.Request.Context(), producerID)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get policies")
		return
	}

	details.RequestID = middleware.RequestIDFrom(c)
	respond(c, http.StatusOK, details, "Policies retrieved successfully")
}

// CreatePolicies - POST /producers-policies
func (h *Handlers) CreatePolicies(c *gin.Context) {
	var req models.PoliciesRequest
	if !h.bindPoliciesJSON(c, &req) {
		return
	}

	p, err := h.services.Policies.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create policies")
		return
	}

	respond(c, http.StatusCreated, h.policiesResult(c, p), "Policies created successfully")
}

// UpsertPolicies - POST /producers-policies/upsert
func (h *Handlers) UpsertPolicies(c *gin.Context) {
	var req models.PoliciesRequest
	if !h.bindPoliciesJSON(c, &req) {
		return
	}

	p, created, err := h.services.Policies.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to save policies")
		return
	}

	if created {
		respond(c, http.StatusCreated, h.policiesResult(c, p), "Policies created successfully")
		return
	}
	respond(c, http.StatusOK, h.policiesResult(c, p), "Policies updated successfully")
}

// UpdatePolicies - PUT /producers-policies/:producer_id
func (h *Handlers) UpdatePolicies(c *gin.Context) {
	producerID, ok := h.producerID(c)
	if !ok {
		return
	}

	var upd models.PoliciesUpdate
	if !h.bindPoliciesJSON(c, &upd) {
		return
	}

	p, err := h.services.Policies.Update(c.Request.Context(), producerID, &upd)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update policies")
		return
	}

	respond(c, http.StatusOK, h.policiesResult(c, p), "Policies updated successfully")
}

// DeletePolicies - DELETE /producers-policies/:producer_id
func (h *Handlers) DeletePolicies(c *gin.Context) {
	producerID, ok := h.producerID(c)
	if !ok {
		return
	}

	if err := h.services.Policies.Delete(c.Request.Context(), producerID); err != nil {
		h.handleServiceError(c, err, "Failed to delete policies")
		return
	}

	respond(c, http.StatusOK, models.PoliciesDeleted{
		ProducerID: producerID,
		Deleted:    true,
		Timestamp:  h.now().UTC(),
		RequestID:  middleware.RequestIDFrom(c),
	}, "Policies deleted successfully")
}

// ProducerIDRequired answers PUT and DELETE on the collection path.
func (h *Handlers) ProducerIDRequired(c *gin.Context) {
	respondError(c, http.StatusBadRequest, "Producer ID is required in the URL path", "", nil)
}

func (h *Handlers) producerID(c *gin.Context) (string, bool) {
	id := c.Param("producer_id")
	if id == "" {
		h.ProducerIDRequired(c)
		return "", false
	}
	if !validation.IsUUIDv4(id) {
		respondError(c, http.StatusBadRequest, "Invalid producer ID format", "", nil)
		return "", false
	}
	return id, true
}

// bindPoliciesJSON enforces a JSON content type and decodes the body into dst.
func (h *Handlers) bindPoliciesJSON(c *gin.Context, dst any) bool {
	if c.ContentType() != binding.MIMEJSON {
		respondError(c, http.StatusBadRequest, "Content-Type must be application/json", "", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid JSON: "+err.Error(), "", nil)
		return false
	}
	return true
}

func (h *Handlers) policiesResult(c *gin.Context, p *models.ProducerPolicies) models.PoliciesResult {
	return models.PoliciesResult{ProducerPolicies: *p, RequestID: middleware.RequestIDFrom(c)}
}
