package handlers

import (
	"net/http"

	"hunttickets/internal/models"
	"hunttickets/internal/validation"

	"github.com/gin-gonic/gin"
)

// ListEvents - GET /events
func (h *Handlers) ListEvents(c *gin.Context) {
	filters, res := validation.ParseEventFilters(c.Request.URL.Query())
	if !res.Valid {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", joinErrors(res.Errors), res.Errors)
		return
	}

	events, err := h.services.Events.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list events")
		return
	}

	respondList(c, events, len(events), "Events retrieved successfully")
}

// EventStats - GET /events/stats
func (h *Handlers) EventStats(c *gin.Context) {
	stats, err := h.services.Events.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event statistics")
		return
	}

	respond(c, http.StatusOK, stats, "Event statistics retrieved successfully")
}

// GetEvent - GET /events/:id
func (h *Handlers) GetEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid event ID", "", nil)
		return
	}

	event, err := h.services.Events.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get event")
		return
	}

	respond(c, http.StatusOK, event, "Event retrieved successfully")
}

// CreateEvent - POST /events
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleServiceError(c, err, "Failed to create event")
		return
	}

	event, err := h.services.Events.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create event")
		return
	}

	respond(c, http.StatusCreated, event, "Event created successfully")
}

// UpdateEvent - PUT /events/:id
func (h *Handlers) UpdateEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid event ID", "", nil)
		return
	}

	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleServiceError(c, err, "Failed to update event")
		return
	}

	event, err := h.services.Events.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update event")
		return
	}

	respond(c, http.StatusOK, event, "Event updated successfully")
}

// DeleteEvent - DELETE /events/:id
func (h *Handlers) DeleteEvent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid event ID", "", nil)
		return
	}

	if err := h.services.Events.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete event")
		return
	}

	respond(c, http.StatusOK, nil, "Event deleted successfully")
}

// EventIDRequired answers PUT and DELETE on the collection path.
func (h *Handlers) EventIDRequired(c *gin.Context) {
	respondError(c, http.StatusBadRequest, "Event ID is required", "", nil)
}
