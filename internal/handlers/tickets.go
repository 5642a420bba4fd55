package handlers

import (
	"net/http"

	"hunttickets/internal/models"
	"hunttickets/internal/validation"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListTickets(c *gin.Context) {
	filters, res := validation.ParseTicketFilters(c.Request.URL.Query())
	if !res.Valid {
		respondError(c, http.StatusBadRequest, "Invalid query parameters", joinErrors(res.Errors), res.Errors)
		return
	}

	tickets, err := h.services.Tickets.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err, "Failed to list tickets")
		return
	}

	respondList(c, tickets, len(tickets), "Tickets retrieved successfully")
}

func (h *Handlers) TicketStats(c *gin.Context) {
	stats, err := h.services.Tickets.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err, "Failed to get ticket statistics")
		return
	}

	respond(c, http.StatusOK, stats, "Ticket statistics retrieved successfully")
}

func (h *Handlers) TicketConfig(c *gin.Context) {
	respond(c, http.StatusOK, h.services.Tickets.Config(), "Ticket configuration retrieved successfully")
}

func (h *Handlers) GetTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid ticket ID", "", nil)
		return
	}

	ticket, err := h.services.Tickets.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err, "Failed to get ticket")
		return
	}

	respond(c, http.StatusOK, ticket, "Ticket retrieved successfully")
}

func (h *Handlers) CreateTicket(c *gin.Context) {
	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleServiceError(c, err, "Failed to create ticket")
		return
	}

	ticket, err := h.services.Tickets.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to create ticket")
		return
	}

	respond(c, http.StatusCreated, ticket, "Ticket created successfully")
}

func (h *Handlers) UpdateTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid ticket ID", "", nil)
		return
	}

	var req models.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleServiceError(c, err, "Failed to update ticket")
		return
	}

	ticket, err := h.services.Tickets.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err, "Failed to update ticket")
		return
	}

	respond(c, http.StatusOK, ticket, "Ticket updated successfully")
}

func (h *Handlers) DeleteTicket(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		respondError(c, http.StatusBadRequest, "Invalid ticket ID", "", nil)
		return
	}

	if err := h.services.Tickets.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err, "Failed to delete ticket")
		return
	}

	respond(c, http.StatusOK, nil, "Ticket deleted successfully")
}

func (h *Handlers) TicketIDRequired(c *gin.Context) {
	respondError(c, http.StatusBadRequest, "Ticket ID is required", "", nil)
}
