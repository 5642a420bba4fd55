package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hunttickets/internal/middleware"
	"hunttickets/internal/models"
	"hunttickets/internal/repository/repotest"
	"hunttickets/internal/security"
	"hunttickets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

const (
	producerA = "5f0c5a52-8f7e-4b8e-9d4c-2a6b4f1e9c31"
	producerB = "0b7e2a41-3c5d-4e6f-a718-293a4b5c6d7e"
	terms     = "<p>Términos y condiciones del servicio</p>"
)

type testEnv struct {
	router   *gin.Engine
	events   *repotest.EventStore
	tickets  *repotest.TicketStore
	policies *repotest.PoliciesStore
}

func setupRouter(t *testing.T, production bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	signer, err := security.NewSigner("test-secret")
	require.NoError(t, err)
	clock := func() time.Time { return testNow }

	env := &testEnv{
		events:   repotest.NewEventStore(),
		tickets:  repotest.NewTicketStore(),
		policies: repotest.NewPoliciesStore(producerA, producerB),
	}
	opts := service.Options{Signer: signer, Now: clock}
	services := &service.Services{
		Events:   service.NewEventService(env.events, opts),
		Tickets:  service.NewTicketService(env.tickets, opts),
		Policies: service.NewPoliciesService(env.policies, env.policies, opts),
	}
	h := NewHandlers(services, Options{
		Signer:     signer,
		Production: production,
		Now:        clock,
		Checks: []HealthCheck{
			{Name: "database", Check: func(context.Context) error { return nil }},
		},
	})

	r := gin.New()
	r.Use(middleware.RequestID())

	events := r.Group("/events")
	{
		events.GET("", h.ListEvents)
		events.GET("/stats", h.EventStats)
		events.GET("/:id", h.GetEvent)
		events.POST("", h.CreateEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
	}

	tickets := r.Group("/tickets")
	{
		tickets.GET("", h.ListTickets)
		tickets.GET("/stats", h.TicketStats)
		tickets.GET("/config", h.TicketConfig)
		tickets.GET("/:id", h.GetTicket)
		tickets.POST("", h.CreateTicket)
		tickets.PUT("/:id", h.UpdateTicket)
		tickets.DELETE("/:id", h.DeleteTicket)
	}

	policies := r.Group("/producers-policies")
	{
		policies.GET("", h.ListPolicies)
		policies.GET("/health", h.PoliciesHealth)
		policies.GET("/stats", h.PoliciesStats)
		policies.GET("/:producer_id", h.GetPolicies)
		policies.POST("", h.CreatePolicies)
		policies.POST("/upsert", h.UpsertPolicies)
		policies.PUT("", h.ProducerIDRequired)
		policies.PUT("/:producer_id", h.UpdatePolicies)
		policies.DELETE("/:producer_id", h.DeletePolicies)
	}

	r.GET("/helpers/demo", h.HelpersDemo)
	r.GET("/helpers/constants", h.HelpersConstants)
	r.GET("/health", h.Health)

	env.router = r
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Details []string        `json:"details"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any, contentType string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

const jsonType = "application/json"

func TestCreateEvent(t *testing.T) {
	env := setupRouter(t, false)

	code, resp := env.do(t, http.MethodPost, "/events", map[string]any{
		"title":        "Concierto de Rock",
		"event_date":   "2027-03-01T20:00:00Z",
		"location":     "Bogotá",
		"max_capacity": 200,
		"price":        50000,
		"category":     "concert",
	}, jsonType)

	assert.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)
	assert.Equal(t, "Event created successfully", resp.Message)

	var ev models.Event
	require.NoError(t, json.Unmarshal(resp.Data, &ev))
	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, models.EventStatusActive, ev.Status)
	assert.Equal(t, 0, ev.CurrentCapacity)
	assert.Equal(t, 200, ev.MaxCapacity)
}

func TestCreateEventValidation(t *testing.T) {
	env := setupRouter(t, false)

	code, resp := env.do(t, http.MethodPost, "/events", map[string]any{
		"title":      "",
		"event_date": "2020-01-01",
	}, jsonType)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "Validation failed", resp.Error)
	assert.Contains(t, resp.Details, "Title is required")
	assert.Contains(t, resp.Details, "Event date must be in the future and valid")
	assert.Contains(t, resp.Message, "Location is required")
}

func TestEventReadPaths(t *testing.T) {
	env := setupRouter(t, false)
	env.do(t, http.MethodPost, "/events", map[string]any{
		"title": "Teatro Nacional", "event_date": "2027-01-10T19:00:00Z", "location": "Medellín", "category": "theater",
	}, jsonType)

	code, resp := env.do(t, http.MethodGet, "/events?category=theater", nil, "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)
	assert.Equal(t, "Events retrieved successfully", resp.Message)

	code, resp = env.do(t, http.MethodGet, "/events/1", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var details models.EventDetails
	require.NoError(t, json.Unmarshal(resp.Data, &details))
	assert.Equal(t, "teatro-nacional", details.Slug)
	assert.Equal(t, "available", details.CapacityInfo.Status)

	code, resp = env.do(t, http.MethodGet, "/events/99", nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Event not found", resp.Error)

	code, resp = env.do(t, http.MethodGet, "/events/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid event ID", resp.Error)

	code, resp = env.do(t, http.MethodGet, "/events?limit=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid query parameters", resp.Error)

	code, resp = env.do(t, http.MethodGet, "/events/stats", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var stats models.EventStats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.ByCategory["theater"])
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	env := setupRouter(t, false)
	env.do(t, http.MethodPost, "/events", map[string]any{
		"title": "Feria", "event_date": "2027-01-10", "location": "Cali",
	}, jsonType)

	code, resp := env.do(t, http.MethodPut, "/events/1", map[string]any{"status": "cancelled"}, jsonType)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Event updated successfully", resp.Message)

	code, resp = env.do(t, http.MethodPut, "/events/42", map[string]any{"title": "Otro"}, jsonType)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Event not found", resp.Error)

	code, _ = env.do(t, http.MethodDelete, "/events/1", nil, "")
	assert.Equal(t, http.StatusOK, code)

	// deleting again is still a success
	code, resp = env.do(t, http.MethodDelete, "/events/1", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Event deleted successfully", resp.Message)
}

func TestCreateTicket(t *testing.T) {
	env := setupRouter(t, false)

	code, resp := env.do(t, http.MethodPost, "/tickets", map[string]any{"name": "Ana"}, jsonType)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Details, "Email is required")

	code, resp = env.do(t, http.MethodPost, "/tickets", map[string]any{
		"name": "Ana <b>", "email": "ana@example.com", "ticket_type": "vip", "event_id": 7,
	}, jsonType)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Ticket created successfully", resp.Message)

	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(resp.Data, &ticket))
	assert.Equal(t, "Ana b", ticket.Name)
	assert.Equal(t, "active", ticket.Status)
	assert.Equal(t, "vip", ticket.Metadata.TicketType)

	code, resp = env.do(t, http.MethodGet, "/tickets/1", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var details models.TicketDetails
	require.NoError(t, json.Unmarshal(resp.Data, &details))
	assert.Equal(t, "HUNT-000001", details.TicketNumber)
	assert.NotEmpty(t, details.QRData)
}

func TestTicketListConfigAndDelete(t *testing.T) {
	env := setupRouter(t, false)
	env.do(t, http.MethodPost, "/tickets", map[string]any{"name": "Luis", "email": "luis@example.com"}, jsonType)

	code, resp := env.do(t, http.MethodGet, "/tickets?status=active", nil, "")
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 1, *resp.Count)

	code, resp = env.do(t, http.MethodGet, "/tickets/config", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var cfg models.TicketConfig
	require.NoError(t, json.Unmarshal(resp.Data, &cfg))
	assert.Equal(t, service.MaxTicketsPerRequest, cfg.MaxTicketsPerRequest)

	code, resp = env.do(t, http.MethodGet, "/tickets/x1", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid ticket ID", resp.Error)

	code, _ = env.do(t, http.MethodDelete, "/tickets/500", nil, "")
	assert.Equal(t, http.StatusOK, code)
}

func TestPoliciesLifecycle(t *testing.T) {
	env := setupRouter(t, false)

	code, resp := env.do(t, http.MethodPost, "/producers-policies", map[string]any{
		"producer_id": producerA, "terms_and_conditions": terms,
	}, jsonType)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Policies created successfully", resp.Message)

	code, resp = env.do(t, http.MethodPost, "/producers-policies", map[string]any{
		"producer_id": producerA, "terms_and_conditions": terms,
	}, jsonType)
	assert.Equal(t, http.StatusConflict, code)
	assert.Contains(t, resp.Error, "already exist")

	code, resp = env.do(t, http.MethodGet, "/producers-policies/"+producerA, nil, "")
	assert.Equal(t, http.StatusOK, code)
	var details models.PoliciesDetails
	require.NoError(t, json.Unmarshal(resp.Data, &details))
	require.NotNil(t, details.Previews.TermsPreview)
	assert.Equal(t, "Términos y condiciones del servicio", *details.Previews.TermsPreview)
	assert.NotEmpty(t, details.RequestID)

	code, resp = env.do(t, http.MethodPut, "/producers-policies/"+producerA, `{"terms_and_conditions": null, "refund_policy": "Reembolsos hasta 48 horas antes"}`, jsonType)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Policies updated successfully", resp.Message)

	code, resp = env.do(t, http.MethodGet, "/producers-policies?has_refund=true", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Retrieved 1 policies", resp.Message)

	code, resp = env.do(t, http.MethodDelete, "/producers-policies/"+producerA, nil, "")
	assert.Equal(t, http.StatusOK, code)
	var deleted models.PoliciesDeleted
	require.NoError(t, json.Unmarshal(resp.Data, &deleted))
	assert.True(t, deleted.Deleted)
	assert.Equal(t, producerA, deleted.ProducerID)

	code, resp = env.do(t, http.MethodDelete, "/producers-policies/"+producerA, nil, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No policies found for producer "+producerA, resp.Error)
}

func TestPoliciesRequestChecks(t *testing.T) {
	env := setupRouter(t, false)

	code, resp := env.do(t, http.MethodPost, "/producers-policies", `{"producer_id":"x"}`, "text/plain")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Content-Type must be application/json", resp.Error)

	code, resp = env.do(t, http.MethodPost, "/producers-policies", `{"producer_id":`, jsonType)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Error, "Invalid JSON: ")

	code, resp = env.do(t, http.MethodGet, "/producers-policies/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid producer ID format", resp.Error)

	code, resp = env.do(t, http.MethodPut, "/producers-policies", `{}`, jsonType)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Producer ID is required in the URL path", resp.Error)

	code, resp = env.do(t, http.MethodPost, "/producers-policies", map[string]any{
		"producer_id": "7d444840-9dc0-4d1a-9c1f-0a3b1b6f2d11", "privacy_policy": terms,
	}, jsonType)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Contains(t, resp.Error, "does not exist")

	code, resp = env.do(t, http.MethodPost, "/producers-policies", map[string]any{"producer_id": producerB}, jsonType)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Validation failed", resp.Error)
}

func TestPoliciesUpsertAndStats(t *testing.T) {
	env := setupRouter(t, false)
	body := map[string]any{"producer_id": producerB, "privacy_policy": terms}

	code, resp := env.do(t, http.MethodPost, "/producers-policies/upsert", body, jsonType)
	assert.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Policies created successfully", resp.Message)

	code, resp = env.do(t, http.MethodPost, "/producers-policies/upsert", body, jsonType)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Policies updated successfully", resp.Message)

	code, resp = env.do(t, http.MethodGet, "/producers-policies/stats", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var stats models.PoliciesStats
	require.NoError(t, json.Unmarshal(resp.Data, &stats))
	assert.Equal(t, 2, stats.TotalProducers)
	assert.Equal(t, 1, stats.WithPrivacy)
	assert.Equal(t, "Policies completion: 0% (0/2 producers)", stats.Summary)

	code, resp = env.do(t, http.MethodGet, "/producers-policies/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Service is healthy", resp.Message)
}

func TestInternalErrorsAreHiddenInProduction(t *testing.T) {
	env := setupRouter(t, true)
	env.events.Err = errors.New("connection refused")

	code, resp := env.do(t, http.MethodGet, "/events", nil, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", resp.Error)
	assert.Empty(t, resp.Message)

	dev := setupRouter(t, false)
	dev.events.Err = errors.New("connection refused")
	code, resp = dev.do(t, http.MethodGet, "/events", nil, "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to list events", resp.Error)
	assert.Contains(t, resp.Message, "connection refused")
}

func TestHelpersAndHealth(t *testing.T) {
	env := setupRouter(t, false)

	code, resp := env.do(t, http.MethodGet, "/helpers/demo", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var demo helpersDemo
	require.NoError(t, json.Unmarshal(resp.Data, &demo))
	assert.Equal(t, "concierto-de-rock-en-bogota", demo.Formatters.Slug)
	assert.Equal(t, "300 123 4567", demo.Formatters.Phone)
	assert.Equal(t, "hace 1 horas", demo.Formatters.RelativeTime)
	assert.NotEmpty(t, demo.Auth.TempToken)
	assert.Len(t, demo.Crypto.RandomString, 12)

	code, resp = env.do(t, http.MethodGet, "/helpers/constants", nil, "")
	assert.Equal(t, http.StatusOK, code)
	var k AppConstants
	require.NoError(t, json.Unmarshal(resp.Data, &k))
	assert.Equal(t, "2.5", k.Tickets.Multipliers["vip"].String())
	assert.Contains(t, k.Events.Categories, "concert")

	code, resp = env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(resp.Data), `"database":"ok"`)
}
