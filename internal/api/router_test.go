package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hunttickets/internal/handlers"
	"hunttickets/internal/models"
	"hunttickets/internal/repository/repotest"
	"hunttickets/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const producerID = "5f0c5a52-8f7e-4b8e-9d4c-2a6b4f1e9c31"

func newTestRouter(rc RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	policies := repotest.NewPoliciesStore(producerID)
	services := &service.Services{
		Events:   service.NewEventService(repotest.NewEventStore(), service.Options{}),
		Tickets:  service.NewTicketService(repotest.NewTicketStore(), service.Options{}),
		Policies: service.NewPoliciesService(policies, policies, service.Options{}),
	}
	return NewRouter(handlers.NewHandlers(services, handlers.Options{}), rc)
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestRouteAliases(t *testing.T) {
	r := newTestRouter(RouterConfig{})

	for _, path := range []string{
		"/events", "/events/", "/events/events", "/events/stats",
		"/tickets", "/tickets/", "/tickets/tickets", "/tickets/stats", "/tickets/config",
		"/producers-policies", "/producers-policies/", "/producers-policies/stats",
		"/producers-policies/statistics", "/producers-policies/health", "/producers-policies/ping",
		"/helpers", "/helpers/info", "/helpers/demo", "/helpers/constants",
		"/health",
	} {
		w := serve(r, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), path)
	}

	w := serve(r, http.MethodGet, "/producers-policies/producers-policies/"+producerID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No policies found for producer "+producerID, decode(t, w).Error)
}

func TestMissingIDs(t *testing.T) {
	r := newTestRouter(RouterConfig{})

	w := serve(r, http.MethodDelete, "/producers-policies", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Producer ID is required in the URL path", decode(t, w).Error)

	w = serve(r, http.MethodPut, "/events/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Event ID is required", decode(t, w).Error)

	w = serve(r, http.MethodDelete, "/tickets", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	r := newTestRouter(RouterConfig{})

	w := serve(r, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, "Route not found", resp.Error)

	w = serve(r, http.MethodPatch, "/events", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", decode(t, w).Error)
}

func TestPreflight(t *testing.T) {
	r := newTestRouter(RouterConfig{APIKeys: []string{"secret"}})

	for _, path := range []string{"/events", "/producers-policies/" + producerID, "/anything"} {
		w := serve(r, http.MethodOptions, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "ok", w.Body.String(), path)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"), path)
	}
}

func TestAPIKeysGuardResources(t *testing.T) {
	r := newTestRouter(RouterConfig{APIKeys: []string{"secret"}})

	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/events", nil).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/events", map[string]string{"apikey": "secret"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/tickets", map[string]string{"Authorization": "Bearer secret"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)
}

func TestBasePath(t *testing.T) {
	r := newTestRouter(RouterConfig{BasePath: "/functions/v1"})

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/functions/v1/events", nil).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/events", nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(RouterConfig{})
	serve(r, http.MethodGet, "/events", nil)

	w := serve(r, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `hunt_tickets_http_requests_total{method="GET",path="/events",status="200"}`))
}
