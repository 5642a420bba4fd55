package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hunttickets/internal/logger"
	"hunttickets/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": RequestIDFrom(c),
			"ctx_id":     logger.RequestIDFromContext(c.Request.Context()),
		})
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/slow", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		c.JSON(http.StatusOK, gin.H{"deadline": ok})
	})
	return r
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(CORS())

	rec := do(r, http.MethodOptions, "/anything", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = do(r, http.MethodGet, "/ping", nil)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	rec := do(r, http.MethodGet, "/ping", map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "req-123", body["request_id"])
	assert.Equal(t, "req-123", body["ctx_id"])

	rec = do(r, http.MethodGet, "/ping", nil)
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)
}

func TestRecoveryEnvelope(t *testing.T) {
	logger.InitWriter(&discard{}, "error", "json")
	r := newRouter(RequestID(), Recovery())

	rec := do(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "Internal server error", resp.Error)
}

func TestAPIKeyAuth(t *testing.T) {
	logger.InitWriter(&discard{}, "error", "json")

	open := newRouter(APIKeyAuth(nil))
	assert.Equal(t, http.StatusOK, do(open, http.MethodGet, "/ping", nil).Code)

	r := newRouter(APIKeyAuth([]string{"k1", "k2"}))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/ping", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/ping", map[string]string{"apikey": "nope"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", map[string]string{"apikey": "k2"}).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/ping", map[string]string{"Authorization": "Bearer k1"}).Code)
}

func TestTimeout(t *testing.T) {
	r := newRouter(Timeout(time.Second))
	assert.JSONEq(t, `{"deadline":true}`, do(r, http.MethodGet, "/slow", nil).Body.String())

	r = newRouter(Timeout(0))
	assert.JSONEq(t, `{"deadline":false}`, do(r, http.MethodGet, "/slow", nil).Body.String())
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
