package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/logger"
	"hunttickets/internal/middleware"
	"hunttickets/internal/models"
	"hunttickets/internal/security"
	"hunttickets/internal/service"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

type Handlers struct {
	services   *service.Services
	signer     *security.Signer
	checks     []HealthCheck
	production bool
	version    string
	startedAt  time.Time
	now        func() time.Time
}

type Options struct {
	// Signer backs the token samples of /helpers/demo.
	Signer *security.Signer
	// Checks are run by GET /health.
	Checks     []HealthCheck
	Production bool
	Version    string
	Now        func() time.Time
}

func NewHandlers(services *service.Services, opts Options) *Handlers {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	version := opts.Version
	if version == "" {
		version = service.TicketsVersion
	}
	return &Handlers{
		services:   services,
		signer:     opts.Signer,
		checks:     opts.Checks,
		production: opts.Production,
		version:    version,
		startedAt:  now(),
		now:        now,
	}
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, models.APIResponse{Success: true, Data: data, Message: message})
}

func respondList(c *gin.Context, data any, count int, message string) {
	c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: data, Count: &count, Message: message})
}

func respondError(c *gin.Context, status int, errMsg, message string, details []string) {
	c.JSON(status, models.APIResponse{Success: false, Error: errMsg, Message: message, Details: details})
}

// handleServiceError maps service errors onto the response envelope.
func (h *Handlers) handleServiceError(c *gin.Context, err error, fallback string) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		respondError(c, http.StatusBadRequest, verr.Message, strings.Join(verr.Errors, ", "), verr.Errors)
		return
	}

	msg, ok := apperrors.Message(err)
	switch {
	case ok && errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, msg, "", nil)
		return
	case ok && errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, msg, "", nil)
		return
	case ok && errors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, msg, "", nil)
		return
	case ok && errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, msg, "", nil)
		return
	}

	logger.WithRequestID(middleware.RequestIDFrom(c)).Error(fallback, "error", err, "path", c.Request.URL.Path)
	_ = c.Error(err)
	if h.production {
		respondError(c, http.StatusInternalServerError, internalErrorMessage, "", nil)
		return
	}
	respondError(c, http.StatusInternalServerError, fallback, err.Error(), nil)
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Route not found", "", nil)
}

// MethodNotAllowed answers known paths called with an unsupported method.
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, "Method not allowed", "", nil)
}

func joinErrors(errs []string) string {
	return strings.Join(errs, ", ")
}
