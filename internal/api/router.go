package api

import (
	"time"

	"hunttickets/internal/handlers"
	"hunttickets/internal/metrics"
	"hunttickets/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RouterConfig holds the HTTP level settings of the API.
type RouterConfig struct {
	BasePath       string
	APIKeys        []string
	RequestTimeout time.Duration
}

// NewRouter builds the gin engine with the middleware chain and every route.
func NewRouter(h *handlers.Handlers, rc RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(metrics.Middleware())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(rc.RequestTimeout))

	router.NoRoute(handlers.NotFound)
	router.NoMethod(handlers.MethodNotAllowed)

	router.GET("/health", h.Health)
	router.GET("/metrics", metrics.Handler())

	base := router.Group(rc.BasePath)
	base.Use(middleware.APIKeyAuth(rc.APIKeys))

	events := base.Group("/events")
	{
		for _, p := range []string{"", "/", "/events"} {
			events.GET(p, h.ListEvents)
		}
		events.GET("/stats", h.EventStats)
		events.GET("/:id", h.GetEvent)
		events.POST("", h.CreateEvent)
		events.POST("/", h.CreateEvent)
		events.PUT("/:id", h.UpdateEvent)
		events.DELETE("/:id", h.DeleteEvent)
		for _, p := range []string{"", "/"} {
			events.PUT(p, h.EventIDRequired)
			events.DELETE(p, h.EventIDRequired)
		}
	}

	tickets := base.Group("/tickets")
	{
		for _, p := range []string{"", "/", "/tickets"} {
			tickets.GET(p, h.ListTickets)
		}
		tickets.GET("/stats", h.TicketStats)
		tickets.GET("/config", h.TicketConfig)
		tickets.GET("/:id", h.GetTicket)
		tickets.POST("", h.CreateTicket)
		tickets.POST("/", h.CreateTicket)
		tickets.PUT("/:id", h.UpdateTicket)
		tickets.DELETE("/:id", h.DeleteTicket)
		for _, p := range []string{"", "/"} {
			tickets.PUT(p, h.TicketIDRequired)
			tickets.DELETE(p, h.TicketIDRequired)
		}
	}

	policies := base.Group("/producers-policies")
	{
		policies.GET("", h.ListPolicies)
		policies.GET("/", h.ListPolicies)
		policies.GET("/stats", h.PoliciesStats)
		policies.GET("/statistics", h.PoliciesStats)
		policies.GET("/health", h.PoliciesHealth)
		policies.GET("/ping", h.PoliciesHealth)
		policies.GET("/:producer_id", h.GetPolicies)
		policies.GET("/producers-policies/:producer_id", h.GetPolicies)
		policies.POST("", h.CreatePolicies)
		policies.POST("/", h.CreatePolicies)
		policies.POST("/upsert", h.UpsertPolicies)
		policies.PUT("/:producer_id", h.UpdatePolicies)
		policies.DELETE("/:producer_id", h.DeletePolicies)
		for _, p := range []string{"", "/"} {
			policies.PUT(p, h.ProducerIDRequired)
			policies.DELETE(p, h.ProducerIDRequired)
		}
	}

	helpers := base.Group("/helpers")
	{
		for _, p := range []string{"", "/", "/info"} {
			helpers.GET(p, h.HelpersInfo)
		}
		helpers.GET("/demo", h.HelpersDemo)
		helpers.GET("/constants", h.HelpersConstants)
	}

	return router
}
