package handlers

import (
	"net/http"
	"time"

	"hunttickets/internal/format"
	"hunttickets/internal/logger"
	"hunttickets/internal/models"
	"hunttickets/internal/security"
	"hunttickets/internal/service"
	"hunttickets/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	demoUUID   = "123e4567-e89b-12d3-a456-426614174000"
	demoUserID = "user123"
)

type helpersInfo struct {
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

type authDemo struct {
	SessionID   string `json:"session_id"`
	TempToken   string `json:"temp_token,omitempty"`
	IsValidUUID bool   `json:"is_valid_uuid"`
}

type cryptoDemo struct {
	SecureID     string `json:"secure_id"`
	RandomString string `json:"random_string"`
	Base64URL    string `json:"base64_url"`
}

type formattersDemo struct {
	Currency     string `json:"currency"`
	Date         string `json:"date"`
	RelativeTime string `json:"relative_time"`
	Phone        string `json:"phone"`
	MaskedEmail  string `json:"masked_email"`
	Slug         string `json:"slug"`
}

type helpersDemo struct {
	Auth       authDemo       `json:"auth"`
	Crypto     cryptoDemo     `json:"crypto"`
	Formatters formattersDemo `json:"formatters"`
}

// AppConstants is served by GET /helpers/constants.
type AppConstants struct {
	APIVersion string `json:"api_version"`
	Currency   string `json:"currency"`
	Events     struct {
		Categories         []string `json:"categories"`
		Statuses           []string `json:"statuses"`
		DefaultMaxCapacity int      `json:"default_max_capacity"`
	} `json:"events"`
	Tickets struct {
		Types                []string                   `json:"types"`
		DefaultStatus        string                     `json:"default_status"`
		BasePrice            decimal.Decimal            `json:"base_price"`
		Multipliers          map[string]decimal.Decimal `json:"multipliers"`
		MaxTicketsPerRequest int                        `json:"max_tickets_per_request"`
	} `json:"tickets"`
	Policies struct {
		MinLength     int `json:"min_length"`
		MaxLength     int `json:"max_length"`
		PreviewLength int `json:"preview_length"`
	} `json:"policies"`
}

func (h *Handlers) constants() AppConstants {
	var k AppConstants
	k.APIVersion = h.version
	k.Currency = format.DefaultCurrency

	k.Events.Categories = models.EventCategories
	k.Events.Statuses = models.EventStatuses
	k.Events.DefaultMaxCapacity = models.DefaultMaxCapacity

	k.Tickets.Types = models.TicketTypes
	k.Tickets.DefaultStatus = models.TicketStatusActive
	k.Tickets.BasePrice = format.DefaultTicketBasePrice
	k.Tickets.Multipliers = make(map[string]decimal.Decimal, len(models.TicketTypes))
	for _, t := range models.TicketTypes {
		k.Tickets.Multipliers[t] = format.TicketPrice(t, decimal.NewFromInt(1))
	}
	k.Tickets.MaxTicketsPerRequest = service.MaxTicketsPerRequest

	k.Policies.MinLength = validation.MinPolicyLength
	k.Policies.MaxLength = validation.MaxPolicyLength
	k.Policies.PreviewLength = format.PreviewLength
	return k
}

// HelpersInfo - GET /helpers/info
func (h *Handlers) HelpersInfo(c *gin.Context) {
	respond(c, http.StatusOK, helpersInfo{
		Version: h.version,
		Endpoints: map[string]string{
			"/demo":      "Demonstrations of all helper functions",
			"/constants": "Application constants",
		},
	}, "Hunt Tickets Helper Functions API")
}

// HelpersDemo - GET /helpers/demo
func (h *Handlers) HelpersDemo(c *gin.Context) {
	now := h.now()

	random, err := security.RandomString(12)
	if err != nil {
		h.handleServiceError(c, err, "Failed to build helpers demo")
		return
	}

	demo := helpersDemo{
		Auth: authDemo{
			SessionID:   security.NewSessionID(now),
			IsValidUUID: validation.IsUUIDv4(demoUUID),
		},
		Crypto: cryptoDemo{
			SecureID:     security.NewSecureID("ticket"),
			RandomString: random,
			Base64URL:    security.EncodeBase64URL([]byte("Hunt Tickets Demo")),
		},
		Formatters: formattersDemo{
			Currency:     format.Currency(decimal.NewFromInt(50000), format.DefaultCurrency),
			Date:         format.Date(now),
			RelativeTime: format.RelativeTime(now.Add(-time.Hour), now),
			Phone:        format.Phone("3001234567"),
			MaskedEmail:  format.MaskEmail("user@hunt-tickets.com"),
			Slug:         format.Slugify("Concierto de Rock en Bogotá"),
		},
	}

	if h.signer != nil {
		token, err := h.signer.IssueTempToken(demoUserID, time.Hour)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("Failed to issue demo token", "error", err)
		} else {
			demo.Auth.TempToken = token
		}
	}

	respond(c, http.StatusOK, demo, "")
}

// HelpersConstants - GET /helpers/constants
func (h *Handlers) HelpersConstants(c *gin.Context) {
	respond(c, http.StatusOK, h.constants(), "")
}
