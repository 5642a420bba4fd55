package format

import (
	"fmt"
	"math"
	"time"

	"hunttickets/internal/models"

	"github.com/shopspring/decimal"
)

const (
	PreviewLength = 200
	// LimitedThreshold is the occupancy percentage from which an event is
	// reported as having limited availability.
	LimitedThreshold = 80
)

var (
	DefaultTicketBasePrice = decimal.NewFromInt(50)

	ticketMultipliers = map[string]decimal.Decimal{
		models.TicketTypeRegular:   decimal.NewFromInt(1),
		models.TicketTypeVIP:       decimal.NewFromFloat(2.5),
		models.TicketTypeBackstage: decimal.NewFromInt(5),
	}
)

// OccupancyRate is current/capacity as a rounded percentage; 0 when capacity is 0.
func OccupancyRate(current, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(capacity) * 100))
}

func CapacityInfo(current, capacity int) models.CapacityInfo {
	available := capacity - current
	if available < 0 {
		available = 0
	}
	pct := OccupancyRate(current, capacity)

	status := "available"
	switch {
	case available == 0:
		status = "sold_out"
	case pct >= LimitedThreshold:
		status = "limited"
	}
	return models.CapacityInfo{Available: available, Percentage: pct, Status: status}
}

// DetermineEventStatus derives the status to display: past events are
// completed, full events are sold out, otherwise the stored status stands.
func DetermineEventStatus(ev *models.Event, now time.Time) string {
	if ev.EventDate.Before(now) {
		return models.EventStatusCompleted
	}
	if ev.CurrentCapacity >= ev.MaxCapacity {
		return models.EventStatusSoldOut
	}
	if ev.Status == "" {
		return models.EventStatusActive
	}
	return ev.Status
}

// TicketNumber - HUNT-000123
func TicketNumber(id int64) string {
	return fmt.Sprintf("HUNT-%06d", id)
}

// TicketPrice applies the ticket type multiplier; unknown types pay base.
func TicketPrice(ticketType string, base decimal.Decimal) decimal.Decimal {
	m, ok := ticketMultipliers[ticketType]
	if !ok {
		m = decimal.NewFromInt(1)
	}
	return base.Mul(m)
}

// PolicyPreview is a plain-text excerpt of at most PreviewLength runes.
func PolicyPreview(content *string) *string {
	if content == nil || *content == "" {
		return nil
	}
	s := PlainText(*content)
	r := []rune(s)
	if len(r) > PreviewLength {
		s = string(r[:PreviewLength-3]) + "..."
	}
	return &s
}

func CompletionRate(complete, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(complete) / float64(total) * 100))
}

func PoliciesSummary(complete, total int) string {
	return fmt.Sprintf("Policies completion: %d%% (%d/%d producers)", CompletionRate(complete, total), complete, total)
}
