package service

import (
	"hunttickets/internal/format"
	"hunttickets/internal/models"

	"github.com/shopspring/decimal"
)

// EventStatsOf aggregates events in one pass. Every known status and
// category starts at zero; unknown values are counted as they appear.
func EventStatsOf(events []models.Event) models.EventStats {
	stats := models.EventStats{
		Total:      len(events),
		ByStatus:   make(map[string]int, len(models.EventStatuses)),
		ByCategory: make(map[string]int, len(models.EventCategories)),
		Revenue:    decimal.Zero,
	}
	for _, s := range models.EventStatuses {
		stats.ByStatus[s] = 0
	}
	for _, c := range models.EventCategories {
		stats.ByCategory[c] = 0
	}

	for i := range events {
		ev := &events[i]
		stats.ByStatus[ev.Status]++
		stats.ByCategory[ev.Category]++
		stats.TotalCapacity += ev.MaxCapacity
		stats.TotalSold += ev.CurrentCapacity
		stats.Revenue = stats.Revenue.Add(ev.Price.Mul(decimal.NewFromInt(int64(ev.CurrentCapacity))))
	}

	stats.OccupancyRate = format.OccupancyRate(stats.TotalSold, stats.TotalCapacity)
	return stats
}

// TicketStatsOf counts tickets; any status other than active is inactive and
// tickets without a type count as regular.
func TicketStatsOf(tickets []models.Ticket) models.TicketStats {
	stats := models.TicketStats{
		Total:  len(tickets),
		ByType: make(map[string]int, len(models.TicketTypes)),
	}
	for _, t := range models.TicketTypes {
		stats.ByType[t] = 0
	}

	for i := range tickets {
		t := &tickets[i]
		if t.Status == models.TicketStatusActive {
			stats.Active++
		} else {
			stats.Inactive++
		}

		ticketType := t.Metadata.TicketType
		if ticketType == "" {
			ticketType = models.TicketTypeRegular
		}
		if _, known := stats.ByType[ticketType]; known {
			stats.ByType[ticketType]++
		}
	}
	return stats
}

// PoliciesStatsOf counts populated policies against the number of producers.
func PoliciesStatsOf(policies []models.ProducerPolicies, totalProducers int) models.PoliciesStats {
	stats := models.PoliciesStats{TotalProducers: totalProducers}

	for i := range policies {
		p := &policies[i]
		if p.TermsAndConditions != nil && *p.TermsAndConditions != "" {
			stats.WithTerms++
		}
		if p.PrivacyPolicy != nil && *p.PrivacyPolicy != "" {
			stats.WithPrivacy++
		}
		if p.RefundPolicy != nil && *p.RefundPolicy != "" {
			stats.WithRefund++
		}
		if p.IsComplete() {
			stats.CompletePolicies++
		} else {
			stats.IncompletePolicies++
		}
	}

	stats.CompletionRate = format.CompletionRate(stats.CompletePolicies, totalProducers)
	stats.Summary = format.PoliciesSummary(stats.CompletePolicies, totalProducers)
	return stats
}
