package validation

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"hunttickets/internal/models"
)

// queryParser collects conversion failures while reading list parameters.
// Unknown parameters are ignored.
type queryParser struct {
	q    url.Values
	errs []string
}

func (p *queryParser) int(key, msg string) *int {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, msg)
		return nil
	}
	return &v
}

func (p *queryParser) int64(key, msg string) *int64 {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		p.errs = append(p.errs, msg)
		return nil
	}
	return &v
}

func (p *queryParser) date(key string) *time.Time {
	raw := strings.TrimSpace(p.q.Get(key))
	if raw == "" {
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		p.errs = append(p.errs, "Invalid "+key+" format")
		return nil
	}
	return &t
}

// flag follows the literal "true" convention: any other present value is false.
func (p *queryParser) flag(key string) *bool {
	if !p.q.Has(key) {
		return nil
	}
	v := p.q.Get(key) == "true"
	return &v
}

// ParseEventFilters reads and validates the GET /events query string.
func ParseEventFilters(q url.Values) (*models.EventFilters, Result) {
	p := &queryParser{q: q}
	f := &models.EventFilters{
		Status:      q.Get("status"),
		Category:    q.Get("category"),
		Location:    strings.TrimSpace(q.Get("location")),
		OrganizerID: q.Get("organizer_id"),
		Query:       strings.TrimSpace(q.Get("q")),
		DateFrom:    p.date("date_from"),
		DateTo:      p.date("date_to"),
		Limit:       p.int("limit", "Limit must be a positive integer"),
		Offset:      p.int("offset", "Offset must be a non-negative integer"),
	}
	res := ValidateEventFilters(f)
	return f, merge(p.errs, res)
}

// ParseTicketFilters reads and validates the GET /tickets query string.
func ParseTicketFilters(q url.Values) (*models.TicketFilters, Result) {
	p := &queryParser{q: q}
	f := &models.TicketFilters{
		Status:     q.Get("status"),
		TicketType: q.Get("ticket_type"),
		EventID:    p.int64("event_id", "Event ID must be a positive integer"),
		Limit:      p.int("limit", "Limit must be a positive integer"),
		Offset:     p.int("offset", "Offset must be a non-negative integer"),
	}
	res := ValidateTicketFilters(f)
	return f, merge(p.errs, res)
}

// ParsePoliciesFilters reads and validates the GET /producers-policies query string.
func ParsePoliciesFilters(q url.Values) (*models.PoliciesFilters, Result) {
	p := &queryParser{q: q}
	f := &models.PoliciesFilters{
		ProducerID: strings.TrimSpace(q.Get("producer_id")),
		HasTerms:   p.flag("has_terms"),
		HasPrivacy: p.flag("has_privacy"),
		HasRefund:  p.flag("has_refund"),
		Limit:      p.int("limit", "Limit must be a positive integer between 1 and 1000"),
		Offset:     p.int("offset", "Offset must be a non-negative integer"),
	}
	res := ValidatePoliciesFilters(f)
	return f, merge(p.errs, res)
}

func merge(parseErrs []string, res Result) Result {
	if len(parseErrs) == 0 {
		return res
	}
	return newResult(append(parseErrs, res.Errors...))
}
