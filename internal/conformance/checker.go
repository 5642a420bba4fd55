// Package conformance exercises a running API and reports every endpoint
// that does not answer with the documented status and envelope.
package conformance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hunttickets/internal/models"
)

// Checker drives the API over HTTP.
type Checker struct {
	baseURL    string
	apiKey     string
	producerID string
	client     *http.Client
}

type Option func(*Checker)

// WithAPIKey sends key in the apikey header.
func WithAPIKey(key string) Option {
	return func(c *Checker) { c.apiKey = key }
}

// WithProducer enables the policies lifecycle checks against an existing
// producer that has no policies yet.
func WithProducer(id string) Option {
	return func(c *Checker) { c.producerID = id }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

func NewChecker(baseURL string, opts ...Option) *Checker {
	c := &Checker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of one named check.
type Result struct {
	Name string
	Err  error
}

// Report lists every check in execution order.
type Report struct {
	Results []Result
}

func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the failures, nil when every check passed.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Name, res.Err))
	}
	return errors.Join(errs...)
}

// CheckAll runs the suites in order. A suite stops at its first failure;
// later suites still run.
func (c *Checker) CheckAll(ctx context.Context) *Report {
	report := &Report{}
	suites := []struct {
		name string
		run  func(context.Context) error
	}{
		{"routing", c.checkRouting},
		{"events", c.checkEvents},
		{"tickets", c.checkTickets},
		{"producers-policies", c.checkPolicies},
		{"helpers", c.checkHelpers},
	}

	for _, s := range suites {
		err := s.run(ctx)
		if err != nil {
			slog.Error("Conformance suite failed", "suite", s.name, "error", err)
		} else {
			slog.Info("Conformance suite passed", "suite", s.name)
		}
		report.Results = append(report.Results, Result{Name: s.name, Err: err})
	}
	return report
}

type response struct {
	status int
	header http.Header
	raw    []byte
	body   models.APIResponse
	data   json.RawMessage
}

func (c *Checker) do(ctx context.Context, method, path string, body any) (*response, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: failed to read body: %w", method, path, err)
	}

	out := &response{status: resp.StatusCode, header: resp.Header, raw: raw}
	if method != http.MethodOptions {
		var envelope struct {
			models.APIResponse
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%s %s: response is not an envelope: %w", method, path, err)
		}
		out.body = envelope.APIResponse
		out.data = envelope.Data
	}
	return out, nil
}

// expect performs the request and checks the status and success flag.
func (c *Checker) expect(ctx context.Context, method, path string, body any, status int) (*response, error) {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.status != status {
		return resp, fmt.Errorf("%s %s: expected %d, got %d (%s)", method, path, status, resp.status, resp.raw)
	}
	if method != http.MethodOptions && resp.body.Success != (status < http.StatusBadRequest) {
		return resp, fmt.Errorf("%s %s: success flag does not match status %d", method, path, status)
	}
	return resp, nil
}

func (c *Checker) expectError(ctx context.Context, method, path string, body any, status int, errMsg string) error {
	resp, err := c.expect(ctx, method, path, body, status)
	if err != nil {
		return err
	}
	if !strings.Contains(resp.body.Error, errMsg) {
		return fmt.Errorf("%s %s: expected error %q, got %q", method, path, errMsg, resp.body.Error)
	}
	return nil
}

func (c *Checker) checkRouting(ctx context.Context) error {
	resp, err := c.expect(ctx, http.MethodOptions, "/events", nil, http.StatusOK)
	if err != nil {
		return err
	}
	if string(resp.raw) != "ok" || resp.header.Get("Access-Control-Allow-Origin") != "*" {
		return fmt.Errorf("OPTIONS /events: unexpected preflight answer %q", resp.raw)
	}

	if err := c.expectError(ctx, http.MethodGet, "/no-such-route", nil, http.StatusNotFound, "Route not found"); err != nil {
		return err
	}
	return c.expectError(ctx, http.MethodPatch, "/events", nil, http.StatusMethodNotAllowed, "Method not allowed")
}

func (c *Checker) checkEvents(ctx context.Context) error {
	create := map[string]any{
		"title":        "Conformance check",
		"event_date":   time.Now().Add(30 * 24 * time.Hour).UTC().Format(time.RFC3339),
		"location":     "Bogotá",
		"max_capacity": 100,
		"price":        50000,
		"category":     models.CategoryConcert,
	}
	resp, err := c.expect(ctx, http.MethodPost, "/events", create, http.StatusCreated)
	if err != nil {
		return err
	}
	var ev models.Event
	if err := json.Unmarshal(resp.data, &ev); err != nil {
		return fmt.Errorf("POST /events: failed to decode event: %w", err)
	}
	if ev.ID == 0 || ev.Status != models.EventStatusActive || ev.CurrentCapacity != 0 {
		return fmt.Errorf("POST /events: unexpected defaults id=%d status=%q current=%d", ev.ID, ev.Status, ev.CurrentCapacity)
	}
	path := "/events/" + strconv.FormatInt(ev.ID, 10)

	if err := c.expectError(ctx, http.MethodPost, "/events", map[string]any{"title": ""}, http.StatusBadRequest, "Validation failed"); err != nil {
		return err
	}

	resp, err = c.expect(ctx, http.MethodGet, "/events", nil, http.StatusOK)
	if err != nil {
		return err
	}
	if resp.body.Count == nil || *resp.body.Count == 0 {
		return errors.New("GET /events: expected a non-empty count")
	}

	resp, err = c.expect(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return err
	}
	var details models.EventDetails
	if err := json.Unmarshal(resp.data, &details); err != nil {
		return fmt.Errorf("GET %s: failed to decode details: %w", path, err)
	}
	if details.Slug != "conformance-check" {
		return fmt.Errorf("GET %s: unexpected slug %q", path, details.Slug)
	}

	for _, step := range []struct {
		method, path string
		body         any
		status       int
	}{
		{http.MethodGet, "/events/stats", nil, http.StatusOK},
		{http.MethodPut, path, map[string]any{"current_capacity": 10}, http.StatusOK},
		{http.MethodGet, "/events/not-a-number", nil, http.StatusBadRequest},
		{http.MethodDelete, path, nil, http.StatusOK},
		{http.MethodGet, path, nil, http.StatusNotFound},
	} {
		if _, err := c.expect(ctx, step.method, step.path, step.body, step.status); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkTickets(ctx context.Context) error {
	if err := c.expectError(ctx, http.MethodPost, "/tickets", map[string]any{"name": "Sin correo"}, http.StatusBadRequest, "Validation failed"); err != nil {
		return err
	}

	resp, err := c.expect(ctx, http.MethodPost, "/tickets", map[string]any{
		"name": "Conformance", "email": "conformance@example.com", "ticket_type": models.TicketTypeVIP,
	}, http.StatusCreated)
	if err != nil {
		return err
	}
	var t models.Ticket
	if err := json.Unmarshal(resp.data, &t); err != nil {
		return fmt.Errorf("POST /tickets: failed to decode ticket: %w", err)
	}
	path := "/tickets/" + strconv.FormatInt(t.ID, 10)

	resp, err = c.expect(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return err
	}
	var details models.TicketDetails
	if err := json.Unmarshal(resp.data, &details); err != nil {
		return fmt.Errorf("GET %s: failed to decode details: %w", path, err)
	}
	if !strings.HasPrefix(details.TicketNumber, "HUNT-") {
		return fmt.Errorf("GET %s: unexpected ticket number %q", path, details.TicketNumber)
	}

	for _, p := range []string{"/tickets", "/tickets/stats", "/tickets/config"} {
		if _, err := c.expect(ctx, http.MethodGet, p, nil, http.StatusOK); err != nil {
			return err
		}
	}
	if _, err := c.expect(ctx, http.MethodDelete, path, nil, http.StatusOK); err != nil {
		return err
	}
	return nil
}

func (c *Checker) checkPolicies(ctx context.Context) error {
	for _, p := range []string{"/producers-policies/health", "/producers-policies/stats", "/producers-policies"} {
		if _, err := c.expect(ctx, http.MethodGet, p, nil, http.StatusOK); err != nil {
			return err
		}
	}
	if err := c.expectError(ctx, http.MethodGet, "/producers-policies/not-a-uuid", nil, http.StatusBadRequest, "Invalid producer ID format"); err != nil {
		return err
	}
	if err := c.expectError(ctx, http.MethodDelete, "/producers-policies", nil, http.StatusBadRequest, "Producer ID is required"); err != nil {
		return err
	}

	if c.producerID == "" {
		slog.Info("Skipping policies lifecycle, no producer configured")
		return nil
	}

	path := "/producers-policies/" + c.producerID
	create := map[string]any{
		"producer_id":          c.producerID,
		"terms_and_conditions": "<p>Términos de prueba de conformidad</p>",
	}
	if _, err := c.expect(ctx, http.MethodPost, "/producers-policies", create, http.StatusCreated); err != nil {
		return err
	}
	if err := c.expectError(ctx, http.MethodPost, "/producers-policies", create, http.StatusConflict, "already exist"); err != nil {
		return err
	}
	if _, err := c.expect(ctx, http.MethodGet, path, nil, http.StatusOK); err != nil {
		return err
	}
	if _, err := c.expect(ctx, http.MethodPut, path, map[string]any{"privacy_policy": "Política de privacidad de prueba"}, http.StatusOK); err != nil {
		return err
	}
	if _, err := c.expect(ctx, http.MethodDelete, path, nil, http.StatusOK); err != nil {
		return err
	}
	return c.expectError(ctx, http.MethodDelete, path, nil, http.StatusNotFound, "No policies found")
}

func (c *Checker) checkHelpers(ctx context.Context) error {
	for _, p := range []string{"/helpers/info", "/helpers/demo", "/helpers/constants"} {
		if _, err := c.expect(ctx, http.MethodGet, p, nil, http.StatusOK); err != nil {
			return err
		}
	}
	return nil
}
