package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"
	"hunttickets/internal/repository/repotest"
	"hunttickets/internal/security"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

const (
	producerA = "5f0c5a52-8f7e-4b8e-9d4c-2a6b4f1e9c31"
	producerB = "0b7e2a41-3c5d-4e6f-a718-293a4b5c6d7e"
)

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.err
}

type fakeCache struct {
	data        map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) GetStats(_ context.Context, resource string, dst any) (bool, error) {
	raw, ok := c.data[resource]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) SetStats(_ context.Context, resource string, stats any) error {
	raw, err := json.Marshal(stats)
	c.data[resource] = raw
	return err
}

func (c *fakeCache) InvalidateStats(_ context.Context, resource string) error {
	delete(c.data, resource)
	c.invalidated = append(c.invalidated, resource)
	return nil
}

type fakeSearch struct {
	ids     []int64
	err     error
	indexed []int64
	deleted []int64
}

func (s *fakeSearch) Search(context.Context, *models.EventFilters) ([]int64, error) {
	return s.ids, s.err
}

func (s *fakeSearch) IndexEvent(_ context.Context, ev *models.Event) error {
	s.indexed = append(s.indexed, ev.ID)
	return nil
}

func (s *fakeSearch) DeleteEvent(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func clock() time.Time { return testNow }

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func validEvent(title string) *models.CreateEventRequest {
	return &models.CreateEventRequest{
		Title:     title,
		EventDate: testNow.Add(72 * time.Hour).Format(time.RFC3339),
		Location:  "Teatro Colón, Bogotá",
	}
}

func TestEventCreateAppliesDefaults(t *testing.T) {
	pub := &fakePublisher{}
	cache := newFakeCache()
	search := &fakeSearch{}
	svc := NewEventService(repotest.NewEventStore(), Options{Publisher: pub, Cache: cache, Search: search, Now: clock})

	ev, err := svc.Create(context.Background(), validEvent("  Concierto  "))
	require.NoError(t, err)

	assert.Equal(t, "Concierto", ev.Title)
	assert.Equal(t, models.EventStatusActive, ev.Status)
	assert.Equal(t, 0, ev.CurrentCapacity)
	assert.Equal(t, models.DefaultMaxCapacity, ev.MaxCapacity)
	assert.Equal(t, models.CategoryGeneral, ev.Category)
	assert.True(t, ev.Price.IsZero())
	assert.NotNil(t, ev.Metadata)

	assert.Equal(t, []string{models.SubjectEventCreated}, pub.subjects)
	assert.Equal(t, []string{resourceEvents}, cache.invalidated)
	assert.Equal(t, []int64{ev.ID}, search.indexed)
}

func TestEventCreateValidation(t *testing.T) {
	svc := NewEventService(repotest.NewEventStore(), Options{Now: clock})

	req := validEvent("")
	req.EventDate = testNow.Add(-time.Hour).Format(time.RFC3339)
	req.MaxCapacity = intPtr(0)

	_, err := svc.Create(context.Background(), req)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Errors, "Title is required")
	assert.Contains(t, verr.Errors, "Event date must be in the future and valid")
	assert.Contains(t, verr.Errors, "Max capacity must be at least 1")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestEventGetDetails(t *testing.T) {
	store := repotest.NewEventStore()
	svc := NewEventService(store, Options{Now: clock})

	req := validEvent("Rock al Parque")
	req.MaxCapacity = intPtr(10)
	price := decimal.NewFromInt(50000)
	req.Price = &price
	ev, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	details, err := svc.Get(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "rock-al-parque", details.Slug)
	assert.Equal(t, "$\u00a050.000", details.FormattedPrice)
	assert.Equal(t, models.CapacityInfo{Available: 10, Percentage: 0, Status: "available"}, details.CapacityInfo)
	assert.Equal(t, models.EventStatusActive, details.ComputedStatus)

	_, err = svc.Get(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	msg, _ := apperrors.Message(err)
	assert.Equal(t, "Event not found", msg)
}

func TestEventUpdate(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEventService(repotest.NewEventStore(), Options{Publisher: pub, Now: clock})

	ev, err := svc.Create(context.Background(), validEvent("Obra"))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), ev.ID, &models.UpdateEventRequest{Category: strPtr("theater")})
	require.NoError(t, err)
	assert.Equal(t, "theater", updated.Category)
	assert.Equal(t, testNow, updated.UpdatedAt)

	_, err = svc.Update(context.Background(), ev.ID, &models.UpdateEventRequest{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Update(context.Background(), 404, &models.UpdateEventRequest{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.Equal(t, []string{models.SubjectEventCreated, models.SubjectEventUpdated}, pub.subjects)
}

func TestEventDeletePolicy(t *testing.T) {
	lenient := NewEventService(repotest.NewEventStore(), Options{Now: clock})
	assert.NoError(t, lenient.Delete(context.Background(), 42))

	strict := NewEventService(repotest.NewEventStore(), Options{Now: clock, StrictDeletes: true})
	assert.ErrorIs(t, strict.Delete(context.Background(), 42), apperrors.ErrNotFound)

	search := &fakeSearch{}
	svc := NewEventService(repotest.NewEventStore(), Options{Now: clock, Search: search})
	ev, err := svc.Create(context.Background(), validEvent("Borrar"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), ev.ID))
	assert.Equal(t, []int64{ev.ID}, search.deleted)

	_, err = svc.Get(context.Background(), ev.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventListSearchKeepsDateOrder(t *testing.T) {
	store := repotest.NewEventStore()
	search := &fakeSearch{}
	svc := NewEventService(store, Options{Now: clock, Search: search})

	var ids []int64
	for i, title := range []string{"Jazz uno", "Jazz dos", "Jazz tres"} {
		req := validEvent(title)
		req.EventDate = testNow.Add(time.Duration(3-i) * 24 * time.Hour).Format(time.RFC3339)
		ev, err := svc.Create(context.Background(), req)
		require.NoError(t, err)
		ids = append(ids, ev.ID)
	}

	// hits come back best match first, one of them already deleted
	search.ids = []int64{ids[0], 999, ids[2], ids[1]}
	events, err := svc.List(context.Background(), &models.EventFilters{Query: "jazz"})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []int64{ids[2], ids[1], ids[0]}, []int64{events[0].ID, events[1].ID, events[2].ID})

	fromStore, err := store.List(context.Background(), &models.EventFilters{})
	require.NoError(t, err)
	require.Len(t, fromStore, 3)
	for i := range events {
		assert.Equal(t, fromStore[i].ID, events[i].ID)
	}

	search.err = errors.New("cluster down")
	events, err = svc.List(context.Background(), &models.EventFilters{Query: "jazz"})
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestEventReconcileStatus(t *testing.T) {
	svc := NewEventService(repotest.NewEventStore(), Options{Now: clock})

	req := validEvent("Lleno")
	req.MaxCapacity = intPtr(2)
	ev, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	same, err := svc.ReconcileStatus(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusActive, same.Status)

	_, err = svc.Update(context.Background(), ev.ID, &models.UpdateEventRequest{CurrentCapacity: intPtr(2)})
	require.NoError(t, err)

	full, err := svc.ReconcileStatus(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusSoldOut, full.Status)

	_, err = svc.ReconcileStatus(context.Background(), 12345)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestEventStatsCached(t *testing.T) {
	cache := newFakeCache()
	svc := NewEventService(repotest.NewEventStore(), Options{Now: clock, Cache: cache})

	req := validEvent("Uno")
	price := decimal.RequireFromString("10.5")
	req.Price = &price
	ev, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), ev.ID, &models.UpdateEventRequest{CurrentCapacity: intPtr(4)})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, "42", stats.Revenue.String())
	assert.Contains(t, cache.data, resourceEvents)

	// a cached value is served until the next write
	cache.data[resourceEvents] = []byte(`{"total":99}`)
	stats, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 99, stats.Total)
}

func TestEventStatsOf(t *testing.T) {
	events := []models.Event{
		{Status: "active", Category: "concert", MaxCapacity: 100, CurrentCapacity: 50, Price: decimal.NewFromInt(20)},
		{Status: "sold_out", Category: "concert", MaxCapacity: 50, CurrentCapacity: 50, Price: decimal.NewFromInt(10)},
		{Status: "cancelled", Category: "sports", MaxCapacity: 50, CurrentCapacity: 0, Price: decimal.NewFromInt(99)},
		{Status: "postponed", Category: "festival", MaxCapacity: 0, CurrentCapacity: 0},
	}

	stats := EventStatsOf(events)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 1, stats.ByStatus["active"])
	assert.Equal(t, 0, stats.ByStatus["inactive"])
	assert.Equal(t, 1, stats.ByStatus["postponed"])
	assert.Equal(t, 2, stats.ByCategory["concert"])
	assert.Equal(t, 0, stats.ByCategory["theater"])
	assert.Equal(t, 1, stats.ByCategory["festival"])
	assert.Equal(t, 200, stats.TotalCapacity)
	assert.Equal(t, 100, stats.TotalSold)
	assert.True(t, decimal.NewFromInt(1500).Equal(stats.Revenue))
	assert.Equal(t, 50, stats.OccupancyRate)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]models.Event(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := EventStatsOf(shuffled)
		assert.Equal(t, stats.ByStatus, got.ByStatus)
		assert.Equal(t, stats.ByCategory, got.ByCategory)
		assert.True(t, stats.Revenue.Equal(got.Revenue))
	}

	empty := EventStatsOf(nil)
	assert.Equal(t, 0, empty.Total)
	assert.Len(t, empty.ByStatus, len(models.EventStatuses))
	assert.Equal(t, 0, empty.OccupancyRate)
}

func TestTicketStatsOf(t *testing.T) {
	tickets := []models.Ticket{
		{Status: "active", Metadata: models.TicketMetadata{TicketType: "vip"}},
		{Status: "active"},
		{Status: "used", Metadata: models.TicketMetadata{TicketType: "backstage"}},
		{Status: "cancelled", Metadata: models.TicketMetadata{TicketType: "golden"}},
	}

	stats := TicketStatsOf(tickets)
	assert.Equal(t, models.TicketStats{
		Total:    4,
		Active:   2,
		Inactive: 2,
		ByType:   map[string]int{"regular": 1, "vip": 1, "backstage": 1},
	}, stats)
}

func TestPoliciesStatsOf(t *testing.T) {
	text := "Texto suficiente"
	list := []models.ProducerPolicies{
		{TermsAndConditions: &text, PrivacyPolicy: &text, RefundPolicy: &text},
		{TermsAndConditions: &text},
	}

	stats := PoliciesStatsOf(list, 4)
	assert.Equal(t, 2, stats.WithTerms)
	assert.Equal(t, 1, stats.WithPrivacy)
	assert.Equal(t, 1, stats.CompletePolicies)
	assert.Equal(t, 1, stats.IncompletePolicies)
	assert.Equal(t, 25, stats.CompletionRate)
	assert.Equal(t, "Policies completion: 25% (1/4 producers)", stats.Summary)

	zero := PoliciesStatsOf(nil, 0)
	assert.Equal(t, 0, zero.CompletionRate)
}

func TestTicketCreateAndGet(t *testing.T) {
	signer, err := security.NewSigner("secret")
	require.NoError(t, err)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewTicketService(repotest.NewTicketStore(), Options{Signer: signer, Publisher: pub, Now: clock})

	eventID := int64(3)
	ticket, err := svc.Create(context.Background(), &models.CreateTicketRequest{
		Name:    "<b>Ana</b>",
		Email:   "ana@example.com",
		EventID: &eventID,
	})
	require.NoError(t, err, "publish failures do not fail the write")
	assert.Equal(t, "bAna/b", ticket.Name)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
	assert.Equal(t, models.TicketTypeRegular, ticket.Metadata.TicketType)
	assert.Equal(t, "api", ticket.Metadata.CreatedBy)

	details, err := svc.Get(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, "HUNT-000001", details.TicketNumber)

	qr, err := signer.DecodeTicketQR(details.QRData)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", qr.Email)
}

func TestTicketCreateRequiresEmail(t *testing.T) {
	svc := NewTicketService(repotest.NewTicketStore(), Options{Now: clock})

	_, err := svc.Create(context.Background(), &models.CreateTicketRequest{Name: "Ana"})
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Email is required"}, verr.Errors)
}

func TestTicketDeleteMissingIsLenient(t *testing.T) {
	svc := NewTicketService(repotest.NewTicketStore(), Options{Now: clock})
	assert.NoError(t, svc.Delete(context.Background(), 77))

	strict := NewTicketService(repotest.NewTicketStore(), Options{Now: clock, StrictDeletes: true})
	assert.ErrorIs(t, strict.Delete(context.Background(), 77), apperrors.ErrNotFound)
}

func TestTicketUpdate(t *testing.T) {
	svc := NewTicketService(repotest.NewTicketStore(), Options{Now: clock})
	ticket, err := svc.Create(context.Background(), &models.CreateTicketRequest{Name: "Ana", Email: "ana@example.com"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), ticket.ID, &models.UpdateTicketRequest{TicketType: strPtr("vip")})
	require.NoError(t, err)
	assert.Equal(t, "vip", updated.Metadata.TicketType)
	require.NotNil(t, updated.UpdatedAt)

	_, err = svc.Update(context.Background(), ticket.ID, &models.UpdateTicketRequest{Status: strPtr(" ")})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func policiesRequest(producerID string) *models.PoliciesRequest {
	terms := "<p>Términos y condiciones generales</p>"
	return &models.PoliciesRequest{ProducerID: producerID, TermsAndConditions: &terms}
}

func TestPoliciesCreateConflictAndMissingProducer(t *testing.T) {
	svc := NewPoliciesService(repotest.NewPoliciesStore(producerA), repotest.NewPoliciesStore(producerA), Options{Now: clock})

	_, err := svc.Create(context.Background(), policiesRequest(producerA))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), policiesRequest(producerA))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	msg, _ := apperrors.Message(err)
	assert.Contains(t, msg, "already exist")

	_, err = svc.Create(context.Background(), policiesRequest(producerB))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Create(context.Background(), &models.PoliciesRequest{ProducerID: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestPoliciesUpdateDeleteAndUpsert(t *testing.T) {
	store := repotest.NewPoliciesStore(producerA, producerB)
	svc := NewPoliciesService(store, store, Options{Now: clock})

	_, err := svc.Update(context.Background(), producerA, &models.PoliciesUpdate{
		RefundPolicy: models.NewOptionalString("Reembolsos en 30 días"),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	p, created, err := svc.Upsert(context.Background(), policiesRequest(producerA))
	require.NoError(t, err)
	assert.True(t, created)

	refund := "Reembolsos hasta 48 horas antes"
	req := &models.PoliciesRequest{ProducerID: producerA, RefundPolicy: &refund}
	p, created, err = svc.Upsert(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, p.TermsAndConditions, "upsert keeps texts it was not given")
	assert.Equal(t, refund, *p.RefundPolicy)

	p, err = svc.Update(context.Background(), producerA, &models.PoliciesUpdate{
		TermsAndConditions: models.OptionalString{Set: true},
	})
	require.NoError(t, err)
	assert.Nil(t, p.TermsAndConditions)

	details, err := svc.Get(context.Background(), producerA)
	require.NoError(t, err)
	assert.Nil(t, details.Previews.TermsPreview)
	require.NotNil(t, details.Previews.RefundPreview)
	require.NotNil(t, details.FormattedDates.UpdatedAt)

	require.NoError(t, svc.Delete(context.Background(), producerA))
	assert.ErrorIs(t, svc.Delete(context.Background(), producerA), apperrors.ErrNotFound)
}

func TestPoliciesStats(t *testing.T) {
	store := repotest.NewPoliciesStore(producerA, producerB)
	svc := NewPoliciesService(store, store, Options{Now: clock})

	_, err := svc.Create(context.Background(), policiesRequest(producerA))
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalProducers)
	assert.Equal(t, 1, stats.WithTerms)
	assert.Equal(t, 0, stats.CompletePolicies)
	assert.Equal(t, "Policies completion: 0% (0/2 producers)", stats.Summary)
}
