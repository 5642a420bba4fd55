package consumers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hunttickets/internal/models"
	"hunttickets/internal/repository/repotest"
	"hunttickets/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var farFuture = time.Date(2099, 6, 1, 20, 0, 0, 0, time.UTC)

func seedEvents(t *testing.T, store *repotest.EventStore, events ...models.Event) {
	t.Helper()
	for i := range events {
		require.NoError(t, store.Create(context.Background(), &events[i]))
	}
}

func newEvents(t *testing.T) (*repotest.EventStore, *service.EventService) {
	t.Helper()
	store := repotest.NewEventStore()
	seedEvents(t, store,
		models.Event{Title: "Lleno", EventDate: farFuture, Location: "Bogotá", MaxCapacity: 10, CurrentCapacity: 10, Status: models.EventStatusActive},
		models.Event{Title: "Con cupo", EventDate: farFuture, Location: "Cali", MaxCapacity: 10, CurrentCapacity: 3, Status: models.EventStatusActive},
	)
	return store, service.NewEventService(store, service.Options{})
}

func activity(t *testing.T, ev models.ActivityEvent) []byte {
	t.Helper()
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return raw
}

func TestEventUpdatedMarksSoldOut(t *testing.T) {
	store, events := newEvents(t)
	h := NewHandlers(events)

	data := activity(t, models.ActivityEvent{Action: models.SubjectEventUpdated, ResourceID: "1", RequestID: "req-1"})
	require.NoError(t, h.process(models.SubjectEventUpdated, data, h.EventUpdated))

	ev, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusSoldOut, ev.Status)

	data = activity(t, models.ActivityEvent{Action: models.SubjectEventUpdated, ResourceID: "2"})
	require.NoError(t, h.process(models.SubjectEventUpdated, data, h.EventUpdated))
	ev, err = store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusActive, ev.Status)
}

func TestEventUpdatedEdgeCases(t *testing.T) {
	_, events := newEvents(t)
	h := NewHandlers(events)

	// deleted since publishing
	data := activity(t, models.ActivityEvent{ResourceID: "404"})
	assert.NoError(t, h.process(models.SubjectEventUpdated, data, h.EventUpdated))

	data = activity(t, models.ActivityEvent{ResourceID: "abc"})
	assert.ErrorIs(t, h.process(models.SubjectEventUpdated, data, h.EventUpdated), errSkip)

	assert.ErrorIs(t, h.process(models.SubjectEventUpdated, []byte("{not json"), h.EventUpdated), errSkip)
}

func TestEventUpdatedStoreFailureIsRetried(t *testing.T) {
	store, events := newEvents(t)
	h := NewHandlers(events)
	store.Err = assert.AnError

	data := activity(t, models.ActivityEvent{ResourceID: "1"})
	err := h.process(models.SubjectEventUpdated, data, h.EventUpdated)
	require.Error(t, err)
	assert.NotErrorIs(t, err, errSkip)
}

type fakeMsg struct {
	acks int
	err  error
}

func (m *fakeMsg) Ack() error {
	m.acks++
	return m.err
}

func TestHandleAcks(t *testing.T) {
	store, events := newEvents(t)
	h := NewHandlers(events)
	data := activity(t, models.ActivityEvent{ResourceID: "1"})

	msg := &fakeMsg{}
	assert.True(t, h.handle(models.SubjectEventUpdated, data, msg, h.EventUpdated))
	assert.Equal(t, 1, msg.acks)

	// unprocessable messages are acked and dropped
	msg = &fakeMsg{}
	assert.True(t, h.handle(models.SubjectEventUpdated, []byte("{not json"), msg, h.EventUpdated))
	assert.Equal(t, 1, msg.acks)

	// store failures stay unacked so the server redelivers them
	store.Err = assert.AnError
	msg = &fakeMsg{}
	assert.False(t, h.handle(models.SubjectEventUpdated, data, msg, h.EventUpdated))
	assert.Zero(t, msg.acks)

	store.Err = nil
	msg = &fakeMsg{err: assert.AnError}
	assert.False(t, h.handle(models.SubjectEventUpdated, data, msg, h.EventUpdated))
	assert.Equal(t, 1, msg.acks)
}

func TestAudit(t *testing.T) {
	h := NewHandlers(nil)
	data := activity(t, models.ActivityEvent{
		Action:     models.SubjectTicketCreated,
		ResourceID: "7",
		Details:    map[string]any{"email": "a***@example.com"},
	})
	assert.NoError(t, h.process(models.SubjectTicketCreated, data, h.Audit))
}

func TestStatusSweep(t *testing.T) {
	store, events := newEvents(t)
	job := NewStatusSweepJob(events, time.Minute)

	assert.Equal(t, 1, job.Sweep(context.Background()))
	assert.Equal(t, 0, job.Sweep(context.Background()))

	ev, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusSoldOut, ev.Status)
}

func TestStatusSweepStartStop(t *testing.T) {
	_, events := newEvents(t)
	job := NewStatusSweepJob(events, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	job.Start(ctx)
	job.Stop()
}
