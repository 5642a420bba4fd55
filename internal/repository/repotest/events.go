// Package repotest provides in-memory stores with the same contract as the
// PostgreSQL repositories, for service and handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"
)

type EventStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Event
	now    func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

func NewEventStore() *EventStore {
	return &EventStore{rows: map[int64]models.Event{}, now: time.Now}
}

func (s *EventStore) Create(_ context.Context, ev *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	ev.ID = s.nextID
	ev.CreatedAt = s.now().UTC()
	ev.UpdatedAt = ev.CreatedAt
	if ev.Metadata == nil {
		ev.Metadata = models.JSONMap{}
	}
	s.rows[ev.ID] = *ev
	return nil
}

func (s *EventStore) GetByID(_ context.Context, id int64) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	ev, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func contains(field, q string) bool {
	return strings.Contains(strings.ToLower(field), strings.ToLower(q))
}

func (s *EventStore) List(_ context.Context, f *models.EventFilters) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Event{}
	for _, ev := range s.rows {
		switch {
		case f.Status != "" && ev.Status != f.Status,
			f.Category != "" && ev.Category != f.Category,
			f.Location != "" && !contains(ev.Location, f.Location),
			f.OrganizerID != "" && (ev.OrganizerID == nil || *ev.OrganizerID != f.OrganizerID),
			f.DateFrom != nil && ev.EventDate.Before(*f.DateFrom),
			f.DateTo != nil && ev.EventDate.After(*f.DateTo):
			continue
		}
		if f.Query != "" {
			desc := ""
			if ev.Description != nil {
				desc = *ev.Description
			}
			if !contains(ev.Title, f.Query) && !contains(desc, f.Query) && !contains(ev.Location, f.Query) {
				continue
			}
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].EventDate.Before(out[j].EventDate)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (s *EventStore) ListByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Event{}
	for _, id := range ids {
		if ev, ok := s.rows[id]; ok {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (s *EventStore) All(ctx context.Context) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Event, 0, len(s.rows))
	for _, ev := range s.rows {
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *EventStore) Update(_ context.Context, id int64, upd *models.EventUpdate, now time.Time) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	ev, ok := s.rows[id]
	if !ok {
		return nil, apperrors.NotFound("Event not found")
	}
	if upd.Title != nil {
		ev.Title = *upd.Title
	}
	if upd.Description.Set {
		ev.Description = upd.Description.Ptr()
	}
	if upd.EventDate != nil {
		ev.EventDate = *upd.EventDate
	}
	if upd.Location != nil {
		ev.Location = *upd.Location
	}
	if upd.MaxCapacity != nil {
		ev.MaxCapacity = *upd.MaxCapacity
	}
	if upd.CurrentCapacity != nil {
		ev.CurrentCapacity = *upd.CurrentCapacity
	}
	if upd.Price != nil {
		ev.Price = *upd.Price
	}
	if upd.Status != nil {
		ev.Status = *upd.Status
	}
	if upd.Category != nil {
		ev.Category = *upd.Category
	}
	if upd.OrganizerID != nil {
		ev.OrganizerID = upd.OrganizerID
	}
	if upd.Metadata != nil {
		ev.Metadata = upd.Metadata
	}
	ev.UpdatedAt = now
	s.rows[id] = ev
	return &ev, nil
}

func (s *EventStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[id]; !ok {
		return apperrors.NotFound("Event not found")
	}
	delete(s.rows, id)
	return nil
}

// page mirrors the LIMIT/OFFSET handling of the SQL stores.
func page[T any](rows []T, limit, offset *int) []T {
	l, o := models.Page(limit, offset)
	if o >= len(rows) {
		return []T{}
	}
	rows = rows[o:]
	if l > 0 && l < len(rows) {
		rows = rows[:l]
	}
	return rows
}
