package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"
)

type TicketStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Ticket
	now    func() time.Time

	Err error
}

func NewTicketStore() *TicketStore {
	return &TicketStore{rows: map[int64]models.Ticket{}, now: time.Now}
}

func (s *TicketStore) Create(_ context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.nextID++
	t.ID = s.nextID
	t.CreatedAt = s.now().UTC()
	s.rows[t.ID] = *t
	return nil
}

func (s *TicketStore) GetByID(_ context.Context, id int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *TicketStore) List(_ context.Context, f *models.TicketFilters) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.Ticket{}
	for _, t := range s.rows {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.TicketType != "" && t.Metadata.TicketType != f.TicketType {
			continue
		}
		if f.EventID != nil && (t.Metadata.EventID == nil || *t.Metadata.EventID != *f.EventID) {
			continue
		}
		out = append(out, t)
	}
	sortNewestFirst(out)
	return page(out, f.Limit, f.Offset), nil
}

func (s *TicketStore) All(_ context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Ticket, 0, len(s.rows))
	for _, t := range s.rows {
		out = append(out, t)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(rows []models.Ticket) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].ID > rows[j].ID
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
}

func (s *TicketStore) Update(_ context.Context, id int64, upd *models.UpdateTicketRequest, now time.Time) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	t, ok := s.rows[id]
	if !ok {
		return nil, apperrors.NotFound("Ticket not found")
	}
	if upd.Name != nil {
		t.Name = *upd.Name
	}
	if upd.Email != nil {
		t.Email = *upd.Email
	}
	if upd.Phone != nil {
		t.Phone = upd.Phone
	}
	if upd.Status != nil {
		t.Status = *upd.Status
	}
	if upd.EventID != nil {
		t.Metadata.EventID = upd.EventID
	}
	if upd.TicketType != nil {
		t.Metadata.TicketType = *upd.TicketType
	}
	t.UpdatedAt = &now
	s.rows[id] = t
	return &t, nil
}

func (s *TicketStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[id]; !ok {
		return apperrors.NotFound("Ticket not found")
	}
	delete(s.rows, id)
	return nil
}
