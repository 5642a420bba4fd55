package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/format"
	"hunttickets/internal/logger"
	"hunttickets/internal/models"
	"hunttickets/internal/validation"
)

type EventStore interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	List(ctx context.Context, f *models.EventFilters) ([]models.Event, error)
	ListByIDs(ctx context.Context, ids []int64) ([]models.Event, error)
	All(ctx context.Context) ([]models.Event, error)
	Update(ctx context.Context, id int64, upd *models.EventUpdate, now time.Time) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}

type EventService struct {
	store         EventStore
	search        EventSearcher
	strictDeletes bool
	notifier
}

func NewEventService(store EventStore, opts Options) *EventService {
	return &EventService{
		store:         store,
		search:        opts.Search,
		strictDeletes: opts.StrictDeletes,
		notifier:      newNotifier(opts),
	}
}

// List returns events ordered by date. A free-text query goes to the search
// index when one is configured and falls back to the store otherwise; both
// paths return the same order.
func (s *EventService) List(ctx context.Context, f *models.EventFilters) ([]models.Event, error) {
	if f.Query != "" && s.search != nil {
		events, err := s.searchEvents(ctx, f)
		if err == nil {
			return events, nil
		}
		logger.WithContext(ctx).Warn("Event search failed, falling back to database", "error", err)
	}

	events, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *EventService) searchEvents(ctx context.Context, f *models.EventFilters) ([]models.Event, error) {
	ids, err := s.search.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Event, len(rows))
	for _, ev := range rows {
		byID[ev.ID] = ev
	}
	// ids deleted since indexing are skipped
	events := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		if ev, ok := byID[id]; ok {
			events = append(events, ev)
		}
	}
	sortByEventDate(events)
	return events, nil
}

// sortByEventDate applies the listing order of the store: event_date, then id.
func sortByEventDate(events []models.Event) {
	slices.SortStableFunc(events, func(a, b models.Event) int {
		if c := a.EventDate.Compare(b.EventDate); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.EventDetails, error) {
	ev, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if ev == nil {
		return nil, apperrors.NotFound("Event not found")
	}
	return s.details(ev), nil
}

func (s *EventService) details(ev *models.Event) *models.EventDetails {
	return &models.EventDetails{
		Event:          *ev,
		Slug:           format.Slugify(ev.Title),
		FormattedDate:  format.Date(ev.EventDate),
		FormattedPrice: format.Currency(ev.Price, format.DefaultCurrency),
		CapacityInfo:   format.CapacityInfo(ev.CurrentCapacity, ev.MaxCapacity),
		ComputedStatus: format.DetermineEventStatus(ev, s.now()),
	}
}

func (s *EventService) Stats(ctx context.Context) (*models.EventStats, error) {
	var stats models.EventStats
	err := s.cachedStats(ctx, resourceEvents, &stats, func() error {
		events, err := s.store.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to load events for stats: %w", err)
		}
		stats = EventStatsOf(events)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	if res := validation.ValidateEventCreate(req, s.now()); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}

	ev, err := validation.SanitizeEventCreate(req)
	if err != nil {
		return nil, apperrors.NewValidationError([]string{"Event date must be in the future and valid"})
	}

	if err := s.store.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.index(ctx, ev)
	s.emit(ctx, models.SubjectEventCreated, strconv.FormatInt(ev.ID, 10), map[string]any{"title": ev.Title})
	s.invalidate(ctx, resourceEvents)
	return ev, nil
}

func (s *EventService) Update(ctx context.Context, id int64, req *models.UpdateEventRequest) (*models.Event, error) {
	if res := validation.ValidateEventUpdate(req, s.now()); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}

	upd, err := validation.SanitizeEventUpdate(req)
	if err != nil {
		return nil, apperrors.NewValidationError([]string{"Event date must be in the future and valid"})
	}

	ev, err := s.store.Update(ctx, id, upd, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.index(ctx, ev)
	s.emit(ctx, models.SubjectEventUpdated, strconv.FormatInt(ev.ID, 10), map[string]any{"status": ev.Status})
	s.invalidate(ctx, resourceEvents)
	return ev, nil
}

// Delete removes the event. A missing event is only an error with strict
// deletes enabled.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) && !s.strictDeletes {
		logger.WithContext(ctx).Debug("Delete of missing event ignored", "event_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if s.search != nil {
		if err := s.search.DeleteEvent(ctx, id); err != nil {
			logger.WithContext(ctx).Warn("Failed to remove event from search index", "event_id", id, "error", err)
		}
	}
	s.emit(ctx, models.SubjectEventDeleted, strconv.FormatInt(id, 10), nil)
	s.invalidate(ctx, resourceEvents)
	return nil
}

// ReconcileStatus recomputes the event status and stores sold_out once the
// capacity is reached. A past event is reported as completed but not stored.
func (s *EventService) ReconcileStatus(ctx context.Context, id int64) (*models.Event, error) {
	ev, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if ev == nil {
		return nil, apperrors.NotFound("Event not found")
	}

	computed := format.DetermineEventStatus(ev, s.now())
	if computed != models.EventStatusSoldOut || ev.Status == models.EventStatusSoldOut {
		return ev, nil
	}

	status := models.EventStatusSoldOut
	ev, err = s.store.Update(ctx, id, &models.EventUpdate{Status: &status}, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to mark event sold out: %w", err)
	}

	s.index(ctx, ev)
	logger.Activity(ctx, "events.sold_out", "resource_id", id)
	s.invalidate(ctx, resourceEvents)
	return ev, nil
}

func (s *EventService) index(ctx context.Context, ev *models.Event) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexEvent(ctx, ev); err != nil {
		logger.WithContext(ctx).Warn("Failed to index event", "event_id", ev.ID, "error", err)
	}
}
