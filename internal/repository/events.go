package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hunttickets/internal/database"
	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"

	"github.com/lib/pq"
)

const eventColumns = `id, title, description, event_date, location, max_capacity, current_capacity,
		price, status, category, organizer_id, metadata, created_at, updated_at`

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.EventDate,
		&event.Location,
		&event.MaxCapacity,
		&event.CurrentCapacity,
		&event.Price,
		&event.Status,
		&event.Category,
		&event.OrganizerID,
		&event.Metadata,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if event.Metadata == nil {
		event.Metadata = models.JSONMap{}
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, event_date, location, max_capacity, current_capacity,
		                    price, status, category, organizer_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Title,
		event.Description,
		event.EventDate,
		event.Location,
		event.MaxCapacity,
		event.CurrentCapacity,
		event.Price,
		event.Status,
		event.Category,
		event.OrganizerID,
		event.Metadata,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

// GetByID returns nil, nil when the event does not exist.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return event, err
}

// List applies the filters with a case-insensitive match for the free-text query.
func (r *EventRepository) List(ctx context.Context, f *models.EventFilters) ([]models.Event, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.Location != "" {
		w.add("location ILIKE '%' || ? || '%'", f.Location)
	}
	if f.OrganizerID != "" {
		w.add("organizer_id = ?", f.OrganizerID)
	}
	if f.DateFrom != nil {
		w.add("event_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		w.add("event_date <= ?", *f.DateTo)
	}
	if f.Query != "" {
		w.add("(title ILIKE '%' || ? || '%' OR description ILIKE '%' || ? || '%' OR location ILIKE '%' || ? || '%')",
			f.Query, f.Query, f.Query)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + w.sql() + ` ORDER BY event_date ASC, id ASC`
	limit, offset := models.Page(f.Limit, f.Offset)
	query += w.page(limit, offset)

	return r.query(ctx, query, w.args...)
}

// ListByIDs returns the events with the given ids, in no particular order.
func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return []models.Event{}, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = ANY($1)`
	return r.query(ctx, query, pq.Array(ids))
}

// All returns every event, for statistics and reindexing.
func (r *EventRepository) All(ctx context.Context) ([]models.Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id ASC`)
}

func (r *EventRepository) query(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// Update writes the supplied fields and stamps updated_at.
func (r *EventRepository) Update(ctx context.Context, id int64, upd *models.EventUpdate, now time.Time) (*models.Event, error) {
	s := &setList{}
	if upd.Title != nil {
		s.set("title", *upd.Title)
	}
	if upd.Description.Set {
		s.set("description", upd.Description.Ptr())
	}
	if upd.EventDate != nil {
		s.set("event_date", *upd.EventDate)
	}
	if upd.Location != nil {
		s.set("location", *upd.Location)
	}
	if upd.MaxCapacity != nil {
		s.set("max_capacity", *upd.MaxCapacity)
	}
	if upd.CurrentCapacity != nil {
		s.set("current_capacity", *upd.CurrentCapacity)
	}
	if upd.Price != nil {
		s.set("price", *upd.Price)
	}
	if upd.Status != nil {
		s.set("status", *upd.Status)
	}
	if upd.Category != nil {
		s.set("category", *upd.Category)
	}
	if upd.OrganizerID != nil {
		s.set("organizer_id", *upd.OrganizerID)
	}
	if upd.Metadata != nil {
		s.set("metadata", upd.Metadata)
	}
	s.set("updated_at", now)

	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = %s RETURNING %s`, s.sql(), s.next(id), eventColumns)

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, s.args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Event not found")
	}
	return event, err
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("Event not found")
	}
	return nil
}
