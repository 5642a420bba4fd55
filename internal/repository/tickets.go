package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"hunttickets/internal/database"
	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"
)

const ticketColumns = `id, name, email, phone, status, metadata, created_at, updated_at`

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

func scanTicket(row rowScanner) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.Name,
		&ticket.Email,
		&ticket.Phone,
		&ticket.Status,
		&ticket.Metadata,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *TicketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (name, email, phone, status, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		ticket.Name,
		ticket.Email,
		ticket.Phone,
		ticket.Status,
		ticket.Metadata,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

// GetByID returns nil, nil when the ticket does not exist.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ticket, err
}

func (r *TicketRepository) List(ctx context.Context, f *models.TicketFilters) ([]models.Ticket, error) {
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.TicketType != "" {
		w.add("metadata->>'ticket_type' = ?", f.TicketType)
	}
	if f.EventID != nil {
		w.add("metadata->>'event_id' = ?", strconv.FormatInt(*f.EventID, 10))
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets` + w.sql() + ` ORDER BY created_at DESC, id DESC`
	limit, offset := models.Page(f.Limit, f.Offset)
	query += w.page(limit, offset)

	return r.query(ctx, query, w.args...)
}

// All returns every ticket, newest first.
func (r *TicketRepository) All(ctx context.Context) ([]models.Ticket, error) {
	return r.query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC, id DESC`)
}

func (r *TicketRepository) query(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

// Update writes the supplied fields. Event id and ticket type are merged
// into the metadata document, leaving its other keys untouched.
func (r *TicketRepository) Update(ctx context.Context, id int64, upd *models.UpdateTicketRequest, now time.Time) (*models.Ticket, error) {
	s := &setList{}
	if upd.Name != nil {
		s.set("name", *upd.Name)
	}
	if upd.Email != nil {
		s.set("email", *upd.Email)
	}
	if upd.Phone != nil {
		s.set("phone", *upd.Phone)
	}
	if upd.Status != nil {
		s.set("status", *upd.Status)
	}

	patch := map[string]any{}
	if upd.EventID != nil {
		patch["event_id"] = *upd.EventID
	}
	if upd.TicketType != nil {
		patch["ticket_type"] = *upd.TicketType
	}
	if len(patch) > 0 {
		b, err := json.Marshal(patch)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata patch: %w", err)
		}
		s.setExpr("metadata", "metadata || ?::jsonb", string(b))
	}
	s.set("updated_at", now)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id = %s RETURNING %s`, s.sql(), s.next(id), ticketColumns)

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, s.args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("Ticket not found")
	}
	return ticket, err
}

func (r *TicketRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("Ticket not found")
	}
	return nil
}
