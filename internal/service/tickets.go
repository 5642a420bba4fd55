package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/format"
	"hunttickets/internal/logger"
	"hunttickets/internal/models"
	"hunttickets/internal/security"
	"hunttickets/internal/validation"
)

// Ticket function settings, exposed read-only on /tickets/config
const (
	TicketsVersion       = "1.0.0"
	MaxTicketsPerRequest = 100
)

type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	List(ctx context.Context, f *models.TicketFilters) ([]models.Ticket, error)
	All(ctx context.Context) ([]models.Ticket, error)
	Update(ctx context.Context, id int64, upd *models.UpdateTicketRequest, now time.Time) (*models.Ticket, error)
	Delete(ctx context.Context, id int64) error
}

type TicketService struct {
	store         TicketStore
	signer        *security.Signer
	strictDeletes bool
	notifier
}

func NewTicketService(store TicketStore, opts Options) *TicketService {
	return &TicketService{
		store:         store,
		signer:        opts.Signer,
		strictDeletes: opts.StrictDeletes,
		notifier:      newNotifier(opts),
	}
}

func (s *TicketService) Config() models.TicketConfig {
	return models.TicketConfig{
		Version:              TicketsVersion,
		MaxTicketsPerRequest: MaxTicketsPerRequest,
		DefaultStatus:        models.TicketStatusActive,
	}
}

func (s *TicketService) List(ctx context.Context, f *models.TicketFilters) ([]models.Ticket, error) {
	tickets, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Get returns the ticket with its display number and, when a signer is
// configured, a signed QR payload.
func (s *TicketService) Get(ctx context.Context, id int64) (*models.TicketDetails, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if t == nil {
		return nil, apperrors.NotFound("Ticket not found")
	}

	details := &models.TicketDetails{
		Ticket:             *t,
		TicketNumber:       format.TicketNumber(t.ID),
		FormattedCreatedAt: format.Date(t.CreatedAt),
	}
	if s.signer != nil {
		qr, err := s.signer.EncodeTicketQR(t.ID, t.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to sign ticket qr: %w", err)
		}
		details.QRData = qr
	}
	return details, nil
}

func (s *TicketService) Stats(ctx context.Context) (*models.TicketStats, error) {
	var stats models.TicketStats
	err := s.cachedStats(ctx, resourceTickets, &stats, func() error {
		tickets, err := s.store.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to load tickets for stats: %w", err)
		}
		stats = TicketStatsOf(tickets)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *TicketService) Create(ctx context.Context, req *models.CreateTicketRequest) (*models.Ticket, error) {
	if res := validation.ValidateTicketCreate(req); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}

	t := validation.SanitizeTicketCreate(req)
	if err := s.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.emit(ctx, models.SubjectTicketCreated, strconv.FormatInt(t.ID, 10), map[string]any{
		"email":       format.MaskEmail(t.Email),
		"ticket_type": t.Metadata.TicketType,
		"event_id":    t.Metadata.EventID,
	})
	s.invalidate(ctx, resourceTickets)
	return t, nil
}

func (s *TicketService) Update(ctx context.Context, id int64, req *models.UpdateTicketRequest) (*models.Ticket, error) {
	if res := validation.ValidateTicketUpdate(req); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}
	validation.SanitizeTicketUpdate(req)

	t, err := s.store.Update(ctx, id, req, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}

	s.emit(ctx, models.SubjectTicketUpdated, strconv.FormatInt(t.ID, 10), map[string]any{"status": t.Status})
	s.invalidate(ctx, resourceTickets)
	return t, nil
}

// Delete removes the ticket. A missing ticket is only an error with strict
// deletes enabled.
func (s *TicketService) Delete(ctx context.Context, id int64) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) && !s.strictDeletes {
		logger.WithContext(ctx).Debug("Delete of missing ticket ignored", "ticket_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	s.emit(ctx, models.SubjectTicketDeleted, strconv.FormatInt(id, 10), nil)
	s.invalidate(ctx, resourceTickets)
	return nil
}
