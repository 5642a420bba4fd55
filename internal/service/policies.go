package service

import (
	"context"
	"fmt"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/format"
	"hunttickets/internal/models"
	"hunttickets/internal/validation"
)

type PoliciesStore interface {
	Create(ctx context.Context, req *models.PoliciesRequest) (*models.ProducerPolicies, error)
	GetByProducerID(ctx context.Context, producerID string) (*models.ProducerPolicies, error)
	List(ctx context.Context, f *models.PoliciesFilters) ([]models.ProducerPolicies, error)
	All(ctx context.Context) ([]models.ProducerPolicies, error)
	Update(ctx context.Context, producerID string, upd *models.PoliciesUpdate, now time.Time) (*models.ProducerPolicies, error)
	Upsert(ctx context.Context, req *models.PoliciesRequest, now time.Time) (*models.ProducerPolicies, bool, error)
	Delete(ctx context.Context, producerID string) error
}

type ProducerCounter interface {
	Count(ctx context.Context) (int, error)
}

// PoliciesService manages the legal texts of producers. Unlike events and
// tickets, deleting missing policies is always a not-found error.
type PoliciesService struct {
	store     PoliciesStore
	producers ProducerCounter
	notifier
}

func NewPoliciesService(store PoliciesStore, producers ProducerCounter, opts Options) *PoliciesService {
	return &PoliciesService{
		store:     store,
		producers: producers,
		notifier:  newNotifier(opts),
	}
}

func (s *PoliciesService) List(ctx context.Context, f *models.PoliciesFilters) ([]models.ProducerPolicies, error) {
	list, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	return list, nil
}

func (s *PoliciesService) Get(ctx context.Context, producerID string) (*models.PoliciesDetails, error) {
	p, err := s.store.GetByProducerID(ctx, producerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get policies: %w", err)
	}
	if p == nil {
		return nil, apperrors.NotFound("No policies found for producer %s", producerID)
	}

	details := &models.PoliciesDetails{
		ProducerPolicies: *p,
		Previews: models.PolicyPreviews{
			TermsPreview:   format.PolicyPreview(p.TermsAndConditions),
			PrivacyPreview: format.PolicyPreview(p.PrivacyPolicy),
			RefundPreview:  format.PolicyPreview(p.RefundPolicy),
		},
		FormattedDates: models.FormattedDates{CreatedAt: format.Date(p.CreatedAt)},
	}
	if p.UpdatedAt != nil {
		updated := format.Date(*p.UpdatedAt)
		details.FormattedDates.UpdatedAt = &updated
	}
	return details, nil
}

func (s *PoliciesService) Stats(ctx context.Context) (*models.PoliciesStats, error) {
	var stats models.PoliciesStats
	err := s.cachedStats(ctx, resourcePolicies, &stats, func() error {
		total, err := s.producers.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count producers: %w", err)
		}
		list, err := s.store.All(ctx)
		if err != nil {
			return fmt.Errorf("failed to load policies for stats: %w", err)
		}
		stats = PoliciesStatsOf(list, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Create stores policies for a producer that has none yet. The store
// reports an unknown producer as not found and a second row as a conflict.
func (s *PoliciesService) Create(ctx context.Context, req *models.PoliciesRequest) (*models.ProducerPolicies, error) {
	if res := validation.ValidatePoliciesRequest(req); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}
	clean := validation.SanitizePoliciesRequest(req)

	p, err := s.store.Create(ctx, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to create policies: %w", err)
	}

	s.emit(ctx, models.SubjectPoliciesCreated, p.ProducerID, map[string]any{"policies_id": p.ID})
	s.invalidate(ctx, resourcePolicies)
	return p, nil
}

func (s *PoliciesService) Update(ctx context.Context, producerID string, upd *models.PoliciesUpdate) (*models.ProducerPolicies, error) {
	if res := validation.ValidatePoliciesUpdate(upd); !res.Valid {
		return nil, apperrors.NewValidationError(res.Errors)
	}
	clean := validation.SanitizePoliciesUpdate(upd)

	p, err := s.store.Update(ctx, producerID, clean, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to update policies: %w", err)
	}

	s.emit(ctx, models.SubjectPoliciesUpdated, producerID, map[string]any{"updated_fields": upd.Fields()})
	s.invalidate(ctx, resourcePolicies)
	return p, nil
}

// Upsert creates the policies or overwrites the supplied texts; created
// reports which happened.
func (s *PoliciesService) Upsert(ctx context.Context, req *models.PoliciesRequest) (p *models.ProducerPolicies, created bool, err error) {
	if res := validation.ValidatePoliciesRequest(req); !res.Valid {
		return nil, false, apperrors.NewValidationError(res.Errors)
	}
	clean := validation.SanitizePoliciesRequest(req)

	p, created, err = s.store.Upsert(ctx, clean, s.now().UTC())
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert policies: %w", err)
	}

	subject := models.SubjectPoliciesUpdated
	if created {
		subject = models.SubjectPoliciesCreated
	}
	s.emit(ctx, subject, p.ProducerID, map[string]any{"policies_id": p.ID, "upsert": true})
	s.invalidate(ctx, resourcePolicies)
	return p, created, nil
}

func (s *PoliciesService) Delete(ctx context.Context, producerID string) error {
	if err := s.store.Delete(ctx, producerID); err != nil {
		return fmt.Errorf("failed to delete policies: %w", err)
	}

	s.emit(ctx, models.SubjectPoliciesDeleted, producerID, nil)
	s.invalidate(ctx, resourcePolicies)
	return nil
}
