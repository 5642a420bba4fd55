package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"

	"github.com/google/uuid"
)

// PoliciesStore keeps policies keyed by producer id and enforces the same
// producer reference and uniqueness rules as the table constraints.
type PoliciesStore struct {
	mu        sync.Mutex
	producers map[string]bool
	rows      map[string]models.ProducerPolicies
	now       func() time.Time

	Err error
}

func NewPoliciesStore(producerIDs ...string) *PoliciesStore {
	s := &PoliciesStore{
		producers: map[string]bool{},
		rows:      map[string]models.ProducerPolicies{},
		now:       time.Now,
	}
	for _, id := range producerIDs {
		s.producers[id] = true
	}
	return s
}

// AddProducer registers a producer id that policies may reference.
func (s *PoliciesStore) AddProducer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.producers[id] = true
}

// Count implements the producer counter used by the statistics.
func (s *PoliciesStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.producers), nil
}

func (s *PoliciesStore) Create(_ context.Context, req *models.PoliciesRequest) (*models.ProducerPolicies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if !s.producers[req.ProducerID] {
		return nil, apperrors.NotFound("Producer with ID %s does not exist", req.ProducerID)
	}
	if _, ok := s.rows[req.ProducerID]; ok {
		return nil, apperrors.Conflict("Policies already exist for producer %s. Use PUT to update.", req.ProducerID)
	}
	p := s.insert(req)
	return &p, nil
}

func (s *PoliciesStore) insert(req *models.PoliciesRequest) models.ProducerPolicies {
	p := models.ProducerPolicies{
		ID:                 uuid.NewString(),
		ProducerID:         req.ProducerID,
		TermsAndConditions: req.TermsAndConditions,
		PrivacyPolicy:      req.PrivacyPolicy,
		RefundPolicy:       req.RefundPolicy,
		CreatedAt:          s.now().UTC(),
	}
	s.rows[req.ProducerID] = p
	return p
}

func (s *PoliciesStore) GetByProducerID(_ context.Context, producerID string) (*models.ProducerPolicies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.rows[producerID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func presenceMatches(v *string, want *bool) bool {
	return want == nil || (v != nil) == *want
}

func (s *PoliciesStore) List(_ context.Context, f *models.PoliciesFilters) ([]models.ProducerPolicies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []models.ProducerPolicies{}
	for _, p := range s.rows {
		if f.ProducerID != "" && p.ProducerID != f.ProducerID {
			continue
		}
		if !presenceMatches(p.TermsAndConditions, f.HasTerms) ||
			!presenceMatches(p.PrivacyPolicy, f.HasPrivacy) ||
			!presenceMatches(p.RefundPolicy, f.HasRefund) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ProducerID < out[j].ProducerID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (s *PoliciesStore) All(ctx context.Context) ([]models.ProducerPolicies, error) {
	return s.List(ctx, &models.PoliciesFilters{})
}

func (s *PoliciesStore) Update(_ context.Context, producerID string, upd *models.PoliciesUpdate, now time.Time) (*models.ProducerPolicies, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.rows[producerID]
	if !ok {
		return nil, apperrors.NotFound("No policies found for producer %s. Use POST to create new policies.", producerID)
	}
	if upd.TermsAndConditions.Set {
		p.TermsAndConditions = upd.TermsAndConditions.Ptr()
	}
	if upd.PrivacyPolicy.Set {
		p.PrivacyPolicy = upd.PrivacyPolicy.Ptr()
	}
	if upd.RefundPolicy.Set {
		p.RefundPolicy = upd.RefundPolicy.Ptr()
	}
	p.UpdatedAt = &now
	s.rows[producerID] = p
	return &p, nil
}

func (s *PoliciesStore) Upsert(_ context.Context, req *models.PoliciesRequest, now time.Time) (*models.ProducerPolicies, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	if !s.producers[req.ProducerID] {
		return nil, false, apperrors.NotFound("Producer with ID %s does not exist", req.ProducerID)
	}
	p, ok := s.rows[req.ProducerID]
	if !ok {
		p = s.insert(req)
		return &p, true, nil
	}
	if req.TermsAndConditions != nil {
		p.TermsAndConditions = req.TermsAndConditions
	}
	if req.PrivacyPolicy != nil {
		p.PrivacyPolicy = req.PrivacyPolicy
	}
	if req.RefundPolicy != nil {
		p.RefundPolicy = req.RefundPolicy
	}
	p.UpdatedAt = &now
	s.rows[req.ProducerID] = p
	return &p, false, nil
}

func (s *PoliciesStore) Delete(_ context.Context, producerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.rows[producerID]; !ok {
		return apperrors.NotFound("No policies found for producer %s", producerID)
	}
	delete(s.rows, producerID)
	return nil
}
