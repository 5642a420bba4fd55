package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hunttickets/internal/database"
	apperrors "hunttickets/internal/errors"
	"hunttickets/internal/models"
)

const policiesColumns = `id, producer_id, terms_and_conditions, privacy_policy, refund_policy, created_at, updated_at`

// PoliciesRepository stores one producers_terms row per producer. The unique
// and foreign keys on producer_id decide conflicts and unknown producers.
type PoliciesRepository struct {
	db *database.DB
}

func NewPoliciesRepository(db *database.DB) *PoliciesRepository {
	return &PoliciesRepository{db: db}
}

func scanPolicies(row rowScanner, extra ...any) (*models.ProducerPolicies, error) {
	p := &models.ProducerPolicies{}
	dest := []any{
		&p.ID,
		&p.ProducerID,
		&p.TermsAndConditions,
		&p.PrivacyPolicy,
		&p.RefundPolicy,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

func policiesWriteError(err error, producerID string) error {
	switch pqCode(err) {
	case codeUniqueViolation:
		return apperrors.Conflict("Policies already exist for producer %s. Use PUT to update.", producerID)
	case codeForeignKeyViolation:
		return apperrors.NotFound("Producer with ID %s does not exist", producerID)
	}
	return err
}

func (r *PoliciesRepository) Create(ctx context.Context, req *models.PoliciesRequest) (*models.ProducerPolicies, error) {
	query := `
		INSERT INTO producers_terms (producer_id, terms_and_conditions, privacy_policy, refund_policy)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + policiesColumns

	p, err := scanPolicies(r.db.QueryRowContext(ctx, query,
		req.ProducerID,
		req.TermsAndConditions,
		req.PrivacyPolicy,
		req.RefundPolicy,
	))
	if err != nil {
		return nil, policiesWriteError(err, req.ProducerID)
	}
	return p, nil
}

// GetByProducerID returns nil, nil when the producer has no policies.
func (r *PoliciesRepository) GetByProducerID(ctx context.Context, producerID string) (*models.ProducerPolicies, error) {
	query := `SELECT ` + policiesColumns + ` FROM producers_terms WHERE producer_id = $1`

	p, err := scanPolicies(r.db.QueryRowContext(ctx, query, producerID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func presence(col string, has bool) string {
	if has {
		return col + " IS NOT NULL"
	}
	return col + " IS NULL"
}

func (r *PoliciesRepository) List(ctx context.Context, f *models.PoliciesFilters) ([]models.ProducerPolicies, error) {
	w := &where{}
	if f.ProducerID != "" {
		w.add("producer_id = ?", f.ProducerID)
	}
	if f.HasTerms != nil {
		w.add(presence("terms_and_conditions", *f.HasTerms))
	}
	if f.HasPrivacy != nil {
		w.add(presence("privacy_policy", *f.HasPrivacy))
	}
	if f.HasRefund != nil {
		w.add(presence("refund_policy", *f.HasRefund))
	}

	query := `SELECT ` + policiesColumns + ` FROM producers_terms` + w.sql() + ` ORDER BY created_at DESC`
	limit, offset := models.Page(f.Limit, f.Offset)
	query += w.page(limit, offset)

	return r.query(ctx, query, w.args...)
}

// All returns every policies row, for statistics.
func (r *PoliciesRepository) All(ctx context.Context) ([]models.ProducerPolicies, error) {
	return r.query(ctx, `SELECT `+policiesColumns+` FROM producers_terms ORDER BY created_at DESC`)
}

func (r *PoliciesRepository) query(ctx context.Context, query string, args ...any) ([]models.ProducerPolicies, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []models.ProducerPolicies{}
	for rows.Next() {
		p, err := scanPolicies(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *p)
	}
	return list, rows.Err()
}

// Update writes the supplied fields; a null value clears the column.
func (r *PoliciesRepository) Update(ctx context.Context, producerID string, upd *models.PoliciesUpdate, now time.Time) (*models.ProducerPolicies, error) {
	s := &setList{}
	if upd.TermsAndConditions.Set {
		s.set("terms_and_conditions", upd.TermsAndConditions.Ptr())
	}
	if upd.PrivacyPolicy.Set {
		s.set("privacy_policy", upd.PrivacyPolicy.Ptr())
	}
	if upd.RefundPolicy.Set {
		s.set("refund_policy", upd.RefundPolicy.Ptr())
	}
	s.set("updated_at", now)

	query := fmt.Sprintf(`UPDATE producers_terms SET %s WHERE producer_id = %s RETURNING %s`,
		s.sql(), s.next(producerID), policiesColumns)

	p, err := scanPolicies(r.db.QueryRowContext(ctx, query, s.args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("No policies found for producer %s. Use POST to create new policies.", producerID)
	}
	return p, err
}

// Upsert creates the row or overwrites the supplied texts of the existing one.
// created reports which of the two happened.
func (r *PoliciesRepository) Upsert(ctx context.Context, req *models.PoliciesRequest, now time.Time) (p *models.ProducerPolicies, created bool, err error) {
	query := `
		INSERT INTO producers_terms (producer_id, terms_and_conditions, privacy_policy, refund_policy)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (producer_id) DO UPDATE SET
			terms_and_conditions = COALESCE(EXCLUDED.terms_and_conditions, producers_terms.terms_and_conditions),
			privacy_policy = COALESCE(EXCLUDED.privacy_policy, producers_terms.privacy_policy),
			refund_policy = COALESCE(EXCLUDED.refund_policy, producers_terms.refund_policy),
			updated_at = $5
		RETURNING ` + policiesColumns + `, (xmax = 0) AS inserted`

	p, err = scanPolicies(r.db.QueryRowContext(ctx, query,
		req.ProducerID,
		req.TermsAndConditions,
		req.PrivacyPolicy,
		req.RefundPolicy,
		now,
	), &created)
	if err != nil {
		return nil, false, policiesWriteError(err, req.ProducerID)
	}
	return p, created, nil
}

func (r *PoliciesRepository) Delete(ctx context.Context, producerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM producers_terms WHERE producer_id = $1`, producerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("No policies found for producer %s", producerID)
	}
	return nil
}
