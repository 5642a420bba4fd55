package repository

import (
	"context"

	"hunttickets/internal/database"
	"hunttickets/internal/models"
)

// ProducerRepository only reads and seeds producers; they are owned elsewhere.
type ProducerRepository struct {
	db *database.DB
}

func NewProducerRepository(db *database.DB) *ProducerRepository {
	return &ProducerRepository{db: db}
}

func (r *ProducerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM producers`).Scan(&n)
	return n, err
}

func (r *ProducerRepository) Create(ctx context.Context, p *models.Producer) error {
	query := `
		INSERT INTO producers (id, name, description)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Description).Scan(&p.CreatedAt)
}
