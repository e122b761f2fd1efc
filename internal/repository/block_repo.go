package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lodgio/lodgio-api/internal/models"
)

// BlockHoldRepository handles group-booking hold facts.
type BlockHoldRepository struct {
	db *sqlx.DB
}

// NewBlockHoldRepository creates a new BlockHoldRepository.
func NewBlockHoldRepository(db *sqlx.DB) *BlockHoldRepository {
	return &BlockHoldRepository{db: db}
}

// GetRange loads holds for (productIDs x dates) in one range query.
func (r *BlockHoldRepository) GetRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.BlockHold, error) {
	const q = `
        SELECT * FROM block_holds
        WHERE product_id = ANY($1) AND date BETWEEN $2 AND $3`

	var holds []models.BlockHold
	if err := r.db.SelectContext(ctx, &holds, q, pq.Array(productIDs), from, to); err != nil {
		return nil, err
	}
	return holds, nil
}

// SetRange upserts a product's hold counts for every date in [from, to].
func (r *BlockHoldRepository) SetRange(ctx context.Context, hotelID, productID int64, from, to time.Time, tentative, definite, picked int) error {
	const q = `
        INSERT INTO block_holds (hotel_id, product_id, date, tentative, definite, picked)
        SELECT $1, $2, d::date, $5, $6, $7
        FROM generate_series($3::date, $4::date, '1 day') AS d
        ON CONFLICT (product_id, date) DO UPDATE SET
            tentative = EXCLUDED.tentative,
            definite = EXCLUDED.definite,
            picked = EXCLUDED.picked`

	_, err := r.db.ExecContext(ctx, q, hotelID, productID, from, to, tentative, definite, picked)
	return err
}
