package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lodgio/lodgio-api/internal/models"
)

// UnassignedSaleRepository handles sold-but-unassigned reservation slices.
type UnassignedSaleRepository struct {
	db *sqlx.DB
}

// NewUnassignedSaleRepository creates a new UnassignedSaleRepository.
func NewUnassignedSaleRepository(db *sqlx.DB) *UnassignedSaleRepository {
	return &UnassignedSaleRepository{db: db}
}

// CountRange returns per (product, date) unassigned-sale tallies.
func (r *UnassignedSaleRepository) CountRange(ctx context.Context, productIDs []int64, from, to time.Time) ([]models.UnassignedSaleCount, error) {
	const q = `
        SELECT product_id, date, COUNT(1) AS count FROM unassigned_sales
        WHERE product_id = ANY($1) AND date BETWEEN $2 AND $3
        GROUP BY product_id, date`

	var counts []models.UnassignedSaleCount
	if err := r.db.SelectContext(ctx, &counts, q, pq.Array(productIDs), from, to); err != nil {
		return nil, err
	}
	return counts, nil
}

// CreateRange records one unassigned sale per date of a stay.
func (r *UnassignedSaleRepository) CreateRange(ctx context.Context, hotelID, productID int64, from, to time.Time, reservationID string) error {
	const q = `
        INSERT INTO unassigned_sales (hotel_id, product_id, date, reservation_id)
        SELECT $1, $2, d::date, $5
        FROM generate_series($3::date, $4::date, '1 day') AS d
        ON CONFLICT (product_id, date, reservation_id) DO NOTHING`

	_, err := r.db.ExecContext(ctx, q, hotelID, productID, from, to, reservationID)
	return err
}

// DeleteByReservation removes a reservation's unassigned-sale slices.
func (r *UnassignedSaleRepository) DeleteByReservation(ctx context.Context, reservationID string) error {
	const q = `DELETE FROM unassigned_sales WHERE reservation_id = $1`

	_, err := r.db.ExecContext(ctx, q, reservationID)
	return err
}
