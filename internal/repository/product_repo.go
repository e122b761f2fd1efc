package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lodgio/lodgio-api/internal/models"
)

// ProductRepository handles data access for room products and their unit
// assignments.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id, or nil when not found.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`

	var p models.Product
	if err := r.db.GetContext(ctx, &p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// ListByIDs returns the products with the given ids.
func (r *ProductRepository) ListByIDs(ctx context.Context, ids []int64) ([]models.Product, error) {
	const q = `SELECT * FROM products WHERE id = ANY($1)`

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	return products, nil
}

// ListActiveByHotel returns all active products of a hotel.
func (r *ProductRepository) ListActiveByHotel(ctx context.Context, hotelID int64) ([]models.Product, error) {
	const q = `SELECT * FROM products WHERE hotel_id = $1 AND is_active = true ORDER BY id`

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, q, hotelID); err != nil {
		return nil, err
	}
	return products, nil
}

// ListByProducts returns the unit assignments for the given products.
func (r *ProductRepository) ListByProducts(ctx context.Context, productIDs []int64) ([]models.ProductUnitAssignment, error) {
	const q = `
        SELECT product_id, unit_id FROM product_unit_assignments
        WHERE product_id = ANY($1)
        ORDER BY product_id, unit_id`

	var assignments []models.ProductUnitAssignment
	if err := r.db.SelectContext(ctx, &assignments, q, pq.Array(productIDs)); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListProductsByUnit returns the products a physical unit is assigned to.
func (r *ProductRepository) ListProductsByUnit(ctx context.Context, unitID int64) ([]int64, error) {
	const q = `SELECT product_id FROM product_unit_assignments WHERE unit_id = $1 ORDER BY product_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q, unitID); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListHotelIDs returns every hotel with at least one active product.
func (r *ProductRepository) ListHotelIDs(ctx context.Context) ([]int64, error) {
	const q = `SELECT DISTINCT hotel_id FROM products WHERE is_active = true ORDER BY hotel_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q); err != nil {
		return nil, err
	}
	return ids, nil
}

// ListRatePlanIDs returns the rate plans assigned to a product.
func (r *ProductRepository) ListRatePlanIDs(ctx context.Context, productID int64) ([]int64, error) {
	const q = `SELECT rate_plan_id FROM product_rate_plan_assignments WHERE product_id = $1 ORDER BY rate_plan_id`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, q, productID); err != nil {
		return nil, err
	}
	return ids, nil
}
