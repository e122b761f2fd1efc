package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/lodgio/lodgio-api/internal/models"
)

// UnitStatusRepository handles per (unit, date) status facts.
type UnitStatusRepository struct {
	db *sqlx.DB
}

// NewUnitStatusRepository creates a new UnitStatusRepository.
func NewUnitStatusRepository(db *sqlx.DB) *UnitStatusRepository {
	return &UnitStatusRepository{db: db}
}

// GetStatuses loads status rows for the full (unit x date) cross product in
// one range query.
func (r *UnitStatusRepository) GetStatuses(ctx context.Context, unitIDs []int64, from, to time.Time) ([]models.UnitDailyStatusRow, error) {
	const q = `
        SELECT unit_id, date, status FROM unit_daily_statuses
        WHERE unit_id = ANY($1) AND date BETWEEN $2 AND $3`

	var rows []models.UnitDailyStatusRow
	if err := r.db.SelectContext(ctx, &rows, q, pq.Array(unitIDs), from, to); err != nil {
		return nil, err
	}
	return rows, nil
}

// SetStatusRange upserts one unit's status for every date in [from, to].
// One row per (unit, date); never historically versioned.
func (r *UnitStatusRepository) SetStatusRange(ctx context.Context, unitID int64, from, to time.Time, status models.UnitDailyStatus) error {
	const q = `
        INSERT INTO unit_daily_statuses (unit_id, date, status)
        SELECT $1, d::date, $4
        FROM generate_series($2::date, $3::date, '1 day') AS d
        ON CONFLICT (unit_id, date) DO UPDATE SET status = EXCLUDED.status`

	_, err := r.db.ExecContext(ctx, q, unitID, from, to, status)
	return err
}
