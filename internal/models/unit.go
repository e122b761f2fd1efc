package models

import "time"

// UnitDailyStatus enumerates the per-date states of a physical room unit.
type UnitDailyStatus string

const (
	UnitStatusAvailable      UnitDailyStatus = "AVAILABLE"
	UnitStatusAssigned       UnitDailyStatus = "ASSIGNED"
	UnitStatusOutOfOrder     UnitDailyStatus = "OUT_OF_ORDER"
	UnitStatusOutOfInventory UnitDailyStatus = "OUT_OF_INVENTORY"
)

// PhysicalUnit represents a real, assignable hotel room.
type PhysicalUnit struct {
	ID        int64     `db:"id" json:"id"`
	HotelID   int64     `db:"hotel_id" json:"hotelId"`
	Number    string    `db:"number" json:"number"`
	Floor     string    `db:"floor" json:"floor,omitempty"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// UnitDailyStatusRow is the per (unit, date) status fact. One row per pair,
// upserted by housekeeping and reservation mutations, never versioned.
type UnitDailyStatusRow struct {
	UnitID int64           `db:"unit_id" json:"unitId"`
	Date   time.Time       `db:"date" json:"date"`
	Status UnitDailyStatus `db:"status" json:"status"`
}
