package models

import "time"

// ProductDailyAvailability is the per (product, date) availability aggregate.
// All fields except Adjustment are derived and exclusively engine-written;
// Adjustment is the one human/PMS-writable capacity override and may be
// negative to restrict sale below physical capacity.
//
// Invariants (POOL): 0 <= Sold <= SellLimit+Adjustment and
// Available = max(0, SellLimit+Adjustment-Sold). For ALL: Available in {0,1}.
type ProductDailyAvailability struct {
	ID             int64     `db:"id" json:"id"`
	HotelID        int64     `db:"hotel_id" json:"hotelId"`
	ProductID      int64     `db:"product_id" json:"productId"`
	Date           time.Time `db:"date" json:"date"`
	Available      int       `db:"available" json:"available"`
	Sold           int       `db:"sold" json:"sold"`
	SoldUnassigned int       `db:"sold_unassigned" json:"soldUnassigned"`
	SellLimit      int       `db:"sell_limit" json:"sellLimit"`
	Adjustment     int       `db:"adjustment" json:"adjustment"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// Capacity is the effective sellable capacity including the manual override.
func (a *ProductDailyAvailability) Capacity() int {
	return a.SellLimit + a.Adjustment
}

// BlockHold is a per (product, date) group-booking hold. Definite holds reduce
// sellable capacity; picked units have converted into real sales counted
// elsewhere, so the net reduction is Definite-Picked.
type BlockHold struct {
	ID        int64     `db:"id" json:"id"`
	HotelID   int64     `db:"hotel_id" json:"hotelId"`
	ProductID int64     `db:"product_id" json:"productId"`
	Date      time.Time `db:"date" json:"date"`
	Tentative int       `db:"tentative" json:"tentative"`
	Definite  int       `db:"definite" json:"definite"`
	Picked    int       `db:"picked" json:"picked"`
}

// NetHold is the capacity actually withheld from sale.
func (b *BlockHold) NetHold() int {
	n := b.Definite - b.Picked
	if n < 0 {
		return 0
	}
	return n
}

// UnassignedSaleCount is the aggregated unassigned-sale tally for one
// (product, date), produced by a grouped count query.
type UnassignedSaleCount struct {
	ProductID int64     `db:"product_id" json:"productId"`
	Date      time.Time `db:"date" json:"date"`
	Count     int       `db:"count" json:"count"`
}

// UnassignedSale is a sold unit not yet pinned to a physical unit
// (oversell or pending room assignment). Counted in SoldUnassigned.
type UnassignedSale struct {
	ID            int64     `db:"id" json:"id"`
	HotelID       int64     `db:"hotel_id" json:"hotelId"`
	ProductID     int64     `db:"product_id" json:"productId"`
	Date          time.Time `db:"date" json:"date"`
	ReservationID string    `db:"reservation_id" json:"reservationId"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
}
