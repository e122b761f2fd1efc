package models

import "time"

// ProductType enumerates the supported room product types.
type ProductType string

const (
	ProductTypeBase    ProductType = "BASE"
	ProductTypeMerged  ProductType = "MERGED"
	ProductTypeDerived ProductType = "DERIVED"
)

// AllocationPolicy controls how assigned units translate into sellable capacity.
// ALL: the product is sellable only when every assigned unit is free (capacity 0 or 1).
// POOL: capacity is the count of free assigned units, poolable against a manual
// overbooking adjustment.
type AllocationPolicy string

const (
	AllocationAll  AllocationPolicy = "ALL"
	AllocationPool AllocationPolicy = "POOL"
)

// Product is a sellable room product: a physical room type, a merged cluster,
// or a derived/experience variant built over shared units.
type Product struct {
	ID               int64            `db:"id" json:"id"`
	HotelID          int64            `db:"hotel_id" json:"hotelId"`
	Code             string           `db:"code" json:"code"`
	Name             string           `db:"name" json:"name"`
	Type             ProductType      `db:"type" json:"type"`
	AllocationPolicy AllocationPolicy `db:"allocation_policy" json:"allocationPolicy"`
	MappingCode      string           `db:"mapping_code" json:"mappingCode"`
	IsActive         bool             `db:"is_active" json:"isActive"`
	CreatedAt        time.Time        `db:"created_at" json:"-"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

// ProductUnitAssignment links a product to one of its physical units.
// Static configuration: read by the aggregator, never mutated by it.
type ProductUnitAssignment struct {
	ProductID int64 `db:"product_id" json:"productId"`
	UnitID    int64 `db:"unit_id" json:"unitId"`
}
