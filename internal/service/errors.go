package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// CapacityExceededError rejects a mutation that would push sold units past the
// effective capacity. It carries the competing figures for diagnosability.
type CapacityExceededError struct {
	HotelID   int64
	ProductID int64
	Date      time.Time
	Sold      int
	Capacity  int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("insufficient capacity for product %d on %s: sold=%d capacity=%d",
		e.ProductID, models.DateKey(e.Date), e.Sold, e.Capacity)
}

// Unwrap lets callers match errors.Is(err, utils.ErrCapacityExceeded).
func (e *CapacityExceededError) Unwrap() error {
	return utils.ErrCapacityExceeded
}

// IsCapacityExceeded reports whether err is a capacity rejection.
func IsCapacityExceeded(err error) bool {
	return errors.Is(err, utils.ErrCapacityExceeded)
}
