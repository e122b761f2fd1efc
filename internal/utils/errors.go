package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidDateRange     = errors.New("INVALID_DATE_RANGE")
	ErrInvalidAdjustment    = errors.New("INVALID_ADJUSTMENT")
	ErrMissingInput         = errors.New("MISSING_INPUT")
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrRatePlanNotFound     = errors.New("RATE_PLAN_NOT_FOUND")
	ErrAvailabilityNotFound = errors.New("AVAILABILITY_NOT_FOUND")
	ErrCapacityExceeded     = errors.New("CAPACITY_EXCEEDED")
	ErrTransientContention  = errors.New("TRANSIENT_CONTENTION")
)
