package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/internal/service"
	"github.com/lodgio/lodgio-api/internal/utils"
)

// parseDate parses a date in the canonical YYYY-MM-DD form.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return models.Day(t), nil
}

// respondServiceError maps engine errors onto the response envelope.
func respondServiceError(c *gin.Context, err error) {
	var capErr *service.CapacityExceededError
	if errors.As(err, &capErr) {
		utils.Error(c, 409, "CAPACITY_EXCEEDED", capErr.Error())
		return
	}
	switch {
	case errors.Is(err, utils.ErrInvalidDateRange),
		errors.Is(err, utils.ErrInvalidAdjustment),
		errors.Is(err, utils.ErrMissingInput):
		utils.Error(c, 400, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, utils.ErrProductNotFound),
		errors.Is(err, utils.ErrRatePlanNotFound),
		errors.Is(err, utils.ErrAvailabilityNotFound):
		utils.Error(c, 404, "NOT_FOUND", err.Error())
	case errors.Is(err, utils.ErrTransientContention):
		utils.Error(c, 503, "TRANSIENT_FAILURE", "Temporary contention, please retry")
	default:
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}
