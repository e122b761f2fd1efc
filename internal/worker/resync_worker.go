package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/models"
)

// HotelLister enumerates hotels and their active products for resync sweeps.
type HotelLister interface {
	ListHotelIDs(ctx context.Context) ([]int64, error)
	ListActiveByHotel(ctx context.Context, hotelID int64) ([]models.Product, error)
}

// Reconciler is the availability engine entry point the worker drives.
type Reconciler interface {
	Reconcile(ctx context.Context, hotelID int64, productIDs []int64, dates []time.Time) error
}

// ResyncWorker periodically re-runs full availability reconciliation per
// hotel over the booking horizon. It is the backstop for lost debounced
// pushes and missed triggers; reconciliation is idempotent, so overlapping
// with request-triggered runs is safe.
type ResyncWorker struct {
	products    HotelLister
	reconciler  Reconciler
	interval    time.Duration
	horizonDays int
}

// NewResyncWorker constructs a ResyncWorker.
func NewResyncWorker(products HotelLister, reconciler Reconciler, interval time.Duration, horizonDays int) *ResyncWorker {
	if horizonDays <= 0 {
		horizonDays = 365
	}
	return &ResyncWorker{
		products:    products,
		reconciler:  reconciler,
		interval:    interval,
		horizonDays: horizonDays,
	}
}

// Start begins the periodic resync loop and listens for context cancellation.
func (w *ResyncWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting resync worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Resync worker stopped")
			return
		}
	}
}

func (w *ResyncWorker) run(ctx context.Context) {
	start := time.Now()
	from := models.Day(time.Now().UTC())
	dates := models.DateRange(from, from.AddDate(0, 0, w.horizonDays-1))

	hotelIDs, err := w.products.ListHotelIDs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("resync: failed to list hotels")
		return
	}

	for _, hotelID := range hotelIDs {
		products, err := w.products.ListActiveByHotel(ctx, hotelID)
		if err != nil {
			log.Error().Err(err).Int64("hotel_id", hotelID).Msg("resync: failed to list products")
			continue
		}
		if len(products) == 0 {
			continue
		}
		productIDs := make([]int64, 0, len(products))
		for _, p := range products {
			productIDs = append(productIDs, p.ID)
		}
		if err := w.reconciler.Reconcile(ctx, hotelID, productIDs, dates); err != nil {
			log.Error().Err(err).Int64("hotel_id", hotelID).Msg("resync: reconcile failed")
		}
	}

	log.Info().Dur("duration", time.Since(start)).Int("hotels", len(hotelIDs)).Msg("Full resync completed")
}
