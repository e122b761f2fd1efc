package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/lodgio/lodgio-api/internal/models"
	"github.com/lodgio/lodgio-api/pkg/channelpush"
)

// ChannelPusher is the external channel-manager boundary.
type ChannelPusher interface {
	PushAvailability(ctx context.Context, hotelID int64, updates []channelpush.AvailabilityUpdate) error
}

// pendingEntry is one queued (mappingCode, date) booking limit; last write wins.
type pendingEntry struct {
	mappingCode  string
	date         time.Time
	bookingLimit int
}

// hotelQueue holds one hotel's coalescing state: the pending map and its
// single quiet-period timer.
type hotelQueue struct {
	pending map[string]pendingEntry
	timer   *time.Timer
}

// SyncDebouncer coalesces rapid availability changes per hotel into a single
// external-channel push after a quiet period. A push failure is logged and not
// retried: the next mutation re-queues the then-current state, and the
// periodic full resync is the backstop.
type SyncDebouncer struct {
	mu       sync.Mutex
	queues   map[int64]*hotelQueue
	pusher   ChannelPusher
	quiet    time.Duration
	pushWait time.Duration
}

// NewSyncDebouncer constructs a SyncDebouncer with the given quiet period.
func NewSyncDebouncer(pusher ChannelPusher, quiet time.Duration) *SyncDebouncer {
	return &SyncDebouncer{
		queues:   make(map[int64]*hotelQueue),
		pusher:   pusher,
		quiet:    quiet,
		pushWait: 30 * time.Second,
	}
}

// QueueAdjustmentChange upserts the (mappingCode, date) entry in the hotel's
// pending map and resets the hotel's timer to fire after the quiet period.
func (d *SyncDebouncer) QueueAdjustmentChange(hotelID int64, productMappingCode string, date time.Time, bookingLimit int) {
	date = models.Day(date)

	d.mu.Lock()
	defer d.mu.Unlock()

	q, ok := d.queues[hotelID]
	if !ok {
		q = &hotelQueue{pending: make(map[string]pendingEntry)}
		d.queues[hotelID] = q
	}
	q.pending[productMappingCode+"|"+models.DateKey(date)] = pendingEntry{
		mappingCode:  productMappingCode,
		date:         date,
		bookingLimit: bookingLimit,
	}

	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(d.quiet, func() { d.fire(hotelID) })
}

// fire swaps out the hotel's entire pending map and pushes it.
func (d *SyncDebouncer) fire(hotelID int64) {
	d.mu.Lock()
	q, ok := d.queues[hotelID]
	if !ok || len(q.pending) == 0 {
		d.mu.Unlock()
		return
	}
	pending := q.pending
	q.pending = make(map[string]pendingEntry)
	q.timer = nil
	d.mu.Unlock()

	d.push(hotelID, pending)
}

// Flush synchronously drains every hotel's pending map. Called on shutdown so
// queued changes are not silently dropped.
func (d *SyncDebouncer) Flush() {
	d.mu.Lock()
	drained := make(map[int64]map[string]pendingEntry, len(d.queues))
	for hotelID, q := range d.queues {
		if q.timer != nil {
			q.timer.Stop()
			q.timer = nil
		}
		if len(q.pending) > 0 {
			drained[hotelID] = q.pending
			q.pending = make(map[string]pendingEntry)
		}
	}
	d.mu.Unlock()

	for hotelID, pending := range drained {
		d.push(hotelID, pending)
	}
}

func (d *SyncDebouncer) push(hotelID int64, pending map[string]pendingEntry) {
	updates := coalesceUpdates(pending)

	ctx, cancel := context.WithTimeout(context.Background(), d.pushWait)
	defer cancel()

	if err := d.pusher.PushAvailability(ctx, hotelID, updates); err != nil {
		// Not retried: the next mutation naturally re-queues current state.
		log.Error().Err(err).
			Int64("hotel_id", hotelID).
			Int("updates", len(updates)).
			Msg("channel availability push failed")
		return
	}
	log.Info().
		Int64("hotel_id", hotelID).
		Int("updates", len(updates)).
		Msg("channel availability pushed")
}

// coalesceUpdates groups pending entries by mapping code and folds runs of
// consecutive dates with equal booking limits into single date-range updates.
func coalesceUpdates(pending map[string]pendingEntry) []channelpush.AvailabilityUpdate {
	byCode := make(map[string][]pendingEntry)
	codes := make([]string, 0, len(byCode))
	for _, e := range pending {
		if _, ok := byCode[e.mappingCode]; !ok {
			codes = append(codes, e.mappingCode)
		}
		byCode[e.mappingCode] = append(byCode[e.mappingCode], e)
	}
	sort.Strings(codes)

	var updates []channelpush.AvailabilityUpdate
	for _, code := range codes {
		entries := byCode[code]
		sort.Slice(entries, func(i, j int) bool { return entries[i].date.Before(entries[j].date) })

		start := 0
		for i := 1; i <= len(entries); i++ {
			if i < len(entries) &&
				entries[i].bookingLimit == entries[i-1].bookingLimit &&
				entries[i].date.Equal(entries[i-1].date.AddDate(0, 0, 1)) {
				continue
			}
			updates = append(updates, channelpush.AvailabilityUpdate{
				ProductMappingCode: code,
				StartDate:          models.DateKey(entries[start].date),
				EndDate:            models.DateKey(entries[i-1].date),
				BookingLimit:       entries[start].bookingLimit,
			})
			start = i
		}
	}
	return updates
}
