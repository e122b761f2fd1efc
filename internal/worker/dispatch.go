package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// task is one fire-and-forget unit of work.
type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher runs fire-and-forget follow-up work (restriction automation,
// price recompute) off the mutation path. Task failures are logged and never
// surfaced to the submitting caller.
type Dispatcher struct {
	tasks    chan task
	taskWait time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher constructs a Dispatcher with a bounded queue.
func NewDispatcher(queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		tasks:    make(chan task, queueSize),
		taskWait: time.Minute,
	}
}

// Start begins draining the queue and returns when ctx is cancelled and the
// queue is empty.
func (d *Dispatcher) Start(ctx context.Context) {
	log.Info().Msg("Starting dispatcher")
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case t := <-d.tasks:
				d.run(t)
			case <-ctx.Done():
				// Drain what is already queued before exiting.
				for {
					select {
					case t := <-d.tasks:
						d.run(t)
					default:
						log.Info().Msg("Dispatcher stopped")
						return
					}
				}
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Submit queues a task. When the queue is full the task is dropped with a
// warning: everything submitted here is a best-effort consistency improvement
// with the periodic resync as its backstop.
func (d *Dispatcher) Submit(name string, fn func(ctx context.Context) error) {
	select {
	case d.tasks <- task{name: name, fn: fn}:
	default:
		log.Warn().Str("task", name).Msg("dispatcher queue full, task dropped")
	}
}

func (d *Dispatcher) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("task", t.name).Interface("panic", r).Msg("task panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.taskWait)
	defer cancel()

	start := time.Now()
	if err := t.fn(ctx); err != nil {
		log.Error().Err(err).Str("task", t.name).Msg("task failed")
		return
	}
	log.Debug().Str("task", t.name).Dur("duration", time.Since(start)).Msg("task completed")
}
