package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/freshcart/storefront/internal/core/domain"
	"github.com/freshcart/storefront/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes session events to a fixed set of workers using consistent
// hashing on the device id, guaranteeing per-browser event ordering.
type Dispatcher struct {
	workers   []chan domain.SessionEvent
	processor ports.SessionEventProcessor
	log       zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor ports.SessionEventProcessor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.SessionEvent, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Close has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record implements ports.SessionAuditor. It never blocks: when the worker's
// queue is full the event is dropped and logged.
func (d *Dispatcher) Record(_ context.Context, event domain.SessionEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.workers[d.shardIndex(event.DeviceID)] <- event:
	default:
		d.log.Warn().
			Str("device", event.DeviceID).
			Str("kind", string(event.Kind)).
			Msg("audit queue full, event dropped")
	}
}

// Close stops accepting events and waits for the queued ones to be processed.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps a device id deterministically to a worker index.
func (d *Dispatcher) shardIndex(deviceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.processor.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("device", event.DeviceID).
					Str("kind", string(event.Kind)).
					Int("worker_id", id).
					Msg("audit event processing failed")
			}
		}
	}
}

// NopAuditor discards session events. It is used when auditing is disabled.
type NopAuditor struct{}

func (NopAuditor) Record(context.Context, domain.SessionEvent) {}

var (
	_ ports.SessionAuditor = (*Dispatcher)(nil)
	_ ports.SessionAuditor = NopAuditor{}
)
