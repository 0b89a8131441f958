package queue

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

// Observer receives dispatcher outcomes. A nil Observer disables them.
type Observer interface {
	ObserveAuditWrite(sink string, ok bool)
	ObserveAuditDropped()
}

type nopObserver struct{}

func (nopObserver) ObserveAuditWrite(string, bool) {}
func (nopObserver) ObserveAuditDropped()           {}

// Dispatcher fans audit entries out to its sinks on a fixed set of workers.
// Entries are sharded by resource, so writes for one resource keep their order.
type Dispatcher struct {
	workers []chan domain.AuditEntry
	sinks   []ports.AuditSink
	obs     Observer
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sinks []ports.AuditSink, obs Observer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if obs == nil {
		obs = nopObserver{}
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditEntry, numWorkers),
		sinks:   sinks,
		obs:     obs,
		log:     log.With().Str("component", "audit").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches the workers. They exit when ctx is cancelled or after Close
// has drained their queues.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record queues an entry without blocking. When the shard is full the entry
// is dropped and counted.
func (d *Dispatcher) Record(e domain.AuditEntry) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed || len(d.sinks) == 0 {
		return
	}

	select {
	case d.workers[d.shardIndex(e.Resource)] <- e:
	default:
		d.obs.ObserveAuditDropped()
		d.log.Warn().Str("resource", e.Resource).Str("action", string(e.Action)).Int("record_id", e.RecordID).Msg("audit queue full, entry dropped")
	}
}

// Close stops accepting entries and waits for queued ones to be written.
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

func (d *Dispatcher) shardIndex(resource string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(resource))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-ch:
			if !ok {
				return
			}
			d.write(ctx, id, e)
		}
	}
}

func (d *Dispatcher) write(ctx context.Context, worker int, e domain.AuditEntry) {
	for _, s := range d.sinks {
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err := s.Write(wctx, e)
		cancel()

		d.obs.ObserveAuditWrite(s.Name(), err == nil)
		if err != nil {
			d.log.Error().Err(err).
				Str("sink", s.Name()).
				Str("resource", e.Resource).
				Int("record_id", e.RecordID).
				Int("worker_id", worker).
				Msg("audit write failed")
		}
	}
}
