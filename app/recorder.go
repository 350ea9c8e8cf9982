package app

import (
	"context"
	"sync"
	"time"

	"github.com/artpar/rpcgate/domain/audit"
	"github.com/artpar/rpcgate/ports"
)

// AuditRecorder buffers dispatch audit events and writes them to the store
// in batches, off the request path.
type AuditRecorder struct {
	store         ports.AuditStore
	buffer        []audit.Event
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

// NewAuditRecorder creates a recorder flushing to store.
func NewAuditRecorder(store ports.AuditStore, batchSize int, flushInterval time.Duration) *AuditRecorder {
	if batchSize == 0 {
		batchSize = 100
	}
	if flushInterval == 0 {
		flushInterval = 10 * time.Second
	}

	r := &AuditRecorder{
		store:         store,
		buffer:        make([]audit.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		stopCh:        make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	return r
}

// Record queues an event for processing.
func (r *AuditRecorder) Record(e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, e)

	if len(r.buffer) >= r.batchSize {
		r.flushLocked(context.Background())
	}
}

// Flush forces immediate processing of queued events.
func (r *AuditRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushLocked(ctx)
}

func (r *AuditRecorder) flushLocked(ctx context.Context) error {
	if len(r.buffer) == 0 {
		return nil
	}

	events := make([]audit.Event, len(r.buffer))
	copy(events, r.buffer)
	r.buffer = r.buffer[:0]

	return r.store.RecordBatch(ctx, events)
}

func (r *AuditRecorder) flushLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Flush(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// Close stops the recorder and flushes remaining events.
func (r *AuditRecorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err = r.Flush(ctx)
	})
	return err
}

// Ensure interface compliance.
var _ ports.AuditRecorder = (*AuditRecorder)(nil)
