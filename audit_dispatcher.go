package goOTP

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// auditDispatcher assembles passcode lifecycle events and hands them to the
// configured sink from a single pump goroutine, so sinks never see concurrent
// calls and a slow sink never blocks the issue or verify path.
type auditDispatcher struct {
	sink       AuditSink
	clock      Clock
	dropIfFull bool

	queue   chan AuditEvent
	quit    chan struct{}
	drained chan struct{}

	dropped  atomic.Uint64
	closing  atomic.Bool
	stopOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, clock Clock) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if clock == nil {
		clock = systemClock{}
	}

	d := &auditDispatcher{
		sink:       sink,
		clock:      clock,
		dropIfFull: cfg.DropIfFull,
		queue:      make(chan AuditEvent, buffer),
		quit:       make(chan struct{}),
		drained:    make(chan struct{}),
	}
	go d.pump()
	return d
}

// Record stamps one event with an ID, a clock timestamp, and the caller IP
// and tenant carried in ctx, then queues it. identity and tenantID arrive
// already normalized from the engine; metadata must never contain a plaintext
// code.
func (d *auditDispatcher) Record(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	tenantID string,
	errCode AuditErrorCode,
	metadata map[string]string,
) {
	if d == nil || d.closing.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if tenantID == "" {
		tenantID = tenantIDFromContext(ctx)
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: d.clock.Now().UTC(),
		EventType: eventType,
		Identity:  identity,
		TenantID:  tenantID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Error:     string(errCode),
		Metadata:  metadata,
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		case <-d.quit:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.quit:
	}
}

// pump is the sole reader of the queue. On shutdown it flushes whatever is
// still buffered before signalling drained.
func (d *auditDispatcher) pump() {
	defer close(d.drained)
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.quit:
			d.flushQueue()
			return
		}
	}
}

func (d *auditDispatcher) flushQueue() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Close stops intake, flushes buffered events, and waits for the pump to exit.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.stopOnce.Do(func() {
		d.closing.Store(true)
		close(d.quit)
		<-d.drained
	})
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
