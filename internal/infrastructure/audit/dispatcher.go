package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// Dispatcher entrega eventos a los sinks desde una goroutine propia.
// Publish nunca bloquea: con el buffer lleno el evento se descarta y se registra.
type Dispatcher struct {
	sinks   []audit.Sink
	queue   chan audit.Event
	log     *logger.Logger
	dropped atomic.Int64

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	done      chan struct{}
}

// NewDispatcher arranca el worker. buffer <= 0 usa 1024.
func NewDispatcher(buffer int, log *logger.Logger, sinks ...audit.Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 1024
	}
	d := &Dispatcher{
		sinks: sinks,
		queue: make(chan audit.Event, buffer),
		log:   log,
		done:  make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) Publish(_ context.Context, e audit.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.queue <- e:
	default:
		n := d.dropped.Add(1)
		d.log.Warn().Str("kind", string(e.Kind)).Str("entity_id", e.EntityID).Int64("dropped_total", n).
			Msg("audit: buffer lleno, evento descartado")
	}
}

// Dropped cantidad de eventos descartados desde el arranque.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Close deja de aceptar eventos y espera a que se entreguen los encolados o a que ctx expire.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	ctx := context.Background()
	for e := range d.queue {
		for _, s := range d.sinks {
			d.deliver(ctx, s, e)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, s audit.Sink, e audit.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Interface("panic", r).Str("kind", string(e.Kind)).Msg("audit: sink falló")
		}
	}()
	s.Publish(ctx, e)
}
