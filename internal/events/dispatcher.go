package events

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops non-terminal events when the buffer is full. Terminal
	// kinds always wait for room, bounded by the caller's context.
	DropIfFull bool
	// OnDrop, when set, is called synchronously for every dropped event.
	OnDrop func(Kind)
}

// Stats counts events per kind. Delivered is incremented after the sink
// returns.
type Stats struct {
	Delivered [KindCount]uint64
	Dropped   [KindCount]uint64
}

// TotalDropped sums Dropped across kinds.
func (s Stats) TotalDropped() uint64 {
	var n uint64
	for _, v := range s.Dropped {
		n += v
	}
	return n
}

// Dispatcher relays events to a sink from a single worker, so a sink sees
// events in emission order. A nil *Dispatcher is valid and drops everything
// without counting.
type Dispatcher struct {
	cfg  Config
	sink Sink

	// mu orders sends against Close: senders hold it shared, Close holds it
	// exclusively while closing queue.
	mu     sync.RWMutex
	closed bool
	queue  chan Event
	exited chan struct{}

	delivered [KindCount]atomic.Uint64
	dropped   [KindCount]atomic.Uint64
}

// NewDispatcher returns nil when cfg.Enabled is false.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:    cfg,
		sink:   sink,
		queue:  make(chan Event, cfg.BufferSize),
		exited: make(chan struct{}),
	}
	go d.work()
	return d
}

func (d *Dispatcher) work() {
	defer close(d.exited)
	for ev := range d.queue {
		d.sink.Emit(context.Background(), ev)
		d.delivered[ev.Kind].Add(1)
	}
}

// Emit queues ev. Events with an undefined kind and events emitted after
// Close are ignored. A non-terminal event is dropped on a full buffer when
// DropIfFull is set; every other event waits for room or for ctx, and counts
// as dropped when ctx ends first.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) {
	if d == nil || !ev.Kind.Valid() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.cfg.DropIfFull && !ev.Kind.Terminal() {
		select {
		case d.queue <- ev:
		default:
			d.drop(ev.Kind)
		}
		return
	}

	select {
	case d.queue <- ev:
	case <-ctx.Done():
		d.drop(ev.Kind)
	}
}

func (d *Dispatcher) drop(k Kind) {
	d.dropped[k].Add(1)
	if d.cfg.OnDrop != nil {
		d.cfg.OnDrop(k)
	}
}

// Close stops accepting events, waits until every queued event reached the
// sink and stops the worker. It is idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.exited
}

// Stats returns the per-kind counters.
func (d *Dispatcher) Stats() Stats {
	var s Stats
	if d == nil {
		return s
	}
	for k := range s.Delivered {
		s.Delivered[k] = d.delivered[k].Load()
		s.Dropped[k] = d.dropped[k].Load()
	}
	return s
}

// Dropped returns the number of dropped events across kinds.
func (d *Dispatcher) Dropped() uint64 {
	return d.Stats().TotalDropped()
}
