package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

type NamedSink struct {
	Name string
	Sink Sink
}

type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// Router fans published events out to its sinks. Publish never blocks: when
// the queue is full the event is dropped and counted.
type Router struct {
	cfg         Config
	queue       chan Event
	outlets     []*outlet
	clock       Clock
	fallback    *log.Logger
	stop        context.CancelFunc
	stopped     <-chan struct{}
	closed      atomic.Bool
	minSeverity Severity
	fields      map[string]any
	wg          sync.WaitGroup

	eventsTotal  atomic.Uint64
	droppedTotal atomic.Uint64
	nextDropLog  atomic.Int64
}

func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 512
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		cfg:         cfg,
		queue:       make(chan Event, size),
		clock:       clock,
		fallback:    log.New(os.Stderr, "[logging] ", log.LstdFlags),
		stop:        cancel,
		stopped:     ctx.Done(),
		minSeverity: cfg.MinimumSeverity,
		fields:      cfg.CloneFields(),
	}

	outletSize := max(32, min(size, 1024))
	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		r.outlets = append(r.outlets, &outlet{
			name:     named.Name,
			sink:     named.Sink,
			events:   make(chan Event, outletSize),
			fallback: r.fallback,
		})
	}
	r.run()
	return r, nil
}

func (r *Router) run() {
	for _, o := range r.outlets {
		r.wg.Add(1)
		go func(o *outlet) {
			defer r.wg.Done()
			o.run()
		}(o)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			for _, o := range r.outlets {
				close(o.events)
			}
		}()
		for {
			select {
			case <-r.stopped:
				for {
					select {
					case event := <-r.queue:
						r.dispatch(event)
					default:
						return
					}
				}
			case event := <-r.queue:
				r.dispatch(event)
			}
		}
	}()
}

func (r *Router) dispatch(event Event) {
	if event.Severity < r.minSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	event = mergeFields(event, r.fields)
	r.eventsTotal.Add(1)
	for _, o := range r.outlets {
		o.offer(event)
	}
}

func (r *Router) Publish(_ context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	select {
	case r.queue <- event:
	default:
		r.dropped(event)
	}
}

func (r *Router) dropped(event Event) {
	r.droppedTotal.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.nextDropLog.Load()
	if now >= next && r.nextDropLog.CompareAndSwap(next, now+interval.Nanoseconds()) {
		r.fallback.Printf("dropping event type=%s tick=%d", event.Type, event.Tick)
	}
}

// Close drains queued events into the sinks and closes them. A second call
// waits for ctx.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		<-ctx.Done()
		return ctx.Err()
	}
	r.stop()
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	var firstErr error
	for _, o := range r.outlets {
		if err := o.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.eventsTotal.Load(),
		DroppedTotal: r.droppedTotal.Load(),
	}
}

func (r *Router) Sink(name string) Sink {
	for _, o := range r.outlets {
		if o.name == name {
			return o.sink
		}
	}
	return nil
}

// outlet owns one sink's goroutine and backs off after write failures.
type outlet struct {
	name      string
	sink      Sink
	events    chan Event
	fallback  *log.Logger
	failures  int
	nextRetry time.Time
}

func (o *outlet) offer(event Event) {
	select {
	case o.events <- cloneEvent(event):
	default:
		o.fallback.Printf("sink %s backlog full dropping event type=%s", o.name, event.Type)
	}
}

func (o *outlet) run() {
	for event := range o.events {
		if wait := time.Until(o.nextRetry); o.failures > 0 && wait > 0 {
			time.Sleep(wait)
		}
		if err := o.sink.Write(event); err != nil {
			o.failures++
			delay := time.Duration(1<<min(o.failures, 5)) * time.Second
			o.nextRetry = time.Now().Add(delay)
			o.fallback.Printf("sink %s failed: %v (retry in %s)", o.name, err, delay)
			continue
		}
		o.failures = 0
		o.nextRetry = time.Time{}
	}
}
