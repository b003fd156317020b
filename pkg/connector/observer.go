package connector

import (
	"sync"
	"time"
)

// DefaultSettleDelays are the follow-up recompute delays after Start. They
// catch late size changes such as font loading.
var DefaultSettleDelays = []time.Duration{
	50 * time.Millisecond,
	150 * time.Millisecond,
	300 * time.Millisecond,
	500 * time.Millisecond,
}

// ComputeFunc reads the surface and returns the current connector set.
type ComputeFunc func(*Surface) []Path

// Observer recomputes connectors whenever the surface may have changed.
//
// Recomputes are serialised and onChange is called with the observer lock
// held, so onChange must not call back into the observer or mutate the
// surface synchronously.
type Observer struct {
	surface  *Surface
	compute  ComputeFunc
	onChange func([]Path)
	delays   []time.Duration

	mu          sync.Mutex
	started     bool
	stopped     bool
	timers      []*time.Timer
	unsubscribe func()
	runs        int
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithSettleDelays overrides [DefaultSettleDelays].
func WithSettleDelays(d ...time.Duration) ObserverOption {
	return func(o *Observer) { o.delays = d }
}

// NewObserver returns an observer that is not yet started.
func NewObserver(s *Surface, compute ComputeFunc, onChange func([]Path), opts ...ObserverOption) *Observer {
	o := &Observer{
		surface:  s,
		compute:  compute,
		onChange: onChange,
		delays:   DefaultSettleDelays,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start subscribes to the surface, recomputes once and schedules the settle
// recomputes. Calling Start twice, or after Stop, does nothing.
func (o *Observer) Start() {
	o.mu.Lock()
	if o.started || o.stopped {
		o.mu.Unlock()
		return
	}
	o.started = true
	for _, d := range o.delays {
		o.timers = append(o.timers, time.AfterFunc(d, o.Recompute))
	}
	o.mu.Unlock()

	unsub := o.surface.Subscribe(o.Recompute)

	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		unsub()
		return
	}
	o.unsubscribe = unsub
	o.mu.Unlock()

	o.Recompute()
}

// Recompute runs one recompute unless the observer is stopped or the surface
// has been torn down.
func (o *Observer) Recompute() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped || o.surface.TornDown() {
		return
	}
	paths := o.compute(o.surface)
	o.runs++
	if o.onChange != nil {
		o.onChange(paths)
	}
}

// WindowResized is the hook for viewport size changes.
func (o *Observer) WindowResized() { o.Recompute() }

// Stop cancels pending timers and releases the surface subscription. Once
// Stop returns, onChange is never called again.
func (o *Observer) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return
	}
	o.stopped = true
	for _, t := range o.timers {
		t.Stop()
	}
	o.timers = nil
	if o.unsubscribe != nil {
		o.unsubscribe()
		o.unsubscribe = nil
	}
}

// Runs returns the number of recomputes performed so far.
func (o *Observer) Runs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.runs
}
