package jobs

import (
	"sync"
	"time"
)

// Debouncer delays a callback per key until no trigger for that key has been
// seen for the configured window. Bursts collapse into a single call.
type Debouncer struct {
	window time.Duration
	fire   func(key string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer builds a debouncer that calls fire once per quiet window.
func NewDebouncer(window time.Duration, fire func(key string)) *Debouncer {
	return &Debouncer{window: window, fire: fire, timers: make(map[string]*time.Timer)}
}

// Trigger (re)starts the window for key. A non-positive window fires at once.
func (d *Debouncer) Trigger(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.window <= 0 {
		go d.fire(key)
		return
	}
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.window, func() {
		if d.expire(key, timer) {
			d.fire(key)
		}
	})
	d.timers[key] = timer
}

// expire clears key if timer is still the one pending for it and reports
// whether the callback should run. A timer that fired after being replaced or
// stopped leaves the map untouched.
func (d *Debouncer) expire(key string, timer *time.Timer) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timers[key] != timer {
		return false
	}
	delete(d.timers, key)
	return !d.stopped
}

// Pending reports how many keys are waiting to fire.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

// Stop cancels every pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
