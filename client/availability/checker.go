// Package availability is the debounced username checker behind the sign-up
// form. Keystrokes reset a 500 ms timer; only the last value in a burst
// reaches the network. Inputs shorter than three characters never trigger a
// call.
package availability

import (
	"context"
	"sync"
	"time"
)

// Status is the checker's visible state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusChecking  Status = "checking"
	StatusAvailable Status = "available"
	StatusTaken     Status = "taken"
	StatusError     Status = "error"
)

// debounceDelay is the quiet period after the last keystroke.
const debounceDelay = 500 * time.Millisecond

// minLength is the shortest username worth asking the server about.
const minLength = 3

// Checker asks the service whether a username is free.
type Checker interface {
	CheckUsername(ctx context.Context, username string) (bool, error)
}

// Watcher debounces input changes into availability lookups. Safe for
// concurrent use; a new Input cancels any pending timer so only the latest
// value is checked.
type Watcher struct {
	mu     sync.Mutex
	status Status
	value  string
	gen    int
	timer  *time.Timer

	api      Checker
	delay    time.Duration
	onChange func(Status)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay overrides the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.delay = d }
}

// WithOnChange installs a callback fired on every status change.
func WithOnChange(fn func(Status)) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// New constructs a watcher in the idle state.
func New(api Checker, opts ...Option) *Watcher {
	w := &Watcher{
		status: StatusIdle,
		api:    api,
		delay:  debounceDelay,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Status returns the current state.
func (w *Watcher) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Input feeds the current field value. Short inputs cancel any pending check
// and drop straight back to idle without touching the network.
func (w *Watcher) Input(ctx context.Context, username string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.gen++
	gen := w.gen
	w.value = username
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}

	if len(username) < minLength {
		w.setStatusLocked(StatusIdle)
		return
	}

	w.setStatusLocked(StatusChecking)
	w.timer = time.AfterFunc(w.delay, func() { w.check(ctx, gen, username) })
}

// Stop cancels any pending check, e.g. when the form closes.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.setStatusLocked(StatusIdle)
}

// check runs after the quiet period. A result for a superseded generation is
// discarded so stale responses never overwrite a newer state.
func (w *Watcher) check(ctx context.Context, gen int, username string) {
	available, err := w.api.CheckUsername(ctx, username)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen {
		return
	}
	switch {
	case err != nil:
		w.setStatusLocked(StatusError)
	case available:
		w.setStatusLocked(StatusAvailable)
	default:
		w.setStatusLocked(StatusTaken)
	}
}

func (w *Watcher) setStatusLocked(s Status) {
	if w.status == s {
		return
	}
	w.status = s
	if w.onChange != nil {
		w.onChange(s)
	}
}
