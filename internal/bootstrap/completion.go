package bootstrap

import (
	"context"
	"fmt"
	"sync"
)

// Completion is the single-shot result of a sequential script load.
// It resolves once, either successfully after the last script or with the
// *ScriptLoadError that ended the sequence. At most one observer may be
// registered, and it runs at most once: only on success.
type Completion struct {
	done chan struct{}
	once sync.Once

	mu         sync.Mutex
	resolved   bool
	err        error
	loaded     []string
	observer   func()
	registered bool
	fired      bool
	panicErr   error
}

func newCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// resolve records the outcome, runs the observer if due, then closes Done.
// The observer runs before Done closes so Wait also waits for it.
func (c *Completion) resolve(loaded []string, err error) {
	c.once.Do(func() {
		defer close(c.done)

		c.mu.Lock()
		c.resolved = true
		c.err = err
		c.loaded = loaded
		fn := c.takeObserverLocked()
		c.mu.Unlock()

		if fn != nil {
			_ = c.runObserver(fn)
		}
	})
}

// runObserver calls fn and turns a panic into ErrObserverPanic, kept for
// ObserverErr. The observer may run on the loader goroutine, where nothing
// else could recover it.
func (c *Completion) runObserver(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrObserverPanic, r)
			c.mu.Lock()
			c.panicErr = err
			c.mu.Unlock()
		}
	}()
	fn()
	return nil
}

// takeObserverLocked returns the observer if it must run now and marks it fired.
func (c *Completion) takeObserverLocked() func() {
	if !c.resolved || c.err != nil || c.fired || c.observer == nil {
		return nil
	}
	c.fired = true
	return c.observer
}

// OnComplete registers the observer invoked once all scripts have run.
// If the sequence already succeeded, fn runs immediately on the caller's
// goroutine and a panic in it is returned as ErrObserverPanic. fn never
// runs if the sequence failed.
func (c *Completion) OnComplete(fn func()) error {
	if fn == nil {
		return ErrNilObserver
	}

	c.mu.Lock()
	if c.registered {
		c.mu.Unlock()
		return ErrObserverRegistered
	}
	c.registered = true
	c.observer = fn
	run := c.takeObserverLocked()
	c.mu.Unlock()

	if run != nil {
		return c.runObserver(run)
	}
	return nil
}

// Done is closed when the sequence has ended, successfully or not.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns nil until resolution and after a successful one;
// otherwise the *ScriptLoadError that ended the sequence.
func (c *Completion) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ObserverErr returns the ErrObserverPanic raised by the observer, if any.
func (c *Completion) ObserverErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panicErr
}

// Loaded returns the scripts that finished executing, in order.
func (c *Completion) Loaded() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.loaded...)
}

// Wait blocks until the sequence ends or ctx is done.
// It returns the sequence error, or ctx.Err() if ctx ended first.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}
