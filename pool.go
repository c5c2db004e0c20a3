package ssohelp

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one browser is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// BrowserPool hands out Browsers for concurrent requests, each with its own
// Chrome process. Browsers are created lazily on first acquire.
type BrowserPool struct {
	size     int
	opts     []Option
	browsers []*Browser
	sem      chan *Browser
	mu       sync.Mutex
	created  int
	closed   bool
}

// NewBrowserPool creates a pool with capacity for n Browsers configured by opts.
func NewBrowserPool(n int, opts ...Option) *BrowserPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &BrowserPool{
		size:     n,
		opts:     opts,
		browsers: make([]*Browser, 0, n),
		sem:      make(chan *Browser, n),
	}
}

// Acquire gets a Browser from the pool, creating one if capacity remains.
// Blocks until one is released or ctx ends.
func (p *BrowserPool) Acquire(ctx context.Context) (*Browser, error) {
	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrBrowserClosed
		}
		return b, nil
	default:
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrBrowserClosed
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		b, err := NewBrowser(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.browsers = append(p.browsers, b)
		p.mu.Unlock()
		return b, nil
	}
	p.mu.Unlock()

	select {
	case b, ok := <-p.sem:
		if !ok {
			return nil, ErrBrowserClosed
		}
		return b, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a Browser to the pool.
// The lock is held while sending so Close cannot close the channel mid-send;
// the channel has room for every Browser the pool created.
func (p *BrowserPool) Release(b *Browser) {
	if b == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- b
}

// Close releases all browser resources.
// Returns an aggregated error if several browsers fail to close.
func (p *BrowserPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	browsers := p.browsers
	p.mu.Unlock()

	var errs []error
	for _, b := range browsers {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *BrowserPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		if workers > MaxPoolSize {
			return MaxPoolSize
		}
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs in containers.
	n := runtime.GOMAXPROCS(0) / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
