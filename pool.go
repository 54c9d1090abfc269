package cfextrato

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory (~200MB each).
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("converter pool is closed")

// ConverterPool hands out Converters for parallel batch work.
// Each Converter owns its own browser. Converters are created lazily on
// first Acquire, all with the same options.
type ConverterPool struct {
	opts       []Option
	size       int
	converters []*Converter
	idle       chan *Converter
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewConverterPool creates a pool with room for n Converters built with opts.
func NewConverterPool(n int, opts ...Option) *ConverterPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &ConverterPool{
		opts:       opts,
		size:       n,
		converters: make([]*Converter, 0, n),
		idle:       make(chan *Converter, n),
	}
}

// Acquire returns an idle Converter, creating one while below capacity.
// Blocks until one is released or ctx is done. Returns ErrPoolClosed after Close.
func (p *ConverterPool) Acquire(ctx context.Context) (*Converter, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	select {
	case c := <-p.idle:
		p.mu.Unlock()
		return c, nil
	default:
	}
	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Build outside the lock: template parsing is not free.
		c, err := NewConverter(p.opts...)
		if err != nil {
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			return nil, err
		}

		p.mu.Lock()
		p.converters = append(p.converters, c)
		p.mu.Unlock()
		return c, nil
	}
	p.mu.Unlock()

	select {
	case c, ok := <-p.idle:
		if !ok {
			return nil, ErrPoolClosed
		}
		return c, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a Converter to the pool. After Close it is a no-op.
// The channel holds every Converter ever created, so the send never blocks.
func (p *ConverterPool) Release(c *Converter) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.idle <- c
}

// Close releases all browsers. Converters still acquired are closed too;
// callers must not use them afterwards.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.idle)
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, c := range converters {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize returns workers when positive. Otherwise it picks half of
// GOMAXPROCS, which automaxprocs makes container-aware, clamped to
// [MinPoolSize, MaxPoolSize].
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	return max(MinPoolSize, min(runtime.GOMAXPROCS(0)/cpuDivisor, MaxPoolSize))
}
