package main

import (
	"context"
	"fmt"

	cfextrato "github.com/alnah/go-cfextrato"
)

// CLIConverter is the interface for the conversion service.
type CLIConverter interface {
	Convert(ctx context.Context, input cfextrato.Input) (*cfextrato.ConvertResult, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*cfextrato.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (CLIConverter, error)
	Release(CLIConverter)
	Size() int
}

// poolAdapter exposes a *cfextrato.ConverterPool as a Pool.
type poolAdapter struct {
	pool *cfextrato.ConverterPool
}

var _ Pool = (*poolAdapter)(nil)

func (a *poolAdapter) Acquire(ctx context.Context) (CLIConverter, error) {
	c, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release panics when handed a converter this adapter never gave out.
func (a *poolAdapter) Release(c CLIConverter) {
	conv, ok := c.(*cfextrato.Converter)
	if !ok {
		panic(fmt.Sprintf("poolAdapter.Release: unexpected type %T", c))
	}
	a.pool.Release(conv)
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

// newPool builds a converter pool sized for n jobs and checks the options by
// building the first converter, so a bad style or template fails before any
// file is processed. The caller closes the returned pool.
func newPool(ctx context.Context, cfg poolConfig) (*cfextrato.ConverterPool, error) {
	size := cfextrato.ResolvePoolSize(cfg.workers)
	if cfg.jobs > 0 && size > cfg.jobs {
		size = cfg.jobs
	}

	pool := cfextrato.NewConverterPool(size, cfg.opts...)
	c, err := pool.Acquire(ctx)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	pool.Release(c)
	return pool, nil
}

// poolConfig holds pool sizing inputs.
type poolConfig struct {
	workers int // 0 = auto
	jobs    int // 0 = unknown (watch)
	opts    []cfextrato.Option
}
