package scoring

import (
	"context"
	"sync"
	"time"
)

// LoadFunc loads a scorer from path.
type LoadFunc func(ctx context.Context, path string) (*Pipeline, error)

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithLoadFunc replaces the artifact loader, mainly for tests.
func WithLoadFunc(fn LoadFunc) Option {
	return func(p *Provider) {
		if fn != nil {
			p.load = fn
		}
	}
}

// WithLoadObserver is called once after the first load with its duration and outcome.
func WithLoadObserver(fn func(d time.Duration, err error)) Option {
	return func(p *Provider) {
		p.observe = fn
	}
}

// Provider loads the artifact on first use and hands out the same
// pipeline for the rest of the process. A failed load is cached too;
// there is no reload path.
type Provider struct {
	path    string
	load    LoadFunc
	observe func(time.Duration, error)

	once     sync.Once
	pipeline *Pipeline
	err      error
}

// NewProvider creates a provider for the artifact at path.
func NewProvider(path string, opts ...Option) *Provider {
	p := &Provider{path: path, load: Load}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Pipeline returns the loaded pipeline, loading it on the first call.
// The first caller's ctx governs the load.
func (p *Provider) Pipeline(ctx context.Context) (*Pipeline, error) {
	p.once.Do(func() {
		start := time.Now()
		p.pipeline, p.err = p.load(ctx, p.path)
		if p.observe != nil {
			p.observe(time.Since(start), p.err)
		}
	})
	return p.pipeline, p.err
}

// Path returns the artifact location.
func (p *Provider) Path() string { return p.path }
