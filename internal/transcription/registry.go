package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
)

// Factory builds a Service, including backend selection and any model load.
type Factory func(ctx context.Context) (*Service, error)

// Registry owns the process-wide Service. It is built once, either on first
// use or by Start in the background, and released by Teardown.
type Registry struct {
	factory Factory
	logger  *slog.Logger

	mu      sync.Mutex
	svc     *Service
	initCh  chan struct{}
	initErr error
	ready   atomic.Bool
}

func NewRegistry(factory Factory, logger *slog.Logger) *Registry {
	return &Registry{
		factory: factory,
		logger:  logger.With("component", "registry"),
	}
}

// Get returns the shared Service, building it if needed. Concurrent callers
// wait on a single construction. A failed construction is returned to every
// waiter and retried by the next call.
func (r *Registry) Get(ctx context.Context) (*Service, error) {
	for {
		r.mu.Lock()
		if r.svc != nil {
			svc := r.svc
			r.mu.Unlock()
			return svc, nil
		}
		if ch := r.initCh; ch != nil {
			r.mu.Unlock()
			select {
			case <-ch:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			r.mu.Lock()
			svc, err := r.svc, r.initErr
			r.mu.Unlock()
			if svc != nil {
				return svc, nil
			}
			if err != nil {
				return nil, err
			}
			continue
		}
		ch := make(chan struct{})
		r.initCh = ch
		r.mu.Unlock()

		return r.build(ctx, ch)
	}
}

func (r *Registry) build(ctx context.Context, ch chan struct{}) (*Service, error) {
	r.logger.Info("initializing transcription service")
	svc, err := r.construct(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	defer close(ch)
	r.initCh = nil

	if err != nil {
		r.initErr = err
		r.logger.Error("transcription service init failed", "error", err)
		return nil, err
	}
	r.svc = svc
	r.initErr = nil
	r.ready.Store(true)
	r.logger.Info("transcription service ready", "backend", svc.Backend())
	return svc, nil
}

// construct runs the factory and reports a panic as an init error so
// waiters are always released.
func (r *Registry) construct(ctx context.Context) (svc *Service, err error) {
	defer func() {
		if p := recover(); p != nil {
			svc = nil
			err = fmt.Errorf("transcription service init panicked: %v", p)
		}
	}()

	svc, err = r.factory(ctx)
	if err == nil && svc == nil {
		err = errors.New("transcription service factory returned no service")
	}
	return svc, err
}

// Start begins construction in the background so the first request does
// not pay for a model load. The caller's cancellation does not abort it.
func (r *Registry) Start(ctx context.Context) {
	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := r.Get(bg); err != nil {
			r.logger.Warn("background init did not complete", "error", err)
		}
	}()
}

// Service returns the Service without blocking. It fails with ErrNotReady
// while construction is pending or after it failed.
func (r *Registry) Service() (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.svc != nil {
		return r.svc, nil
	}
	if r.initErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotReady, r.initErr)
	}
	return nil, ErrNotReady
}

func (r *Registry) IsReady() bool {
	return r.ready.Load()
}

// Err is the last construction error, if any.
func (r *Registry) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initErr
}

// Teardown waits for any in-flight construction, closes the Service and
// releases the backend's resources. The next Get builds a fresh Service.
func (r *Registry) Teardown() error {
	for {
		r.mu.Lock()
		ch := r.initCh
		if ch == nil {
			break
		}
		r.mu.Unlock()
		<-ch
	}

	svc := r.svc
	r.svc = nil
	r.initErr = nil
	r.ready.Store(false)
	r.mu.Unlock()

	if svc == nil {
		return nil
	}
	err := svc.Close()
	runtime.GC()
	r.logger.Info("transcription service released", "backend", svc.Backend())
	return err
}
