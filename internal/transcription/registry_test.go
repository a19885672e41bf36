package transcription

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistry_GetBuildsOnce(t *testing.T) {
	var builds atomic.Int32
	release := make(chan struct{})
	reg := NewRegistry(func(ctx context.Context) (*Service, error) {
		builds.Add(1)
		<-release
		return NewService(&fakeBackend{}, Options{TempDir: t.TempDir()}, testLogger()), nil
	}, testLogger())

	var wg sync.WaitGroup
	services := make([]*Service, 8)
	for i := range services {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			svc, err := reg.Get(context.Background())
			if err != nil {
				t.Errorf("Get() error = %v", err)
			}
			services[i] = svc
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if builds.Load() != 1 {
		t.Errorf("expected one build, got %d", builds.Load())
	}
	for i, svc := range services {
		if svc != services[0] {
			t.Errorf("caller %d got a different service", i)
		}
	}
	if !reg.IsReady() {
		t.Error("expected registry to be ready")
	}
}

func TestRegistry_ServiceNotReady(t *testing.T) {
	release := make(chan struct{})
	reg := NewRegistry(func(ctx context.Context) (*Service, error) {
		<-release
		return NewService(&fakeBackend{}, Options{TempDir: t.TempDir()}, testLogger()), nil
	}, testLogger())

	if _, err := reg.Service(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before start, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	reg.Start(ctx)
	cancel()

	if _, err := reg.Service(); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady during init, got %v", err)
	}
	if reg.IsReady() {
		t.Error("expected not ready during init")
	}

	close(release)
	deadline := time.Now().Add(2 * time.Second)
	for !reg.IsReady() {
		if time.Now().After(deadline) {
			t.Fatal("background init did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, err := reg.Service(); err != nil {
		t.Errorf("Service() error = %v", err)
	}
}

func TestRegistry_FailedInitIsRetried(t *testing.T) {
	boom := errors.New("weights missing")
	var attempts atomic.Int32
	reg := NewRegistry(func(ctx context.Context) (*Service, error) {
		if attempts.Add(1) == 1 {
			return nil, boom
		}
		return NewService(&fakeBackend{}, Options{TempDir: t.TempDir()}, testLogger()), nil
	}, testLogger())

	if _, err := reg.Get(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected init error, got %v", err)
	}
	_, err := reg.Service()
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady after failure, got %v", err)
	}
	if !errors.Is(reg.Err(), boom) {
		t.Errorf("expected Err() to report the failure, got %v", reg.Err())
	}

	if _, err := reg.Get(context.Background()); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if reg.Err() != nil {
		t.Errorf("expected error cleared, got %v", reg.Err())
	}
}

func TestRegistry_GetHonoursContext(t *testing.T) {
	dir := t.TempDir()
	release := make(chan struct{})
	defer close(release)
	reg := NewRegistry(func(ctx context.Context) (*Service, error) {
		<-release
		return NewService(&fakeBackend{}, Options{TempDir: dir}, testLogger()), nil
	}, testLogger())
	reg.Start(context.Background())
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := reg.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}

func TestRegistry_Teardown(t *testing.T) {
	var backends []*fakeBackend
	reg := NewRegistry(func(ctx context.Context) (*Service, error) {
		fb := &fakeBackend{}
		backends = append(backends, fb)
		return NewService(fb, Options{TempDir: t.TempDir()}, testLogger()), nil
	}, testLogger())

	if err := reg.Teardown(); err != nil {
		t.Fatalf("Teardown() on empty registry error = %v", err)
	}

	first, err := reg.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := reg.Teardown(); err != nil {
		t.Fatalf("Teardown() error = %v", err)
	}
	if !backends[0].closed {
		t.Error("expected backend closed on teardown")
	}
	if reg.IsReady() {
		t.Error("expected not ready after teardown")
	}
	if _, err := reg.Service(); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady after teardown, got %v", err)
	}

	second, err := reg.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() after teardown error = %v", err)
	}
	if second == first || len(backends) != 2 {
		t.Error("expected a fresh service after teardown")
	}
}

func TestRegistry_PanickingFactoryReleasesWaiters(t *testing.T) {
	dir := t.TempDir()
	var builds atomic.Int32
	release := make(chan struct{})
	reg := NewRegistry(func(ctx context.Context) (*Service, error) {
		if builds.Add(1) == 1 {
			<-release
			panic("weights corrupted")
		}
		return NewService(&fakeBackend{}, Options{TempDir: dir}, testLogger()), nil
	}, testLogger())

	reg.Start(context.Background())
	time.Sleep(10 * time.Millisecond)

	waiterErr := make(chan error, 1)
	go func() {
		_, err := reg.Get(context.Background())
		waiterErr <- err
	}()
	close(release)

	select {
	case err := <-waiterErr:
		if err == nil {
			t.Fatal("expected waiter to see the init failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter blocked after the factory panicked")
	}

	if reg.IsReady() {
		t.Error("expected registry not ready after a panic")
	}
	if err := reg.Err(); err == nil {
		t.Error("expected the panic recorded as the init error")
	}

	done := make(chan error, 1)
	go func() { done <- reg.Teardown() }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Teardown() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Teardown blocked after the factory panicked")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := reg.Get(ctx); err != nil {
		t.Fatalf("expected rebuild to succeed, got %v", err)
	}
	if builds.Load() != 2 {
		t.Errorf("expected two builds, got %d", builds.Load())
	}
}
