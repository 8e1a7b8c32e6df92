//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pnr-tracker/internal/infra/logging"
)

func TestPool(t *testing.T) {
	t.Run("should run submitted tasks", func(t *testing.T) {
		p := NewPool(3, logging.Nop())
		p.Start(context.Background())
		defer p.Stop()

		var ran int32
		var wg sync.WaitGroup
		for i := 0; i < 6; i++ {
			wg.Add(1)
			if err := p.Submit(func(ctx context.Context) error {
				defer wg.Done()
				atomic.AddInt32(&ran, 1)
				return nil
			}); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}
		}
		wg.Wait()
		if ran != 6 {
			t.Errorf("expected 6 tasks, ran %d", ran)
		}
	})

	t.Run("should reject nil and overflow", func(t *testing.T) {
		p := NewPool(1, logging.Nop()) // not started, queue holds 4
		if err := p.Submit(nil); !errors.Is(err, ErrNilTask) {
			t.Errorf("expected ErrNilTask, got %v", err)
		}
		noop := func(ctx context.Context) error { return nil }
		for i := 0; i < 4; i++ {
			if err := p.Submit(noop); err != nil {
				t.Fatalf("submit %d failed: %v", i, err)
			}
		}
		if err := p.Submit(noop); !errors.Is(err, ErrQueueFull) {
			t.Errorf("expected ErrQueueFull, got %v", err)
		}
	})

	t.Run("submit wait should block until a slot frees", func(t *testing.T) {
		p := NewPool(1, logging.Nop())
		release := make(chan struct{})
		block := func(ctx context.Context) error { <-release; return nil }
		// one running plus four queued fills the pool
		p.Start(context.Background())
		defer p.Stop()
		started := make(chan struct{})
		if err := p.Submit(func(ctx context.Context) error { close(started); <-release; return nil }); err != nil {
			t.Fatal(err)
		}
		<-started
		for i := 0; i < 4; i++ {
			if err := p.Submit(block); err != nil {
				t.Fatalf("submit %d failed: %v", i, err)
			}
		}

		done := make(chan error, 1)
		go func() { done <- p.SubmitWait(context.Background(), func(ctx context.Context) error { return nil }) }()
		select {
		case err := <-done:
			t.Fatalf("SubmitWait returned early: %v", err)
		case <-time.After(20 * time.Millisecond):
		}

		close(release)
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("expected the task to be queued, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("SubmitWait did not unblock")
		}
	})

	t.Run("submit wait should give up on cancel and stop", func(t *testing.T) {
		p := NewPool(1, logging.Nop()) // not started, queue holds 4
		noop := func(ctx context.Context) error { return nil }
		if err := p.SubmitWait(context.Background(), nil); !errors.Is(err, ErrNilTask) {
			t.Errorf("expected ErrNilTask, got %v", err)
		}
		for i := 0; i < 4; i++ {
			if err := p.Submit(noop); err != nil {
				t.Fatal(err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		if err := p.SubmitWait(ctx, noop); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected DeadlineExceeded, got %v", err)
		}

		p.Stop()
		if err := p.SubmitWait(context.Background(), noop); !errors.Is(err, ErrStopped) {
			t.Errorf("expected ErrStopped, got %v", err)
		}
	})

	t.Run("stop should be idempotent and wait", func(t *testing.T) {
		p := NewPool(1, logging.Nop())
		p.Start(context.Background())
		finished := make(chan struct{})
		started := make(chan struct{})
		_ = p.Submit(func(ctx context.Context) error {
			close(started)
			time.Sleep(20 * time.Millisecond)
			close(finished)
			return nil
		})
		<-started
		p.Stop()
		p.Stop()
		select {
		case <-finished:
		default:
			t.Error("Stop returned before the running task finished")
		}
	})
}
