package pool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolLimitsConcurrency(t *testing.T) {
	p := New(2)
	var concurrent int32
	var maxConcurrent int32

	work := func(ctx context.Context) error {
		cur := atomic.AddInt32(&concurrent, 1)
		defer atomic.AddInt32(&concurrent, -1)
		for {
			curMax := atomic.LoadInt32(&maxConcurrent)
			if cur <= curMax || atomic.CompareAndSwapInt32(&maxConcurrent, curMax, cur) {
				break
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
			return nil
		}
	}

	errCh1 := p.Go(context.Background(), work)
	errCh2 := p.Go(context.Background(), work)
	errCh3 := p.Go(context.Background(), work)

	<-errCh1
	<-errCh2
	<-errCh3
	p.Wait()

	if maxConcurrent > 2 {
		t.Fatalf("expected max concurrency <= 2, got %d", maxConcurrent)
	}
	if p.Size() != 2 {
		t.Fatalf("size %d", p.Size())
	}
}

func TestPoolDefaultsToOneSlot(t *testing.T) {
	if got := New(0).Size(); got != 1 {
		t.Fatalf("size %d, want 1", got)
	}
}

func TestPoolCanceledWhileWaiting(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	busy := p.Go(context.Background(), func(context.Context) error {
		<-release
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran atomic.Bool
	errCh := p.Go(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	close(release)
	if err := <-busy; err != nil {
		t.Fatalf("busy job: %v", err)
	}
	p.Wait()
	if ran.Load() {
		t.Fatal("canceled job should not run")
	}
}

func TestPoolReturnsJobError(t *testing.T) {
	p := New(1)
	want := errors.New("launch failed")
	if err := <-p.Go(context.Background(), func(context.Context) error { return want }); err != want {
		t.Fatalf("got %v, want %v", err, want)
	}
	p.Wait()
}
