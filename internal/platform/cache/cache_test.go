package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetCachesWithinTTL(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	load := func(ctx context.Context) (any, error) {
		calls++
		return "payload", nil
	}

	for i := 0; i < 3; i++ {
		value, err := c.Get(context.Background(), "objectives", load)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if value != "payload" {
			t.Fatalf("expected payload, got %v", value)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}
}

func TestGetReloadsAfterTTL(t *testing.T) {
	c := New(time.Minute)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	calls := 0
	load := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	if _, err := c.Get(context.Background(), "users", load); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	current = current.Add(2 * time.Minute)
	value, err := c.Get(context.Background(), "users", load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 2 {
		t.Fatalf("expected second load result, got %v", value)
	}
}

func TestGetDoesNotCacheErrors(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	load := func(ctx context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("db down")
		}
		return "ok", nil
	}

	if _, err := c.Get(context.Background(), "teams", load); err == nil {
		t.Fatal("expected error from first load")
	}
	value, err := c.Get(context.Background(), "teams", load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != "ok" {
		t.Fatalf("expected ok, got %v", value)
	}
}

func TestConcurrentLoadsCollapse(t *testing.T) {
	c := New(time.Minute)
	var calls int64
	release := make(chan struct{})
	load := func(ctx context.Context) (any, error) {
		atomic.AddInt64(&calls, 1)
		<-release
		return "shared", nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(context.Background(), "resources", load); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("expected one collapsed load, got %d", got)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	c := New(time.Minute)
	calls := 0
	load := func(ctx context.Context) (any, error) {
		calls++
		return calls, nil
	}

	if _, err := c.Get(context.Background(), "search", load); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Invalidate("search")
	value, err := c.Get(context.Background(), "search", load)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 2 {
		t.Fatalf("expected reload after invalidate, got %v", value)
	}
}
