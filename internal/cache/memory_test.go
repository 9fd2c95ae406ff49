package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_ComputeOnce(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) ([]byte, error) {
		computes++
		return []byte("value"), nil
	}

	for i := 0; i < 3; i++ {
		data, err := c.GetOrCompute(ctx, "tag", time.Minute, compute)
		if err != nil {
			t.Fatalf("GetOrCompute failed: %v", err)
		}
		if string(data) != "value" {
			t.Errorf("got %q, want %q", data, "value")
		}
	}

	if computes != 1 {
		t.Errorf("expected 1 compute, got %d", computes)
	}
}

func TestMemoryCache_InvalidateForcesRecompute(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	computes := 0
	compute := func(ctx context.Context) ([]byte, error) {
		computes++
		return []byte("value"), nil
	}

	if _, err := c.GetOrCompute(ctx, "tag", time.Minute, compute); err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	if err := c.Invalidate(ctx, "tag"); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	// Invalidating twice is harmless
	if err := c.Invalidate(ctx, "tag"); err != nil {
		t.Fatalf("second Invalidate failed: %v", err)
	}

	if _, err := c.GetOrCompute(ctx, "tag", time.Minute, compute); err != nil {
		t.Fatalf("GetOrCompute after invalidate failed: %v", err)
	}

	if computes != 2 {
		t.Errorf("expected 2 computes, got %d", computes)
	}
}

func TestMemoryCache_ExpiryWithFakeClock(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	computes := 0
	compute := func(ctx context.Context) ([]byte, error) {
		computes++
		return []byte("value"), nil
	}

	if _, err := c.GetOrCompute(ctx, "tag", time.Minute, compute); err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, err := c.GetOrCompute(ctx, "tag", time.Minute, compute); err != nil {
		t.Fatalf("GetOrCompute before expiry failed: %v", err)
	}
	if computes != 1 {
		t.Errorf("expected cached read before expiry, got %d computes", computes)
	}

	now = now.Add(31 * time.Second)
	if _, err := c.GetOrCompute(ctx, "tag", time.Minute, compute); err != nil {
		t.Fatalf("GetOrCompute after expiry failed: %v", err)
	}
	if computes != 2 {
		t.Errorf("expected recompute after expiry, got %d computes", computes)
	}
}

func TestMemoryCache_ComputeErrorNotCached(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	wantErr := errors.New("boom")
	if _, err := c.GetOrCompute(ctx, "tag", time.Minute, func(ctx context.Context) ([]byte, error) {
		return nil, wantErr
	}); !errors.Is(err, wantErr) {
		t.Fatalf("expected compute error, got %v", err)
	}

	data, err := c.GetOrCompute(ctx, "tag", time.Minute, func(ctx context.Context) ([]byte, error) {
		return []byte("ok"), nil
	})
	if err != nil {
		t.Fatalf("GetOrCompute failed: %v", err)
	}
	if string(data) != "ok" {
		t.Errorf("got %q, want %q", data, "ok")
	}
}
