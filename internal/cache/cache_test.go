package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/thinkwright/wardrobe-coverage/internal/analysis"
)

func newTestMemory(t *testing.T, maxSize int) (*MemoryClient, *time.Time) {
	t.Helper()
	c := NewMemoryClient(maxSize)
	t.Cleanup(func() { c.Close() })
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestMemoryGetSet(t *testing.T) {
	c, _ := newTestMemory(t, 10)
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c, clock := newTestMemory(t, 10)
	ctx := context.Background()

	c.Set(ctx, "short", []byte("1"), time.Second)
	c.Set(ctx, "forever", []byte("2"), 0)

	*clock = clock.Add(2 * time.Second)

	if _, err := c.Get(ctx, "short"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected expired entry to miss, got %v", err)
	}
	if _, err := c.Get(ctx, "forever"); err != nil {
		t.Errorf("zero ttl should not expire: %v", err)
	}
}

func TestMemoryEviction(t *testing.T) {
	c, _ := newTestMemory(t, 2)
	ctx := context.Background()

	c.Set(ctx, "a", []byte("a"), time.Minute)
	c.Set(ctx, "b", []byte("b"), time.Hour)
	c.Set(ctx, "c", []byte("c"), time.Hour)

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Error("entry with earliest expiry should be evicted")
	}

	// Overwriting an existing key must not evict.
	c.Set(ctx, "b", []byte("b2"), time.Hour)
	if c.Len() != 2 {
		t.Errorf("Len after overwrite = %d, want 2", c.Len())
	}
}

func TestMemoryDeleteByPrefix(t *testing.T) {
	c, _ := newTestMemory(t, 10)
	ctx := context.Background()

	c.Set(ctx, "coverage:1", []byte("x"), 0)
	c.Set(ctx, "coverage:2", []byte("x"), 0)
	c.Set(ctx, "other", []byte("x"), 0)

	if err := c.DeleteByPrefix(ctx, ReportKeyPrefix); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestMemoryStoresCopy(t *testing.T) {
	c, _ := newTestMemory(t, 10)
	ctx := context.Background()

	buf := []byte("abc")
	c.Set(ctx, "k", buf, 0)
	buf[0] = 'z'

	got, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("cached value aliased caller buffer: %q", got)
	}
}

func TestReportKey(t *testing.T) {
	garments := []analysis.Garment{{ID: "g1", Type: "top", Weather: []string{"hot"}}}
	opts := analysis.OptionUniverses{Weather: []string{"hot", "cold"}}

	k1, err := ReportKey(garments, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(k1, ReportKeyPrefix) || len(k1) != len(ReportKeyPrefix)+64 {
		t.Errorf("unexpected key shape %q", k1)
	}

	k2, _ := ReportKey([]analysis.Garment{{ID: "g1", Type: "top", Weather: []string{"hot"}}}, opts)
	if k1 != k2 {
		t.Error("equal inputs should produce equal keys")
	}

	k3, _ := ReportKey(garments, analysis.OptionUniverses{Weather: []string{"cold", "hot"}})
	if k1 == k3 {
		t.Error("universe order is significant and should change the key")
	}

	empty, _ := ReportKey(nil, analysis.OptionUniverses{})
	emptySlice, _ := ReportKey([]analysis.Garment{}, analysis.OptionUniverses{})
	if empty != emptySlice {
		t.Error("nil and empty collections should share a key")
	}
}
