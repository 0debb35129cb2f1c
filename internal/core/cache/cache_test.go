package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type summary struct {
	Total int `json:"total"`
}

func TestGetOrLoadJSONCachesUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (*summary, error) {
		calls++
		return &summary{Total: calls}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoadJSON(c, ctx, "stats", time.Minute, load)
		if err != nil {
			t.Fatalf("GetOrLoadJSON: %v", err)
		}
		if got.Total != 1 {
			t.Errorf("expected cached value 1, got %d", got.Total)
		}
	}
	if calls != 1 {
		t.Errorf("expected a single load, got %d", calls)
	}

	c.Invalidate(ctx, "stats")
	got, _ := GetOrLoadJSON(c, ctx, "stats", time.Minute, load)
	if got.Total != 2 {
		t.Errorf("expected reload after invalidate, got %d", got.Total)
	}
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	var c *Cache
	calls := 0
	for i := 0; i < 2; i++ {
		_, err := GetOrLoadJSON(c, context.Background(), "stats", time.Minute, func(context.Context) (*summary, error) {
			calls++
			return &summary{}, nil
		})
		if err != nil {
			t.Fatalf("GetOrLoadJSON: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("expected every call to load without redis, got %d", calls)
	}
	c.Invalidate(context.Background(), "stats")
}

func TestCorruptEntryIsReloaded(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { c.Close() })
	if err := mr.Set("culfs:stats", "{not json"); err != nil {
		t.Fatal(err)
	}

	got, err := GetOrLoadJSON(c, context.Background(), "stats", time.Minute, func(context.Context) (*summary, error) {
		return &summary{Total: 7}, nil
	})
	if err != nil || got.Total != 7 {
		t.Fatalf("expected reload to 7, got %+v %v", got, err)
	}
	if v, _ := mr.Get("culfs:stats"); v != `{"total":7}` {
		t.Errorf("expected entry rewritten, got %q", v)
	}
}
