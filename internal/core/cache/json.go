package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetOrLoadJSON 以 JSON 存取 GetOrLoad 的结果。
// 无 Redis 时直接回源；缓存内容无法解码时删除该键并重新回源一次。
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration,
	load func(ctx context.Context) (*T, error)) (*T, error) {
	if c == nil || c.RDB == nil {
		return load(ctx)
	}
	fetch := func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	}

	b, err := c.GetOrLoad(ctx, key, ttl, fetch)
	if err != nil {
		return nil, err
	}
	out, err := decode[T](b)
	if err == nil {
		return out, nil
	}
	c.Invalidate(ctx, key)
	if b, err = c.GetOrLoad(ctx, key, ttl, fetch); err != nil {
		return nil, err
	}
	return decode[T](b)
}

func decode[T any](b []byte) (*T, error) {
	if string(b) == "null" {
		return nil, nil
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
