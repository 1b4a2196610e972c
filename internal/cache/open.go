package cache

import (
	"context"
	"time"
)

// Open selects a backend: none when disabled, Redis when url is set,
// otherwise an in-process cache whose expired entries are swept in the
// background until Close.
func Open(ctx context.Context, enabled bool, url string, ttl time.Duration) (Cache, error) {
	if !enabled {
		return nil, nil
	}
	if url != "" {
		r, err := NewRedis(ctx, url, ttl)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	m := NewMemory(ttl)
	if ttl > 0 {
		m.StartJanitor(min(ttl, maxJanitorInterval))
	}
	return m, nil
}
