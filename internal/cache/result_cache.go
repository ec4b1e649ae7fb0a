package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/retail-insights/internal/config"
)

// DefaultTTL is how long a computed analysis stays fresh.
const DefaultTTL = time.Hour

// ResultCache stores JSON-encoded analysis results under deterministic keys.
type ResultCache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Invalidate(ctx context.Context, key string) error
	InvalidateAll(ctx context.Context) error
}

// New picks a backend from configuration: noop when disabled, otherwise
// memory or redis.
func New(cfg config.CacheConfig, clock Clock) (ResultCache, error) {
	if !cfg.Enabled {
		return NewNoop(), nil
	}

	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Backend {
	case "redis":
		client, err := dialRedis(cfg)
		if err != nil {
			return nil, err
		}
		return NewRedis(client, ttl), nil
	case "", "memory":
		return NewMemory(ttl, clock), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (n *Noop) Set(ctx context.Context, key string, value any) error {
	return nil
}

func (n *Noop) Invalidate(ctx context.Context, key string) error {
	return nil
}

func (n *Noop) InvalidateAll(ctx context.Context) error {
	return nil
}
