// Package cachefactory abre el cache del state CSRF a partir de la config.
package cachefactory

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/socialauth/internal/cache"
	"github.com/dropDatabas3/socialauth/internal/config"
)

type Config struct {
	Kind   string
	Prefix string
	Redis  struct {
		Addr     string
		Password string
		DB       int
	}
	DefaultTTL time.Duration
}

// FromConfig extrae el bloque cache de la config del servicio.
func FromConfig(c *config.Config) Config {
	var out Config
	out.Kind = c.Cache.Kind
	out.Prefix = c.Cache.Prefix
	out.Redis.Addr = c.Cache.Redis.Addr
	out.Redis.Password = c.Cache.Redis.Password
	out.Redis.DB = c.Cache.Redis.DB
	out.DefaultTTL = c.CacheTTL()
	return out
}

// Handle es el cache abierto. Redis queda nil con el backend en memoria;
// el rate limiter del server lo reutiliza cuando existe.
type Handle struct {
	Cache cache.Client
	Redis *redis.Client
}

func (h *Handle) Close() error {
	if h == nil || h.Cache == nil {
		return nil
	}
	return h.Cache.Close()
}

// Open construye el cache con cache.New; con redis también expone el
// *redis.Client para el rate limiter.
func Open(ctx context.Context, cfg Config) (*Handle, error) {
	c, err := cache.New(ctx, cache.Config{
		Driver:     cfg.Kind,
		Addr:       cfg.Redis.Addr,
		Password:   cfg.Redis.Password,
		DB:         cfg.Redis.DB,
		Prefix:     cfg.Prefix,
		DefaultTTL: cfg.DefaultTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("cachefactory: %w", err)
	}
	return &Handle{Cache: c, Redis: cache.RedisClient(c)}, nil
}
