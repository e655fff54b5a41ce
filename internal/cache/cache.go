// Package cache provee el almacenamiento clave/valor con expiración usado por
// el flujo OAuth (state CSRF y estado transitorio de cada provider).
//
// Soporta:
//   - Memory (in-process, go-cache; default para desarrollo/testing)
//   - Redis (distribuido, con prefijo de namespace)
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DefaultTTL es la expiración por defecto de una entrada (3 minutos).
const DefaultTTL = 3 * time.Minute

// DefaultPrefix es el namespace por defecto de las keys en Redis.
const DefaultPrefix = "socialauth:"

// Client define las operaciones de cache.
// Las operaciones sobre keys individuales son independientes y seguras
// para uso concurrente.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe o expiró.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor. Si ttl es 0 se usa el TTL por defecto del backend.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key. Eliminar una key inexistente no es error.
	Delete(ctx context.Context, key string) error

	// Exists verifica si una key existe.
	Exists(ctx context.Context, key string) (bool, error)

	// Clear elimina todas las keys del namespace.
	Clear(ctx context.Context) error

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close libera recursos.
	Close() error

	// Stats retorna estadísticas del cache.
	Stats(ctx context.Context) (Stats, error)
}

// Stats contiene estadísticas del cache. Se exponen en /healthz.
type Stats struct {
	Driver string `json:"driver"`
	Keys   int64  `json:"keys"`
	Hits   int64  `json:"hits"`
	Misses int64  `json:"misses"`
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver     string // "memory" | "redis"
	Addr       string // host:port de Redis
	Password   string
	DB         int
	Prefix     string        // Prefijo para todas las keys (solo redis)
	DefaultTTL time.Duration // TTL cuando Set recibe 0
}

// ErrNotFound indica que la key no existe o expiró.
var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// New crea un cliente de cache según la configuración.
// Driver vacío es memory; con redis se verifica la conexión antes de volver.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemory(cfg.DefaultTTL), nil
	case "redis":
		c, err := NewRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}

var (
	defaultOnce sync.Once
	defaultC    Client
)

// Default retorna un cache en memoria compartido por el proceso.
// Se crea una sola vez, la primera vez que se pide.
func Default() Client {
	defaultOnce.Do(func() {
		defaultC = NewMemory(DefaultTTL)
	})
	return defaultC
}
