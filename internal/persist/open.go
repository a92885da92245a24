package persist

import (
	"context"
	"fmt"
)

// Storage backend names.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendPostgres}

// Options selects and configures a storage backend.
type Options struct {
	Backend     string
	Dir         string
	RedisURL    string
	RedisPrefix string
	DatabaseURL string
	// QuotaBytes caps stored values for the file and memory backends.
	QuotaBytes int
}

// Open creates the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStorage(opts.Dir, opts.QuotaBytes)
	case BackendMemory:
		return NewMemoryStorage(opts.QuotaBytes), nil
	case BackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis storage requires a redis url")
		}
		return NewRedisStorage(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres storage requires a database url")
		}
		return NewPostgresStorage(ctx, opts.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
