package store

import (
	"context"
	"fmt"
	"log"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	PostgresDSN   string
	RedisURL      string
	MongoURI      string
	MongoDatabase string
}

// Open connects the configured backend. Postgres is migrated before it is returned.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendMemory:
		log.Println("[store] using in-memory store, state will not survive a restart")
		return NewMemoryStore(), nil
	case BackendPostgres:
		pg, err := NewPostgresStore(opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("DB connection failed: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("failed running migrations: %w", err)
		}
		log.Println("Database migrations executed successfully ✔")
		return pg, nil
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
