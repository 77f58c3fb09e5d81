package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/config"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/repository/postgres"
	redisrepo "github.com/Kemalkeremacar/MediKariyer-sub004/internal/repository/redis"
)

// NewSessionStore builds the session store selected by
// cfg.Session.Store. The returned close func releases the underlying
// connection.
func NewSessionStore(ctx context.Context, cfg *config.Config) (model.SessionStore, func(), error) {
	switch cfg.Session.Store {
	case "postgres":
		db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return postgres.NewSessionRepository(db), func() { _ = db.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisrepo.NewSessionRepository(client), func() { _ = client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
