package client

import (
	"context"
	"time"

	"parkproof/pkg/logger"

	"github.com/redis/go-redis/v9"
)

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
}

// connectRedis returns nil when no address is configured or the server does
// not answer a ping. Callers fall back to in-process stores in that case.
func connectRedis(log *logger.Logger, opts RedisOptions) *redis.Client {
	if opts.Addr == "" {
		log.Info("Redis not configured, using in-memory stores")
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("Redis unreachable, using in-memory stores", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	log.Info("Successfully connected to Redis", "addr", opts.Addr, "db", opts.DB)
	return client
}
