package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures RedisBackend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Prefix is prepended to every key, e.g. "invoicer:".
	Prefix string
}

// RedisBackend stores each key as a Redis string. SET replaces the value in
// a single command, which gives the atomic replace the store relies on.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend connects and pings the server before returning.
func NewRedisBackend(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, newStorageError("Open", "", ErrBackendUnavailable, err.Error())
	}
	return &RedisBackend{client: client, prefix: opts.Prefix}, nil
}

func (r *RedisBackend) Read(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, newStorageError("Read", key, err, "")
	}
	return v, nil
}

func (r *RedisBackend) Write(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return newStorageError("Write", key, err, "")
	}
	return nil
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
