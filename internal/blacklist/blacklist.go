package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Blacklist marks raw token strings as revoked until their entry
// expires. The entry TTL must be at least the longest remaining
// token lifetime, otherwise a revoked token could outlive its own
// revocation record.
type Blacklist interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	Close() error
}

const revokedMarker = "logout"

type RedisBlacklist struct {
	client *redis.Client
}

func NewRedisBlacklist(addr, password string, db int) (*RedisBlacklist, error) {
	const op = "blacklist.NewRedisBlacklist"

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisBlacklist{client: client}, nil
}

// Revoke is idempotent: re-revoking overwrites the entry and
// refreshes its TTL.
func (b *RedisBlacklist) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	const op = "blacklist.Revoke"

	if err := b.client.Set(ctx, token, revokedMarker, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	const op = "blacklist.IsRevoked"

	_, err := b.client.Get(ctx, token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return true, nil
}

func (b *RedisBlacklist) Close() error {
	return b.client.Close()
}
