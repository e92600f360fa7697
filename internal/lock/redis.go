package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ups:label-lock:"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker backed by SET NX with a per-holder token.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Acquire takes the lock on key for ttl.
func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, r.client, []string{keyPrefix + key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Locker = (*Redis)(nil)
