package snapshot

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shelfworks/shelfstack/pkg/errors"
)

// keyPrefix namespaces session records inside a shared Redis instance.
const keyPrefix = "shelfstack:session:"

// RedisStore persists records in Redis, for deployments where multiple
// server instances share sessions. Expiry is delegated to Redis TTLs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save stores a record under key.
func (r *RedisStore) Save(ctx context.Context, key string, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode snapshot %s", key)
	}
	if err := r.client.Set(ctx, keyPrefix+key, data, ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "store snapshot %s", key)
	}
	return nil
}

// Load retrieves a record by key.
func (r *RedisStore) Load(ctx context.Context, key string) (Record, bool, error) {
	data, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrap(errors.ErrCodeInternal, err, "fetch snapshot %s", key)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, errors.Wrap(errors.ErrCodeInternal, err, "decode snapshot %s", key)
	}
	return rec, true, nil
}

// Delete removes a record.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete snapshot %s", key)
	}
	return nil
}

// Close releases the underlying client connection.
func (r *RedisStore) Close() error { return r.client.Close() }

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
