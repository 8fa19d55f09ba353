package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RunLockRepository serialises scheduling runs per term. Without a Redis client
// the lock only covers the current process.
type RunLockRepository struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]localLock
}

type localLock struct {
	token   string
	expires time.Time
}

// NewRunLockRepository constructs the repository; client may be nil.
func NewRunLockRepository(client *redis.Client) *RunLockRepository {
	return &RunLockRepository{client: client, local: make(map[string]localLock)}
}

// Acquire tries to take the lock for key. It returns the release token and
// whether the lock was obtained.
func (r *RunLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	if r.client == nil {
		return token, r.acquireLocal(key, token, ttl), nil
	}
	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx %s: %w", key, err)
	}
	return token, ok, nil
}

// Release frees the lock if token still owns it.
func (r *RunLockRepository) Release(ctx context.Context, key, token string) error {
	if r.client == nil {
		r.mu.Lock()
		defer r.mu.Unlock()
		if held, ok := r.local[key]; ok && held.token == token {
			delete(r.local, key)
		}
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("redis release %s: %w", key, err)
	}
	return nil
}

func (r *RunLockRepository) acquireLocal(key, token string, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if held, ok := r.local[key]; ok && now.Before(held.expires) {
		return false
	}
	r.local[key] = localLock{token: token, expires: now.Add(ttl)}
	return true
}
