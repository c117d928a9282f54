package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/willianramosdev-stack/todoApp/internal/model"
)

const keyListPrefix = "tasks:list:"

// TaskCache caches the unfiltered task listing per user in Redis. Filtered
// queries always hit the database; the plain "GET /tasks" call is by far
// the most frequent one and the only one worth a cache slot. A nil Redis
// client turns every method into a no-op so the API keeps working when
// Redis is down.
type TaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewTaskCache returns a new TaskCache. rdb may be nil.
func NewTaskCache(rdb *redis.Client, ttl time.Duration) *TaskCache {
	return &TaskCache{rdb: rdb, ttl: ttl}
}

func listKey(userID uint64) string {
	return keyListPrefix + strconv.FormatUint(userID, 10)
}

// GetList returns the cached listing for the user, or nil on miss.
func (c *TaskCache) GetList(ctx context.Context, userID uint64) ([]model.Task, error) {
	if c.rdb == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, listKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []model.Task
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores the user's listing.
func (c *TaskCache) SetList(ctx context.Context, userID uint64, list []model.Task) error {
	if c.rdb == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(userID), b, c.ttl).Err()
}

// InvalidateUser drops the user's cached listing. Called after every task
// mutation.
func (c *TaskCache) InvalidateUser(ctx context.Context, userID uint64) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, listKey(userID)).Err()
}
