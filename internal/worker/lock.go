package worker

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/swiftbulk/campaign-gateway/internal/util"
)

// RedisLocker holds a per-campaign advisory lock so two worker processes
// sharing the store cannot interleave writes on the same campaign. It
// strengthens the plain last-write-wins store without changing any
// externally observable field.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

var _ Locker = (*RedisLocker)(nil)

func lockKey(campaignID int64) string {
	return "lock:campaign:" + strconv.FormatInt(campaignID, 10)
}

// TryLock acquires via SET NX with a TTL safety net; a crashed holder
// frees the campaign once the TTL lapses.
func (l *RedisLocker) TryLock(ctx context.Context, campaignID int64) (func(), bool) {
	token := util.NewULID()
	key := lockKey(campaignID)

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false
	}

	unlock := func() {
		// Release only if we still hold it; a TTL expiry may have handed
		// the lock to someone else.
		cur, err := l.rdb.Get(context.Background(), key).Result()
		if err == nil && cur == token {
			_ = l.rdb.Del(context.Background(), key).Err()
		}
	}
	return unlock, true
}
