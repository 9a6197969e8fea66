// Package cooldown 发表评论的防刷间隔。窗口从发布成功的时刻起算，
// 只拦截 create，不拦截编辑、删除、投票。过期靠下次请求时惰性判断。
package cooldown

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store 记录每个用户最近一次发布成功的时间。
// 单实例部署用内存实现即可，多实例共享 Redis 实现。
type Store interface {
	GetLastCreate(ctx context.Context, userID int64) (time.Time, bool, error)
	SetLastCreate(ctx context.Context, userID int64, t time.Time) error
}

// RateLimitError 冷却期未过，携带剩余等待时间
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return fmt.Sprintf("操作过于频繁，请 %d 秒后再试", secs)
}

// Guard 冷却策略，与存储后端解耦
type Guard struct {
	store  Store
	window time.Duration
}

func NewGuard(store Store, window time.Duration) *Guard {
	return &Guard{store: store, window: window}
}

// Check 冷却期内返回 *RateLimitError，否则返回 nil
func (g *Guard) Check(ctx context.Context, userID int64) error {
	if g.window <= 0 {
		return nil
	}

	last, ok, err := g.store.GetLastCreate(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	remaining := g.window - time.Since(last)
	if remaining > 0 {
		return &RateLimitError{RetryAfter: remaining}
	}
	return nil
}

// MarkCreated 发布成功后记录时间戳，窗口从此刻起算
func (g *Guard) MarkCreated(ctx context.Context, userID int64) error {
	if g.window <= 0 {
		return nil
	}
	return g.store.SetLastCreate(ctx, userID, time.Now())
}

// MemoryStore 进程内实现
type MemoryStore struct {
	mu   sync.Mutex
	last map[int64]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[int64]time.Time)}
}

func (s *MemoryStore) GetLastCreate(_ context.Context, userID int64) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[userID]
	return t, ok, nil
}

func (s *MemoryStore) SetLastCreate(_ context.Context, userID int64, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[userID] = t
	return nil
}

// RedisStore 多实例共享实现，key 按窗口长度自动过期
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("comment:cooldown:%d", userID)
}

func (s *RedisStore) GetLastCreate(ctx context.Context, userID int64) (time.Time, bool, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}

	nanos, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.Unix(0, nanos), true, nil
}

func (s *RedisStore) SetLastCreate(ctx context.Context, userID int64, t time.Time) error {
	return s.client.Set(ctx, s.key(userID), strconv.FormatInt(t.UnixNano(), 10), s.window).Err()
}
