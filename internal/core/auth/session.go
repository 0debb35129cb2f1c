package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"culfs/internal/domain"
)

// SessionStore 记录已签发且未注销的会话；令牌有效但会话不存在视为已登出
type SessionStore interface {
	Put(ctx context.Context, s domain.Session) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

type RedisSessions struct {
	RDB    *redis.Client
	Prefix string
}

func NewRedisSessions(rdb *redis.Client) *RedisSessions {
	return &RedisSessions{RDB: rdb, Prefix: "culfs:session:"}
}

func (r *RedisSessions) key(id string) string { return r.Prefix + id }

func (r *RedisSessions) Put(ctx context.Context, s domain.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.SessionID)
	}
	return r.RDB.Set(ctx, r.key(s.SessionID), s.UserID, ttl).Err()
}

func (r *RedisSessions) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.RDB.Exists(ctx, r.key(id)).Result()
	return n == 1, err
}

func (r *RedisSessions) Delete(ctx context.Context, id string) error {
	return r.RDB.Del(ctx, r.key(id)).Err()
}

// MemorySessions 未配置 Redis 时的进程内实现
type MemorySessions struct {
	mu  sync.RWMutex
	m   map[string]time.Time
	Now func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{m: make(map[string]time.Time), Now: time.Now}
}

func (s *MemorySessions) Put(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.SessionID] = sess.ExpiresAt
	// 顺手清理过期项
	now := s.Now()
	for id, exp := range s.m {
		if now.After(exp) {
			delete(s.m, id)
		}
	}
	return nil
}

func (s *MemorySessions) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	exp, ok := s.m[id]
	s.mu.RUnlock()
	return ok && s.Now().Before(exp), nil
}

func (s *MemorySessions) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()
	return nil
}
