// Package ratelimit 固定窗口计数限流。
// 窗口内第一次尝试开启窗口，计数超过阈值即拒绝，窗口到期后计数清零。
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Result 一次计数的结果
type Result struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration // 窗口剩余时间
}

// Limiter 限流器
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func decide(count int64, limit int, remaining time.Duration) Result {
	return Result{
		Allowed:    count <= int64(limit),
		Count:      count,
		RetryAfter: remaining,
	}
}

// ── 进程内实现 ──

type window struct {
	count     int64
	expiresAt time.Time
}

// Memory 进程内固定窗口限流器，过期窗口在下一次访问时惰性清除
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string]*window
	now     func() time.Time
}

// NewMemory 创建进程内限流器
func NewMemory(limit int, win time.Duration) *Memory {
	return &Memory{
		limit:   limit,
		window:  win,
		entries: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow 计数一次并判断是否放行
func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.entries[key]
	if !ok || !now.Before(w.expiresAt) {
		m.sweep(now)
		w = &window{expiresAt: now.Add(m.window)}
		m.entries[key] = w
	}
	w.count++

	return decide(w.count, m.limit, w.expiresAt.Sub(now)), nil
}

// sweep 清除所有已过期窗口
func (m *Memory) sweep(now time.Time) {
	for k, w := range m.entries {
		if !now.Before(w.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// ── Redis 实现 ──

// CounterStore 支持带过期时间的原子递增的计数存储
type CounterStore interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Store 基于外部计数存储（Redis）的限流器，多实例共享计数
type Store struct {
	store  CounterStore
	limit  int
	window time.Duration
}

// NewStore 创建基于计数存储的限流器
func NewStore(store CounterStore, limit int, win time.Duration) *Store {
	return &Store{store: store, limit: limit, window: win}
}

// Allow 计数一次并判断是否放行
func (s *Store) Allow(ctx context.Context, key string) (Result, error) {
	count, ttl, err := s.store.IncrWindow(ctx, key, s.window)
	if err != nil {
		return Result{}, err
	}
	return decide(count, s.limit, ttl), nil
}
