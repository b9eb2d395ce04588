package session

import (
	"context"
	"sync"
	"time"

	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
	"allergy-checker/internal/pkg/common"

	"go.uber.org/zap"
)

// MemoryStore 記憶體會話儲存，帶 TTL 與容量上限
type MemoryStore struct {
	cfg     config.SessionConfig
	metrics *metrics.Metrics

	mu    sync.Mutex
	store map[string]*memoryEntry
	stats storeStats

	stop chan struct{}
	once sync.Once
}

// memoryEntry 會話條目
type memoryEntry struct {
	state       *State
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// storeStats 儲存統計
type storeStats struct {
	created   int64
	expired   int64
	evictions int64
}

// NewMemoryStore 創建記憶體會話儲存並啟動過期清理
func NewMemoryStore(cfg config.SessionConfig, m *metrics.Metrics) *MemoryStore {
	s := &MemoryStore{
		cfg:     cfg,
		metrics: m,
		store:   make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go s.startCleanup()
	}

	common.LogInfo("Session store initialized",
		zap.String("backend", config.SessionBackendMemory),
		zap.Int("max_sessions", cfg.MaxSessions),
		zap.Duration("ttl", cfg.TTL),
		zap.Duration("cleanup_interval", cfg.CleanupInterval),
	)
	return s
}

// Create 新增會話；容量已滿時先清過期，再淘汰最久未使用者
func (s *MemoryStore) Create(_ context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.store) >= s.cfg.MaxSessions {
		s.cleanup()
		for len(s.store) >= s.cfg.MaxSessions {
			s.evictLRU()
		}
	}

	now := time.Now()
	s.store[state.ID] = &memoryEntry{
		state:      state.Clone(),
		expiresAt:  s.expiry(now),
		lastAccess: now,
	}
	s.stats.created++
	s.metrics.SetSessions(len(s.store))
	return nil
}

// Get 取得會話副本
func (s *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id, time.Now())
	if err != nil {
		return nil, err
	}
	return entry.state.Clone(), nil
}

// Update 在鎖內修改會話
func (s *MemoryStore) Update(_ context.Context, id string, fn func(*State) error) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	entry, err := s.lookup(id, now)
	if err != nil {
		return nil, err
	}

	next := entry.state.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.UpdatedAt = now
	entry.state = next
	return next.Clone(), nil
}

// Delete 刪除會話；不存在時回傳 ErrSessionNotFound
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store[id]; !ok {
		return common.ErrSessionNotFound
	}
	delete(s.store, id)
	s.metrics.SetSessions(len(s.store))
	return nil
}

// Ping 記憶體儲存永遠可用
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// Len 目前會話數（含尚未清理的過期會話）
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.store)
}

// GetStats 獲取儲存統計信息
func (s *MemoryStore) GetStats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]interface{}{
		"size":         len(s.store),
		"max_sessions": s.cfg.MaxSessions,
		"created":      s.stats.created,
		"expired":      s.stats.expired,
		"evictions":    s.stats.evictions,
	}
}

// Close 停止清理並清空會話
func (s *MemoryStore) Close() error {
	s.once.Do(func() { close(s.stop) })

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store = make(map[string]*memoryEntry)
	s.metrics.SetSessions(0)
	common.LogInfo("Session store closed",
		zap.Int64("created", s.stats.created),
		zap.Int64("expired", s.stats.expired),
		zap.Int64("evictions", s.stats.evictions),
	)
	return nil
}

// lookup 取得未過期條目並刷新存取時間；呼叫端須持有鎖
func (s *MemoryStore) lookup(id string, now time.Time) (*memoryEntry, error) {
	entry, ok := s.store[id]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	if now.After(entry.expiresAt) {
		delete(s.store, id)
		s.stats.expired++
		s.metrics.SetSessions(len(s.store))
		return nil, common.ErrSessionNotFound
	}
	entry.lastAccess = now
	entry.accessCount++
	entry.expiresAt = s.expiry(now)
	return entry, nil
}

func (s *MemoryStore) expiry(now time.Time) time.Time {
	if s.cfg.TTL <= 0 {
		return now.Add(100 * 365 * 24 * time.Hour)
	}
	return now.Add(s.cfg.TTL)
}

// startCleanup 定期清理過期會話
func (s *MemoryStore) startCleanup() {
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			s.cleanup()
			s.mu.Unlock()
		case <-s.stop:
			return
		}
	}
}

// cleanup 清理過期會話；呼叫端須持有鎖
func (s *MemoryStore) cleanup() int {
	now := time.Now()
	count := 0

	for id, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, id)
			count++
			s.stats.expired++
		}
	}

	if count > 0 {
		s.metrics.SetSessions(len(s.store))
		common.LogDebug("Cleaned up expired sessions",
			zap.Int("count", count),
			zap.Int("remaining", len(s.store)),
		)
	}
	return count
}

// evictLRU 淘汰最久未存取的會話；呼叫端須持有鎖
func (s *MemoryStore) evictLRU() {
	var oldestID string
	var oldestAccess time.Time

	for id, entry := range s.store {
		if oldestID == "" || entry.lastAccess.Before(oldestAccess) {
			oldestID = id
			oldestAccess = entry.lastAccess
		}
	}

	if oldestID == "" {
		return
	}
	delete(s.store, oldestID)
	s.stats.evictions++
	common.LogInfo("Session evicted (LRU)", zap.String("session_id", oldestID))
}
