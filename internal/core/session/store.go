package session

import (
	"context"
	"fmt"

	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
)

// Store 會話儲存
//
// Get 與 Update 在會話不存在或已過期時回傳 common.ErrSessionNotFound。
// Update 的 fn 作用在副本上，fn 回傳錯誤時不寫回。
type Store interface {
	Create(ctx context.Context, state *State) error
	Get(ctx context.Context, id string) (*State, error)
	Update(ctx context.Context, id string, fn func(*State) error) (*State, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// NewStore 依設定建立會話儲存
func NewStore(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (Store, error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		return NewRedisStore(ctx, cfg.Redis, cfg.Session.TTL)
	case config.SessionBackendMemory, "":
		return NewMemoryStore(cfg.Session, m), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
