package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// WATCH 衝突時的重試次數
const maxUpdateRetries = 16

// RedisStore 以 Redis 保存會話，供多個實例共用
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore 連線並測試 Redis
func NewRedisStore(ctx context.Context, cfg config.RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 測試連接
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Session store initialized",
		zap.String("backend", config.SessionBackendRedis),
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB),
		zap.Duration("ttl", ttl),
	)

	return NewRedisStoreWithClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisStoreWithClient 以既有 client 建立會話儲存
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// Create 寫入新會話
func (s *RedisStore) Create(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.ID), data, s.ttl).Err(); err != nil {
		return common.ErrSessionStore.Wrap(err)
	}
	return nil
}

// Get 讀取會話並延長 TTL
func (s *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	key := s.key(id)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrSessionNotFound
		}
		return nil, common.ErrSessionStore.Wrap(err)
	}

	state, err := decodeState(data)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			common.LogWarn("Failed to refresh session TTL", zap.String("session_id", id), zap.Error(err))
		}
	}
	return state, nil
}

// Update 以 WATCH/MULTI 樂觀鎖修改會話；衝突時重試
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*State) error) (*State, error) {
	key := s.key(id)
	var updated *State
	var fnErr error

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return common.ErrSessionNotFound
			}
			return err
		}

		state, err := decodeState(data)
		if err != nil {
			return err
		}
		if fnErr = fn(state); fnErr != nil {
			return fnErr
		}
		state.UpdatedAt = time.Now()

		out, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		if err == nil {
			updated = state
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if fnErr != nil {
			return nil, fnErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			common.LogDebug("Session update conflict, retrying",
				zap.String("session_id", id),
				zap.Int("attempt", i+1),
			)
			continue
		}
		if errors.Is(err, common.ErrSessionNotFound) || errors.Is(err, common.ErrSessionStore) {
			return nil, err
		}
		return nil, common.ErrSessionStore.Wrap(err)
	}
	return nil, common.ErrSessionStore.Wrap(fmt.Errorf("update of session %s kept conflicting", id))
}

// Delete 刪除會話
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return common.ErrSessionStore.Wrap(err)
	}
	if n == 0 {
		return common.ErrSessionNotFound
	}
	return nil
}

// Ping 檢查 Redis 連線
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return common.ErrSessionStore.Wrap(err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func decodeState(data []byte) (*State, error) {
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, common.ErrSessionStore.Wrap(fmt.Errorf("corrupt session payload: %w", err))
	}
	if state.SelectedAllergenIDs == nil {
		state.SelectedAllergenIDs = []string{}
	}
	if state.PerAllergenResult == nil {
		state.PerAllergenResult = map[string]bool{}
	}
	return &state, nil
}
