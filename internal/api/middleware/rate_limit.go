package middleware

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter 以客戶端 IP 為鍵的令牌桶限流器，閒置的桶會定期清除
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*limiterEntry
	hits  uint64
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter 創建新的限流器；參數無效時回傳 nil（不限流）
func NewRateLimiter(requests int, window time.Duration, burst int) *RateLimiter {
	if requests <= 0 || window <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(requests) / window.Seconds()),
		burst:   burst,
		idleTTL: 10 * window,
		byKey:   make(map[string]*limiterEntry),
	}
}

// Allow 檢查是否允許請求
func (rl *RateLimiter) Allow(key string, now time.Time) bool {
	if rl == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.byKey[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.byKey[key] = e
	}
	e.lastSeen = now
	allowed := e.limiter.AllowN(now, 1)

	rl.hits++
	if rl.hits%512 == 0 {
		cutoff := now.Add(-rl.idleTTL)
		for k, v := range rl.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(rl.byKey, k)
			}
		}
	}
	return allowed
}

// RateLimit 限流中間件
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := NewRateLimiter(cfg.Requests, cfg.Window, cfg.Burst)
	retryAfter := fmt.Sprintf("%d", int(cfg.Window.Seconds()))

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP(), time.Now()) {
			common.LogInfo("Rate limit exceeded",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)

			c.Header("Retry-After", retryAfter)
			common.WriteError(c, common.ErrTooManyRequests, false)
			return
		}

		c.Next()
	}
}
