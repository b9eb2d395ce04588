// Package queue 以固定數量的 worker 執行外部查詢，限制同時對外的請求數。
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/pkg/common"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("lookup queue is full")
	ErrClosed    = errors.New("lookup queue is closed")
	errPanicked  = errors.New("lookup job panicked")
)

// Job 排隊執行的工作
type Job func(ctx context.Context)

// 請求狀態
const (
	statePending int32 = iota
	stateRunning
	stateCancelled
	stateDropped
)

type request struct {
	ctx   context.Context
	job   Job
	state int32
	err   error
	done  chan struct{}
}

// Status 隊列狀態
type Status struct {
	QueueLength    int   `json:"queue_length"`
	ProcessedCount int64 `json:"processed_count"`
	MaxQueueSize   int   `json:"max_queue_size"`
	Workers        int   `json:"workers"`
}

// Manager 隊列管理器
type Manager struct {
	workers   int
	maxSize   int
	queue     chan *request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 建立隊列並啟動 worker
func NewManager(cfg config.QueueConfig) *Manager {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = workers
	}

	m := &Manager{
		workers: workers,
		maxSize: maxSize,
		queue:   make(chan *request, maxSize),
		done:    make(chan struct{}),
	}
	m.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go m.worker()
	}
	return m
}

// Do 將工作排入隊列並等待執行完成。
// 排隊期間 ctx 結束則放棄執行；已開始執行的工作會等它結束。
func (m *Manager) Do(ctx context.Context, job Job) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}

	req := &request{ctx: ctx, job: job, done: make(chan struct{})}
	select {
	case m.queue <- req:
	default:
		common.LogWarn("Lookup queue full",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.maxSize),
		)
		return ErrQueueFull
	}

	select {
	case <-req.done:
		return req.result()
	case <-ctx.Done():
		if atomic.CompareAndSwapInt32(&req.state, statePending, stateCancelled) {
			return ctx.Err()
		}
		<-req.done
		return req.result()
	}
}

func (r *request) result() error {
	if atomic.LoadInt32(&r.state) == stateDropped {
		return ErrClosed
	}
	return r.err
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		QueueLength:    len(m.queue),
		ProcessedCount: atomic.LoadInt64(&m.processed),
		MaxQueueSize:   m.maxSize,
		Workers:        m.workers,
	}
}

// Close 停止 worker，尚未執行的工作回傳 ErrClosed
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		for {
			select {
			case req := <-m.queue:
				if atomic.CompareAndSwapInt32(&req.state, statePending, stateDropped) {
					close(req.done)
				}
			default:
				return
			}
		}
	})
}

func (m *Manager) worker() {
	defer m.wg.Done()
	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.run(req)
		}
	}
}

func (m *Manager) run(req *request) {
	if !atomic.CompareAndSwapInt32(&req.state, statePending, stateRunning) {
		close(req.done)
		return
	}
	defer close(req.done)
	defer func() {
		if r := recover(); r != nil {
			req.err = errPanicked
			common.LogError("Lookup job panicked", zap.Any("panic", r))
		}
	}()

	req.job(req.ctx)
	atomic.AddInt64(&m.processed, 1)
}
