package lookup

import (
	"time"

	"allergy-checker/internal/core/ai/queue"
)

// Status 外部查詢通道的健康狀態
type Status string

const (
	StatusReady         Status = "ready"
	StatusError         Status = "error"
	StatusQuotaExceeded Status = "quota-exceeded"
)

// AllStatuses 所有狀態，供指標使用
var AllStatuses = []string{string(StatusReady), string(StatusError), string(StatusQuotaExceeded)}

// StatusInfo 對外公開的狀態快照
type StatusInfo struct {
	Status    Status        `json:"status"`
	Enabled   bool          `json:"enabled"`
	Model     string        `json:"model"`
	LastError string        `json:"last_error,omitempty"`
	ChangedAt time.Time     `json:"changed_at"`
	Queue     *queue.Status `json:"queue,omitempty"`
}

// Status 取得目前狀態
func (a *Adapter) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// StatusInfo 取得狀態快照
func (a *Adapter) StatusInfo() StatusInfo {
	a.mu.RLock()
	info := StatusInfo{
		Status:    a.status,
		Enabled:   a.Enabled(),
		Model:     a.cfg.Model,
		LastError: a.lastError,
		ChangedAt: a.changedAt,
	}
	a.mu.RUnlock()

	if a.queue != nil {
		info.Queue = a.queue.GetQueueStatus()
	}
	return info
}

// Available 是否值得嘗試外部查詢
func (a *Adapter) Available() bool {
	return a.Enabled() && a.Status() == StatusReady
}

// Reset 手動將狀態恢復為 ready
func (a *Adapter) Reset() {
	a.setStatus(StatusReady, "")
}

func (a *Adapter) setStatus(status Status, lastError string) {
	a.mu.Lock()
	previous := a.status
	a.status = status
	a.lastError = lastError
	if previous != status {
		a.changedAt = time.Now()
	}
	a.mu.Unlock()

	a.metrics.SetAdapterStatus(string(status), AllStatuses...)
	if previous != status {
		logStatusChange(previous, status, lastError)
	}
}
