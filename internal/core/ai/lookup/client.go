// Package lookup 透過外部 chat completion 服務查詢不在目錄中的菜餚。
//
// Adapter 持有整個程序共用的通道狀態（ready / error / quota-exceeded）。
// 傳輸失敗或外層回應無法解析時轉為 error；配額或限流錯誤轉為
// quota-exceeded；模型回覆內容無法解析或回覆 {"found": false} 時狀態不變；
// 成功取得菜餚時回到 ready。呼叫端的 context 結束時狀態不變。
// 不重試，也不自動恢復。
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"allergy-checker/internal/core/ai/queue"
	"allergy-checker/internal/core/catalog"
	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
	"allergy-checker/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	ErrDisabled          = errors.New("external lookup disabled: api key not configured")
	ErrTransport         = errors.New("external lookup transport failure")
	ErrCanceled          = errors.New("external lookup abandoned by caller")
	ErrQuotaExceeded     = errors.New("external lookup quota exceeded")
	ErrMalformedResponse = errors.New("malformed external lookup response")
	ErrMalformedContent  = errors.New("malformed dish payload in external lookup content")
)

// 服務端回報配額或限流時使用的錯誤代碼
var quotaCodes = map[string]bool{
	"insufficient_quota":  true,
	"rate_limit_exceeded": true,
	"quota_exceeded":      true,
}

// Adapter 外部菜餚查詢轉接器
type Adapter struct {
	cfg     config.OpenAIConfig
	client  *resty.Client
	metrics *metrics.Metrics
	queue   *queue.Manager

	mu        sync.RWMutex
	status    Status
	lastError string
	changedAt time.Time
}

// NewAdapter 建立轉接器；m 可為 nil
func NewAdapter(cfg config.OpenAIConfig, m *metrics.Metrics) *Adapter {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	a := &Adapter{
		cfg:       cfg,
		client:    client,
		metrics:   m,
		status:    StatusReady,
		changedAt: time.Now(),
	}
	m.SetAdapterStatus(string(StatusReady), AllStatuses...)
	return a
}

// WithQueue 讓對外請求經由隊列執行，限制同時進行的請求數
func (a *Adapter) WithQueue(q *queue.Manager) *Adapter {
	a.queue = q
	return a
}

// Enabled 是否已設定 API Key
func (a *Adapter) Enabled() bool {
	return a.cfg.APIKey != ""
}

// Model 目前使用的模型
func (a *Adapter) Model() string {
	return a.cfg.Model
}

// Close 關閉閒置連線
func (a *Adapter) Close() error {
	a.client.GetClient().CloseIdleConnections()
	return nil
}

// Lookup 請外部服務描述菜餚。
// 回傳 (nil, nil) 表示服務明確回覆不認識此菜餚；其餘查不到的情況回傳錯誤供記錄。
func (a *Adapter) Lookup(ctx context.Context, dishName string, allergenIDs []string) (*catalog.Dish, error) {
	dishName = strings.TrimSpace(dishName)
	if dishName == "" {
		return nil, common.ErrEmptyQuery
	}
	if !a.Enabled() {
		common.LogWarn("External lookup skipped: API key not set")
		return nil, ErrDisabled
	}

	start := time.Now()
	var (
		dish   *catalog.Dish
		result string
		err    error
	)
	if a.queue == nil {
		dish, result, err = a.lookup(ctx, dishName, allergenIDs)
	} else if qerr := a.queue.Do(ctx, func(ctx context.Context) {
		dish, result, err = a.lookup(ctx, dishName, allergenIDs)
	}); qerr != nil {
		// 未送出請求，狀態不變
		dish, result, err = nil, "queue-rejected", qerr
	}
	duration := time.Since(start)

	a.metrics.RecordLookup(result, duration)
	common.LogAICall(dishName, duration, err, common.RequestIDFromContext(ctx))
	return dish, err
}

func (a *Adapter) lookup(ctx context.Context, dishName string, allergenIDs []string) (*catalog.Dish, string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	req := chatRequest{
		Model:       a.cfg.Model,
		Messages:    buildMessages(dishName, allergenIDs),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	}

	common.LogDebug("Sending dish lookup request",
		zap.String("model", req.Model),
		zap.String("dish_name", dishName),
		zap.Strings("allergens", allergenIDs),
	)

	resp, err := a.client.R().
		SetContext(reqCtx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		// 呼叫端取消或逾時與服務健康無關，狀態不變；只有自身的 Timeout 算傳輸失敗
		if ctxErr := ctx.Err(); ctxErr != nil {
			common.LogInfo("External lookup abandoned by caller",
				zap.String("dish_name", dishName),
				zap.Error(ctxErr),
			)
			return nil, "canceled", fmt.Errorf("%w: %w", ErrCanceled, ctxErr)
		}
		wrapped := fmt.Errorf("%w: %v", ErrTransport, err)
		a.setStatus(StatusError, wrapped.Error())
		return nil, string(StatusError), wrapped
	}

	body := resp.Body()
	if isQuotaResponse(resp.StatusCode(), body) {
		wrapped := fmt.Errorf("%w (status %d): %s", ErrQuotaExceeded, resp.StatusCode(), errorMessage(body))
		a.setStatus(StatusQuotaExceeded, wrapped.Error())
		return nil, string(StatusQuotaExceeded), wrapped
	}
	if !resp.IsSuccess() {
		wrapped := fmt.Errorf("%w (status %d): %s", ErrTransport, resp.StatusCode(), errorMessage(body))
		a.setStatus(StatusError, wrapped.Error())
		return nil, string(StatusError), wrapped
	}

	// 第一層：傳輸外層
	var envelope chatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		a.setStatus(StatusError, wrapped.Error())
		return nil, string(StatusError), wrapped
	}
	if len(envelope.Choices) == 0 {
		wrapped := fmt.Errorf("%w: no choices", ErrMalformedResponse)
		a.setStatus(StatusError, wrapped.Error())
		return nil, string(StatusError), wrapped
	}

	// 第二層：模型回覆內容
	content := envelope.Choices[0].Message.Content
	dish, found, err := parseDishContent(content)
	if err != nil {
		common.LogWarn("External lookup returned unparseable content",
			zap.String("dish_name", dishName),
			zap.String("content", common.Truncate(content, 200)),
			zap.Error(err),
		)
		return nil, "malformed-content", err
	}
	if !found {
		common.LogInfo("External lookup does not know dish", zap.String("dish_name", dishName))
		return nil, "not-found", nil
	}

	a.setStatus(StatusReady, "")
	common.LogInfo("External lookup resolved dish",
		zap.String("dish_name", dishName),
		zap.String("dish_id", dish.ID),
		zap.Int("total_tokens", envelope.Usage.TotalTokens),
	)
	return dish, "found", nil
}

// parseDishContent 解析第二層 JSON；found 為 false 表示服務回覆不認識此菜餚
func parseDishContent(content string) (*catalog.Dish, bool, error) {
	content = common.StripCodeFence(content)
	if content == "" {
		return nil, false, fmt.Errorf("%w: empty content", ErrMalformedContent)
	}

	var payload dishPayload
	if err := common.ParseJSON(content, &payload); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	if payload.Found != nil && !*payload.Found {
		return nil, false, nil
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return nil, false, fmt.Errorf("%w: missing dish name", ErrMalformedContent)
	}

	id := strings.TrimSpace(payload.ID)
	if id == "" {
		id = common.Slugify(name)
	}
	// 名稱沒有可用的 ASCII 字元
	if id == "" {
		id = "external-" + common.GenerateUUID()
	}
	allergens := payload.Allergens
	if allergens == nil {
		allergens = []string{}
	}

	return &catalog.Dish{
		ID:            id,
		Name:          name,
		LocalizedName: strings.TrimSpace(payload.ChineseName),
		Description:   payload.Description,
		Allergens:     allergens,
		Ingredients:   payload.Ingredients,
		Region:        payload.Region,
		Source:        catalog.SourceExternal,
	}, true, nil
}

// isQuotaResponse 判斷是否為配額或限流錯誤
func isQuotaResponse(statusCode int, body []byte) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	if statusCode >= 200 && statusCode < 300 {
		return false
	}
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		return false
	}
	if code, ok := apiErr.Error.Code.(string); ok && quotaCodes[code] {
		return true
	}
	return quotaCodes[apiErr.Error.Type]
}

// errorMessage 取出服務端錯誤訊息，無法解析時回傳截斷的原始內容
func errorMessage(body []byte) string {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return common.Truncate(string(body), 200)
}

func logStatusChange(previous, current Status, lastError string) {
	fields := []zap.Field{
		zap.String("from", string(previous)),
		zap.String("to", string(current)),
	}
	if lastError != "" {
		fields = append(fields, zap.String("reason", lastError))
	}
	if current == StatusReady {
		common.LogInfo("External lookup adapter status changed", fields...)
		return
	}
	common.LogWarn("External lookup adapter status changed", fields...)
}
