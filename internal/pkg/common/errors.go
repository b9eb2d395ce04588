package common

import (
	"context"
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以看到原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，Wrap 過的錯誤仍與預定義錯誤相等
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap 以相同代碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return &CustomError{Code: e.Code, Message: e.Message, Status: e.Status, Err: err}
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError  = "INTERNAL_ERROR"  // 500
	ErrCodeGatewayTimeout = "GATEWAY_TIMEOUT" // 504

	// 業務錯誤
	ErrCodeEmptyQuery          = "EMPTY_QUERY"
	ErrCodeNoAllergens         = "NO_ALLERGENS_SELECTED"
	ErrCodeUnknownAllergen     = "UNKNOWN_ALLERGEN"
	ErrCodeSessionNotFound     = "SESSION_NOT_FOUND"
	ErrCodeSearchInProgress    = "SEARCH_IN_PROGRESS"
	ErrCodeDishNotFound        = "DISH_NOT_FOUND"
	ErrCodeDuplicateRequest    = "DUPLICATE_REQUEST"
	ErrCodeSessionStoreFailure = "SESSION_STORE_ERROR"
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest  = NewError(ErrCodeInvalidRequest, "invalid request", http.StatusBadRequest, nil)
	ErrTooManyRequests = NewError(ErrCodeTooManyRequests, "too many requests", http.StatusTooManyRequests, nil)

	// 服務器錯誤
	ErrInternalError  = NewError(ErrCodeInternalError, "internal server error", http.StatusInternalServerError, nil)
	ErrGatewayTimeout = NewError(ErrCodeGatewayTimeout, "request timed out", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrEmptyQuery          = NewError(ErrCodeEmptyQuery, "please enter a dish name to check", http.StatusBadRequest, nil)
	ErrNoAllergensSelected = NewError(ErrCodeNoAllergens, "please select at least one allergy to check", http.StatusBadRequest, nil)
	ErrUnknownAllergen     = NewError(ErrCodeUnknownAllergen, "unknown allergen", http.StatusBadRequest, nil)
	ErrSessionNotFound     = NewError(ErrCodeSessionNotFound, "session not found or expired", http.StatusNotFound, nil)
	ErrSearchInProgress    = NewError(ErrCodeSearchInProgress, "a search is already in progress", http.StatusConflict, nil)
	ErrDishNotFound        = NewError(ErrCodeDishNotFound, "dish not found", http.StatusNotFound, nil)
	ErrDuplicateRequest    = NewError(ErrCodeDuplicateRequest, "an identical request is already being processed", http.StatusConflict, nil)
	ErrSessionStore        = NewError(ErrCodeSessionStoreFailure, "session store unavailable", http.StatusServiceUnavailable, nil)
)

// HTTPStatus 取得錯誤對應的 HTTP 狀態碼與錯誤響應
func HTTPStatus(err error, debug bool) (int, ErrorResponse) {
	var c *CustomError
	if errors.As(err, &c) {
		resp := ErrorResponse{Code: c.Code, Message: c.Message}
		if debug && c.Err != nil {
			resp.Details = c.Err.Error()
		}
		return c.Status, resp
	}
	// 請求超時（見 RequestContext 中間件）
	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPStatus(ErrGatewayTimeout.Wrap(err), debug)
	}
	resp := ErrorResponse{Code: ErrCodeInternalError, Message: ErrInternalError.Message}
	if debug && err != nil {
		resp.Details = err.Error()
	}
	return http.StatusInternalServerError, resp
}
