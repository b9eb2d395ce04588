// Package session 管理每個使用者會話的過敏原選擇與菜餚搜尋流程。
//
// 搜尋先比對內建目錄，找不到且外部查詢通道為 ready 時才呼叫外部服務。
// 每次搜尋完成時，結果表依「完成當下」的選擇重新計算。
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"allergy-checker/internal/core/ai/lookup"
	"allergy-checker/internal/core/catalog"
	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/infrastructure/metrics"
	"allergy-checker/internal/pkg/common"

	"go.uber.org/zap"
)

// DishLookup 外部菜餚查詢
type DishLookup interface {
	Lookup(ctx context.Context, dishName string, allergenIDs []string) (*catalog.Dish, error)
	Enabled() bool
	Status() lookup.Status
	StatusInfo() lookup.StatusInfo
	Reset()
}

// 搜尋來源，用於指標
const (
	sourceCatalog  = "catalog"
	sourceExternal = "external"
	sourceNone     = "none"
)

// errSearchSuperseded 搜尋完成前已被較新的搜尋取代
var errSearchSuperseded = errors.New("search superseded")

// Selection 目前選取的過敏原
type Selection struct {
	SessionID   string             `json:"session_id"`
	AllergenIDs []string           `json:"allergen_ids"`
	Allergens   []catalog.Allergen `json:"allergens"`
}

// Result 搜尋結果
type Result struct {
	SessionID         string          `json:"session_id"`
	Status            LookupStatus    `json:"status"`
	Query             string          `json:"query"`
	Dish              *catalog.Dish   `json:"dish,omitempty"`
	PerAllergenResult map[string]bool `json:"per_allergen_result"`
	Message           string          `json:"message,omitempty"`
	SearchedAt        *time.Time      `json:"searched_at,omitempty"`
}

// Controller 會話控制器
type Controller struct {
	catalog    *catalog.Store
	lookup     DishLookup
	store      Store
	metrics    *metrics.Metrics
	staleAfter time.Duration
	now        func() time.Time
}

// NewController 創建會話控制器；lookup 與 m 可為 nil
func NewController(cat *catalog.Store, dl DishLookup, store Store, cfg config.SessionConfig, m *metrics.Metrics) *Controller {
	return &Controller{
		catalog:    cat,
		lookup:     dl,
		store:      store,
		metrics:    m,
		staleAfter: cfg.StaleSearchAfter,
		now:        time.Now,
	}
}

// CreateSession 建立新會話
func (c *Controller) CreateSession(ctx context.Context) (*State, error) {
	state := NewState(common.GenerateUUID())
	if err := c.store.Create(ctx, state); err != nil {
		return nil, err
	}
	common.LogDebug("Session created", zap.String("session_id", state.ID))
	return state.Clone(), nil
}

// DeleteSession 結束會話
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	return c.store.Delete(ctx, id)
}

// GetAllergens 所有可選的過敏原
func (c *Controller) GetAllergens() []catalog.Allergen {
	return c.catalog.ListAllergens()
}

// ListDishes 內建菜餚目錄
func (c *Controller) ListDishes() []catalog.Dish {
	return c.catalog.ListDishes()
}

// GetDish 以 id 取得內建菜餚
func (c *Controller) GetDish(id string) (catalog.Dish, error) {
	dish, ok := c.catalog.Dish(id)
	if !ok {
		return catalog.Dish{}, common.ErrDishNotFound
	}
	return dish, nil
}

// GetSelection 取得會話目前的選擇
func (c *Controller) GetSelection(ctx context.Context, id string) (Selection, error) {
	state, err := c.store.Get(ctx, id)
	if err != nil {
		return Selection{}, err
	}
	return c.selection(state), nil
}

// ToggleAllergen 切換過敏原選取；正在顯示的結果會被清除
func (c *Controller) ToggleAllergen(ctx context.Context, id, allergenID string) (Selection, error) {
	if !c.catalog.HasAllergen(allergenID) {
		return Selection{}, common.ErrUnknownAllergen.Wrap(fmt.Errorf("allergen %q", allergenID))
	}

	var selected bool
	state, err := c.store.Update(ctx, id, func(s *State) error {
		selected = s.toggle(allergenID)
		if s.hasResult() {
			s.clearResult()
			s.LookupStatus = LookupIdle
		}
		return nil
	})
	if err != nil {
		return Selection{}, err
	}

	common.LogDebug("Allergen toggled",
		zap.String("session_id", id),
		zap.String("allergen_id", allergenID),
		zap.Bool("selected", selected),
	)
	return c.selection(state), nil
}

// SubmitSearch 搜尋菜餚並計算每個選取過敏原的結果。
// 查詢為空或未選擇過敏原時回傳驗證錯誤，會話狀態不變。
func (c *Controller) SubmitSearch(ctx context.Context, id, dishName string) (Result, error) {
	if strings.TrimSpace(dishName) == "" {
		return Result{}, common.ErrEmptyQuery
	}

	searchID := common.GenerateUUID()
	var allergenIDs []string
	_, err := c.store.Update(ctx, id, func(s *State) error {
		if len(s.SelectedAllergenIDs) == 0 {
			return common.ErrNoAllergensSelected
		}
		now := c.now()
		if s.LookupStatus == LookupLoading && !s.searchStale(now, c.staleAfter) {
			return common.ErrSearchInProgress
		}
		s.clearResult()
		s.LookupStatus = LookupLoading
		s.CurrentQuery = dishName
		s.SearchID = searchID
		s.SearchStartedAt = now
		allergenIDs = append([]string(nil), s.SelectedAllergenIDs...)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	dish, source := c.resolve(ctx, dishName, allergenIDs)

	// 搜尋已開始，即使請求被取消也要寫回結果，避免會話卡在 loading
	state, err := c.store.Update(context.WithoutCancel(ctx), id, func(s *State) error {
		if s.SearchID != searchID {
			return errSearchSuperseded
		}
		s.SearchedAt = c.now()
		if dish == nil {
			s.clearResult()
			s.LookupStatus = LookupNotFound
			s.Message = notFoundMessage(dishName)
			return nil
		}
		d := dish.Clone()
		s.ResultDish = &d
		s.PerAllergenResult = catalog.AllergenResults(d, s.SelectedAllergenIDs)
		s.LookupStatus = LookupFound
		s.Message = ""
		return nil
	})
	if errors.Is(err, errSearchSuperseded) {
		common.LogInfo("Search superseded before completion", zap.String("session_id", id))
		return c.GetResult(ctx, id)
	}
	if err != nil {
		return Result{}, err
	}

	outcome := string(state.LookupStatus)
	c.metrics.RecordSearch(outcome, source)
	common.LogInfo("Search completed",
		zap.String("session_id", id),
		zap.String("query", dishName),
		zap.String("outcome", outcome),
		zap.String("source", source),
	)
	return toResult(state), nil
}

// GetResult 取得目前的搜尋結果
func (c *Controller) GetResult(ctx context.Context, id string) (Result, error) {
	state, err := c.store.Get(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return toResult(state), nil
}

// GetAdapterStatus 外部查詢通道狀態
func (c *Controller) GetAdapterStatus() lookup.StatusInfo {
	if c.lookup == nil {
		return lookup.StatusInfo{Status: lookup.StatusReady}
	}
	return c.lookup.StatusInfo()
}

// ResetAdapter 手動將外部查詢通道恢復為 ready
func (c *Controller) ResetAdapter() lookup.StatusInfo {
	if c.lookup == nil {
		return c.GetAdapterStatus()
	}
	previous := c.lookup.Status()
	c.lookup.Reset()
	common.LogInfo("External lookup adapter reset", zap.String("previous", string(previous)))
	return c.lookup.StatusInfo()
}

// Ping 檢查會話儲存
func (c *Controller) Ping(ctx context.Context) error {
	return c.store.Ping(ctx)
}

// resolve 先查目錄，再視外部通道狀態查詢外部服務；查無結果時回傳 nil
func (c *Controller) resolve(ctx context.Context, dishName string, allergenIDs []string) (*catalog.Dish, string) {
	if dish, ok := c.catalog.FindDishByName(dishName); ok {
		return &dish, sourceCatalog
	}

	if c.lookup == nil || !c.lookup.Enabled() {
		return nil, sourceNone
	}
	if status := c.lookup.Status(); status != lookup.StatusReady {
		common.LogInfo("External lookup skipped",
			zap.String("dish_name", dishName),
			zap.String("adapter_status", string(status)),
		)
		return nil, sourceNone
	}

	dish, err := c.lookup.Lookup(ctx, dishName, allergenIDs)
	if err != nil {
		common.LogWarn("External lookup failed, treating as not found",
			zap.String("dish_name", dishName),
			zap.Error(err),
		)
		return nil, sourceNone
	}
	if dish == nil {
		return nil, sourceNone
	}
	for _, a := range dish.Allergens {
		if !c.catalog.HasAllergen(a) {
			common.LogDebug("External dish lists allergen outside catalog",
				zap.String("dish_id", dish.ID),
				zap.String("allergen_id", a),
			)
		}
	}
	return dish, sourceExternal
}

func (c *Controller) selection(state *State) Selection {
	allergens := make([]catalog.Allergen, 0, len(state.SelectedAllergenIDs))
	for _, id := range state.SelectedAllergenIDs {
		if a, ok := c.catalog.Allergen(id); ok {
			allergens = append(allergens, a)
		}
	}
	return Selection{
		SessionID:   state.ID,
		AllergenIDs: append([]string{}, state.SelectedAllergenIDs...),
		Allergens:   allergens,
	}
}

func toResult(state *State) Result {
	r := Result{
		SessionID:         state.ID,
		Status:            state.LookupStatus,
		Query:             state.CurrentQuery,
		Dish:              state.ResultDish,
		PerAllergenResult: state.PerAllergenResult,
		Message:           state.Message,
	}
	if r.PerAllergenResult == nil {
		r.PerAllergenResult = map[string]bool{}
	}
	if !state.SearchedAt.IsZero() {
		t := state.SearchedAt
		r.SearchedAt = &t
	}
	return r
}

func notFoundMessage(query string) string {
	return fmt.Sprintf("We couldn't find \"%s\" in our database or through AI assistance. Please try another dish or check your spelling.", query)
}
