package allergy

import (
	"net/http"

	"allergy-checker/internal/core/session"
	"allergy-checker/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchRequest 菜餚搜尋請求
type SearchRequest struct {
	DishName string `json:"dish_name"` // 使用者輸入的菜名，原樣保留
}

// ToggleResponse 切換過敏原後的選擇
type ToggleResponse struct {
	session.Selection
	AllergenID string `json:"allergen_id"`
	Selected   bool   `json:"selected"`
}

// Handler 過敏原檢查 API
type Handler struct {
	ctrl  *session.Controller
	debug bool
}

// NewHandler 創建 handler；debug 時錯誤響應帶有詳細信息
func NewHandler(ctrl *session.Controller, debug bool) *Handler {
	return &Handler{ctrl: ctrl, debug: debug}
}

// RegisterRoutes 註冊路由；search 為搜尋路由額外的中間件（如去重）
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, search ...gin.HandlerFunc) {
	rg.GET("/allergens", h.ListAllergens)
	rg.GET("/dishes", h.ListDishes)
	rg.GET("/dishes/:id", h.GetDish)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.DELETE("/:id", h.DeleteSession)
		sessions.GET("/:id/selection", h.GetSelection)
		sessions.POST("/:id/allergens/:allergen_id/toggle", h.ToggleAllergen)
		sessions.POST("/:id/search", append(append([]gin.HandlerFunc{}, search...), h.SubmitSearch)...)
		sessions.GET("/:id/result", h.GetResult)
	}

	adapter := rg.Group("/adapter")
	{
		adapter.GET("/status", h.AdapterStatus)
		adapter.POST("/reset", h.ResetAdapter)
	}
}

// ListAllergens GET /allergens
func (h *Handler) ListAllergens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"allergens": h.ctrl.GetAllergens()})
}

// ListDishes GET /dishes
func (h *Handler) ListDishes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dishes": h.ctrl.ListDishes()})
}

// GetDish GET /dishes/:id
func (h *Handler) GetDish(c *gin.Context) {
	dish, err := h.ctrl.GetDish(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

// CreateSession POST /sessions
func (h *Handler) CreateSession(c *gin.Context) {
	state, err := h.ctrl.CreateSession(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// DeleteSession DELETE /sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.ctrl.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSelection GET /sessions/:id/selection
func (h *Handler) GetSelection(c *gin.Context) {
	sel, err := h.ctrl.GetSelection(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

// ToggleAllergen POST /sessions/:id/allergens/:allergen_id/toggle
func (h *Handler) ToggleAllergen(c *gin.Context) {
	allergenID := c.Param("allergen_id")
	sel, err := h.ctrl.ToggleAllergen(c.Request.Context(), c.Param("id"), allergenID)
	if err != nil {
		h.fail(c, err)
		return
	}

	selected := false
	for _, id := range sel.AllergenIDs {
		if id == allergenID {
			selected = true
			break
		}
	}
	c.JSON(http.StatusOK, ToggleResponse{Selection: sel, AllergenID: allergenID, Selected: selected})
}

// SubmitSearch POST /sessions/:id/search
func (h *Handler) SubmitSearch(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("Invalid search request",
			zap.Error(err),
			zap.String("request_id", requestid.Get(c)),
		)
		h.fail(c, common.ErrInvalidRequest.Wrap(err))
		return
	}

	res, err := h.ctrl.SubmitSearch(c.Request.Context(), c.Param("id"), req.DishName)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetResult GET /sessions/:id/result
func (h *Handler) GetResult(c *gin.Context) {
	res, err := h.ctrl.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AdapterStatus GET /adapter/status
func (h *Handler) AdapterStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.GetAdapterStatus())
}

// ResetAdapter POST /adapter/reset
func (h *Handler) ResetAdapter(c *gin.Context) {
	c.JSON(http.StatusOK, h.ctrl.ResetAdapter())
}

func (h *Handler) fail(c *gin.Context, err error) {
	common.WriteError(c, err, h.debug)
}
