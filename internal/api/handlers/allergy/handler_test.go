package allergy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"allergy-checker/internal/core/ai/lookup"
	"allergy-checker/internal/core/catalog"
	"allergy-checker/internal/core/session"
	"allergy-checker/internal/infrastructure/config"
	"allergy-checker/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T, upstream http.HandlerFunc) *testServer {
	t.Helper()

	cfg := config.SessionConfig{
		Backend:          config.SessionBackendMemory,
		TTL:              time.Hour,
		MaxSessions:      100,
		StaleSearchAfter: time.Minute,
	}
	store := session.NewMemoryStore(cfg, nil)
	t.Cleanup(func() { _ = store.Close() })

	var dl session.DishLookup
	if upstream != nil {
		srv := httptest.NewServer(upstream)
		t.Cleanup(srv.Close)
		dl = lookup.NewAdapter(config.OpenAIConfig{
			APIKey:  "sk-test",
			BaseURL: srv.URL,
			Model:   "test-model",
			Timeout: time.Second,
		}, nil)
	}

	ctrl := session.NewController(catalog.NewStore(), dl, store, cfg, nil)
	r := gin.New()
	NewHandler(ctrl, false).RegisterRoutes(r.Group("/api/v1"))
	return &testServer{router: r}
}

func (s *testServer) do(t *testing.T, method, path, body string, out interface{}) int {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func (s *testServer) newSession(t *testing.T, allergens ...string) string {
	t.Helper()
	var state session.State
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/sessions", "", &state))
	for _, a := range allergens {
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/sessions/"+state.ID+"/allergens/"+a+"/toggle", "", nil))
	}
	return state.ID
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	var allergens struct {
		Allergens []catalog.Allergen `json:"allergens"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/allergens", "", &allergens))
	require.Len(t, allergens.Allergens, 8)
	assert.Equal(t, "peanuts", allergens.Allergens[0].ID)

	var dishes struct {
		Dishes []catalog.Dish `json:"dishes"`
	}
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/dishes", "", &dishes))
	require.Len(t, dishes.Dishes, 15)
	assert.Equal(t, "kung_pao_chicken", dishes.Dishes[0].ID)
	assert.Equal(t, "egg_tarts", dishes.Dishes[14].ID)

	var dish catalog.Dish
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/dishes/mapo_tofu", "", &dish))
	assert.Equal(t, "麻婆豆腐", dish.LocalizedName)

	var errResp common.ErrorResponse
	require.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/dishes/pizza", "", &errResp))
	assert.Equal(t, common.ErrCodeDishNotFound, errResp.Code)
}

func TestSearchFlow(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.newSession(t, "peanuts")

	var res session.Result
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", `{"dish_name":"kung pao"}`, &res))
	assert.Equal(t, session.LookupFound, res.Status)
	require.NotNil(t, res.Dish)
	assert.Equal(t, "kung_pao_chicken", res.Dish.ID)
	assert.Equal(t, map[string]bool{"peanuts": true}, res.PerAllergenResult)

	var current session.Result
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/result", "", &current))
	assert.Equal(t, res.Dish.ID, current.Dish.ID)

	var toggled ToggleResponse
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/allergens/soy/toggle", "", &toggled))
	assert.True(t, toggled.Selected)
	assert.Equal(t, []string{"peanuts", "soy"}, toggled.AllergenIDs)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/result", "", &current))
	assert.Equal(t, session.LookupIdle, current.Status)
	assert.Nil(t, current.Dish)

	var sel session.Selection
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/selection", "", &sel))
	assert.Equal(t, []string{"peanuts", "soy"}, sel.AllergenIDs)
	require.Len(t, sel.Allergens, 2)
	assert.Equal(t, "Soy", sel.Allergens[1].Name)
}

func TestSearchNotFoundNamesQuery(t *testing.T) {
	s := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	id := s.newSession(t, "gluten")

	var res session.Result
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/search", `{"dish_name":"nonexistent dish xyz"}`, &res))
	assert.Equal(t, session.LookupNotFound, res.Status)
	assert.Empty(t, res.PerAllergenResult)
	assert.Contains(t, res.Message, `"nonexistent dish xyz"`)

	var info lookup.StatusInfo
	require.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/adapter/status", "", &info))
	assert.Equal(t, lookup.StatusError, info.Status)
	assert.True(t, info.Enabled)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/v1/adapter/reset", "", &info))
	assert.Equal(t, lookup.StatusReady, info.Status)
}

func TestSearchValidationErrors(t *testing.T) {
	s := newTestServer(t, nil)
	withAllergen := s.newSession(t, "peanuts")
	withoutAllergen := s.newSession(t)

	tests := []struct {
		name     string
		session  string
		body     string
		wantCode int
		wantErr  string
	}{
		{"empty query", withAllergen, `{"dish_name":"  "}`, http.StatusBadRequest, common.ErrCodeEmptyQuery},
		{"missing field", withAllergen, `{}`, http.StatusBadRequest, common.ErrCodeEmptyQuery},
		{"malformed body", withAllergen, `{"dish_name":`, http.StatusBadRequest, common.ErrCodeInvalidRequest},
		{"no allergens", withoutAllergen, `{"dish_name":"kung pao"}`, http.StatusBadRequest, common.ErrCodeNoAllergens},
		{"unknown session", "missing", `{"dish_name":"kung pao"}`, http.StatusNotFound, common.ErrCodeSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp common.ErrorResponse
			code := s.do(t, http.MethodPost, "/api/v1/sessions/"+tt.session+"/search", tt.body, &errResp)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantErr, errResp.Code)
		})
	}
}

func TestToggleUnknownAllergen(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.newSession(t)

	var errResp common.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/allergens/celery/toggle", "", &errResp))
	assert.Equal(t, common.ErrCodeUnknownAllergen, errResp.Code)
}

func TestDeleteSession(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.newSession(t)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "", nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/selection", "", nil))
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/v1/sessions/"+id, "", nil))
}
