package session

import (
	"time"

	"allergy-checker/internal/core/catalog"
)

// LookupStatus 查詢狀態
type LookupStatus string

const (
	LookupIdle     LookupStatus = "idle"
	LookupLoading  LookupStatus = "loading"
	LookupFound    LookupStatus = "found"
	LookupNotFound LookupStatus = "not-found"
)

// State 單一會話的搜尋選擇狀態
type State struct {
	ID                  string          `json:"id"`
	SelectedAllergenIDs []string        `json:"selected_allergen_ids"`
	CurrentQuery        string          `json:"current_query"`
	ResultDish          *catalog.Dish   `json:"result_dish,omitempty"`
	PerAllergenResult   map[string]bool `json:"per_allergen_result"`
	LookupStatus        LookupStatus    `json:"lookup_status"`
	Message             string          `json:"message,omitempty"`
	SearchID            string          `json:"search_id,omitempty"`
	SearchStartedAt     time.Time       `json:"search_started_at"`
	SearchedAt          time.Time       `json:"searched_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// NewState 建立空白會話
func NewState(id string) *State {
	now := time.Now()
	return &State{
		ID:                  id,
		SelectedAllergenIDs: []string{},
		PerAllergenResult:   map[string]bool{},
		LookupStatus:        LookupIdle,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// Clone 深拷貝
func (s *State) Clone() *State {
	out := *s
	out.SelectedAllergenIDs = append([]string{}, s.SelectedAllergenIDs...)
	out.PerAllergenResult = make(map[string]bool, len(s.PerAllergenResult))
	for k, v := range s.PerAllergenResult {
		out.PerAllergenResult[k] = v
	}
	if s.ResultDish != nil {
		dish := s.ResultDish.Clone()
		out.ResultDish = &dish
	}
	return &out
}

// IsSelected 過敏原是否已選取
func (s *State) IsSelected(allergenID string) bool {
	for _, id := range s.SelectedAllergenIDs {
		if id == allergenID {
			return true
		}
	}
	return false
}

// toggle 切換選取並回傳切換後是否為選取狀態；保留插入順序
func (s *State) toggle(allergenID string) bool {
	for i, id := range s.SelectedAllergenIDs {
		if id == allergenID {
			s.SelectedAllergenIDs = append(s.SelectedAllergenIDs[:i], s.SelectedAllergenIDs[i+1:]...)
			return false
		}
	}
	s.SelectedAllergenIDs = append(s.SelectedAllergenIDs, allergenID)
	return true
}

// hasResult 是否正在顯示搜尋結果
func (s *State) hasResult() bool {
	return s.LookupStatus == LookupFound || s.LookupStatus == LookupNotFound
}

func (s *State) clearResult() {
	s.ResultDish = nil
	s.PerAllergenResult = map[string]bool{}
	s.Message = ""
}

// searchStale 載入中的搜尋是否已超過允許時間（視為被放棄）
func (s *State) searchStale(now time.Time, after time.Duration) bool {
	if s.LookupStatus != LookupLoading {
		return false
	}
	return after > 0 && now.Sub(s.SearchStartedAt) > after
}
