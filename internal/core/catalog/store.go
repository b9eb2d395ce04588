// Package catalog 提供內建的過敏原與菜餚目錄，以及以名稱比對菜餚的查詢邏輯。
// 目錄在程序啟動時建立，之後不可變更，可安全地被多個 goroutine 共用。
package catalog

// Store 不可變的目錄
type Store struct {
	allergens   []Allergen
	dishes      []Dish
	allergenIdx map[string]int
	dishIdx     map[string]int
}

// NewStore 以內建資料建立目錄
func NewStore() *Store {
	return NewStoreFrom(builtinAllergens, builtinDishes)
}

// NewStoreFrom 以指定資料建立目錄；資料會被複製
func NewStoreFrom(allergens []Allergen, dishes []Dish) *Store {
	s := &Store{
		allergens:   append([]Allergen(nil), allergens...),
		dishes:      make([]Dish, 0, len(dishes)),
		allergenIdx: make(map[string]int, len(allergens)),
		dishIdx:     make(map[string]int, len(dishes)),
	}
	for i, a := range s.allergens {
		s.allergenIdx[a.ID] = i
	}
	for _, d := range dishes {
		dish := d.Clone()
		dish.Source = SourceCatalog
		s.dishIdx[dish.ID] = len(s.dishes)
		s.dishes = append(s.dishes, dish)
	}
	return s
}

// ListAllergens 依固定順序回傳所有過敏原
func (s *Store) ListAllergens() []Allergen {
	return append([]Allergen(nil), s.allergens...)
}

// ListDishes 依目錄順序回傳所有菜餚
func (s *Store) ListDishes() []Dish {
	out := make([]Dish, len(s.dishes))
	for i, d := range s.dishes {
		out[i] = d.Clone()
	}
	return out
}

// Allergen 以 id 查詢過敏原
func (s *Store) Allergen(id string) (Allergen, bool) {
	i, ok := s.allergenIdx[id]
	if !ok {
		return Allergen{}, false
	}
	return s.allergens[i], true
}

// HasAllergen 檢查 id 是否為目錄中的過敏原
func (s *Store) HasAllergen(id string) bool {
	_, ok := s.allergenIdx[id]
	return ok
}

// Dish 以 id 查詢菜餚
func (s *Store) Dish(id string) (Dish, bool) {
	i, ok := s.dishIdx[id]
	if !ok {
		return Dish{}, false
	}
	return s.dishes[i].Clone(), true
}
