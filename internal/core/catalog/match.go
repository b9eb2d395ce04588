package catalog

import "strings"

// FindDishByName 依目錄順序回傳第一個符合的菜餚。
// 英文名稱以小寫子字串比對；在地名稱以未轉小寫的查詢字串比對。
// 空查詢會命中第一筆，呼叫端須先擋掉。
func (s *Store) FindDishByName(query string) (Dish, bool) {
	raw := strings.TrimSpace(query)
	normalized := strings.ToLower(raw)

	for _, d := range s.dishes {
		if strings.Contains(strings.ToLower(d.Name), normalized) {
			return d.Clone(), true
		}
		if d.LocalizedName != "" && strings.Contains(d.LocalizedName, raw) {
			return d.Clone(), true
		}
	}
	return Dish{}, false
}

// DishHasAllergen 判斷菜餚是否列出該過敏原 id（完全比對）
func DishHasAllergen(dish Dish, allergenID string) bool {
	for _, id := range dish.Allergens {
		if id == allergenID {
			return true
		}
	}
	return false
}

// AllergenResults 針對每個選取的過敏原計算是否存在於菜餚中
func AllergenResults(dish Dish, allergenIDs []string) map[string]bool {
	results := make(map[string]bool, len(allergenIDs))
	for _, id := range allergenIDs {
		results[id] = DishHasAllergen(dish, id)
	}
	return results
}
