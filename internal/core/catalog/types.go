package catalog

// Allergen 過敏原類別
type Allergen struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Dish 菜餚；Allergens 可能含有不在過敏原目錄中的 id
type Dish struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	LocalizedName string   `json:"localized_name,omitempty"`
	Description   string   `json:"description"`
	Allergens     []string `json:"allergens"`
	Ingredients   []string `json:"ingredients,omitempty"`
	Region        string   `json:"region,omitempty"`
	Source        Source   `json:"source"`
}

// Source 菜餚資料來源
type Source string

const (
	SourceCatalog  Source = "catalog"
	SourceExternal Source = "external"
)

// Clone 深拷貝，避免呼叫端修改目錄資料
func (d Dish) Clone() Dish {
	out := d
	out.Allergens = append([]string(nil), d.Allergens...)
	if d.Ingredients != nil {
		out.Ingredients = append([]string(nil), d.Ingredients...)
	}
	return out
}
