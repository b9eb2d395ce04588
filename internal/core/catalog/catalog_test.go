package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAllergensStableOrder(t *testing.T) {
	store := NewStore()

	ids := make([]string, 0)
	for _, a := range store.ListAllergens() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"peanuts", "shellfish", "soy", "gluten", "tree_nuts", "sesame", "fish", "eggs"}, ids)
	assert.Equal(t, ids[0], store.ListAllergens()[0].ID)
}

func TestListDishesIsACopy(t *testing.T) {
	store := NewStore()

	dishes := store.ListDishes()
	require.Len(t, dishes, 15)
	assert.Equal(t, "kung_pao_chicken", dishes[0].ID)
	assert.Equal(t, "egg_tarts", dishes[len(dishes)-1].ID)

	dishes[0].Name = "changed"
	dishes[0].Allergens[0] = "changed"

	again := store.ListDishes()
	assert.Equal(t, "Kung Pao Chicken", again[0].Name)
	assert.Equal(t, "peanuts", again[0].Allergens[0])
}

func TestCatalogDishesAreTaggedWithSource(t *testing.T) {
	for _, d := range NewStore().ListDishes() {
		assert.Equal(t, SourceCatalog, d.Source, d.ID)
	}
}

func TestLookupByID(t *testing.T) {
	store := NewStore()

	a, ok := store.Allergen("sesame")
	require.True(t, ok)
	assert.Equal(t, "Sesame", a.Name)

	_, ok = store.Allergen("Sesame")
	assert.False(t, ok)

	d, ok := store.Dish("mapo_tofu")
	require.True(t, ok)
	assert.Equal(t, "Mapo Tofu", d.Name)

	_, ok = store.Dish("missing")
	assert.False(t, ok)
}

func TestFindDishByNameEveryCatalogEntryResolves(t *testing.T) {
	store := NewStore()

	for i, d := range store.ListDishes() {
		found, ok := store.FindDishByName(d.Name)
		require.True(t, ok, d.Name)

		// either the dish itself or an earlier entry sharing the substring
		idx := -1
		for j, candidate := range store.ListDishes() {
			if candidate.ID == found.ID {
				idx = j
			}
		}
		assert.LessOrEqual(t, idx, i, d.Name)
	}
}

func TestFindDishByName(t *testing.T) {
	store := NewStore()

	tests := []struct {
		name   string
		query  string
		wantID string
		found  bool
	}{
		{name: "partial english", query: "kung pao", wantID: "kung_pao_chicken", found: true},
		{name: "case insensitive", query: "MAPO TOFU", wantID: "mapo_tofu", found: true},
		{name: "surrounding whitespace", query: "  peking duck  ", wantID: "peking_duck", found: true},
		{name: "first match wins", query: "noodles", wantID: "dandan_noodles", found: true},
		{name: "later catalog entry", query: "soup", wantID: "wonton_soup", found: true},
		{name: "localized name", query: "麻婆豆腐", wantID: "mapo_tofu", found: true},
		{name: "localized substring", query: "烤鸭", wantID: "peking_duck", found: true},
		{name: "no match", query: "nonexistent dish xyz", found: false},
		{name: "empty query hits first entry", query: "", wantID: "kung_pao_chicken", found: true},
		{name: "whitespace query hits first entry", query: "   ", wantID: "kung_pao_chicken", found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := store.FindDishByName(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.wantID, d.ID)
			}
		})
	}
}

func TestFindDishByNameSkipsEmptyLocalizedName(t *testing.T) {
	store := NewStoreFrom(nil, []Dish{
		{ID: "a", Name: "Alpha", LocalizedName: ""},
		{ID: "b", Name: "Beta", LocalizedName: "贝塔"},
	})

	d, ok := store.FindDishByName("贝塔")
	require.True(t, ok)
	assert.Equal(t, "b", d.ID)
}

func TestDishHasAllergen(t *testing.T) {
	store := NewStore()

	for _, d := range store.ListDishes() {
		listed := make(map[string]bool)
		for _, id := range d.Allergens {
			listed[id] = true
			assert.True(t, DishHasAllergen(d, id), "%s/%s", d.ID, id)
		}
		for _, a := range store.ListAllergens() {
			if !listed[a.ID] {
				assert.False(t, DishHasAllergen(d, a.ID), "%s/%s", d.ID, a.ID)
			}
		}
	}

	kungPao, _ := store.Dish("kung_pao_chicken")
	assert.False(t, DishHasAllergen(kungPao, "Peanuts"))
	assert.False(t, DishHasAllergen(kungPao, " peanuts"))
}

func TestAllergenResults(t *testing.T) {
	store := NewStore()
	mapo, _ := store.Dish("mapo_tofu")

	results := AllergenResults(mapo, []string{"peanuts", "soy", "not_in_catalog"})
	assert.Equal(t, map[string]bool{"peanuts": false, "soy": true, "not_in_catalog": false}, results)
	assert.Empty(t, AllergenResults(mapo, nil))
}
