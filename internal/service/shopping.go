package service

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/sakif/family-meal-planner/internal/model"
)

// ShoppingSource decides which items a plan needs.
type ShoppingSource interface {
	Items(plan model.MealPlan) []model.ShoppingItem
}

// StaticShoppingSource returns the same weekly staples whatever the plan.
type StaticShoppingSource struct{}

var staples = []model.ShoppingItem{
	{ID: "1", Name: "Onions (2 kg)", Category: "Vegetables"},
	{ID: "2", Name: "Tomatoes (1 kg)", Category: "Vegetables"},
	{ID: "3", Name: "Brinjal (500g)", Category: "Vegetables"},
	{ID: "4", Name: "Potatoes (1 kg)", Category: "Vegetables"},
	{ID: "5", Name: "Green chilies (100g)", Category: "Vegetables"},
	{ID: "6", Name: "Ginger-Garlic paste", Category: "Vegetables"},
	{ID: "7", Name: "Milk (1 liter)", Category: "Dairy & Eggs"},
	{ID: "8", Name: "Yogurt (500g)", Category: "Dairy & Eggs"},
	{ID: "9", Name: "Paneer (250g)", Category: "Dairy & Eggs"},
	{ID: "10", Name: "Chicken (1 kg)", Category: "Meat & Poultry"},
	{ID: "11", Name: "Mutton (500g)", Category: "Meat & Poultry"},
	{ID: "12", Name: "Rice (2 kg)", Category: "Grains & Pulses"},
	{ID: "13", Name: "Wheat flour (1 kg)", Category: "Grains & Pulses"},
	{ID: "14", Name: "Besan (500g)", Category: "Grains & Pulses"},
	{ID: "15", Name: "Toor dal (500g)", Category: "Grains & Pulses"},
	{ID: "16", Name: "Garam masala powder", Category: "Spices & Condiments"},
	{ID: "17", Name: "Red chili powder", Category: "Spices & Condiments"},
	{ID: "18", Name: "Turmeric powder", Category: "Spices & Condiments"},
	{ID: "19", Name: "Coriander powder", Category: "Spices & Condiments"},
	{ID: "20", Name: "Mustard seeds", Category: "Spices & Condiments"},
	{ID: "21", Name: "Tea leaves", Category: "Beverages"},
	{ID: "22", Name: "Coconut (1 piece)", Category: "Others"},
	{ID: "23", Name: "Jaggery (250g)", Category: "Others"},
}

func (StaticShoppingSource) Items(model.MealPlan) []model.ShoppingItem {
	return slices.Clone(staples)
}

// ShoppingListGenerator turns a meal plan into an unchecked shopping list.
type ShoppingListGenerator struct {
	source  ShoppingSource
	latency time.Duration
	logger  *slog.Logger
}

// NewShoppingListGenerator creates a generator that waits latency before
// each list.
func NewShoppingListGenerator(source ShoppingSource, latency time.Duration, logger *slog.Logger) *ShoppingListGenerator {
	return &ShoppingListGenerator{source: source, latency: latency, logger: logger}
}

// Generate returns a new list for plan with every item unchecked.
func (g *ShoppingListGenerator) Generate(ctx context.Context, plan model.MealPlan) ([]model.ShoppingItem, error) {
	if err := wait(ctx, g.latency); err != nil {
		return nil, err
	}

	items := g.source.Items(plan)
	for i := range items {
		items[i].Checked = false
	}

	g.logger.Info("shopping list generated",
		slog.String("plan", plan.ID),
		slog.Int("items", len(items)),
	)
	return items, nil
}

// Toggle returns a copy of items with the checked flag of id flipped.
// Unknown ids leave the copy identical to items.
func Toggle(items []model.ShoppingItem, id string) []model.ShoppingItem {
	out := slices.Clone(items)
	for i := range out {
		if out[i].ID == id {
			out[i].Checked = !out[i].Checked
		}
	}
	return out
}

// ResetAll returns a copy of items with nothing checked.
func ResetAll(items []model.ShoppingItem) []model.ShoppingItem {
	return setAll(items, false)
}

// CheckAll returns a copy of items with everything checked.
func CheckAll(items []model.ShoppingItem) []model.ShoppingItem {
	return setAll(items, true)
}

func setAll(items []model.ShoppingItem, checked bool) []model.ShoppingItem {
	out := slices.Clone(items)
	for i := range out {
		out[i].Checked = checked
	}
	return out
}

// GroupByCategory groups items by store category. Categories appear in the
// order they are first met and items keep their list order.
func GroupByCategory(items []model.ShoppingItem) []model.CategoryGroup {
	groups := []model.CategoryGroup{}
	index := make(map[string]int)
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, model.CategoryGroup{Category: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// Progress counts checked items. Percent is rounded to the nearest whole
// number and is 0 for an empty list.
func Progress(items []model.ShoppingItem) model.ShoppingProgress {
	p := model.ShoppingProgress{Total: len(items)}
	for _, item := range items {
		if item.Checked {
			p.Checked++
		}
	}
	if p.Total > 0 {
		p.Percent = (p.Checked*100 + p.Total/2) / p.Total
	}
	return p
}
