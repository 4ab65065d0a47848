package localstore

import (
	"strconv"
	"time"

	"github.com/sakif/family-meal-planner/internal/model"
)

const (
	seedAuthor = model.SystemContributor
	seedAvatar = "🏠"
)

var seedDishes = []struct {
	name, description string
	category          model.Category
	foodType          model.FoodType
}{
	{"Poha", "Flattened rice with vegetables and spices", model.Breakfast, model.Veg},
	{"Misal Pav", "Spicy curry made from moth beans with bread", model.Breakfast, model.Veg},
	{"Bharli Vangi", "Stuffed brinjal curry", model.Lunch, model.Veg},
	{"Chicken Kolhapuri", "Spicy chicken curry from Kolhapur region", model.Dinner, model.NonVeg},
	{"Pithla Bhakri", "Besan curry with sorghum flatbread", model.Lunch, model.Veg},
	{"Kanda Bhaji", "Onion fritters", model.Snack, model.Veg},
	{"Vada Pav", "Deep fried potato dumpling in bread", model.Snack, model.Veg},
	{"Dal Tadka", "Tempered lentil curry", model.Lunch, model.Veg},
	{"Mutton Rassa", "Spicy mutton curry", model.Dinner, model.NonVeg},
	{"Puran Poli", "Sweet flatbread stuffed with lentils and jaggery", model.Snack, model.Veg},
}

// SeedFoods is the collection every new family starts with: ten Maharashtrian
// dishes across all four meal slots, stamped with createdAt.
func SeedFoods(createdAt time.Time) []model.FoodItem {
	createdAt = model.Timestamp(createdAt)
	items := make([]model.FoodItem, 0, len(seedDishes))
	for i, d := range seedDishes {
		items = append(items, model.FoodItem{
			ID:            strconv.Itoa(i + 1),
			Name:          d.name,
			Description:   d.description,
			Category:      d.category,
			Type:          d.foodType,
			AddedBy:       seedAuthor,
			AddedByAvatar: seedAvatar,
			CreatedAt:     createdAt,
		})
	}
	return items
}
