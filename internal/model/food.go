// Package model defines the data structures shared by every layer of the
// planner. The JSON tags double as the storage format.
package model

import (
	"slices"
	"time"
)

// Category is the meal slot a food item is eaten in.
type Category string

const (
	Breakfast Category = "breakfast"
	Lunch     Category = "lunch"
	Snack     Category = "snack"
	Dinner    Category = "dinner"
)

// Categories lists the meal slots in the order a day is planned.
var Categories = []Category{Breakfast, Lunch, Snack, Dinner}

// Valid reports whether c is one of the four meal slots.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// FoodType separates vegetarian from non-vegetarian dishes.
type FoodType string

const (
	Veg    FoodType = "veg"
	NonVeg FoodType = "non-veg"
)

// Valid reports whether t is a known food type.
func (t FoodType) Valid() bool {
	return t == Veg || t == NonVeg
}

// FoodItem is a dish contributed to a family's food collection.
//
// The JSON field names match what earlier versions of the app wrote to local
// storage, so stored collections keep loading after upgrades.
type FoodItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      Category  `json:"category"`
	Type          FoodType  `json:"type"`
	AddedBy       string    `json:"addedBy"`
	AddedByAvatar string    `json:"addedByAvatar"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Timestamp is t as a food item stores it: UTC with millisecond precision, so
// a saved item loads back identical.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// NewFood is a food item before the catalog assigns its ID and creation time.
type NewFood struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      Category `json:"category"`
	Type          FoodType `json:"type"`
	AddedBy       string   `json:"addedBy"`
	AddedByAvatar string   `json:"addedByAvatar"`
}

// FoodPatch carries a partial update. Nil fields are left unchanged.
type FoodPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Type        *FoodType `json:"type,omitempty"`
}

// FilterAll is the filter value meaning "no restriction".
const FilterAll = "all"

// FoodFilter narrows a food collection. Empty strings and FilterAll leave a
// dimension unrestricted; the dimensions combine with logical AND.
type FoodFilter struct {
	Search   string
	Category string
	Type     string
	AddedBy  string
}
