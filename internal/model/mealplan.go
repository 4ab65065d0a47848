package model

// MealPlan is one day's selection of a dish per meal slot.
type MealPlan struct {
	ID        string `json:"id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Theme     string `json:"theme"`
	Reasoning string `json:"reasoning"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Snack     string `json:"snack"`
	Dinner    string `json:"dinner"`
	// Liked stays nil until the user reacts to the plan.
	Liked *bool `json:"liked,omitempty"`
}

// Dish returns the dish chosen for a meal slot.
func (p MealPlan) Dish(c Category) string {
	switch c {
	case Breakfast:
		return p.Breakfast
	case Lunch:
		return p.Lunch
	case Snack:
		return p.Snack
	case Dinner:
		return p.Dinner
	}
	return ""
}

// SetDish stores the dish for a meal slot. Unknown slots are ignored.
func (p *MealPlan) SetDish(c Category, dish string) {
	switch c {
	case Breakfast:
		p.Breakfast = dish
	case Lunch:
		p.Lunch = dish
	case Snack:
		p.Snack = dish
	case Dinner:
		p.Dinner = dish
	}
}
