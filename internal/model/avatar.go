package model

// Avatar is a glyph a family member can pick during onboarding.
type Avatar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Avatars is the fixed set offered by the onboarding avatar grid.
// The ID is the glyph itself, which is what gets stored on the session.
var Avatars = []Avatar{
	{ID: "🍳", Name: "Chef"},
	{ID: "👨‍🍳", Name: "Male Chef"},
	{ID: "👩‍🍳", Name: "Female Chef"},
	{ID: "🥘", Name: "Cooking"},
	{ID: "🍅", Name: "Tomato"},
	{ID: "🥕", Name: "Carrot"},
	{ID: "🌶️", Name: "Pepper"},
	{ID: "🥒", Name: "Cucumber"},
	{ID: "🧄", Name: "Garlic"},
	{ID: "🧅", Name: "Onion"},
	{ID: "🥬", Name: "Lettuce"},
	{ID: "🥦", Name: "Broccoli"},
	{ID: "🍖", Name: "Meat"},
	{ID: "🐟", Name: "Fish"},
	{ID: "🐔", Name: "Chicken"},
	{ID: "🥛", Name: "Milk"},
}

// IsAvatar reports whether id is one of the selectable avatars.
func IsAvatar(id string) bool {
	for _, a := range Avatars {
		if a.ID == id {
			return true
		}
	}
	return false
}
