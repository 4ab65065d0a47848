package model

// ShoppingItem is one line of the shopping checklist.
type ShoppingItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Checked  bool   `json:"checked"`
}

// CategoryGroup is the items of one store category, in list order.
type CategoryGroup struct {
	Category string         `json:"category"`
	Items    []ShoppingItem `json:"items"`
}

// ShoppingProgress summarises how much of a list has been ticked off.
type ShoppingProgress struct {
	Checked int `json:"checked"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}
