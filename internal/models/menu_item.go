package models

// MenuItem represents a dish or drink on the menu.
// Placed orders snapshot the price onto their lines, so later edits here
// never change historical orders.
type MenuItem struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Price           float64 `json:"price"`
	Category        string  `json:"category"`
	IsAvailable     bool    `json:"isAvailable"`
	PreparationTime int     `json:"preparationTime,omitempty"` // minutes
}

// MenuCategories is the fixed set of menu categories the console offers.
var MenuCategories = []string{
	"Appetizers",
	"Main Course",
	"Desserts",
	"Beverages",
	"Salads",
}

// ValidCategory reports whether category is one of MenuCategories.
func ValidCategory(category string) bool {
	for _, c := range MenuCategories {
		if c == category {
			return true
		}
	}
	return false
}
