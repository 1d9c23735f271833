// Package types contains common types used across the application
package types

// Category is a competition division with its own leaderboard.
type Category struct {
	Key  string `json:"key" koanf:"key" validate:"required"`
	Name string `json:"name" koanf:"name" validate:"required"`
}

// Categories is the ordered, static enumeration of championship categories.
type Categories []Category

// DefaultCategories returns the championship divisions in display order.
func DefaultCategories() Categories {
	return Categories{
		{Key: "expert", Name: "Expert"},
		{Key: "profi", Name: "Profi"},
		{Key: "standard", Name: "Standard"},
		{Key: "standard_junior", Name: "Standard Junior"},
		{Key: "junior", Name: "Junior"},
		{Key: "women", Name: "Women"},
		{Key: "seniors_40", Name: "Seniors 40+"},
		{Key: "seniors_50", Name: "Seniors 50+"},
	}
}

// Lookup finds a category by key.
func (c Categories) Lookup(key string) (Category, bool) {
	for _, cat := range c {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// Name returns the display name for key, or key itself when it is not enumerated.
func (c Categories) Name(key string) string {
	if cat, ok := c.Lookup(key); ok {
		return cat.Name
	}
	return key
}

// Keys returns the category keys in order.
func (c Categories) Keys() []string {
	keys := make([]string, len(c))
	for i, cat := range c {
		keys[i] = cat.Key
	}
	return keys
}
