package model

import "strings"

// Category represents a spending category owned by the external ledger.
// Names are unique case-insensitively; this system resolves or creates
// categories on demand and never deletes them.
type Category struct {
	ID   string
	Name string
}

// NameEquals reports whether the category's name matches the given name,
// ignoring case. This is the match rule used everywhere a category name is
// resolved, so "Food & Drink" and "food & drink" are the same category.
func (c Category) NameEquals(name string) bool {
	return strings.EqualFold(c.Name, name)
}
