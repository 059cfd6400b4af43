package model

import "strings"

// Category is the routing label assigned to an incoming question.
// It is a closed enumeration; anything the classifier produces outside
// of it collapses to CategoryGeneral.
type Category string

const (
	CategoryBilling   Category = "billing"
	CategoryTechnical Category = "technical"
	CategoryPolicy    Category = "policy"
	CategoryGeneral   Category = "general"
)

// Categories lists every valid routing label.
var Categories = []Category{CategoryBilling, CategoryTechnical, CategoryPolicy, CategoryGeneral}

// ParseCategory normalizes raw classifier output (case-fold + trim) and
// coerces anything outside the closed enumeration to CategoryGeneral.
func ParseCategory(raw string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryBilling:
		return CategoryBilling
	case CategoryTechnical:
		return CategoryTechnical
	case CategoryPolicy:
		return CategoryPolicy
	case CategoryGeneral:
		return CategoryGeneral
	default:
		return CategoryGeneral
	}
}

func (c Category) String() string {
	return string(c)
}
