package models

import (
	"errors"
	"fmt"
	"strings"
)

// ProductType enumerates the tracked daily products.
type ProductType string

const (
	ProductMilk ProductType = "milk"
	ProductEggs ProductType = "eggs"
	ProductWool ProductType = "wool"
)

// ErrUnknownProduct indicates a product name outside the tracked set.
var ErrUnknownProduct = errors.New("unknown product")

// Products lists the tracked products in display order.
var Products = []ProductType{ProductMilk, ProductEggs, ProductWool}

// ParseProduct resolves a product name case-insensitively.
func ParseProduct(value string) (ProductType, error) {
	switch p := ProductType(strings.ToLower(strings.TrimSpace(value))); p {
	case ProductMilk, ProductEggs, ProductWool:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProduct, value)
	}
}

// LabelKey is the localization key of the product display name.
func (p ProductType) LabelKey() string {
	return "product." + string(p)
}

// UnitKey is the localization key of the product unit.
func (p ProductType) UnitKey() string {
	switch p {
	case ProductMilk:
		return "unit.liters"
	case ProductEggs:
		return "unit.pieces"
	case ProductWool:
		return "unit.kg"
	default:
		return ""
	}
}

// ProductPlan combines one product's required and actual value for a day.
type ProductPlan struct {
	Type     ProductType `json:"type"`
	Required float64     `json:"required"`
	Actual   float64     `json:"actual"`
}

// IsCompleted reports whether the actual value meets the requirement.
func (p ProductPlan) IsCompleted() bool {
	return p.Actual >= p.Required
}

// Progress is actual/required capped at 1.
func (p ProductPlan) Progress() float64 {
	if p.Required <= 0 {
		return 0
	}
	return min(p.Actual/p.Required, 1.0)
}
