package domain

import apperrors "github.com/andresuchdata/retail-insights/pkg/errors"

// ProductRevenue is the per-product revenue total for a period.
type ProductRevenue struct {
	ProductID string  `json:"product_id" db:"product_id"`
	Name      string  `json:"name,omitempty" db:"name"`
	Revenue   float64 `json:"revenue" db:"revenue"`
}

type AbcCategory string

const (
	CategoryA AbcCategory = "A"
	CategoryB AbcCategory = "B"
	CategoryC AbcCategory = "C"
)

var AbcCategories = []AbcCategory{CategoryA, CategoryB, CategoryC}

// ParseAbcCategory accepts "a", "B", ... and rejects anything else.
func ParseAbcCategory(raw string) (AbcCategory, error) {
	switch AbcCategory(raw) {
	case CategoryA, "a":
		return CategoryA, nil
	case CategoryB, "b":
		return CategoryB, nil
	case CategoryC, "c":
		return CategoryC, nil
	}
	return "", apperrors.Newf(apperrors.CodeValidation, "unknown abc category %q", raw)
}

type AbcRecord struct {
	ProductRevenue
	RevenueShare    float64     `json:"revenue_share"`
	CumulativeShare float64     `json:"cumulative_share"`
	Category        AbcCategory `json:"category"`
}

type AbcCategorySummary struct {
	Category   AbcCategory `json:"category"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
	Revenue    float64     `json:"revenue"`
}

type AbcAnalysis struct {
	Products     []AbcRecord          `json:"products"`
	Summary      []AbcCategorySummary `json:"summary"`
	TotalRevenue float64              `json:"total_revenue"`
}
