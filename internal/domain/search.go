package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SearchFilter holds the optional catalog predicates. A nil field imposes no
// constraint; all set fields are combined with AND.
type SearchFilter struct {
	CategoryID *int64
	Keyword    *string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	MinRating  *float64
}

func (f SearchFilter) Validate() error {
	if f.Keyword != nil && strings.TrimSpace(*f.Keyword) == "" {
		return Invalid("keyword must not be empty")
	}
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return Invalid("min_price must not be negative")
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return Invalid("max_price must not be negative")
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return Invalid("min_price must not be greater than max_price")
	}
	if f.MinRating != nil && !(*f.MinRating >= 0 && *f.MinRating <= MaxStars) {
		return Invalid("min_rating must be between 0 and 5")
	}
	return nil
}

// NormalizedKeyword returns the trimmed, lower-cased keyword or "" when unset.
func (f SearchFilter) NormalizedKeyword() string {
	if f.Keyword == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*f.Keyword))
}

// Matches evaluates the filter against a product in memory.
func (f SearchFilter) Matches(p *Product) bool {
	if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
		return false
	}
	if kw := f.NormalizedKeyword(); kw != "" {
		if !strings.Contains(strings.ToLower(p.Title), kw) &&
			!strings.Contains(strings.ToLower(p.Description), kw) {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && p.Rating < *f.MinRating {
		return false
	}
	return true
}
