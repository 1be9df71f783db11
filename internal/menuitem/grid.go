package menuitem

import (
	"fmt"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/models"

	"github.com/shopspring/decimal"
)

// maxPrice is the largest value a decimal(10,2) column holds.
var maxPrice = decimal.RequireFromString("99999999.99")

type PortionInput struct {
	PortionSizeID uint `json:"portion_size_id"`
	Quantity      int  `json:"quantity"`
	DisplayOrder  int  `json:"display_order"`
}

// PriceInput is one cell of the price grid. Portions are named by their
// portion size, which is unique per item.
type PriceInput struct {
	PortionSizeID  *uint           `json:"portion_size_id"`
	PricingTitleID *uint           `json:"pricing_title_id"`
	Price          decimal.Decimal `json:"price"`
}

type cell struct {
	portionSizeID  uint
	pricingTitleID uint
}

func (c cell) String() string {
	switch {
	case c.portionSizeID == 0 && c.pricingTitleID == 0:
		return "the item"
	case c.pricingTitleID == 0:
		return fmt.Sprintf("portion size %d", c.portionSizeID)
	case c.portionSizeID == 0:
		return fmt.Sprintf("pricing title %d", c.pricingTitleID)
	}
	return fmt.Sprintf("portion size %d / pricing title %d", c.portionSizeID, c.pricingTitleID)
}

func validatePortions(portions []PortionInput) error {
	if len(portions) == 0 {
		return apperr.Validation("an item with multiple portions needs at least one portion")
	}

	seen := map[uint]bool{}
	for _, p := range portions {
		if p.PortionSizeID == 0 {
			return apperr.Validation("portion_size_id is required for every portion")
		}
		if seen[p.PortionSizeID] {
			return apperr.Validation("portion size %d is listed twice", p.PortionSizeID)
		}
		seen[p.PortionSizeID] = true

		if p.Quantity < models.MinPortionQuantity || p.Quantity > models.MaxPortionQuantity {
			return apperr.Validation("portion quantity must be between %d and %d, got %d",
				models.MinPortionQuantity, models.MaxPortionQuantity, p.Quantity)
		}
	}
	return nil
}

// validateGrid checks that prices hold exactly one entry per expected cell.
// The expected cells are the cross product of the item's portion sizes (or
// a single unsegmented row) and the design's pricing titles (or a single
// unsegmented column when the design is single-pricing).
func validateGrid(multiPricing bool, titleIDs []uint, portions []PortionInput, prices []PriceInput) error {
	if multiPricing && len(titleIDs) == 0 {
		return apperr.Validation("the menu design has multiple pricing but no pricing titles")
	}

	rows := []uint{0}
	if len(portions) > 0 {
		rows = rows[:0]
		for _, p := range portions {
			rows = append(rows, p.PortionSizeID)
		}
	}
	cols := []uint{0}
	if multiPricing {
		cols = titleIDs
	}

	expected := make(map[cell]bool, len(rows)*len(cols))
	for _, r := range rows {
		for _, c := range cols {
			expected[cell{r, c}] = true
		}
	}

	seen := make(map[cell]bool, len(prices))
	for _, p := range prices {
		var k cell
		if p.PortionSizeID != nil {
			if len(portions) == 0 {
				return apperr.Validation("prices cannot name a portion size for an item without portions")
			}
			k.portionSizeID = *p.PortionSizeID
		}
		if p.PricingTitleID != nil {
			if !multiPricing {
				return apperr.Validation("prices cannot name a pricing title on a single-pricing menu")
			}
			k.pricingTitleID = *p.PricingTitleID
		}

		if !expected[k] {
			return apperr.Validation("unexpected price for %s", k)
		}
		if seen[k] {
			return apperr.Validation("more than one price for %s", k)
		}
		seen[k] = true

		if p.Price.IsNegative() {
			return apperr.Validation("price for %s must not be negative", k)
		}
		if p.Price.GreaterThan(maxPrice) {
			return apperr.Validation("price for %s exceeds %s", k, maxPrice)
		}
	}

	for _, r := range rows {
		for _, c := range cols {
			if k := (cell{r, c}); !seen[k] {
				return apperr.Validation("missing price for %s", k)
			}
		}
	}
	return nil
}
