package menudesign

import (
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/models"

	"go.uber.org/zap"
)

type NamedRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// DesignView is the read shape of a design: catalog ids and names only.
type DesignView struct {
	ID                uint       `json:"id"`
	IsMultiplePricing bool       `json:"is_multiple_pricing"`
	Categories        []NamedRef `json:"categories"`
	PricingTitles     []NamedRef `json:"pricing_titles"`
}

// newView expects the catalog rows preloaded. Join rows whose catalog row
// did not load are left out and logged.
func newView(d *models.MenuDesign) *DesignView {
	view := &DesignView{
		ID:                d.ID,
		IsMultiplePricing: d.IsMultiplePricing,
		Categories:        []NamedRef{},
		PricingTitles:     []NamedRef{},
	}
	for _, c := range d.Categories {
		if c.Category == nil {
			logger.L().Warn("menu design category without catalog row",
				zap.Uint("design_id", d.ID), zap.Uint("category_id", c.CategoryID))
			continue
		}
		view.Categories = append(view.Categories, NamedRef{ID: c.Category.ID, Name: c.Category.Name})
	}
	for _, p := range d.PricingTitles {
		if p.PricingTitle == nil {
			logger.L().Warn("menu design pricing without catalog row",
				zap.Uint("design_id", d.ID), zap.Uint("pricing_title_id", p.PricingTitleID))
			continue
		}
		view.PricingTitles = append(view.PricingTitles, NamedRef{ID: p.PricingTitle.ID, Name: p.PricingTitle.Name})
	}
	return view
}
