package models

import "time"

// MenuDesign is a restaurant's selection of categories and pricing tiers.
// At most one design per restaurant is active (partial unique index, see database.Migrate).
type MenuDesign struct {
	ID                uint                 `gorm:"primaryKey" json:"id"`
	RestaurantID      uint                 `gorm:"not null;index" json:"restaurant_id"`
	Restaurant        *Restaurant          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	IsMultiplePricing bool                 `gorm:"not null" json:"is_multiple_pricing"`
	IsActive          bool                 `gorm:"not null" json:"is_active"`
	Categories        []MenuDesignCategory `gorm:"constraint:OnDelete:CASCADE" json:"categories,omitempty"`
	PricingTitles     []MenuDesignPricing  `gorm:"constraint:OnDelete:CASCADE" json:"pricing_titles,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

type MenuDesignCategory struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	MenuDesignID uint          `gorm:"not null;uniqueIndex:idx_design_category" json:"menu_design_id"`
	CategoryID   uint          `gorm:"not null;uniqueIndex:idx_design_category;index" json:"category_id"`
	Category     *MenuCategory `gorm:"constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	SpecialNotes string        `gorm:"type:text" json:"special_notes"`
	DisplayOrder int           `gorm:"not null" json:"display_order"`
	IsCustom     bool          `gorm:"not null" json:"is_custom"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// MenuDesignPricing rows only exist for designs with IsMultiplePricing.
type MenuDesignPricing struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	MenuDesignID   uint          `gorm:"not null;uniqueIndex:idx_design_pricing" json:"menu_design_id"`
	PricingTitleID uint          `gorm:"not null;uniqueIndex:idx_design_pricing;index" json:"pricing_title_id"`
	PricingTitle   *PricingTitle `gorm:"constraint:OnDelete:RESTRICT" json:"pricing_title,omitempty"`
	DisplayOrder   int           `gorm:"not null" json:"display_order"`
	IsCustom       bool          `gorm:"not null" json:"is_custom"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
