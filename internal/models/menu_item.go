package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinPortionQuantity = 2
	MaxPortionQuantity = 100
)

type MenuItem struct {
	ID                   uint                `gorm:"primaryKey"`
	RestaurantID         uint                `gorm:"not null;index"`
	Restaurant           *Restaurant         `gorm:"constraint:OnDelete:CASCADE"`
	MenuDesignCategoryID uint                `gorm:"not null;index"`
	MenuDesignCategory   *MenuDesignCategory `gorm:"constraint:OnDelete:RESTRICT"`
	Name                 string              `gorm:"size:255;not null"`
	Description          string              `gorm:"type:text"`

	// Copied from the parent design when the item is created; never set by clients.
	HasMultiplePrices   bool `gorm:"not null"`
	HasMultiplePortions bool `gorm:"not null"`

	SpiceLevelID          *uint
	SpiceLevel            *SpiceLevel            `gorm:"constraint:OnDelete:SET NULL"`
	DietaryRequirements   []DietaryRequirement   `gorm:"many2many:menu_item_dietary_requirements"`
	ReligiousRestrictions []ReligiousRestriction `gorm:"many2many:menu_item_religious_restrictions"`
	Allergens             []Allergen             `gorm:"many2many:menu_item_allergens"`

	Portions []MenuItemPortion `gorm:"constraint:OnDelete:CASCADE"`
	Prices   []MenuItemPrice   `gorm:"constraint:OnDelete:CASCADE"`
	Images   []MenuItemImage   `gorm:"constraint:OnDelete:CASCADE"`

	DisplayOrder int  `gorm:"not null"`
	IsActive     bool `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItemPortion struct {
	ID            uint         `gorm:"primaryKey"`
	MenuItemID    uint         `gorm:"not null;uniqueIndex:idx_item_portion_size"`
	PortionSizeID uint         `gorm:"not null;uniqueIndex:idx_item_portion_size"`
	PortionSize   *PortionSize `gorm:"constraint:OnDelete:RESTRICT"`
	Quantity      int          `gorm:"not null;check:quantity >= 2 AND quantity <= 100"`
	DisplayOrder  int          `gorm:"not null"`
}

// MenuItemPrice is one cell of the item's price grid. A nil PortionID or
// PricingTitleID means the price is not segmented along that axis.
type MenuItemPrice struct {
	ID             uint             `gorm:"primaryKey"`
	MenuItemID     uint             `gorm:"not null;index"`
	PortionID      *uint            `gorm:"index"`
	Portion        *MenuItemPortion `gorm:"constraint:OnDelete:CASCADE"`
	PricingTitleID *uint
	PricingTitle   *PricingTitle   `gorm:"constraint:OnDelete:RESTRICT"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null"`
}

type MenuItemImage struct {
	ID           uint   `gorm:"primaryKey"`
	MenuItemID   uint   `gorm:"not null;index"`
	URL          string `gorm:"size:500;not null"`
	StorageKey   string `gorm:"size:255;not null"`
	DisplayOrder int    `gorm:"not null"`
	CreatedAt    time.Time
}
