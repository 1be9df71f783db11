package models

import "time"

// CatalogBase is the shape shared by every admin-curated lookup table.
// Name and Code are unique across active and inactive rows alike.
type CatalogBase struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Code        string    `gorm:"size:100;not null;uniqueIndex" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (b *CatalogBase) Base() *CatalogBase { return b }

// CatalogEntry is implemented by pointers to every catalog model.
type CatalogEntry interface {
	Base() *CatalogBase
}

type MenuCategory struct {
	CatalogBase
	SpecialNotes string `gorm:"type:text" json:"special_notes"` // e.g. "Breakfast served 6am - 10:30am"
	IsDefault    bool   `gorm:"not null" json:"is_default"`
}

// PricingTitle is a price column such as "Dine-in" or "Takeaway".
type PricingTitle struct {
	CatalogBase
	DisplayOrder int  `gorm:"not null" json:"display_order"`
	IsDefault    bool `gorm:"not null" json:"is_default"`
}

type SpiceLevel struct {
	CatalogBase
	DisplayOrder int `gorm:"not null" json:"display_order"`
}

type DietaryRequirement struct {
	CatalogBase
	DisplayOrder int `gorm:"not null" json:"display_order"`
}

type ReligiousRestriction struct {
	CatalogBase
}

type Allergen struct {
	CatalogBase
}

type PortionSize struct {
	CatalogBase
	DisplayOrder int `gorm:"not null" json:"display_order"`
}

type VenueType struct {
	CatalogBase
}

type CuisineType struct {
	CatalogBase
}

type Holiday struct {
	CatalogBase
}
