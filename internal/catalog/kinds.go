package catalog

import "restaurant-directory/internal/models"

// Kind describes one catalog table: its URL slug, list ordering and the
// places that reference its rows (which block deletion).
type Kind struct {
	Slug       string
	Label      string
	order      string
	references []reference
}

// A reference is either a model (its table) or a raw join-table name.
type reference struct {
	model  any
	table  string
	column string
}

func (k Kind) EntityType() string { return "catalog:" + k.Slug }

var (
	Categories = Kind{
		Slug:  "categories",
		Label: "menu category",
		order: "name",
		references: []reference{
			{model: &models.MenuDesignCategory{}, column: "category_id"},
		},
	}
	PricingTitles = Kind{
		Slug:  "pricing-titles",
		Label: "pricing title",
		order: "display_order, name",
		references: []reference{
			{model: &models.MenuDesignPricing{}, column: "pricing_title_id"},
			{model: &models.MenuItemPrice{}, column: "pricing_title_id"},
		},
	}
	SpiceLevels = Kind{
		Slug:  "spice-levels",
		Label: "spice level",
		order: "display_order, name",
		references: []reference{
			{model: &models.MenuItem{}, column: "spice_level_id"},
		},
	}
	DietaryRequirements = Kind{
		Slug:  "dietary-requirements",
		Label: "dietary requirement",
		order: "display_order, name",
		references: []reference{
			{table: "menu_item_dietary_requirements", column: "dietary_requirement_id"},
		},
	}
	ReligiousRestrictions = Kind{
		Slug:  "religious-restrictions",
		Label: "religious restriction",
		order: "name",
		references: []reference{
			{table: "menu_item_religious_restrictions", column: "religious_restriction_id"},
		},
	}
	Allergens = Kind{
		Slug:  "allergens",
		Label: "allergen",
		order: "name",
		references: []reference{
			{table: "menu_item_allergens", column: "allergen_id"},
		},
	}
	PortionSizes = Kind{
		Slug:  "portion-sizes",
		Label: "portion size",
		order: "display_order, name",
		references: []reference{
			{model: &models.MenuItemPortion{}, column: "portion_size_id"},
		},
	}
	VenueTypes = Kind{
		Slug:  "venue-types",
		Label: "venue type",
		order: "name",
		references: []reference{
			{table: "restaurant_venue_types", column: "venue_type_id"},
		},
	}
	CuisineTypes = Kind{
		Slug:  "cuisine-types",
		Label: "cuisine type",
		order: "name",
		references: []reference{
			{table: "restaurant_cuisine_styles", column: "cuisine_type_id"},
		},
	}
	Holidays = Kind{
		Slug:  "holidays",
		Label: "holiday",
		order: "name",
		references: []reference{
			{model: &models.HolidayHours{}, column: "holiday_id"},
		},
	}
)
