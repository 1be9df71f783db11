package menuitem

import (
	"sort"
	"time"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PortionView struct {
	ID            uint   `json:"id"`
	PortionSizeID uint   `json:"portion_size_id"`
	PortionSize   string `json:"portion_size"`
	Quantity      int    `json:"quantity"`
	DisplayOrder  int    `json:"display_order"`
}

// PriceView carries its portion, so a client renders the grid row by row.
type PriceView struct {
	ID             uint            `json:"id"`
	Portion        *PortionView    `json:"portion"`
	PricingTitleID *uint           `json:"pricing_title_id"`
	PricingTitle   *string         `json:"pricing_title"`
	Price          decimal.Decimal `json:"price"`
}

type ImageView struct {
	ID           uint   `json:"id"`
	Image        string `json:"image"`
	DisplayOrder int    `json:"display_order"`
}

type ItemView struct {
	ID                    uint          `json:"id"`
	RestaurantID          uint          `json:"restaurant_id"`
	MenuCategoryID        uint          `json:"menu_category_id"`
	MenuCategory          string        `json:"menu_category"`
	Name                  string        `json:"name"`
	Description           string        `json:"description"`
	SpiceLevel            *string       `json:"spice_level"`
	DietaryRequirements   []string      `json:"dietary_requirements"`
	ReligiousRestrictions []string      `json:"religious_restrictions"`
	Allergens             []string      `json:"allergens"`
	HasMultiplePrices     bool          `json:"has_multiple_prices"`
	HasMultiplePortions   bool          `json:"has_multiple_portions"`
	Portions              []PortionView `json:"portions"`
	Prices                []PriceView   `json:"prices"`
	Images                []ImageView   `json:"images"`
	DisplayOrder          int           `json:"display_order"`
	IsActive              bool          `json:"is_active"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

func preload(q *gorm.DB) *gorm.DB {
	return q.
		Preload("MenuDesignCategory.Category").
		Preload("SpiceLevel").
		Preload("DietaryRequirements", func(q *gorm.DB) *gorm.DB { return q.Order("display_order, name") }).
		Preload("ReligiousRestrictions", func(q *gorm.DB) *gorm.DB { return q.Order("name") }).
		Preload("Allergens", func(q *gorm.DB) *gorm.DB { return q.Order("name") }).
		Preload("Portions", func(q *gorm.DB) *gorm.DB { return q.Order("display_order, id") }).
		Preload("Portions.PortionSize").
		Preload("Prices.PricingTitle").
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("display_order, id") })
}

func loadView(db *gorm.DB, itemID uint) (*ItemView, error) {
	var item models.MenuItem
	if err := preload(db).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, apperr.FromDB(err, "menu item not found")
	}
	views, err := newViews(db, []models.MenuItem{item})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// newViews renders preloaded items. Prices are ordered like the grid: by
// portion order, then by the design's pricing title order.
func newViews(db *gorm.DB, items []models.MenuItem) ([]ItemView, error) {
	designIDs := map[uint]bool{}
	for _, it := range items {
		if it.MenuDesignCategory != nil {
			designIDs[it.MenuDesignCategory.MenuDesignID] = true
		}
	}

	titleOrder := map[[2]uint]int{}
	if len(designIDs) > 0 {
		ids := make([]uint, 0, len(designIDs))
		for id := range designIDs {
			ids = append(ids, id)
		}
		var rows []models.MenuDesignPricing
		if err := db.Session(&gorm.Session{NewDB: true}).Where("menu_design_id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, apperr.Unavailable(err, "pricing titles could not be loaded")
		}
		for _, r := range rows {
			titleOrder[[2]uint{r.MenuDesignID, r.PricingTitleID}] = r.DisplayOrder
		}
	}

	out := make([]ItemView, 0, len(items))
	for i := range items {
		out = append(out, newView(&items[i], titleOrder))
	}
	return out, nil
}

func newView(it *models.MenuItem, titleOrder map[[2]uint]int) ItemView {
	v := ItemView{
		ID:                    it.ID,
		RestaurantID:          it.RestaurantID,
		MenuCategoryID:        it.MenuDesignCategoryID,
		Name:                  it.Name,
		Description:           it.Description,
		DietaryRequirements:   []string{},
		ReligiousRestrictions: []string{},
		Allergens:             []string{},
		HasMultiplePrices:     it.HasMultiplePrices,
		HasMultiplePortions:   it.HasMultiplePortions,
		Portions:              []PortionView{},
		Prices:                []PriceView{},
		Images:                []ImageView{},
		DisplayOrder:          it.DisplayOrder,
		IsActive:              it.IsActive,
		CreatedAt:             it.CreatedAt,
		UpdatedAt:             it.UpdatedAt,
	}

	var designID uint
	if it.MenuDesignCategory != nil {
		designID = it.MenuDesignCategory.MenuDesignID
		if it.MenuDesignCategory.Category != nil {
			v.MenuCategory = it.MenuDesignCategory.Category.Name
		}
	}
	if it.SpiceLevel != nil {
		name := it.SpiceLevel.Name
		v.SpiceLevel = &name
	}
	for _, t := range it.DietaryRequirements {
		v.DietaryRequirements = append(v.DietaryRequirements, t.Name)
	}
	for _, t := range it.ReligiousRestrictions {
		v.ReligiousRestrictions = append(v.ReligiousRestrictions, t.Name)
	}
	for _, t := range it.Allergens {
		v.Allergens = append(v.Allergens, t.Name)
	}

	portions := make(map[uint]*PortionView, len(it.Portions))
	for _, p := range it.Portions {
		pv := PortionView{
			ID:            p.ID,
			PortionSizeID: p.PortionSizeID,
			Quantity:      p.Quantity,
			DisplayOrder:  p.DisplayOrder,
		}
		if p.PortionSize != nil {
			pv.PortionSize = p.PortionSize.Name
		}
		v.Portions = append(v.Portions, pv)
		portions[p.ID] = &pv
	}

	for _, p := range it.Prices {
		pv := PriceView{ID: p.ID, PricingTitleID: p.PricingTitleID, Price: p.Price}
		if p.PortionID != nil {
			pv.Portion = portions[*p.PortionID]
		}
		if p.PricingTitle != nil {
			name := p.PricingTitle.Name
			pv.PricingTitle = &name
		}
		v.Prices = append(v.Prices, pv)
	}
	sort.SliceStable(v.Prices, func(i, j int) bool {
		a, b := v.Prices[i], v.Prices[j]
		if pa, pb := portionRank(a.Portion), portionRank(b.Portion); pa != pb {
			return pa.less(pb)
		}
		return titleRank(designID, a.PricingTitleID, titleOrder).less(titleRank(designID, b.PricingTitleID, titleOrder))
	})

	for _, img := range it.Images {
		v.Images = append(v.Images, imageView(img))
	}
	return v
}

type rank struct{ order, id int }

func (r rank) less(o rank) bool {
	if r.order != o.order {
		return r.order < o.order
	}
	return r.id < o.id
}

func portionRank(p *PortionView) rank {
	if p == nil {
		return rank{-1, 0}
	}
	return rank{p.DisplayOrder, int(p.ID)}
}

func titleRank(designID uint, titleID *uint, order map[[2]uint]int) rank {
	if titleID == nil {
		return rank{-1, 0}
	}
	return rank{order[[2]uint{designID, *titleID}], int(*titleID)}
}

func imageView(img models.MenuItemImage) ImageView {
	return ImageView{ID: img.ID, Image: img.URL, DisplayOrder: img.DisplayOrder}
}
