// Package menudesign keeps each restaurant's menu layout: which catalog
// categories it shows and, for multi-pricing menus, which price columns.
package menudesign

import (
	"context"
	"errors"
	"fmt"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"gorm.io/gorm"
)

const entityType = "menu_design"

// ErrNoActiveDesign is the lookup failure rendered to clients verbatim.
var ErrNoActiveDesign = apperr.NotFound("No active menu design found")

type CategoryInput struct {
	CategoryID   uint   `json:"category_id"`
	SpecialNotes string `json:"special_notes"`
	DisplayOrder int    `json:"display_order"`
	IsCustom     bool   `json:"is_custom"`
}

type PricingInput struct {
	PricingTitleID uint `json:"pricing_title_id"`
	DisplayOrder   int  `json:"display_order"`
	IsCustom       bool `json:"is_custom"`
}

type CreateInput struct {
	RestaurantID      uint            `json:"restaurant_id"`
	IsMultiplePricing bool            `json:"is_multiple_pricing"`
	Categories        []CategoryInput `json:"categories"`
	PricingTitles     []PricingInput  `json:"pricing_titles"`
}

// CategoryOrder and PricingOrder are reorder entries.
type CategoryOrder struct {
	CategoryID   uint `json:"category_id"`
	DisplayOrder int  `json:"display_order"`
}

type PricingOrder struct {
	PricingTitleID uint `json:"pricing_title_id"`
	DisplayOrder   int  `json:"display_order"`
}

// CreateDesign stores a new active design with its join rows. Pricing rows
// are only written for multi-pricing designs; titles sent for a
// single-pricing design are dropped.
func CreateDesign(ctx context.Context, actor access.Identity, in CreateInput) (*DesignView, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	design := &models.MenuDesign{
		RestaurantID:      in.RestaurantID,
		IsMultiplePricing: in.IsMultiplePricing,
		IsActive:          true,
	}

	var created *models.MenuDesign
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, in.RestaurantID)
		if err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.MenuDesign{}).
			Where("restaurant_id = ? AND is_active = ?", r.ID, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperr.Conflict("restaurant %d already has an active menu design", r.ID)
		}

		for _, c := range in.Categories {
			if err := requireActive[models.MenuCategory](tx, c.CategoryID, "menu category"); err != nil {
				return err
			}
			design.Categories = append(design.Categories, models.MenuDesignCategory{
				CategoryID:   c.CategoryID,
				SpecialNotes: c.SpecialNotes,
				DisplayOrder: c.DisplayOrder,
				IsCustom:     c.IsCustom,
			})
		}

		if in.IsMultiplePricing {
			for _, p := range in.PricingTitles {
				if err := requireActive[models.PricingTitle](tx, p.PricingTitleID, "pricing title"); err != nil {
					return err
				}
				design.PricingTitles = append(design.PricingTitles, models.MenuDesignPricing{
					PricingTitleID: p.PricingTitleID,
					DisplayOrder:   p.DisplayOrder,
					IsCustom:       p.IsCustom,
				})
			}
		}

		if err := tx.Create(design).Error; err != nil {
			return err
		}
		if created, err = ActiveDesign(tx, r.ID); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     design.ID,
			Action:       models.AuditActionCreate,
			Description: fmt.Sprintf("created %s menu design with %d categories",
				pricingLabel(design.IsMultiplePricing), len(design.Categories)),
			After: design,
		})
	})
	if err != nil {
		return nil, err
	}
	return newView(created), nil
}

func validateCreate(in CreateInput) error {
	if in.RestaurantID == 0 {
		return apperr.Validation("restaurant_id is required")
	}
	if len(in.Categories) == 0 {
		return apperr.Validation("at least one category is required")
	}

	seen := map[uint]bool{}
	for _, c := range in.Categories {
		if seen[c.CategoryID] {
			return apperr.Validation("category %d is listed twice", c.CategoryID)
		}
		seen[c.CategoryID] = true
	}

	if !in.IsMultiplePricing {
		return nil
	}
	if len(in.PricingTitles) == 0 {
		return apperr.Validation("a multi-pricing design needs at least one pricing title")
	}
	seen = map[uint]bool{}
	for _, p := range in.PricingTitles {
		if seen[p.PricingTitleID] {
			return apperr.Validation("pricing title %d is listed twice", p.PricingTitleID)
		}
		seen[p.PricingTitleID] = true
	}
	return nil
}

// requireActive fails NotFound for a missing catalog row and Validation for
// a retired one.
func requireActive[T any, P interface {
	*T
	models.CatalogEntry
}](tx *gorm.DB, id uint, label string) error {
	row := new(T)
	if err := tx.First(row, "id = ?", id).Error; err != nil {
		return apperr.FromDB(err, fmt.Sprintf("%s %d not found", label, id))
	}
	if !P(row).Base().IsActive {
		return apperr.Validation("%s %q is inactive", label, P(row).Base().Name)
	}
	return nil
}

// ActiveDesign loads the active design of a restaurant with its join rows
// and catalog rows preloaded.
func ActiveDesign(db *gorm.DB, restaurantID uint) (*models.MenuDesign, error) {
	var d models.MenuDesign
	err := db.
		Preload("Categories", func(q *gorm.DB) *gorm.DB { return q.Order("display_order, id") }).
		Preload("Categories.Category").
		Preload("PricingTitles", func(q *gorm.DB) *gorm.DB { return q.Order("display_order, id") }).
		Preload("PricingTitles.PricingTitle").
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveDesign
		}
		return nil, err
	}
	return &d, nil
}

// GetDesign returns the active design of a restaurant the caller can see.
// Join rows whose catalog row is gone are left out and logged.
func GetDesign(ctx context.Context, actor access.Identity, restaurantID uint) (*DesignView, error) {
	db := database.DB.WithContext(ctx)

	if _, err := access.LoadVisible(db, actor, restaurantID); err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, ErrNoActiveDesign
		}
		return nil, err
	}

	d, err := ActiveDesign(db, restaurantID)
	if err != nil {
		return nil, err
	}

	return newView(d), nil
}

// ReorderCategories sets display_order on the active design's category rows.
// Entries naming a category the design does not hold are skipped.
func ReorderCategories(ctx context.Context, actor access.Identity, restaurantID uint, order []CategoryOrder) ([]models.MenuDesignCategory, error) {
	var rows []models.MenuDesignCategory
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		d, err := ownedActiveDesign(tx, actor, restaurantID)
		if err != nil {
			return err
		}

		for _, o := range order {
			if err := tx.Model(&models.MenuDesignCategory{}).
				Where("menu_design_id = ? AND category_id = ?", d.ID, o.CategoryID).
				Update("display_order", o.DisplayOrder).Error; err != nil {
				return err
			}
		}

		if err := tx.Preload("Category").
			Where("menu_design_id = ?", d.ID).
			Order("display_order, id").
			Find(&rows).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &restaurantID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     d.ID,
			Action:       models.AuditActionUpdate,
			Description:  "reordered menu categories",
			After:        order,
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReorderPricing is ReorderCategories for the pricing columns.
func ReorderPricing(ctx context.Context, actor access.Identity, restaurantID uint, order []PricingOrder) ([]models.MenuDesignPricing, error) {
	var rows []models.MenuDesignPricing
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		d, err := ownedActiveDesign(tx, actor, restaurantID)
		if err != nil {
			return err
		}

		for _, o := range order {
			if err := tx.Model(&models.MenuDesignPricing{}).
				Where("menu_design_id = ? AND pricing_title_id = ?", d.ID, o.PricingTitleID).
				Update("display_order", o.DisplayOrder).Error; err != nil {
				return err
			}
		}

		if err := tx.Preload("PricingTitle").
			Where("menu_design_id = ?", d.ID).
			Order("display_order, id").
			Find(&rows).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &restaurantID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     d.ID,
			Action:       models.AuditActionUpdate,
			Description:  "reordered pricing titles",
			After:        order,
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RestaurantPricingTitles lists the price columns of the restaurant's active
// design. Single-pricing designs have none.
func RestaurantPricingTitles(ctx context.Context, actor access.Identity, restaurantID uint) ([]models.PricingTitle, error) {
	db := database.DB.WithContext(ctx)
	if _, err := access.LoadVisible(db, actor, restaurantID); err != nil {
		return nil, err
	}

	titles := []models.PricingTitle{}
	err := db.Model(&models.PricingTitle{}).
		Select("pricing_titles.*").
		Joins("JOIN menu_design_pricings mdp ON mdp.pricing_title_id = pricing_titles.id").
		Joins("JOIN menu_designs md ON md.id = mdp.menu_design_id").
		Where("md.restaurant_id = ? AND md.is_active = ? AND md.is_multiple_pricing = ?", restaurantID, true, true).
		Order("mdp.display_order, pricing_titles.id").
		Find(&titles).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "pricing titles could not be loaded")
	}
	return titles, nil
}

// SetDesignActive switches a design on or off. Activating one design turns
// every other design of the restaurant off in the same transaction.
func SetDesignActive(ctx context.Context, actor access.Identity, restaurantID, designID uint, active bool) (*models.MenuDesign, error) {
	var d models.MenuDesign
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		if _, err := access.LoadOwned(tx, actor, restaurantID); err != nil {
			return err
		}
		if err := tx.First(&d, "id = ? AND restaurant_id = ?", designID, restaurantID).Error; err != nil {
			return apperr.FromDB(err, "menu design not found")
		}
		if d.IsActive == active {
			return nil
		}

		if active {
			if err := tx.Model(&models.MenuDesign{}).
				Where("restaurant_id = ? AND id <> ? AND is_active = ?", restaurantID, d.ID, true).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&d).Update("is_active", active).Error; err != nil {
			return err
		}
		d.IsActive = active

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &restaurantID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     d.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("set menu design active=%t", active),
			After:        d,
		})
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDesigns returns every design of an owned restaurant, newest first.
func ListDesigns(ctx context.Context, actor access.Identity, restaurantID uint) ([]models.MenuDesign, error) {
	db := database.DB.WithContext(ctx)
	if _, err := access.LoadOwned(db, actor, restaurantID); err != nil {
		return nil, err
	}

	designs := []models.MenuDesign{}
	if err := db.Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC, id DESC").
		Find(&designs).Error; err != nil {
		return nil, apperr.Unavailable(err, "menu designs could not be loaded")
	}
	return designs, nil
}

func ownedActiveDesign(tx *gorm.DB, actor access.Identity, restaurantID uint) (*models.MenuDesign, error) {
	if _, err := access.LoadOwned(tx, actor, restaurantID); err != nil {
		return nil, err
	}
	var d models.MenuDesign
	if err := tx.Where("restaurant_id = ? AND is_active = ?", restaurantID, true).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveDesign
		}
		return nil, err
	}
	return &d, nil
}

func pricingLabel(multi bool) string {
	if multi {
		return "multi-pricing"
	}
	return "single-pricing"
}
