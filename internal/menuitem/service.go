// Package menuitem manages a restaurant's dishes: their portions, the price
// grid inherited from the menu design, tag sets and image gallery.
package menuitem

import (
	"context"
	"fmt"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityType = "menu_item"

type CreateInput struct {
	RestaurantID            uint           `json:"restaurant_id"`
	MenuCategoryID          uint           `json:"menu_category_id"`
	Name                    string         `json:"name"`
	Description             string         `json:"description"`
	SpiceLevelID            *uint          `json:"spice_level_id"`
	DietaryRequirementIDs   []uint         `json:"dietary_requirement_ids"`
	ReligiousRestrictionIDs []uint         `json:"religious_restriction_ids"`
	AllergenIDs             []uint         `json:"allergen_ids"`
	HasMultiplePortions     bool           `json:"has_multiple_portions"`
	Portions                []PortionInput `json:"portions"`
	Prices                  []PriceInput   `json:"prices"`
	DisplayOrder            int            `json:"display_order"`
	IsActive                *bool          `json:"is_active"`
}

// UpdateInput changes only the fields that are set. A spice_level_id of 0
// clears the spice level. Setting any of HasMultiplePortions, Portions or
// Prices rebuilds the whole price grid.
type UpdateInput struct {
	MenuCategoryID          *uint           `json:"menu_category_id"`
	Name                    *string         `json:"name"`
	Description             *string         `json:"description"`
	SpiceLevelID            *uint           `json:"spice_level_id"`
	DietaryRequirementIDs   *[]uint         `json:"dietary_requirement_ids"`
	ReligiousRestrictionIDs *[]uint         `json:"religious_restriction_ids"`
	AllergenIDs             *[]uint         `json:"allergen_ids"`
	HasMultiplePortions     *bool           `json:"has_multiple_portions"`
	Portions                *[]PortionInput `json:"portions"`
	Prices                  *[]PriceInput   `json:"prices"`
	DisplayOrder            *int            `json:"display_order"`
	IsActive                *bool           `json:"is_active"`
}

func (in UpdateInput) touchesGrid() bool {
	return in.HasMultiplePortions != nil || in.Portions != nil || in.Prices != nil
}

func CreateItem(ctx context.Context, actor access.Identity, in CreateInput) (*ItemView, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	if len(name) > 255 {
		return nil, apperr.Validation("name must be at most 255 characters")
	}
	if in.MenuCategoryID == 0 {
		return nil, apperr.Validation("menu_category_id is required")
	}

	portions := in.Portions
	if !in.HasMultiplePortions {
		portions = nil
	} else if err := validatePortions(portions); err != nil {
		return nil, err
	}

	var view *ItemView
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, in.RestaurantID)
		if err != nil {
			return err
		}
		design, err := designOfCategory(tx, r.ID, in.MenuCategoryID, true)
		if err != nil {
			return err
		}
		titleIDs, err := enabledTitles(tx, design)
		if err != nil {
			return err
		}
		if err := checkPortionSizes(tx, portions); err != nil {
			return err
		}
		if err := validateGrid(design.IsMultiplePricing, titleIDs, portions, in.Prices); err != nil {
			return err
		}

		item := &models.MenuItem{
			RestaurantID:         r.ID,
			MenuDesignCategoryID: in.MenuCategoryID,
			Name:                 name,
			Description:          in.Description,
			HasMultiplePrices:    design.IsMultiplePricing,
			HasMultiplePortions:  in.HasMultiplePortions,
			DisplayOrder:         in.DisplayOrder,
			IsActive:             in.IsActive == nil || *in.IsActive,
		}
		if in.SpiceLevelID != nil && *in.SpiceLevelID != 0 {
			if err := mustBeActive(tx, &models.SpiceLevel{}, *in.SpiceLevelID, "spice level"); err != nil {
				return err
			}
			item.SpiceLevelID = in.SpiceLevelID
		}

		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, item, &in.DietaryRequirementIDs, &in.ReligiousRestrictionIDs, &in.AllergenIDs); err != nil {
			return err
		}
		if err := writeGrid(tx, item.ID, portions, in.Prices); err != nil {
			return err
		}

		view, err = loadView(tx, item.ID)
		if err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     item.ID,
			Action:       models.AuditActionCreate,
			Description:  fmt.Sprintf("created menu item %q", item.Name),
			After:        view,
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func UpdateItem(ctx context.Context, actor access.Identity, itemID uint, in UpdateInput) (*ItemView, error) {
	var view *ItemView
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		item, r, err := loadOwnedItem(tx, actor, itemID)
		if err != nil {
			return err
		}
		before, err := loadView(tx, item.ID)
		if err != nil {
			return err
		}

		current, err := designOfCategory(tx, r.ID, item.MenuDesignCategoryID, false)
		if err != nil {
			return err
		}
		design := current
		if in.MenuCategoryID != nil && *in.MenuCategoryID != item.MenuDesignCategoryID {
			if design, err = designOfCategory(tx, r.ID, *in.MenuCategoryID, true); err != nil {
				return err
			}
			if design.ID != current.ID && in.Prices == nil {
				return apperr.Validation("moving the item to another menu design requires prices")
			}
			item.MenuDesignCategoryID = *in.MenuCategoryID
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return apperr.Validation("name must not be empty")
			}
			item.Name = name
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.DisplayOrder != nil {
			item.DisplayOrder = *in.DisplayOrder
		}
		if in.IsActive != nil {
			item.IsActive = *in.IsActive
		}
		if in.SpiceLevelID != nil {
			if *in.SpiceLevelID == 0 {
				item.SpiceLevelID = nil
			} else {
				if err := mustBeActive(tx, &models.SpiceLevel{}, *in.SpiceLevelID, "spice level"); err != nil {
					return err
				}
				id := *in.SpiceLevelID
				item.SpiceLevelID = &id
			}
		}

		if in.touchesGrid() || design.ID != current.ID {
			if err := rebuildGrid(tx, item, design, in); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(item).Error; err != nil {
			return err
		}
		if err := replaceTags(tx, item, in.DietaryRequirementIDs, in.ReligiousRestrictionIDs, in.AllergenIDs); err != nil {
			return err
		}

		view, err = loadView(tx, item.ID)
		if err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     item.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("updated menu item %q", item.Name),
			Before:       before,
			After:        view,
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// rebuildGrid replaces portions and prices, falling back to the stored
// portions when the caller sent none.
func rebuildGrid(tx *gorm.DB, item *models.MenuItem, design *models.MenuDesign, in UpdateInput) error {
	hasPortions := item.HasMultiplePortions
	if in.HasMultiplePortions != nil {
		hasPortions = *in.HasMultiplePortions
	}

	var portions []PortionInput
	switch {
	case !hasPortions:
	case in.Portions != nil:
		portions = *in.Portions
	default:
		for _, p := range item.Portions {
			portions = append(portions, PortionInput{
				PortionSizeID: p.PortionSizeID,
				Quantity:      p.Quantity,
				DisplayOrder:  p.DisplayOrder,
			})
		}
	}
	if hasPortions {
		if err := validatePortions(portions); err != nil {
			return err
		}
	}
	if in.Prices == nil {
		return apperr.Validation("prices are required when portions or the pricing mode change")
	}

	titleIDs, err := enabledTitles(tx, design)
	if err != nil {
		return err
	}
	if err := checkPortionSizes(tx, portions); err != nil {
		return err
	}
	if err := validateGrid(design.IsMultiplePricing, titleIDs, portions, *in.Prices); err != nil {
		return err
	}

	if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuItemPrice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuItemPortion{}).Error; err != nil {
		return err
	}

	item.HasMultiplePortions = hasPortions
	item.HasMultiplePrices = design.IsMultiplePricing
	item.Portions = nil
	return writeGrid(tx, item.ID, portions, *in.Prices)
}

// DeleteItem removes the item with its portions, prices, tags and images.
// Image blobs are deleted after the commit; failures there are only logged.
func DeleteItem(ctx context.Context, actor access.Identity, itemID uint, store storage.Store) error {
	var keys []string
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		item, r, err := loadOwnedItem(tx, actor, itemID)
		if err != nil {
			return err
		}
		for _, img := range item.Images {
			keys = append(keys, img.StorageKey)
		}

		if err := deleteItemRows(tx, item); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     item.ID,
			Action:       models.AuditActionDelete,
			Description:  fmt.Sprintf("deleted menu item %q", item.Name),
			Before:       item,
		})
	})
	if err != nil {
		return err
	}

	removeBlobs(ctx, store, keys)
	return nil
}

// DeleteRestaurantItems removes every item of a restaurant inside tx and
// returns the image keys to delete once tx commits.
func DeleteRestaurantItems(tx *gorm.DB, restaurantID uint) ([]string, error) {
	var items []models.MenuItem
	if err := tx.Preload("Images").Where("restaurant_id = ?", restaurantID).Find(&items).Error; err != nil {
		return nil, err
	}

	var keys []string
	for i := range items {
		for _, img := range items[i].Images {
			keys = append(keys, img.StorageKey)
		}
		if err := deleteItemRows(tx, &items[i]); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func deleteItemRows(tx *gorm.DB, item *models.MenuItem) error {
	if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuItemPrice{}).Error; err != nil {
		return err
	}
	if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuItemPortion{}).Error; err != nil {
		return err
	}
	if err := tx.Where("menu_item_id = ?", item.ID).Delete(&models.MenuItemImage{}).Error; err != nil {
		return err
	}
	for _, assoc := range []string{"DietaryRequirements", "ReligiousRestrictions", "Allergens"} {
		if err := tx.Model(item).Association(assoc).Clear(); err != nil {
			return err
		}
	}
	return tx.Delete(item).Error
}

// ReorderItem sets the item's display_order.
func ReorderItem(ctx context.Context, actor access.Identity, itemID uint, displayOrder int) (*ItemView, error) {
	var view *ItemView
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		item, r, err := loadOwnedItem(tx, actor, itemID)
		if err != nil {
			return err
		}
		before := item.DisplayOrder

		if err := tx.Model(item).Update("display_order", displayOrder).Error; err != nil {
			return err
		}
		if view, err = loadView(tx, item.ID); err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     item.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("moved menu item %q from position %d to %d", item.Name, before, displayOrder),
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func GetItem(ctx context.Context, actor access.Identity, itemID uint) (*ItemView, error) {
	db := database.DB.WithContext(ctx)

	var item models.MenuItem
	if err := db.Preload("Restaurant").First(&item, "id = ?", itemID).Error; err != nil {
		return nil, apperr.FromDB(err, "menu item not found")
	}
	if item.Restaurant == nil || !access.CanViewItem(actor, item.Restaurant, item.IsActive) {
		return nil, apperr.NotFound("menu item not found")
	}
	return loadView(db, item.ID)
}

// ListItems returns the items the caller may see, optionally of one restaurant.
func ListItems(ctx context.Context, actor access.Identity, restaurantID uint) ([]ItemView, error) {
	q := database.DB.WithContext(ctx).
		Model(&models.MenuItem{}).
		Select("menu_items.*").
		Joins("JOIN restaurants ON restaurants.id = menu_items.restaurant_id").
		Scopes(access.VisibleMenuItems(actor))
	if restaurantID != 0 {
		q = q.Where("menu_items.restaurant_id = ?", restaurantID)
	}

	var items []models.MenuItem
	err := preload(q).
		Order("menu_items.restaurant_id, menu_items.display_order, menu_items.id").
		Find(&items).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "menu items could not be loaded")
	}
	return newViews(database.DB.WithContext(ctx), items)
}

func loadOwnedItem(tx *gorm.DB, actor access.Identity, itemID uint) (*models.MenuItem, *models.Restaurant, error) {
	var item models.MenuItem
	err := tx.
		Preload("Portions", func(q *gorm.DB) *gorm.DB { return q.Order("display_order, id") }).
		Preload("Images").
		First(&item, "id = ?", itemID).Error
	if err != nil {
		return nil, nil, apperr.FromDB(err, "menu item not found")
	}

	r, err := access.LoadOwned(tx, actor, item.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	return &item, r, nil
}

// designOfCategory resolves the design a menu category row belongs to. New
// placements (requireActive) must target the restaurant's active design.
func designOfCategory(tx *gorm.DB, restaurantID, categoryID uint, requireActive bool) (*models.MenuDesign, error) {
	var mdc models.MenuDesignCategory
	if err := tx.First(&mdc, "id = ?", categoryID).Error; err != nil {
		return nil, apperr.FromDB(err, "menu category not found")
	}

	var design models.MenuDesign
	if err := tx.First(&design, "id = ?", mdc.MenuDesignID).Error; err != nil {
		return nil, apperr.FromDB(err, "menu design not found")
	}
	if design.RestaurantID != restaurantID {
		return nil, apperr.Validation("menu category %d does not belong to this restaurant's menu", categoryID)
	}
	if requireActive && !design.IsActive {
		return nil, apperr.Validation("menu category %d belongs to an inactive menu design", categoryID)
	}
	return &design, nil
}

func enabledTitles(tx *gorm.DB, design *models.MenuDesign) ([]uint, error) {
	if !design.IsMultiplePricing {
		return nil, nil
	}
	var ids []uint
	err := tx.Model(&models.MenuDesignPricing{}).
		Where("menu_design_id = ?", design.ID).
		Order("display_order, id").
		Pluck("pricing_title_id", &ids).Error
	return ids, err
}

func checkPortionSizes(tx *gorm.DB, portions []PortionInput) error {
	for _, p := range portions {
		if err := mustBeActive(tx, &models.PortionSize{}, p.PortionSizeID, "portion size"); err != nil {
			return err
		}
	}
	return nil
}

// mustBeActive fails NotFound for an unknown catalog id and Validation for a
// retired one.
func mustBeActive(tx *gorm.DB, model any, id uint, label string) error {
	var active []bool
	if err := tx.Model(model).Where("id = ?", id).Pluck("is_active", &active).Error; err != nil {
		return err
	}
	if len(active) == 0 {
		return apperr.NotFound("%s %d not found", label, id)
	}
	if !active[0] {
		return apperr.Validation("%s %d is inactive", label, id)
	}
	return nil
}

func writeGrid(tx *gorm.DB, itemID uint, portions []PortionInput, prices []PriceInput) error {
	portionIDs := make(map[uint]uint, len(portions))
	for _, p := range portions {
		row := models.MenuItemPortion{
			MenuItemID:    itemID,
			PortionSizeID: p.PortionSizeID,
			Quantity:      p.Quantity,
			DisplayOrder:  p.DisplayOrder,
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		portionIDs[p.PortionSizeID] = row.ID
	}

	for _, p := range prices {
		row := models.MenuItemPrice{
			MenuItemID:     itemID,
			PricingTitleID: p.PricingTitleID,
			Price:          p.Price.Round(2),
		}
		if p.PortionSizeID != nil {
			id := portionIDs[*p.PortionSizeID]
			row.PortionID = &id
		}
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// replaceTags swaps each tag set whose ids pointer is non-nil.
func replaceTags(tx *gorm.DB, item *models.MenuItem, dietary, religious, allergens *[]uint) error {
	if dietary != nil {
		var rows []models.DietaryRequirement
		if err := loadTags(tx, *dietary, &rows, &models.DietaryRequirement{}, "dietary requirement"); err != nil {
			return err
		}
		if err := setAssociation(tx, item, "DietaryRequirements", rows, len(rows)); err != nil {
			return err
		}
	}
	if religious != nil {
		var rows []models.ReligiousRestriction
		if err := loadTags(tx, *religious, &rows, &models.ReligiousRestriction{}, "religious restriction"); err != nil {
			return err
		}
		if err := setAssociation(tx, item, "ReligiousRestrictions", rows, len(rows)); err != nil {
			return err
		}
	}
	if allergens != nil {
		var rows []models.Allergen
		if err := loadTags(tx, *allergens, &rows, &models.Allergen{}, "allergen"); err != nil {
			return err
		}
		if err := setAssociation(tx, item, "Allergens", rows, len(rows)); err != nil {
			return err
		}
	}
	return nil
}

func setAssociation(tx *gorm.DB, item *models.MenuItem, name string, rows any, n int) error {
	a := tx.Model(item).Association(name)
	if n == 0 {
		return a.Clear()
	}
	return a.Replace(rows)
}

// loadTags fills dest with the rows for ids. Unknown ids are NotFound and
// inactive ones Validation.
func loadTags(tx *gorm.DB, ids []uint, dest, model any, label string) error {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil
	}
	res := tx.Where("id IN ?", ids).Find(dest)
	if res.Error != nil {
		return res.Error
	}
	if int(res.RowsAffected) != len(ids) {
		return apperr.NotFound("one or more %s ids in %v not found", label, ids)
	}

	var active int64
	if err := tx.Model(model).Where("id IN ? AND is_active = ?", ids, true).Count(&active).Error; err != nil {
		return err
	}
	if int(active) != len(ids) {
		return apperr.Validation("inactive %s ids in %v", label, ids)
	}
	return nil
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func removeBlobs(ctx context.Context, store storage.Store, keys []string) {
	if store == nil {
		return
	}
	for _, key := range keys {
		if err := store.Delete(context.WithoutCancel(ctx), key); err != nil {
			logger.L().Warn("image blob could not be deleted", zap.String("key", key), zap.Error(err))
		}
	}
}
