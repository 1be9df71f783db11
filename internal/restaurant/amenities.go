package restaurant

import (
	"context"
	"fmt"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/catalog"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"gorm.io/gorm"
)

type AmenitiesInput struct {
	SelectedAmenityIDs  *[]uint `json:"selected_amenity_ids"`
	AdditionalAmenities *string `json:"additional_amenities"`
}

type AmenitiesView struct {
	SelectedAmenities       []models.Amenity `json:"selected_amenities"`
	AdditionalAmenities     string           `json:"additional_amenities"`
	AdditionalAmenitiesList []string         `json:"additional_amenities_list"`
}

type AmenityCategoryInput struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

type AmenityInput struct {
	CategoryID  uint   `json:"category"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// NormalizeAmenities trims each comma separated entry and drops empty ones:
// " wifi,, parking ,"  ->  "wifi, parking".
func NormalizeAmenities(s string) string {
	return strings.Join(splitAmenities(s), ", ")
}

func splitAmenities(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SetAmenities updates the restaurant's amenity record, creating it on first use.
func SetAmenities(ctx context.Context, actor access.Identity, id uint, in AmenitiesInput) (*AmenitiesView, error) {
	var view *AmenitiesView
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, id)
		if err != nil {
			return err
		}

		var ra models.RestaurantAmenities
		err = tx.Where("restaurant_id = ?", r.ID).
			Attrs(models.RestaurantAmenities{RestaurantID: r.ID}).
			FirstOrCreate(&ra).Error
		if err != nil {
			return err
		}

		if in.AdditionalAmenities != nil {
			ra.AdditionalAmenities = NormalizeAmenities(*in.AdditionalAmenities)
			if err := tx.Model(&ra).Update("additional_amenities", ra.AdditionalAmenities).Error; err != nil {
				return err
			}
		}
		if in.SelectedAmenityIDs != nil {
			var rows []models.Amenity
			if err := loadActive(tx, *in.SelectedAmenityIDs, &rows, "amenity"); err != nil {
				return err
			}
			if err := setAssociation(tx, &ra, "SelectedAmenities", rows, len(rows)); err != nil {
				return err
			}
		}

		if view, err = loadAmenities(tx, r.ID); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("updated amenities of %q", r.Name),
			After:        view,
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func loadAmenities(db *gorm.DB, restaurantID uint) (*AmenitiesView, error) {
	var ra models.RestaurantAmenities
	err := db.Preload("SelectedAmenities", func(q *gorm.DB) *gorm.DB { return q.Order("category_id, name") }).
		Where("restaurant_id = ?", restaurantID).
		First(&ra).Error
	if err != nil {
		return nil, err
	}

	view := &AmenitiesView{
		SelectedAmenities:       ra.SelectedAmenities,
		AdditionalAmenities:     ra.AdditionalAmenities,
		AdditionalAmenitiesList: splitAmenities(ra.AdditionalAmenities),
	}
	if view.SelectedAmenities == nil {
		view.SelectedAmenities = []models.Amenity{}
	}
	return view, nil
}

func clearAmenities(tx *gorm.DB, restaurantID uint) error {
	var ra models.RestaurantAmenities
	err := tx.Where("restaurant_id = ?", restaurantID).Limit(1).Find(&ra).Error
	if err != nil || ra.ID == 0 {
		return err
	}
	if err := tx.Model(&ra).Association("SelectedAmenities").Clear(); err != nil {
		return err
	}
	return tx.Delete(&ra).Error
}

// ListAmenities returns the active amenities grouped by category.
func ListAmenities(ctx context.Context) ([]models.AmenityCategory, error) {
	categories := []models.AmenityCategory{}
	err := database.DB.WithContext(ctx).
		Preload("Amenities", func(q *gorm.DB) *gorm.DB {
			return q.Where("is_active = ?", true).Order("name")
		}).
		Order("name").
		Find(&categories).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "amenities could not be loaded")
	}
	return categories, nil
}

func CreateAmenityCategory(ctx context.Context, actor access.Identity, in AmenityCategoryInput) (*models.AmenityCategory, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	c := &models.AmenityCategory{
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
	}
	if c.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if c.Code == "" {
		c.Code = catalog.Slugify(c.Name)
	}

	err := database.Transact(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.AmenityCategory{}).
			Where("name = ? OR code = ?", c.Name, c.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("amenity category %q already exists", c.Name)
		}
		if err := tx.Create(c).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "amenity_category",
			EntityID:    c.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created amenity category %q", c.Name),
			After:       c,
		})
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func CreateAmenity(ctx context.Context, actor access.Identity, in AmenityInput) (*models.Amenity, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	a := &models.Amenity{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Code:        strings.TrimSpace(in.Code),
		Description: in.Description,
		IsActive:    true,
	}
	if a.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if a.Code == "" {
		a.Code = catalog.Slugify(a.Name)
	}

	err := database.Transact(ctx, func(tx *gorm.DB) error {
		var category models.AmenityCategory
		if err := tx.First(&category, "id = ?", a.CategoryID).Error; err != nil {
			return apperr.FromDB(err, "amenity category not found")
		}

		var count int64
		if err := tx.Model(&models.Amenity{}).
			Where("category_id = ? AND code = ?", a.CategoryID, a.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("amenity %q already exists in %q", a.Code, category.Name)
		}
		if err := tx.Omit("Category").Create(a).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  "amenity",
			EntityID:    a.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created amenity %q", a.Name),
			After:       a,
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SeedAmenities creates the amenity categories and amenities of a seed
// file, skipping the ones that exist.
func SeedAmenities(ctx context.Context, actor access.Identity, seed []catalog.SeedAmenityCategory) (created, skipped int, err error) {
	for _, sc := range seed {
		code := sc.Code
		if code == "" {
			code = catalog.Slugify(sc.Name)
		}

		var category *models.AmenityCategory
		category, err = CreateAmenityCategory(ctx, actor, AmenityCategoryInput{Name: sc.Name, Code: code, Description: sc.Description})
		switch {
		case err == nil:
			created++
		case apperr.Is(err, apperr.KindConflict):
			skipped++
			category = &models.AmenityCategory{}
			if err = database.DB.WithContext(ctx).First(category, "name = ? OR code = ?", sc.Name, code).Error; err != nil {
				return created, skipped, fmt.Errorf("amenity category %q: %w", sc.Name, err)
			}
		default:
			return created, skipped, err
		}

		for _, a := range sc.Amenities {
			_, err = CreateAmenity(ctx, actor, AmenityInput{
				CategoryID:  category.ID,
				Name:        a.Name,
				Code:        a.Code,
				Description: a.Description,
			})
			switch {
			case err == nil:
				created++
			case apperr.Is(err, apperr.KindConflict):
				skipped++
			default:
				return created, skipped, err
			}
		}
	}
	return created, skipped, nil
}
