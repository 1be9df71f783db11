// Package restaurant holds the restaurant listing itself: its details,
// images, opening hours and amenities, and the admin approval step.
package restaurant

import (
	"context"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/menuitem"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/storage"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const entityType = "restaurant"

// Input is the writable part of a restaurant. On update every field is
// optional; on create the address and contact fields are required.
type Input struct {
	Name            *string             `json:"name"`
	Phone           *string             `json:"phone"`
	Website         *string             `json:"website"`
	Email           *string             `json:"email"`
	Country         *string             `json:"country"`
	StreetAddress   *string             `json:"street_address"`
	RoomNumber      *string             `json:"room_number"`
	City            *string             `json:"city"`
	State           *string             `json:"state"`
	PostalCode      *string             `json:"postal_code"`
	Latitude        decimal.NullDecimal `json:"latitude"`
	Longitude       decimal.NullDecimal `json:"longitude"`
	VenueTypeIDs    *[]uint             `json:"venue_type_ids"`
	CuisineStyleIDs *[]uint             `json:"cuisine_style_ids"`
}

type ListFilter struct {
	City string
	Mine bool
}

var (
	maxLatitude  = decimal.NewFromInt(90)
	maxLongitude = decimal.NewFromInt(180)
)

func List(ctx context.Context, actor access.Identity, f ListFilter) ([]models.Restaurant, error) {
	q := database.DB.WithContext(ctx).
		Model(&models.Restaurant{}).
		Scopes(access.VisibleRestaurants(actor))
	if f.City != "" {
		q = q.Where("LOWER(restaurants.city) = ?", strings.ToLower(f.City))
	}
	if f.Mine {
		q = q.Where("restaurants.owner_id = ?", actor.UserID)
	}

	restaurants := []models.Restaurant{}
	err := q.
		Preload("VenueTypes").
		Preload("CuisineStyles").
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Order("restaurants.name, restaurants.id").
		Find(&restaurants).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "restaurants could not be loaded")
	}
	return restaurants, nil
}

// Get returns a restaurant with everything hanging off it.
func Get(ctx context.Context, actor access.Identity, id uint) (*models.Restaurant, error) {
	db := database.DB.WithContext(ctx)
	if _, err := access.LoadVisible(db, actor, id); err != nil {
		return nil, err
	}
	return loadFull(db, id)
}

func loadFull(db *gorm.DB, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	err := db.
		Preload("VenueTypes").
		Preload("CuisineStyles").
		Preload("Images", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("OperatingHours", func(q *gorm.DB) *gorm.DB { return q.Order("id") }).
		Preload("HolidayHours").
		Preload("Amenities.SelectedAmenities").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, apperr.FromDB(err, "restaurant not found")
	}
	return &r, nil
}

// Create stores a new, unapproved restaurant owned by the caller.
func Create(ctx context.Context, actor access.Identity, in Input) (*models.Restaurant, error) {
	if err := access.RequireRole(actor, access.RoleOwner); err != nil {
		return nil, err
	}
	required := []struct {
		field string
		v     *string
	}{
		{"name", in.Name}, {"phone", in.Phone}, {"email", in.Email}, {"country", in.Country},
		{"street_address", in.StreetAddress}, {"city", in.City}, {"state", in.State}, {"postal_code", in.PostalCode},
	}
	for _, f := range required {
		if f.v == nil || strings.TrimSpace(*f.v) == "" {
			return nil, apperr.Validation("%s is required", f.field)
		}
	}

	r := &models.Restaurant{OwnerID: actor.UserID, IsApproved: false}
	if err := apply(r, in); err != nil {
		return nil, err
	}

	var out *models.Restaurant
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(r).Error; err != nil {
			return err
		}
		if err := replaceTypes(tx, r, in); err != nil {
			return err
		}

		var err error
		if out, err = loadFull(tx, r.ID); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionCreate,
			Description:  fmt.Sprintf("created restaurant %q", r.Name),
			After:        out,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update changes the supplied fields of an owned restaurant.
func Update(ctx context.Context, actor access.Identity, id uint, in Input) (*models.Restaurant, error) {
	var out *models.Restaurant
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, id)
		if err != nil {
			return err
		}
		before := *r

		if err := apply(r, in); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(r).Error; err != nil {
			return err
		}
		if err := replaceTypes(tx, r, in); err != nil {
			return err
		}

		if out, err = loadFull(tx, r.ID); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("updated restaurant %q", r.Name),
			Before:       before,
			After:        out,
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an owned restaurant with its menu, hours, amenities and
// images. Blobs go after the commit.
func Delete(ctx context.Context, actor access.Identity, id uint, store storage.Store) error {
	var keys []string
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, id)
		if err != nil {
			return err
		}

		itemKeys, err := menuitem.DeleteRestaurantItems(tx, r.ID)
		if err != nil {
			return err
		}
		keys = append(keys, itemKeys...)

		var designIDs []uint
		if err := tx.Model(&models.MenuDesign{}).Where("restaurant_id = ?", r.ID).Pluck("id", &designIDs).Error; err != nil {
			return err
		}
		if len(designIDs) > 0 {
			if err := tx.Where("menu_design_id IN ?", designIDs).Delete(&models.MenuDesignCategory{}).Error; err != nil {
				return err
			}
			if err := tx.Where("menu_design_id IN ?", designIDs).Delete(&models.MenuDesignPricing{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", designIDs).Delete(&models.MenuDesign{}).Error; err != nil {
				return err
			}
		}

		var images []models.RestaurantImage
		if err := tx.Where("restaurant_id = ?", r.ID).Find(&images).Error; err != nil {
			return err
		}
		for _, img := range images {
			keys = append(keys, img.StorageKey)
		}

		if err := clearAmenities(tx, r.ID); err != nil {
			return err
		}
		for _, model := range []any{&models.RestaurantImage{}, &models.OperatingHours{}, &models.HolidayHours{}} {
			if err := tx.Where("restaurant_id = ?", r.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		for _, assoc := range []string{"VenueTypes", "CuisineStyles"} {
			if err := tx.Model(r).Association(assoc).Clear(); err != nil {
				return err
			}
		}
		if err := tx.Delete(r).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionDelete,
			Description:  fmt.Sprintf("deleted restaurant %q", r.Name),
			Before:       r,
		})
	})
	if err != nil {
		return err
	}

	removeBlobs(ctx, store, keys)
	return nil
}

// Approve publishes a restaurant. Admin only.
func Approve(ctx context.Context, actor access.Identity, id uint) (*models.Restaurant, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var r models.Restaurant
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, "restaurant not found")
		}
		if r.IsApproved {
			return nil
		}
		if err := tx.Model(&r).Update("is_approved", true).Error; err != nil {
			return err
		}
		r.IsApproved = true

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("approved restaurant %q", r.Name),
		})
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func apply(r *models.Restaurant, in Input) error {
	set := func(dst *string, v *string, field string, max int) error {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if len(s) > max {
			return apperr.Validation("%s must be at most %d characters", field, max)
		}
		*dst = s
		return nil
	}

	fields := []struct {
		dst   *string
		v     *string
		field string
		max   int
	}{
		{&r.Name, in.Name, "name", 255},
		{&r.Phone, in.Phone, "phone", 20},
		{&r.Website, in.Website, "website", 255},
		{&r.Email, in.Email, "email", 254},
		{&r.Country, in.Country, "country", 100},
		{&r.StreetAddress, in.StreetAddress, "street_address", 255},
		{&r.RoomNumber, in.RoomNumber, "room_number", 50},
		{&r.City, in.City, "city", 100},
		{&r.State, in.State, "state", 100},
		{&r.PostalCode, in.PostalCode, "postal_code", 20},
	}
	for _, f := range fields {
		if err := set(f.dst, f.v, f.field, f.max); err != nil {
			return err
		}
	}

	if r.Name == "" {
		return apperr.Validation("name must not be empty")
	}
	if in.Email != nil {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return apperr.Validation("invalid email address")
		}
	}
	if in.Website != nil && r.Website != "" {
		u, err := url.ParseRequestURI(r.Website)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return apperr.Validation("website must be an http(s) URL")
		}
	}

	if in.Latitude.Valid {
		if in.Latitude.Decimal.Abs().GreaterThan(maxLatitude) {
			return apperr.Validation("latitude must be between -90 and 90")
		}
		r.Latitude = decimal.NewNullDecimal(in.Latitude.Decimal.Round(6))
	}
	if in.Longitude.Valid {
		if in.Longitude.Decimal.Abs().GreaterThan(maxLongitude) {
			return apperr.Validation("longitude must be between -180 and 180")
		}
		r.Longitude = decimal.NewNullDecimal(in.Longitude.Decimal.Round(6))
	}
	return nil
}

// replaceTypes swaps the venue and cuisine sets that were supplied. Only
// active catalog rows may be chosen.
func replaceTypes(tx *gorm.DB, r *models.Restaurant, in Input) error {
	if in.VenueTypeIDs != nil {
		var rows []models.VenueType
		if err := loadActive(tx, *in.VenueTypeIDs, &rows, "venue type"); err != nil {
			return err
		}
		if err := setAssociation(tx, r, "VenueTypes", rows, len(rows)); err != nil {
			return err
		}
	}
	if in.CuisineStyleIDs != nil {
		var rows []models.CuisineType
		if err := loadActive(tx, *in.CuisineStyleIDs, &rows, "cuisine type"); err != nil {
			return err
		}
		if err := setAssociation(tx, r, "CuisineStyles", rows, len(rows)); err != nil {
			return err
		}
	}
	return nil
}

func loadActive(tx *gorm.DB, ids []uint, dest any, label string) error {
	ids = distinct(ids)
	if len(ids) == 0 {
		return nil
	}
	res := tx.Where("id IN ? AND is_active = ?", ids, true).Find(dest)
	if res.Error != nil {
		return res.Error
	}
	if int(res.RowsAffected) != len(ids) {
		return apperr.Validation("invalid or inactive %s ids in %v", label, ids)
	}
	return nil
}

func setAssociation(tx *gorm.DB, owner any, name string, rows any, n int) error {
	a := tx.Model(owner).Association(name)
	if n == 0 {
		return a.Clear()
	}
	return a.Replace(rows)
}

func distinct(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
