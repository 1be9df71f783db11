// Package catalog manages the admin-curated reference tables shared by all
// restaurants. Rows are never cascaded away: a referenced row can only be
// deactivated.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// entry is satisfied by *T for every catalog model T.
type entry[T any] interface {
	*T
	models.CatalogEntry
}

type CreateInput struct {
	Name         string `json:"name"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	SpecialNotes string `json:"special_notes"`
	DisplayOrder int    `json:"display_order"`
	IsActive     *bool  `json:"is_active"`
	IsDefault    bool   `json:"is_default"`
}

// Slugify derives the URL-safe code used when a caller gives none.
func Slugify(name string) string {
	return slug.Make(name)
}

func List[T any, P entry[T]](ctx context.Context, k Kind, includeInactive bool) ([]T, error) {
	q := database.DB.WithContext(ctx).Model(new(T))
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}

	var rows []T
	if err := q.Order(k.order).Order("id").Find(&rows).Error; err != nil {
		return nil, apperr.Unavailable(err, "%s list could not be loaded", k.Label)
	}
	return rows, nil
}

func Get[T any, P entry[T]](ctx context.Context, k Kind, id uint) (*T, error) {
	row := new(T)
	if err := database.DB.WithContext(ctx).First(row, "id = ?", id).Error; err != nil {
		return nil, apperr.FromDB(err, k.Label+" not found")
	}
	return row, nil
}

// Create stores a new row. Name and code must be unique among all rows,
// active or not.
func Create[T any, P entry[T]](ctx context.Context, k Kind, actor access.Identity, in CreateInput) (*T, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	row := new(T)
	if err := fill(P(row), in); err != nil {
		return nil, err
	}
	base := P(row).Base()

	err := database.Transact(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(T)).
			Where("name = ? OR code = ?", base.Name, base.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("%s with name %q or code %q already exists", k.Label, base.Name, base.Code)
		}

		if err := tx.Create(row).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  k.EntityType(),
			EntityID:    base.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("created %s %q", k.Label, base.Name),
			After:       row,
		})
	})
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, apperr.Conflict("%s with name %q or code %q already exists", k.Label, base.Name, base.Code)
		}
		return nil, err
	}
	return row, nil
}

// SetActive is how callers retire a row that is still referenced.
func SetActive[T any, P entry[T]](ctx context.Context, k Kind, actor access.Identity, id uint, active bool) (*T, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	row := new(T)
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		if err := tx.First(row, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, k.Label+" not found")
		}
		before := *P(row).Base()

		if err := tx.Model(row).Update("is_active", active).Error; err != nil {
			return err
		}
		P(row).Base().IsActive = active

		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  k.EntityType(),
			EntityID:    id,
			Action:      models.AuditActionUpdate,
			Description: fmt.Sprintf("set %s %q active=%t", k.Label, before.Name, active),
			Before:      before,
			After:       row,
		})
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes an unreferenced row. Referenced rows give a Conflict that
// points the caller at SetActive.
func Delete[T any, P entry[T]](ctx context.Context, k Kind, actor access.Identity, id uint) error {
	if err := access.RequireAdmin(actor); err != nil {
		return err
	}

	return database.Transact(ctx, func(tx *gorm.DB) error {
		row := new(T)
		if err := tx.First(row, "id = ?", id).Error; err != nil {
			return apperr.FromDB(err, k.Label+" not found")
		}

		inUse, err := referenced(tx, k, id)
		if err != nil {
			return err
		}
		if inUse {
			return apperr.Conflict("%s is in use; deactivate it instead of deleting", k.Label)
		}

		if err := tx.Delete(row).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			Actor:       actor,
			EntityType:  k.EntityType(),
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("deleted %s %q", k.Label, P(row).Base().Name),
			Before:      row,
		})
	})
}

// Referenced reports whether any dependent row points at id.
func Referenced(ctx context.Context, k Kind, id uint) (bool, error) {
	return referenced(database.DB.WithContext(ctx), k, id)
}

func referenced(db *gorm.DB, k Kind, id uint) (bool, error) {
	for _, ref := range k.references {
		q := db.Session(&gorm.Session{NewDB: true})
		if ref.model != nil {
			q = q.Model(ref.model)
		} else {
			q = q.Table(ref.table)
		}

		var count int64
		if err := q.Where(ref.column+" = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func fill(e models.CatalogEntry, in CreateInput) error {
	base := e.Base()
	base.Name = strings.TrimSpace(in.Name)
	if base.Name == "" {
		return apperr.Validation("name is required")
	}
	if len(base.Name) > 100 {
		return apperr.Validation("name must be at most 100 characters")
	}

	base.Code = strings.TrimSpace(in.Code)
	if base.Code == "" {
		base.Code = Slugify(base.Name)
	} else if !slug.IsSlug(base.Code) {
		return apperr.Validation("code %q is not a valid slug", base.Code)
	}
	if base.Code == "" {
		return apperr.Validation("a code cannot be derived from name %q", base.Name)
	}

	base.Description = in.Description
	base.IsActive = true
	if in.IsActive != nil {
		base.IsActive = *in.IsActive
	}
	if in.DisplayOrder < 0 {
		return apperr.Validation("display_order must not be negative")
	}

	switch v := e.(type) {
	case *models.MenuCategory:
		v.SpecialNotes = in.SpecialNotes
		v.IsDefault = in.IsDefault
	case *models.PricingTitle:
		v.DisplayOrder = in.DisplayOrder
		v.IsDefault = in.IsDefault
	case *models.SpiceLevel:
		v.DisplayOrder = in.DisplayOrder
	case *models.DietaryRequirement:
		v.DisplayOrder = in.DisplayOrder
	case *models.PortionSize:
		v.DisplayOrder = in.DisplayOrder
	}
	return nil
}
