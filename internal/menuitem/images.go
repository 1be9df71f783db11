package menuitem

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/storage"

	"gorm.io/gorm"
)

const maxImagesPerUpload = 10

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// Blob is one uploaded file.
type Blob struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// UploadImages stores each blob and appends one image row per blob after the
// item's existing images, in the order given. If the rows cannot be written
// the stored blobs are removed again.
func UploadImages(ctx context.Context, actor access.Identity, itemID uint, blobs []Blob, store storage.Store) ([]ImageView, error) {
	if len(blobs) == 0 {
		return nil, apperr.Validation("no images supplied")
	}
	if len(blobs) > maxImagesPerUpload {
		return nil, apperr.Validation("at most %d images per upload", maxImagesPerUpload)
	}
	for _, b := range blobs {
		if !imageExtensions[strings.ToLower(path.Ext(b.Filename))] {
			return nil, apperr.Validation("%q is not a supported image type", b.Filename)
		}
	}

	// Check ownership before anything reaches the store.
	if _, _, err := loadOwnedItem(database.DB.WithContext(ctx), actor, itemID); err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("menu_items/%d", itemID)
	stored := make([]models.MenuItemImage, 0, len(blobs))
	keys := make([]string, 0, len(blobs))
	for _, b := range blobs {
		key := storage.NewKey(prefix, b.Filename)
		url, err := store.Put(ctx, key, b.Body, b.ContentType)
		if err != nil {
			removeBlobs(ctx, store, keys)
			return nil, err
		}
		keys = append(keys, key)
		stored = append(stored, models.MenuItemImage{MenuItemID: itemID, URL: url, StorageKey: key})
	}

	err := database.Transact(ctx, func(tx *gorm.DB) error {
		_, r, err := loadOwnedItem(tx, actor, itemID)
		if err != nil {
			return err
		}

		var next int
		if err := tx.Model(&models.MenuItemImage{}).
			Where("menu_item_id = ?", itemID).
			Select("COALESCE(MAX(display_order) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		for i := range stored {
			stored[i].DisplayOrder = next + i
		}
		if err := tx.Create(&stored).Error; err != nil {
			return err
		}

		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     itemID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("uploaded %d images", len(stored)),
			After:        keys,
		})
	})
	if err != nil {
		removeBlobs(ctx, store, keys)
		return nil, err
	}

	out := make([]ImageView, 0, len(stored))
	for _, img := range stored {
		out = append(out, imageView(img))
	}
	return out, nil
}
