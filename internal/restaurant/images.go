package restaurant

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
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
)

const maxImagesPerUpload = 10

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageOptions apply to every image of one upload. VideoURL is kept only
// for video thumbnails.
type ImageOptions struct {
	VideoURL         string
	IsVideoThumbnail bool
}

func UploadImages(ctx context.Context, actor access.Identity, id uint, uploads []Upload, opts ImageOptions, store storage.Store) ([]models.RestaurantImage, error) {
	if len(uploads) == 0 {
		return nil, apperr.Validation("no images supplied")
	}
	if len(uploads) > maxImagesPerUpload {
		return nil, apperr.Validation("at most %d images per upload", maxImagesPerUpload)
	}
	for _, u := range uploads {
		if !imageExtensions[strings.ToLower(path.Ext(u.Filename))] {
			return nil, apperr.Validation("%q is not a supported image type", u.Filename)
		}
	}

	var videoURL *string
	if opts.IsVideoThumbnail && opts.VideoURL != "" {
		u, err := url.ParseRequestURI(opts.VideoURL)
		if err != nil || u.Host == "" {
			return nil, apperr.Validation("video_url must be an absolute URL")
		}
		videoURL = &opts.VideoURL
	}

	if _, err := access.LoadOwned(database.DB.WithContext(ctx), actor, id); err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("restaurant_images/%d", id)
	rows := make([]models.RestaurantImage, 0, len(uploads))
	keys := make([]string, 0, len(uploads))
	for _, u := range uploads {
		key := storage.NewKey(prefix, u.Filename)
		location, err := store.Put(ctx, key, u.Body, u.ContentType)
		if err != nil {
			removeBlobs(ctx, store, keys)
			return nil, err
		}
		keys = append(keys, key)
		rows = append(rows, models.RestaurantImage{
			RestaurantID:     id,
			URL:              location,
			StorageKey:       key,
			IsVideoThumbnail: opts.IsVideoThumbnail,
			VideoURL:         videoURL,
		})
	}

	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, id)
		if err != nil {
			return err
		}
		if err := tx.Create(&rows).Error; err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("uploaded %d images", len(rows)),
			After:        keys,
		})
	})
	if err != nil {
		removeBlobs(ctx, store, keys)
		return nil, err
	}
	return rows, nil
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
