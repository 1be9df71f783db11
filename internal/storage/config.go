package storage

import (
	"context"
	"fmt"

	"restaurant-directory/internal/config"
)

// FromConfig builds the store selected by BLOB_BACKEND (local, s3 or
// memory), bounded by BLOB_TIMEOUT.
func FromConfig(ctx context.Context, cfg *config.Config) (Store, error) {
	var base Store
	switch cfg.BlobBackend {
	case "s3":
		s3Store, err := NewS3Store(ctx, cfg.S3Bucket, cfg.S3Region, cfg.CloudFrontURL)
		if err != nil {
			return nil, err
		}
		base = s3Store
	case "memory":
		base = NewMemoryStore()
	case "local", "":
		base = NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
	return Bounded{Store: base, Timeout: cfg.BlobTimeout}, nil
}
