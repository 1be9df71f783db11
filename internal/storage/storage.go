// Package storage keeps uploaded images. Rows reference blobs by key and URL.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"restaurant-directory/internal/apperr"

	"github.com/google/uuid"
)

type Store interface {
	// Put writes the blob under key and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// NewKey builds a collision-free key under prefix, keeping the file extension.
func NewKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)
}

// Bounded applies a timeout to every call of the wrapped store.
type Bounded struct {
	Store   Store
	Timeout time.Duration
}

func (b Bounded) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()

	url, err := b.Store.Put(ctx, key, r, contentType)
	if err != nil {
		return "", apperr.Unavailable(err, "image could not be stored")
	}
	return url, nil
}

func (b Bounded) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, b.Timeout)
	defer cancel()
	return b.Store.Delete(ctx, key)
}
