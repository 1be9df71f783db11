package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"restaurant-directory/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKey(t *testing.T) {
	a := NewKey("/menu_items/3/", "Photo.JPG")
	b := NewKey("menu_items/3", "Photo.JPG")

	assert.True(t, strings.HasPrefix(a, "menu_items/3/"), a)
	assert.True(t, strings.HasSuffix(a, ".jpg"), a)
	assert.NotEqual(t, a, b)

	assert.False(t, strings.Contains(NewKey("x", "noext"), "."))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	url, err := m.Put(ctx, "a/b.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "mem://a/b.png", url)
	assert.True(t, m.Has("a/b.png"))
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(ctx, "a/b.png"))
	require.NoError(t, m.Delete(ctx, "a/b.png"))
	assert.Zero(t, m.Len())

	m.FailPut = true
	_, err = m.Put(ctx, "c", strings.NewReader("x"), "")
	assert.Error(t, err)
}

type slowStore struct{ *MemoryStore }

func (s slowStore) Put(ctx context.Context, key string, r io.Reader, ct string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(time.Second):
		return s.MemoryStore.Put(ctx, key, r, ct)
	}
}

func TestBoundedTimesOut(t *testing.T) {
	b := Bounded{Store: slowStore{NewMemoryStore()}, Timeout: 10 * time.Millisecond}

	_, err := b.Put(context.Background(), "k", strings.NewReader("x"), "")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindUnavailable), "got %v", err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewLocalStore(root, "http://localhost:8000/uploads/")

	url, err := s.Put(ctx, "restaurants/1/logo.png", strings.NewReader("logo"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/uploads/restaurants/1/logo.png", url)

	data, err := os.ReadFile(filepath.Join(root, "restaurants", "1", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, "logo", string(data))

	require.NoError(t, s.Delete(ctx, "restaurants/1/logo.png"))
	require.NoError(t, s.Delete(ctx, "restaurants/1/logo.png"), "missing files are ignored")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Put(cancelled, "restaurants/1/late.png", strings.NewReader("late"), "image/png")
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(root, "restaurants", "1", "late.png"))
	assert.True(t, os.IsNotExist(statErr))
}
