package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	now = now.Add(time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok, "expired at ttl")

	_, ok, _ = c.Get(ctx, "missing")
	assert.False(t, ok)
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestStatsAreCached(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	testutil.User(t, "carl", models.UserTypeCustomer)
	testutil.Restaurant(t, owner, "Olive Tree", false)
	testutil.Restaurant(t, owner, "Fig Tree", true)

	svc := NewService(NewMemoryCache())
	st, err := svc.Stats(ctx, testutil.Admin())
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.TotalRestaurants)
	assert.EqualValues(t, 1, st.PendingApprovals)
	assert.EqualValues(t, 2, st.ActiveUsers)
	assert.EqualValues(t, 1, st.Owners)
	assert.EqualValues(t, 1, st.Customers)

	testutil.Restaurant(t, owner, "Plum Tree", false)
	cached, err := svc.Stats(ctx, testutil.Admin())
	require.NoError(t, err)
	assert.EqualValues(t, 2, cached.TotalRestaurants, "served from cache")
}

func TestStatsSurviveBrokenCache(t *testing.T) {
	testutil.UseDB(t)

	st, err := NewService(brokenCache{}).Stats(context.Background(), testutil.Admin())
	require.NoError(t, err)
	assert.Zero(t, st.TotalRestaurants)
}

func TestStatsAdminOnly(t *testing.T) {
	testutil.UseDB(t)
	owner := testutil.User(t, "olivia", models.UserTypeOwner)

	_, err := NewService(NewMemoryCache()).Stats(context.Background(), owner)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)
}
