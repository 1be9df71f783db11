package restaurant

import (
	"context"
	"testing"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/catalog"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := map[string]string{
		" wifi,, parking ,": "wifi, parking",
		"":                  "",
		" , ,":              "",
		"a,b,c":             "a, b, c",
		"live music":        "live music",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeAmenities(in), "input %q", in)
	}
}

func TestSetAmenities(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	r := testutil.Restaurant(t, owner, "Olive Tree", true)

	cat, err := CreateAmenityCategory(ctx, testutil.Admin(), AmenityCategoryInput{Name: "Connectivity"})
	require.NoError(t, err)
	assert.Equal(t, "connectivity", cat.Code)
	wifi, err := CreateAmenity(ctx, testutil.Admin(), AmenityInput{CategoryID: cat.ID, Name: "Free WiFi", Code: "wifi"})
	require.NoError(t, err)

	view, err := SetAmenities(ctx, owner, r.ID, AmenitiesInput{
		SelectedAmenityIDs:  &[]uint{wifi.ID},
		AdditionalAmenities: str(" dog friendly,, rooftop ,"),
	})
	require.NoError(t, err)
	assert.Equal(t, "dog friendly, rooftop", view.AdditionalAmenities)
	assert.Equal(t, []string{"dog friendly", "rooftop"}, view.AdditionalAmenitiesList)
	require.Len(t, view.SelectedAmenities, 1)

	// a second call updates the same record
	view, err = SetAmenities(ctx, owner, r.ID, AmenitiesInput{SelectedAmenityIDs: &[]uint{}})
	require.NoError(t, err)
	assert.Empty(t, view.SelectedAmenities)
	assert.Equal(t, "dog friendly, rooftop", view.AdditionalAmenities)

	_, err = SetAmenities(ctx, testutil.User(t, "carl", models.UserTypeCustomer), r.ID, AmenitiesInput{AdditionalAmenities: str("x")})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)
}

func TestAmenityCatalogRules(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)

	_, err := CreateAmenityCategory(ctx, owner, AmenityCategoryInput{Name: "Seating"})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)

	cat, err := CreateAmenityCategory(ctx, testutil.Admin(), AmenityCategoryInput{Name: "Seating"})
	require.NoError(t, err)
	_, err = CreateAmenityCategory(ctx, testutil.Admin(), AmenityCategoryInput{Name: "Seating"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	_, err = CreateAmenity(ctx, testutil.Admin(), AmenityInput{CategoryID: cat.ID, Name: "Outdoor Seating"})
	require.NoError(t, err)
	_, err = CreateAmenity(ctx, testutil.Admin(), AmenityInput{CategoryID: cat.ID, Name: "Outdoor seating"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	_, err = CreateAmenity(ctx, testutil.Admin(), AmenityInput{CategoryID: 999, Name: "Booths"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	categories, err := ListAmenities(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Len(t, categories[0].Amenities, 1)
}

func TestSeedAmenitiesIsIdempotent(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	seed := []catalog.SeedAmenityCategory{{
		Name: "Parking",
		Amenities: []catalog.SeedEntry{
			{Name: "Car Park"},
			{Name: "Bike Racks"},
		},
	}}

	created, skipped, err := SeedAmenities(ctx, testutil.Admin(), seed)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	assert.Zero(t, skipped)

	created, skipped, err = SeedAmenities(ctx, testutil.Admin(), seed)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 3, skipped)
}
