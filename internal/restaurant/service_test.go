package restaurant

import (
	"bytes"
	"context"
	"testing"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/storage"
	"restaurant-directory/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func validInput() Input {
	return Input{
		Name:          str("Olive Tree"),
		Phone:         str("0298765432"),
		Email:         str("hello@olivetree.example"),
		Website:       str("https://olivetree.example"),
		Country:       str("Australia"),
		StreetAddress: str("12 George St"),
		City:          str("Sydney"),
		State:         str("NSW"),
		PostalCode:    str("2000"),
		Latitude:      decimal.NewNullDecimal(decimal.RequireFromString("-33.8688197")),
		Longitude:     decimal.NewNullDecimal(decimal.RequireFromString("151.2092955")),
	}
}

func TestCreateRestaurant(t *testing.T) {
	testutil.UseDB(t)
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	cafe := testutil.Catalog[models.VenueType](t, "Cafe")
	italian := testutil.Catalog[models.CuisineType](t, "Italian")

	in := validInput()
	in.VenueTypeIDs = &[]uint{cafe.ID}
	in.CuisineStyleIDs = &[]uint{italian.ID, italian.ID}

	r, err := Create(context.Background(), owner, in)
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, r.OwnerID)
	assert.False(t, r.IsApproved, "new restaurants wait for approval")
	assert.Len(t, r.VenueTypes, 1)
	assert.Len(t, r.CuisineStyles, 1)
	assert.Equal(t, "-33.86882", r.Latitude.Decimal.Round(5).String())
}

func TestCreateRestaurantRules(t *testing.T) {
	testutil.UseDB(t)
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	customer := testutil.User(t, "carl", models.UserTypeCustomer)
	ctx := context.Background()

	_, err := Create(ctx, customer, validInput())
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)

	_, err = Create(ctx, access.Guest(), validInput())
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "got %v", err)

	missing := validInput()
	missing.City = str("  ")
	_, err = Create(ctx, owner, missing)
	assert.ErrorContains(t, err, "city is required")

	badEmail := validInput()
	badEmail.Email = str("not-an-email")
	_, err = Create(ctx, owner, badEmail)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	badSite := validInput()
	badSite.Website = str("ftp://olivetree.example")
	_, err = Create(ctx, owner, badSite)
	assert.ErrorContains(t, err, "http(s)")

	badLat := validInput()
	badLat.Latitude = decimal.NewNullDecimal(decimal.NewFromInt(91))
	_, err = Create(ctx, owner, badLat)
	assert.ErrorContains(t, err, "latitude")

	inactive := testutil.Catalog[models.VenueType](t, "Bar")
	require.NoError(t, database.DB.Model(inactive).Update("is_active", false).Error)
	withInactive := validInput()
	withInactive.VenueTypeIDs = &[]uint{inactive.ID}
	_, err = Create(ctx, owner, withInactive)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	var n int64
	require.NoError(t, database.DB.Model(&models.Restaurant{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestUpdateByNonOwnerLeavesRowUnchanged(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	other := testutil.User(t, "oscar", models.UserTypeOwner)

	r, err := Create(ctx, owner, validInput())
	require.NoError(t, err)

	for _, actor := range []access.Identity{other, testutil.Admin()} {
		_, err = Update(ctx, actor, r.ID, Input{Name: str("Hijacked")})
		assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)
	}

	var stored models.Restaurant
	require.NoError(t, database.DB.First(&stored, r.ID).Error)
	assert.Equal(t, "Olive Tree", stored.Name)
}

func TestUpdatePartial(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	cafe := testutil.Catalog[models.VenueType](t, "Cafe")

	in := validInput()
	in.VenueTypeIDs = &[]uint{cafe.ID}
	r, err := Create(ctx, owner, in)
	require.NoError(t, err)

	updated, err := Update(ctx, owner, r.ID, Input{Phone: str("0200000000"), VenueTypeIDs: &[]uint{}})
	require.NoError(t, err)
	assert.Equal(t, "0200000000", updated.Phone)
	assert.Equal(t, "Olive Tree", updated.Name)
	assert.Empty(t, updated.VenueTypes)

	_, err = Update(ctx, owner, r.ID, Input{Name: str("")})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestVisibilityAndApproval(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	other := testutil.User(t, "oscar", models.UserTypeOwner)

	r, err := Create(ctx, owner, validInput())
	require.NoError(t, err)

	guestList, err := List(ctx, access.Guest(), ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, guestList)

	_, err = Get(ctx, other, r.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	mine, err := List(ctx, owner, ListFilter{Mine: true})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = Approve(ctx, owner, r.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)

	approved, err := Approve(ctx, testutil.Admin(), r.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)

	_, err = Approve(ctx, testutil.Admin(), r.ID)
	require.NoError(t, err, "approving twice is harmless")

	guestList, err = List(ctx, access.Guest(), ListFilter{City: "sydney"})
	require.NoError(t, err)
	assert.Len(t, guestList, 1)

	// approval does not open a listing to other owners
	otherList, err := List(ctx, other, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, otherList)
	_, err = Get(ctx, other, r.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	customer := testutil.User(t, "carl", models.UserTypeCustomer)
	_, err = Get(ctx, customer, r.ID)
	assert.NoError(t, err)

	guestList, err = List(ctx, access.Guest(), ListFilter{City: "Perth"})
	require.NoError(t, err)
	assert.Empty(t, guestList)
}

func TestDeleteRemovesEverything(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)

	r, err := Create(ctx, owner, validInput())
	require.NoError(t, err)

	cat := testutil.Catalog[models.MenuCategory](t, "Mains")
	design := models.MenuDesign{
		RestaurantID: r.ID,
		IsActive:     true,
		Categories:   []models.MenuDesignCategory{{CategoryID: cat.ID}},
	}
	require.NoError(t, database.DB.Create(&design).Error)
	require.NoError(t, database.DB.Create(&models.MenuItem{
		RestaurantID:         r.ID,
		MenuDesignCategoryID: design.Categories[0].ID,
		Name:                 "Soup",
		IsActive:             true,
	}).Error)

	_, err = UploadImages(ctx, owner, r.ID, []Upload{{Filename: "front.jpg", Body: bytes.NewBufferString("img")}}, ImageOptions{}, store)
	require.NoError(t, err)
	_, err = SetAmenities(ctx, owner, r.ID, AmenitiesInput{AdditionalAmenities: str("wifi")})
	require.NoError(t, err)

	other := testutil.User(t, "oscar", models.UserTypeOwner)
	err = Delete(ctx, other, r.ID, store)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)

	require.NoError(t, Delete(ctx, owner, r.ID, store))

	for _, model := range []any{
		&models.Restaurant{}, &models.MenuDesign{}, &models.MenuDesignCategory{},
		&models.MenuItem{}, &models.RestaurantImage{}, &models.RestaurantAmenities{},
	} {
		var n int64
		require.NoError(t, database.DB.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
	assert.Zero(t, store.Len())

	// the catalog row survives
	var cats int64
	require.NoError(t, database.DB.Model(&models.MenuCategory{}).Count(&cats).Error)
	assert.EqualValues(t, 1, cats)
}

func TestUploadImagesRejectsNonOwner(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	r := testutil.Restaurant(t, owner, "Olive Tree", true)

	_, err := UploadImages(ctx, testutil.Admin(), r.ID, []Upload{{Filename: "a.jpg", Body: bytes.NewBufferString("x")}}, ImageOptions{}, store)
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)
	assert.Zero(t, store.Len())

	imgs, err := UploadImages(ctx, owner, r.ID, []Upload{{Filename: "a.jpg", Body: bytes.NewBufferString("x")}},
		ImageOptions{VideoURL: "https://video.example/tour", IsVideoThumbnail: true}, store)
	require.NoError(t, err)
	require.Len(t, imgs, 1)
	assert.True(t, imgs[0].IsVideoThumbnail)
	require.NotNil(t, imgs[0].VideoURL)
	assert.Equal(t, 1, store.Len())
}
