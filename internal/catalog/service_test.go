package catalog

import (
	"context"
	"testing"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDerivesCode(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	row, err := Create[models.MenuCategory](ctx, Categories, testutil.Admin(), CreateInput{
		Name:         "  Breakfast ",
		SpecialNotes: "Served 6am - 10:30am",
	})
	require.NoError(t, err)
	assert.Equal(t, "Breakfast", row.Name)
	assert.Equal(t, "breakfast", row.Code)
	assert.Equal(t, "Served 6am - 10:30am", row.SpecialNotes)
	assert.True(t, row.IsActive)

	var logs int64
	require.NoError(t, database.DB.Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", "catalog:categories", row.ID).
		Count(&logs).Error)
	assert.EqualValues(t, 1, logs)
}

func TestCreateDuplicateIsConflict(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	_, err := Create[models.MenuCategory](ctx, Categories, testutil.Admin(), CreateInput{Name: "Breakfast"})
	require.NoError(t, err)

	_, err = Create[models.MenuCategory](ctx, Categories, testutil.Admin(), CreateInput{Name: "Breakfast"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	// same code under a different name
	_, err = Create[models.MenuCategory](ctx, Categories, testutil.Admin(), CreateInput{Name: "BREAKFAST!"})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
}

func TestCreateRejectsBadInput(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	cases := map[string]CreateInput{
		"empty name":        {Name: "   "},
		"invalid code":      {Name: "Mains", Code: "Not A Slug"},
		"negative order":    {Name: "Dine In", DisplayOrder: -1},
		"no derivable code": {Name: "!!!"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Create[models.PricingTitle](ctx, PricingTitles, testutil.Admin(), in)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestCreateRequiresAdmin(t *testing.T) {
	testutil.UseDB(t)
	owner := testutil.User(t, "olivia", models.UserTypeOwner)

	_, err := Create[models.Allergen](context.Background(), Allergens, owner, CreateInput{Name: "Peanuts"})
	assert.True(t, apperr.Is(err, apperr.KindPermissionDenied), "got %v", err)
}

func TestListHidesInactive(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	a, err := Create[models.SpiceLevel](ctx, SpiceLevels, testutil.Admin(), CreateInput{Name: "Hot", DisplayOrder: 3})
	require.NoError(t, err)
	_, err = Create[models.SpiceLevel](ctx, SpiceLevels, testutil.Admin(), CreateInput{Name: "Mild", DisplayOrder: 1})
	require.NoError(t, err)
	_, err = SetActive[models.SpiceLevel](ctx, SpiceLevels, testutil.Admin(), a.ID, false)
	require.NoError(t, err)

	active, err := List[models.SpiceLevel](ctx, SpiceLevels, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Mild", active[0].Name)

	all, err := List[models.SpiceLevel](ctx, SpiceLevels, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Mild", all[0].Name, "ordered by display_order")
}

func TestDeleteReferencedIsConflict(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	r := testutil.Restaurant(t, owner, "Olive Tree", true)
	cat := testutil.Catalog[models.MenuCategory](t, "Breakfast")

	design := models.MenuDesign{
		RestaurantID: r.ID,
		IsActive:     true,
		Categories:   []models.MenuDesignCategory{{CategoryID: cat.ID}},
	}
	require.NoError(t, database.DB.Create(&design).Error)

	inUse, err := Referenced(ctx, Categories, cat.ID)
	require.NoError(t, err)
	assert.True(t, inUse)

	err = Delete[models.MenuCategory](ctx, Categories, testutil.Admin(), cat.ID)
	require.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	assert.Contains(t, err.Error(), "deactivate it")

	// deactivation is still allowed and keeps the design intact
	_, err = SetActive[models.MenuCategory](ctx, Categories, testutil.Admin(), cat.ID, false)
	require.NoError(t, err)
	var joins int64
	require.NoError(t, database.DB.Model(&models.MenuDesignCategory{}).Count(&joins).Error)
	assert.EqualValues(t, 1, joins)
}

func TestDeleteUnreferenced(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	row := testutil.Catalog[models.Allergen](t, "Sesame")
	require.NoError(t, Delete[models.Allergen](ctx, Allergens, testutil.Admin(), row.ID))

	_, err := Get[models.Allergen](ctx, Allergens, row.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestReferencedThroughJoinTable(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	owner := testutil.User(t, "olivia", models.UserTypeOwner)
	r := testutil.Restaurant(t, owner, "Olive Tree", true)
	venue := testutil.Catalog[models.VenueType](t, "Cafe")
	require.NoError(t, database.DB.Model(r).Association("VenueTypes").Append(venue))

	inUse, err := Referenced(ctx, VenueTypes, venue.ID)
	require.NoError(t, err)
	assert.True(t, inUse)
}
