package provision

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

func TestEnsureGroupsIsIdempotent(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	first, err := EnsureGroups(ctx)
	require.NoError(t, err)
	require.Len(t, first, 3)
	for _, g := range first {
		assert.True(t, g.Created, g.Name)
	}

	var admins models.Group
	require.NoError(t, database.DB.Where("name = ?", models.GroupWebsiteAdmins).First(&admins).Error)
	assert.Contains(t, admins.Permissions, "restaurant.approve")

	// hand edits survive a second run
	require.NoError(t, database.DB.Model(&admins).Update("permissions", "dashboard.view").Error)

	second, err := EnsureGroups(ctx)
	require.NoError(t, err)
	for _, g := range second {
		assert.False(t, g.Created, g.Name)
	}

	var count int64
	database.DB.Model(&models.Group{}).Count(&count)
	assert.EqualValues(t, 3, count)

	require.NoError(t, database.DB.First(&admins, admins.ID).Error)
	assert.Equal(t, "dashboard.view", admins.Permissions)
}

func TestEnsureAdmin(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()
	_, err := EnsureGroups(ctx)
	require.NoError(t, err)

	created, err := EnsureAdmin(ctx, "root@example.com", "change-me-please")
	require.NoError(t, err)
	assert.True(t, created)

	var admin models.User
	require.NoError(t, database.DB.Preload("Groups").Where("username = ?", "root").First(&admin).Error)
	assert.Equal(t, models.UserTypeAdmin, admin.UserType)
	require.Len(t, admin.Groups, 1)
	assert.Equal(t, models.GroupWebsiteAdmins, admin.Groups[0].Name)

	created, err = EnsureAdmin(ctx, "other@example.com", "change-me-please")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = EnsureAdmin(ctx, " ", "x")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}
