package auth

import (
	"context"
	"testing"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwner() NewUser {
	return NewUser{
		Username: "olivia",
		Email:    "Olivia@Example.com",
		Password: "s3cret-pass",
		UserType: models.UserTypeOwner,
	}
}

func TestCreateUserJoinsGroup(t *testing.T) {
	testutil.UseDB(t)
	require.NoError(t, database.DB.Create(&models.Group{Name: models.GroupRestaurantOwners}).Error)

	u, err := CreateUser(context.Background(), newOwner())
	require.NoError(t, err)
	assert.Equal(t, "olivia@example.com", u.Email)
	assert.Equal(t, "N", u.Gender)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)

	var stored models.User
	require.NoError(t, database.DB.Preload("Groups").First(&stored, u.ID).Error)
	require.Len(t, stored.Groups, 1)
	assert.Equal(t, models.GroupRestaurantOwners, stored.Groups[0].Name)
}

func TestCreateUserWithoutGroups(t *testing.T) {
	testutil.UseDB(t)

	_, err := CreateUser(context.Background(), newOwner())
	assert.NoError(t, err, "missing groups only log a warning")
}

func TestCreateUserValidation(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, newOwner())
	require.NoError(t, err)

	_, err = CreateUser(ctx, newOwner())
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	short := newOwner()
	short.Username, short.Email, short.Password = "sam", "sam@example.com", "short"
	_, err = CreateUser(ctx, short)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	badGender := newOwner()
	badGender.Username, badGender.Email, badGender.Gender = "gus", "gus@example.com", "X"
	_, err = CreateUser(ctx, badGender)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestCheckCredentials(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	_, err := CreateUser(ctx, newOwner())
	require.NoError(t, err)

	u, err := CheckCredentials(ctx, "OLIVIA@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "olivia", u.Username)

	_, err = CheckCredentials(ctx, "olivia", "s3cret-pass")
	require.NoError(t, err)

	_, err = CheckCredentials(ctx, "olivia", "wrong-pass")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "got %v", err)

	require.NoError(t, database.DB.Model(&models.User{}).Where("username = ?", "olivia").Update("is_active", false).Error)
	_, err = CheckCredentials(ctx, "olivia", "s3cret-pass")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "got %v", err)
}

func TestResolveIdentityUsesStoredRole(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	u, err := CreateUser(ctx, newOwner())
	require.NoError(t, err)

	id, err := ResolveIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleOwner, id.Role)

	// a role change takes effect without a new token
	require.NoError(t, database.DB.Model(u).Update("user_type", models.UserTypeCustomer).Error)
	id, err = ResolveIdentity(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, access.RoleCustomer, id.Role)

	_, err = ResolveIdentity(ctx, 9999)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "got %v", err)
}

func TestPasswordsAreNotTrimmed(t *testing.T) {
	testutil.UseDB(t)
	ctx := context.Background()

	in := newOwner()
	in.Password = " secret123 "
	_, err := CreateUser(ctx, in)
	require.NoError(t, err)

	_, err = CheckCredentials(ctx, "olivia", " secret123 ")
	assert.NoError(t, err)

	_, err = CheckCredentials(ctx, "olivia", "secret123")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated), "got %v", err)
}
