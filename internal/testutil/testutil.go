// Package testutil sets up in-memory databases and fixture rows for tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"github.com/gosimple/slug"
	"github.com/stretchr/testify/require"
)

var dbSeq atomic.Int64

// UseDB points database.DB at a fresh migrated SQLite database for t.
func UseDB(t *testing.T) {
	t.Helper()

	name := fmt.Sprintf("%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), dbSeq.Add(1))
	require.NoError(t, database.UseInMemory(name))

	db := database.DB
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

// Admin is an admin identity that needs no user row.
func Admin() access.Identity {
	return access.Identity{UserID: 0, Name: "test admin", Role: access.RoleAdmin}
}

// User stores a user of type ut and returns its identity.
func User(t *testing.T, username string, ut models.UserType) access.Identity {
	t.Helper()

	u := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		UserType:     ut,
		Gender:       "N",
		IsActive:     true,
	}
	require.NoError(t, database.DB.Create(&u).Error)

	id, err := access.IdentityOf(&u)
	require.NoError(t, err)
	return id
}

// Restaurant stores a minimal restaurant owned by owner.
func Restaurant(t *testing.T, owner access.Identity, name string, approved bool) *models.Restaurant {
	t.Helper()

	r := models.Restaurant{
		OwnerID:       owner.UserID,
		Name:          name,
		Phone:         "0123456789",
		Email:         "info@example.com",
		Country:       "Australia",
		StreetAddress: "1 Main St",
		City:          "Sydney",
		State:         "NSW",
		PostalCode:    "2000",
		IsApproved:    approved,
	}
	require.NoError(t, database.DB.Create(&r).Error)
	return &r
}

// Catalog stores an active catalog row named name.
func Catalog[T any, P interface {
	*T
	models.CatalogEntry
}](t *testing.T, name string) *T {
	t.Helper()

	row := new(T)
	base := P(row).Base()
	base.Name = name
	base.Code = slug.Make(name)
	base.IsActive = true
	require.NoError(t, database.DB.Create(row).Error)
	return row
}
