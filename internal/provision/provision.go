// Package provision creates the role groups and the first admin account.
// Both steps are safe to run on every deploy.
package provision

import (
	"context"
	"errors"
	"strings"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminPermissions is granted to the Website Admins group when the group is
// first created. Later edits to the group are left alone.
var AdminPermissions = []string{
	"catalog.add", "catalog.change", "catalog.delete", "catalog.view",
	"restaurant.view", "restaurant.approve", "restaurant.delete",
	"menu_design.view", "menu_item.view",
	"amenity.add", "amenity.change",
	"user.view", "user.change",
	"audit_log.view", "dashboard.view",
}

type GroupResult struct {
	Name    string
	Created bool
}

// EnsureGroups creates any missing role group.
func EnsureGroups(ctx context.Context) ([]GroupResult, error) {
	names := []string{models.GroupCustomers, models.GroupRestaurantOwners, models.GroupWebsiteAdmins}
	results := make([]GroupResult, 0, len(names))

	err := database.Transact(ctx, func(tx *gorm.DB) error {
		results = results[:0]
		for _, name := range names {
			var group models.Group
			err := tx.Where("name = ?", name).First(&group).Error
			switch {
			case err == nil:
				results = append(results, GroupResult{Name: name})
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}

			group = models.Group{Name: name}
			if name == models.GroupWebsiteAdmins {
				group.Permissions = strings.Join(AdminPermissions, ",")
			}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			results = append(results, GroupResult{Name: name, Created: true})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// EnsureAdmin creates the first admin account. It does nothing when an admin
// already exists, and reports whether it created one.
func EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, apperr.Validation("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	var count int64
	if err := database.DB.WithContext(ctx).Model(&models.User{}).
		Where("user_type = ?", models.UserTypeAdmin).
		Count(&count).Error; err != nil {
		return false, apperr.FromDB(err, "user not found")
	}
	if count > 0 {
		logger.L().Info("admin already present, skipping", zap.Int64("admins", count))
		return false, nil
	}

	username := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		username = email[:at]
	}

	user, err := auth.CreateUser(ctx, auth.NewUser{
		Username: username,
		Email:    email,
		Password: password,
		UserType: models.UserTypeAdmin,
	})
	if err != nil {
		return false, err
	}
	logger.L().Info("admin created", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return true, nil
}
