package auth

import (
	"context"
	"net/mail"
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

type NewUser struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	UserType    models.UserType
	PhoneNumber string
	Gender      string
}

// GroupFor returns the provisioned group a user type belongs to.
func GroupFor(t models.UserType) string {
	switch t {
	case models.UserTypeCustomer:
		return models.GroupCustomers
	case models.UserTypeOwner:
		return models.GroupRestaurantOwners
	case models.UserTypeAdmin:
		return models.GroupWebsiteAdmins
	}
	return ""
}

// CreateUser validates and stores a user and puts it into its role group.
func CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("username, email and password are required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.Validation("invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
	}
	if _, err := access.RoleFromUserType(in.UserType); err != nil {
		return nil, err
	}
	switch in.Gender {
	case "":
		in.Gender = "N"
	case "M", "F", "O", "N":
	default:
		return nil, apperr.Validation("gender must be one of M, F, O, N")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Unavailable(err, "password could not be hashed")
	}

	user := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		UserType:     in.UserType,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		Gender:       in.Gender,
		IsActive:     true,
	}

	err = database.Transact(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("a user with this username or email already exists")
		}

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		var group models.Group
		if err := tx.Where("name = ?", GroupFor(user.UserType)).First(&group).Error; err != nil {
			logger.L().Warn("role group missing, run provisioning",
				zap.String("group", GroupFor(user.UserType)), zap.Uint("user_id", user.ID))
			return nil
		}
		return tx.Model(&user).Association("Groups").Append(&group)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CheckCredentials finds the user by email (when login contains '@') or
// username and verifies the password.
func CheckCredentials(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.Validation("both email/username and password are required")
	}

	q := database.DB.WithContext(ctx)
	if strings.Contains(login, "@") {
		q = q.Where("email = ?", strings.ToLower(login))
	} else {
		q = q.Where("username = ?", login)
	}

	var user models.User
	if err := q.First(&user).Error; err != nil {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthenticated("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Unauthenticated("this account is inactive or has been disabled")
	}
	return &user, nil
}

// ResolveIdentity loads the user behind a token subject and derives its role.
func ResolveIdentity(ctx context.Context, userID uint) (access.Identity, error) {
	var user models.User
	if err := database.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return access.Guest(), apperr.Unauthenticated("user not found")
	}
	if !user.IsActive {
		return access.Guest(), apperr.Unauthenticated("this account is inactive or has been disabled")
	}
	return access.IdentityOf(&user)
}
