package auth

import (
	"strings"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/config"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Password2   string `json:"password2"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	UserType    string `json:"user_type"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username"`
	Password        string `json:"password"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	AboutMe     *string `json:"about_me"`
	Gender      *string `json:"gender"`
}

type UserResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	UserType       string `json:"user_type"`
	PhoneNumber    string `json:"phone_number"`
	ProfilePicture string `json:"profile_picture"`
	AboutMe        string `json:"about_me"`
	Gender         string `json:"gender"`
	GenderDisplay  string `json:"gender_display"`
}

var genderDisplay = map[string]string{
	"M": "Male",
	"F": "Female",
	"O": "Other",
	"N": "Prefer not to say",
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		UserType:       string(u.UserType),
		PhoneNumber:    u.PhoneNumber,
		ProfilePicture: u.ProfilePictureURL,
		AboutMe:        u.AboutMe,
		Gender:         u.Gender,
		GenderDisplay:  genderDisplay[u.Gender],
	}
}

// POST /api/auth/register
func RegisterHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Password2 != "" && body.Password2 != body.Password {
			return apperr.Validation("password fields didn't match")
		}

		// Admin accounts only come from provisioning.
		userType := models.UserType(strings.ToUpper(strings.TrimSpace(body.UserType)))
		if userType != models.UserTypeCustomer && userType != models.UserTypeOwner {
			return apperr.Validation("user_type must be CUSTOMER or OWNER")
		}

		user, err := CreateUser(c.UserContext(), NewUser{
			Username:    body.Username,
			Email:       body.Email,
			Password:    body.Password,
			FirstName:   body.FirstName,
			LastName:    body.LastName,
			UserType:    userType,
			PhoneNumber: body.PhoneNumber,
			Gender:      body.Gender,
		})
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user":    toUserResponse(user),
			"message": "User Created Successfully",
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		user, err := CheckCredentials(c.UserContext(), body.EmailOrUsername, body.Password)
		if err != nil {
			return err
		}

		accessToken, refreshToken, err := GenerateTokenPair(cfg.JWTSecret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "token could not be created")
		}

		return c.JSON(fiber.Map{
			"status":  "success",
			"access":  accessToken,
			"refresh": refreshToken,
			"user":    toUserResponse(user),
		})
	}
}

// POST /api/auth/refresh
func RefreshHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RefreshRequest
		if err := c.BodyParser(&body); err != nil || body.Refresh == "" {
			return fiber.NewError(fiber.StatusBadRequest, "refresh token is required")
		}

		claims, err := ParseToken(cfg.JWTSecret, body.Refresh, TokenTypeRefresh)
		if err != nil {
			return apperr.Unauthenticated("%s", err.Error())
		}

		var user models.User
		if err := database.DB.WithContext(c.UserContext()).First(&user, "id = ?", claims.UserID).Error; err != nil {
			return apperr.Unauthenticated("user not found")
		}
		if !user.IsActive {
			return apperr.Unauthenticated("this account is inactive or has been disabled")
		}

		accessToken, err := GenerateToken(cfg.JWTSecret, &user, TokenTypeAccess)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "token could not be created")
		}
		return c.JSON(fiber.Map{"access": accessToken})
	}
}

// GET /api/profile
func ProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)

		var user models.User
		if err := database.DB.WithContext(c.UserContext()).First(&user, "id = ?", id.UserID).Error; err != nil {
			return apperr.FromDB(err, "user not found")
		}

		return c.JSON(fiber.Map{
			"status": "success",
			"user":   toUserResponse(&user),
		})
	}
}

// PATCH /api/profile
func UpdateProfileHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := IdentityFrom(c)

		var body UpdateProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		var user models.User
		if err := database.DB.WithContext(c.UserContext()).First(&user, "id = ?", id.UserID).Error; err != nil {
			return apperr.FromDB(err, "user not found")
		}

		if body.FirstName != nil {
			user.FirstName = strings.TrimSpace(*body.FirstName)
		}
		if body.LastName != nil {
			user.LastName = strings.TrimSpace(*body.LastName)
		}
		if body.PhoneNumber != nil {
			phone := strings.TrimSpace(*body.PhoneNumber)
			if len(phone) > 15 {
				return apperr.Validation("phone_number must be at most 15 characters")
			}
			user.PhoneNumber = phone
		}
		if body.AboutMe != nil {
			user.AboutMe = *body.AboutMe
		}
		if body.Gender != nil {
			if _, ok := genderDisplay[*body.Gender]; !ok {
				return apperr.Validation("gender must be one of M, F, O, N")
			}
			user.Gender = *body.Gender
		}

		if err := database.DB.WithContext(c.UserContext()).Save(&user).Error; err != nil {
			return apperr.FromDB(err, "user not found")
		}

		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Profile updated successfully",
			"user":    toUserResponse(&user),
		})
	}
}
