package auth

import (
	"strings"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/config"

	"github.com/gofiber/fiber/v2"
)

const CtxIdentityKey = "identity"

// Authenticate resolves the bearer token, if any, into an access.Identity.
// Requests without an Authorization header continue as guests.
func Authenticate(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			c.Locals(CtxIdentityKey, access.Guest())
			return c.Next()
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return apperr.Unauthenticated("authorization header must be 'Bearer <token>'")
		}

		claims, err := ParseToken(cfg.JWTSecret, parts[1], TokenTypeAccess)
		if err != nil {
			return apperr.Unauthenticated("%s", err.Error())
		}

		id, err := ResolveIdentity(c.UserContext(), claims.UserID)
		if err != nil {
			return err
		}

		c.Locals(CtxIdentityKey, id)
		return c.Next()
	}
}

// IdentityFrom returns the caller identity stored by Authenticate.
func IdentityFrom(c *fiber.Ctx) access.Identity {
	if id, ok := c.Locals(CtxIdentityKey).(access.Identity); ok {
		return id
	}
	return access.Guest()
}

// RequireAuth rejects guests.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !IdentityFrom(c).IsAuthenticated() {
			return apperr.Unauthenticated("authentication required")
		}
		return c.Next()
	}
}

func RequireRole(allowed ...access.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := access.RequireRole(IdentityFrom(c), allowed...); err != nil {
			return err
		}
		return c.Next()
	}
}
