package dashboard

import (
	"restaurant-directory/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/admin/dashboard/stats
func StatsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st, err := svc.Stats(c.UserContext(), auth.IdentityFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(st)
	}
}
