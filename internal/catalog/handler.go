package catalog

import (
	"strconv"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/auth"

	"github.com/gofiber/fiber/v2"
)

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// Register mounts the routes of one catalog kind under r:
//
//	GET    /<slug>/             list (?include_inactive=true for admins)
//	POST   /<slug>/             create
//	POST   /<slug>/import/      xlsx bulk import
//	GET    /<slug>/:id/         fetch one
//	PUT    /<slug>/:id/active/  activate or deactivate
//	DELETE /<slug>/:id/         delete when unreferenced
func Register[T any, P entry[T]](r fiber.Router, k Kind) {
	g := r.Group("/" + k.Slug)
	g.Get("/", listHandler[T, P](k))
	g.Post("/", createHandler[T, P](k))
	g.Post("/import", importHandler[T, P](k))
	g.Get("/:id", getHandler[T, P](k))
	g.Put("/:id/active", setActiveHandler[T, P](k))
	g.Delete("/:id", deleteHandler[T, P](k))
}

func listHandler[T any, P entry[T]](k Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		includeInactive := c.QueryBool("include_inactive", false)
		if includeInactive {
			if err := access.RequireAdmin(auth.IdentityFrom(c)); err != nil {
				return err
			}
		}

		rows, err := List[T, P](c.UserContext(), k, includeInactive)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

func getHandler[T any, P entry[T]](k Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		row, err := Get[T, P](c.UserContext(), k, id)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}

func createHandler[T any, P entry[T]](k Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		row, err := Create[T, P](c.UserContext(), k, auth.IdentityFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(row)
	}
}

func setActiveHandler[T any, P entry[T]](k Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}

		var body setActiveRequest
		if err := c.BodyParser(&body); err != nil || body.IsActive == nil {
			return apperr.Validation("is_active is required")
		}

		row, err := SetActive[T, P](c.UserContext(), k, auth.IdentityFrom(c), id, *body.IsActive)
		if err != nil {
			return err
		}
		return c.JSON(row)
	}
}

func deleteHandler[T any, P entry[T]](k Kind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := paramID(c)
		if err != nil {
			return err
		}
		if err := Delete[T, P](c.UserContext(), k, auth.IdentityFrom(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid id %q", c.Params("id"))
	}
	return uint(id), nil
}
