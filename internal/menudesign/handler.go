package menudesign

import (
	"strconv"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type setActiveRequest struct {
	IsActive *bool `json:"is_active"`
}

// POST /api/menus/menu-designs
func CreateDesignHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		view, err := CreateDesign(c.UserContext(), auth.IdentityFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// GET /api/menus/menu-designs/:restaurant_id
//
// Always answers with a {"detail": ...} body on failure, including the
// underlying error for unexpected ones.
func GetDesignHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := restaurantParam(c)
		if err != nil {
			return err
		}

		view, err := GetDesign(c.UserContext(), auth.IdentityFrom(c), restaurantID)
		if err == nil {
			return c.JSON(view)
		}

		switch apperr.KindOf(err) {
		case apperr.KindInternal, apperr.KindUnavailable:
			logger.L().Error("menu design lookup failed", zap.Uint("restaurant_id", restaurantID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"detail": "Server error: " + err.Error()})
		default:
			return err
		}
	}
}

// PUT /api/menus/menu-designs/:restaurant_id/categories/order
func ReorderCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := restaurantParam(c)
		if err != nil {
			return err
		}

		var body []CategoryOrder
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "body must be a list of {category_id, display_order}")
		}

		rows, err := ReorderCategories(c.UserContext(), auth.IdentityFrom(c), restaurantID, body)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// PUT /api/menus/menu-designs/:restaurant_id/pricing/order
func ReorderPricingHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := restaurantParam(c)
		if err != nil {
			return err
		}

		var body []PricingOrder
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "body must be a list of {pricing_title_id, display_order}")
		}

		rows, err := ReorderPricing(c.UserContext(), auth.IdentityFrom(c), restaurantID, body)
		if err != nil {
			return err
		}
		return c.JSON(rows)
	}
}

// GET /api/menus/menu-designs/:restaurant_id/pricing-titles
func PricingTitlesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := restaurantParam(c)
		if err != nil {
			return err
		}

		titles, err := RestaurantPricingTitles(c.UserContext(), auth.IdentityFrom(c), restaurantID)
		if err != nil {
			return err
		}
		return c.JSON(titles)
	}
}

// GET /api/menus/menu-designs/:restaurant_id/all
func ListDesignsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := restaurantParam(c)
		if err != nil {
			return err
		}

		designs, err := ListDesigns(c.UserContext(), auth.IdentityFrom(c), restaurantID)
		if err != nil {
			return err
		}
		return c.JSON(designs)
	}
}

// PUT /api/menus/menu-designs/:restaurant_id/designs/:design_id/active
func SetDesignActiveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurantID, err := restaurantParam(c)
		if err != nil {
			return err
		}
		designID, err := strconv.ParseUint(c.Params("design_id"), 10, 64)
		if err != nil || designID == 0 {
			return apperr.Validation("invalid design id %q", c.Params("design_id"))
		}

		var body setActiveRequest
		if err := c.BodyParser(&body); err != nil || body.IsActive == nil {
			return apperr.Validation("is_active is required")
		}

		d, err := SetDesignActive(c.UserContext(), auth.IdentityFrom(c), restaurantID, uint(designID), *body.IsActive)
		if err != nil {
			return err
		}
		return c.JSON(d)
	}
}

func restaurantParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("restaurant_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid restaurant id %q", c.Params("restaurant_id"))
	}
	return uint(id), nil
}
