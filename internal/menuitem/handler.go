package menuitem

import (
	"strconv"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type reorderRequest struct {
	DisplayOrder *int `json:"display_order"`
}

// GET /api/menus/menu-items?restaurant_id=
func ListItemsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var restaurantID uint
		if raw := c.Query("restaurant_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return apperr.Validation("invalid restaurant_id %q", raw)
			}
			restaurantID = uint(id)
		}

		items, err := ListItems(c.UserContext(), auth.IdentityFrom(c), restaurantID)
		if err != nil {
			return err
		}
		return c.JSON(items)
	}
}

// POST /api/menus/menu-items
func CreateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		item, err := CreateItem(c.UserContext(), auth.IdentityFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

// GET /api/menus/menu-items/:id
func GetItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemParam(c)
		if err != nil {
			return err
		}
		item, err := GetItem(c.UserContext(), auth.IdentityFrom(c), id)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// PUT /api/menus/menu-items/:id
func UpdateItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemParam(c)
		if err != nil {
			return err
		}

		var body UpdateInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		item, err := UpdateItem(c.UserContext(), auth.IdentityFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// DELETE /api/menus/menu-items/:id
func DeleteItemHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemParam(c)
		if err != nil {
			return err
		}
		if err := DeleteItem(c.UserContext(), auth.IdentityFrom(c), id, store); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// PUT /api/menus/menu-items/:id/order
//
// display_order may come as a query parameter or in the JSON body.
func ReorderItemHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemParam(c)
		if err != nil {
			return err
		}

		var order int
		if raw := c.Query("display_order"); raw != "" {
			if order, err = strconv.Atoi(raw); err != nil {
				return apperr.Validation("invalid display_order %q", raw)
			}
		} else {
			var body reorderRequest
			if err := c.BodyParser(&body); err != nil || body.DisplayOrder == nil {
				return apperr.Validation("display_order is required")
			}
			order = *body.DisplayOrder
		}

		item, err := ReorderItem(c.UserContext(), auth.IdentityFrom(c), id, order)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// POST /api/menus/menu-items/:id/images  (multipart field "images", repeatable)
func UploadImagesHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := itemParam(c)
		if err != nil {
			return err
		}

		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart form expected")
		}
		files := form.File["images"]

		blobs := make([]Blob, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "file could not be opened: "+fh.Filename)
			}
			defer f.Close()
			blobs = append(blobs, Blob{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Body:        f,
			})
		}

		images, err := UploadImages(c.UserContext(), auth.IdentityFrom(c), id, blobs, store)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(images)
	}
}

func itemParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid menu item id %q", c.Params("id"))
	}
	return uint(id), nil
}
