package restaurant

import (
	"strconv"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// GET /api/restaurants?city=&mine=true
func ListHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		restaurants, err := List(c.UserContext(), auth.IdentityFrom(c), ListFilter{
			City: c.Query("city"),
			Mine: c.QueryBool("mine", false),
		})
		if err != nil {
			return err
		}
		return c.JSON(restaurants)
	}
}

// GET /api/restaurants/:id
func GetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		r, err := Get(c.UserContext(), auth.IdentityFrom(c), id)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// POST /api/restaurants
func CreateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		r, err := Create(c.UserContext(), auth.IdentityFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

// PUT/PATCH /api/restaurants/:id
func UpdateHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		r, err := Update(c.UserContext(), auth.IdentityFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(r)
	}
}

// DELETE /api/restaurants/:id
func DeleteHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		if err := Delete(c.UserContext(), auth.IdentityFrom(c), id, store); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/restaurants/:id/upload_images  (multipart: images[], video_url, is_video_thumbnail)
func UploadImagesHandler(store storage.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}

		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "multipart form expected")
		}

		var opts ImageOptions
		if v := form.Value["video_url"]; len(v) > 0 {
			opts.VideoURL = v[0]
		}
		if v := form.Value["is_video_thumbnail"]; len(v) > 0 {
			opts.IsVideoThumbnail, _ = strconv.ParseBool(v[0])
		}

		files := form.File["images"]
		uploads := make([]Upload, 0, len(files))
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "file could not be opened: "+fh.Filename)
			}
			defer f.Close()
			uploads = append(uploads, Upload{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
		}

		images, err := UploadImages(c.UserContext(), auth.IdentityFrom(c), id, uploads, opts, store)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(images)
	}
}

// POST /api/restaurants/:id/set_hours
func SetHoursHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		var body HoursInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		view, err := SetHours(c.UserContext(), auth.IdentityFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Hours updated successfully", "hours": view})
	}
}

// POST /api/restaurants/:id/set_amenities
func SetAmenitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		var body AmenitiesInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		view, err := SetAmenities(c.UserContext(), auth.IdentityFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(view)
	}
}

// POST /api/restaurants/:id/approve
func ApproveHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c)
		if err != nil {
			return err
		}
		if _, err := Approve(c.UserContext(), auth.IdentityFrom(c), id); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"message": "Restaurant approved successfully"})
	}
}

// GET /api/restaurants/amenities
func ListAmenitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		categories, err := ListAmenities(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(categories)
	}
}

// POST /api/restaurants/amenities/categories
func CreateAmenityCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AmenityCategoryInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		category, err := CreateAmenityCategory(c.UserContext(), auth.IdentityFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(category)
	}
}

// POST /api/restaurants/amenities
func CreateAmenityHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AmenityInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		amenity, err := CreateAmenity(c.UserContext(), auth.IdentityFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(amenity)
	}
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid restaurant id %q", c.Params("id"))
	}
	return uint(id), nil
}
