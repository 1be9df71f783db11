package server

import (
	"restaurant-directory/internal/access"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/auth"
	"restaurant-directory/internal/catalog"
	"restaurant-directory/internal/config"
	"restaurant-directory/internal/dashboard"
	"restaurant-directory/internal/menudesign"
	"restaurant-directory/internal/menuitem"
	"restaurant-directory/internal/models"
	"restaurant-directory/internal/restaurant"

	"github.com/gofiber/fiber/v2"
)

func registerRoutes(app *fiber.App, cfg *config.Config, deps Deps) {
	api := app.Group("/api", auth.Authenticate(cfg))

	api.Post("/auth/register", auth.RegisterHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg))
	api.Post("/auth/refresh", auth.RefreshHandler(cfg))
	api.Get("/profile", auth.RequireAuth(), auth.ProfileHandler())
	api.Patch("/profile", auth.RequireAuth(), auth.UpdateProfileHandler())

	// Menu catalogs and configuration
	menus := api.Group("/menus")
	catalog.Register[models.MenuCategory](menus, catalog.Categories)
	catalog.Register[models.PricingTitle](menus, catalog.PricingTitles)
	catalog.Register[models.SpiceLevel](menus, catalog.SpiceLevels)
	catalog.Register[models.DietaryRequirement](menus, catalog.DietaryRequirements)
	catalog.Register[models.ReligiousRestriction](menus, catalog.ReligiousRestrictions)
	catalog.Register[models.Allergen](menus, catalog.Allergens)
	catalog.Register[models.PortionSize](menus, catalog.PortionSizes)

	menus.Post("/menu-designs", menudesign.CreateDesignHandler())
	menus.Get("/menu-designs/:restaurant_id", menudesign.GetDesignHandler())
	menus.Get("/menu-designs/:restaurant_id/all", menudesign.ListDesignsHandler())
	menus.Get("/menu-designs/:restaurant_id/pricing-titles", menudesign.PricingTitlesHandler())
	menus.Put("/menu-designs/:restaurant_id/categories/order", menudesign.ReorderCategoriesHandler())
	menus.Put("/menu-designs/:restaurant_id/pricing/order", menudesign.ReorderPricingHandler())
	menus.Put("/menu-designs/:restaurant_id/designs/:design_id/active", menudesign.SetDesignActiveHandler())

	menus.Get("/menu-items", menuitem.ListItemsHandler())
	menus.Post("/menu-items", menuitem.CreateItemHandler())
	menus.Get("/menu-items/:id", menuitem.GetItemHandler())
	menus.Put("/menu-items/:id", menuitem.UpdateItemHandler())
	menus.Delete("/menu-items/:id", menuitem.DeleteItemHandler(deps.Store))
	menus.Post("/menu-items/:id/images", menuitem.UploadImagesHandler(deps.Store))
	menus.Put("/menu-items/:id/order", menuitem.ReorderItemHandler())

	// Restaurants; fixed paths before /:id
	restaurants := api.Group("/restaurants")
	catalog.Register[models.VenueType](restaurants, catalog.VenueTypes)
	catalog.Register[models.CuisineType](restaurants, catalog.CuisineTypes)
	catalog.Register[models.Holiday](restaurants, catalog.Holidays)
	restaurants.Get("/amenities", restaurant.ListAmenitiesHandler())
	restaurants.Post("/amenities", restaurant.CreateAmenityHandler())
	restaurants.Post("/amenities/categories", restaurant.CreateAmenityCategoryHandler())

	restaurants.Get("/", restaurant.ListHandler())
	restaurants.Post("/", restaurant.CreateHandler())
	restaurants.Get("/:id", restaurant.GetHandler())
	restaurants.Put("/:id", restaurant.UpdateHandler())
	restaurants.Patch("/:id", restaurant.UpdateHandler())
	restaurants.Delete("/:id", restaurant.DeleteHandler(deps.Store))
	restaurants.Post("/:id/upload_images", restaurant.UploadImagesHandler(deps.Store))
	restaurants.Post("/:id/set_hours", restaurant.SetHoursHandler())
	restaurants.Post("/:id/set_amenities", restaurant.SetAmenitiesHandler())
	restaurants.Post("/:id/approve", restaurant.ApproveHandler())

	admin := api.Group("/admin", auth.RequireRole(access.RoleAdmin))
	admin.Get("/dashboard/stats", dashboard.StatsHandler(deps.Stats))
	admin.Get("/audit-logs", audit.ListAuditLogsHandler())
}
