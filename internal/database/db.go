package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/config"
	"restaurant-directory/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// TxTimeout bounds every Transact call.
var TxTimeout = 10 * time.Second

func Init(cfg *config.Config) {
	db, err := Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}
	if err := Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	DB = db
	TxTimeout = cfg.TxTimeout
	log.Println("database connected, migration complete")
}

// Connect opens the configured database and makes it the package DB
// without migrating it.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	DB = db
	TxTimeout = cfg.TxTimeout
	return db, nil
}

// Open connects with the given driver ("postgres" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

// Migrate creates or updates every table and the indexes AutoMigrate cannot express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Group{},
		&models.User{},

		&models.VenueType{},
		&models.CuisineType{},
		&models.Holiday{},
		&models.AmenityCategory{},
		&models.Amenity{},
		&models.Restaurant{},
		&models.RestaurantImage{},
		&models.OperatingHours{},
		&models.HolidayHours{},
		&models.RestaurantAmenities{},

		&models.MenuCategory{},
		&models.PricingTitle{},
		&models.SpiceLevel{},
		&models.DietaryRequirement{},
		&models.ReligiousRestriction{},
		&models.Allergen{},
		&models.PortionSize{},

		&models.MenuDesign{},
		&models.MenuDesignCategory{},
		&models.MenuDesignPricing{},
		&models.MenuItem{},
		&models.MenuItemPortion{},
		&models.MenuItemPrice{},
		&models.MenuItemImage{},

		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// One active design per restaurant.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_menu_designs_one_active
		ON menu_designs (restaurant_id) WHERE is_active = TRUE`).Error; err != nil {
		return fmt.Errorf("menu_designs active index: %w", err)
	}

	// NULL segments must collide too, so the index is over COALESCEd columns.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_menu_item_prices_segment
		ON menu_item_prices (menu_item_id, COALESCE(portion_id, 0), COALESCE(pricing_title_id, 0))`).Error; err != nil {
		return fmt.Errorf("menu_item_prices segment index: %w", err)
	}

	return nil
}

// Transact runs fn in a single transaction bounded by TxTimeout. Errors already
// classified by apperr pass through; anything else rolls back as Unavailable.
func Transact(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, TxTimeout)
	defer cancel()

	err := DB.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Unavailable(err, "transaction timed out")
	}
	return apperr.FromDB(err, "record not found")
}
