package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	OwnerID uint   `gorm:"not null;index" json:"owner"`
	Owner   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name    string `gorm:"size:255;not null" json:"name"`
	Phone   string `gorm:"size:20;not null" json:"phone"`
	Website string `gorm:"size:255" json:"website"`
	Email   string `gorm:"size:254;not null" json:"email"`

	Country       string              `gorm:"size:100;not null" json:"country"`
	StreetAddress string              `gorm:"size:255;not null" json:"street_address"`
	RoomNumber    string              `gorm:"size:50" json:"room_number"`
	City          string              `gorm:"size:100;not null" json:"city"`
	State         string              `gorm:"size:100;not null" json:"state"`
	PostalCode    string              `gorm:"size:20;not null" json:"postal_code"`
	Latitude      decimal.NullDecimal `gorm:"type:decimal(9,6)" json:"latitude"`
	Longitude     decimal.NullDecimal `gorm:"type:decimal(9,6)" json:"longitude"`

	VenueTypes    []VenueType   `gorm:"many2many:restaurant_venue_types" json:"venue_types"`
	CuisineStyles []CuisineType `gorm:"many2many:restaurant_cuisine_styles" json:"cuisine_styles"`

	LogoURL    string `gorm:"size:500" json:"logo"`
	IsApproved bool   `gorm:"not null;index" json:"is_approved"`

	Images         []RestaurantImage    `gorm:"constraint:OnDelete:CASCADE" json:"images"`
	OperatingHours []OperatingHours     `gorm:"constraint:OnDelete:CASCADE" json:"operating_hours"`
	HolidayHours   []HolidayHours       `gorm:"constraint:OnDelete:CASCADE" json:"holiday_hours"`
	Amenities      *RestaurantAmenities `gorm:"constraint:OnDelete:CASCADE" json:"amenities"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RestaurantImage struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	RestaurantID     uint      `gorm:"not null;index" json:"-"`
	URL              string    `gorm:"size:500;not null" json:"image"`
	StorageKey       string    `gorm:"size:255;not null" json:"-"`
	IsVideoThumbnail bool      `gorm:"not null" json:"is_video_thumbnail"`
	VideoURL         *string   `gorm:"size:500" json:"video_url"`
	CreatedAt        time.Time `json:"created_at"`
}

// WeekDays are the values OperatingHours.Day may take, Monday first.
var WeekDays = []string{"MON", "TUE", "WED", "THU", "FRI", "SAT", "SUN"}

type OperatingHours struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	RestaurantID uint   `gorm:"not null;uniqueIndex:idx_restaurant_day" json:"-"`
	Day          string `gorm:"size:3;not null;uniqueIndex:idx_restaurant_day" json:"day"`
	OpenTime     string `gorm:"size:5;not null" json:"open_time"` // "HH:MM"
	CloseTime    string `gorm:"size:5;not null" json:"close_time"`
	IsClosed     bool   `gorm:"not null" json:"is_closed"`
}

type HolidayHours struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	RestaurantID uint     `gorm:"not null;uniqueIndex:idx_restaurant_holiday" json:"-"`
	HolidayID    uint     `gorm:"not null;uniqueIndex:idx_restaurant_holiday;index" json:"holiday"`
	Holiday      *Holiday `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
	OpenTime     *string  `gorm:"size:5" json:"open_time"`
	CloseTime    *string  `gorm:"size:5" json:"close_time"`
	IsClosed     bool     `gorm:"not null" json:"is_closed"`
}

type AmenityCategory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Code        string    `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	Amenities   []Amenity `gorm:"foreignKey:CategoryID" json:"amenities,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Amenity struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	CategoryID  uint             `gorm:"not null;uniqueIndex:idx_amenity_category_code" json:"category"`
	Category    *AmenityCategory `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name        string           `gorm:"size:100;not null" json:"name"`
	Code        string           `gorm:"size:50;not null;uniqueIndex:idx_amenity_category_code" json:"code"`
	Description string           `gorm:"type:text" json:"description"`
	IsActive    bool             `gorm:"not null" json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type RestaurantAmenities struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	RestaurantID        uint      `gorm:"not null;uniqueIndex" json:"-"`
	SelectedAmenities   []Amenity `gorm:"many2many:restaurant_selected_amenities" json:"selected_amenities"`
	AdditionalAmenities string    `gorm:"type:text" json:"additional_amenities"` // "a, b, c"
}
