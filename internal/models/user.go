package models

import "time"

// UserType is the stored role of a user. The access package turns it into
// a closed role variant; nothing else should compare these strings.
type UserType string

const (
	UserTypeCustomer UserType = "CUSTOMER"
	UserTypeOwner    UserType = "OWNER"
	UserTypeAdmin    UserType = "ADMIN"
)

type User struct {
	ID                uint     `gorm:"primaryKey"`
	Username          string   `gorm:"size:150;not null;uniqueIndex"`
	Email             string   `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash      string   `gorm:"size:255;not null"`
	FirstName         string   `gorm:"size:150"`
	LastName          string   `gorm:"size:150"`
	UserType          UserType `gorm:"size:10;not null"`
	PhoneNumber       string   `gorm:"size:15"`
	ProfilePictureURL string   `gorm:"size:500"`
	AboutMe           string   `gorm:"type:text"`
	Gender            string   `gorm:"size:1;not null"` // M, F, O, N
	IsActive          bool     `gorm:"not null"`
	Groups            []Group  `gorm:"many2many:user_groups"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Group names created by provisioning.
const (
	GroupCustomers        = "Customers"
	GroupRestaurantOwners = "Restaurant Owners"
	GroupWebsiteAdmins    = "Website Admins"
)

type Group struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:150;not null;uniqueIndex"`
	Permissions string `gorm:"type:text"` // comma separated permission codes
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
