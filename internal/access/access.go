// Package access decides who may see and who may change restaurant data.
// Every decision switches over the closed Role set; unknown values fail closed.
package access

import (
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/models"

	"gorm.io/gorm"
)

type Role int

const (
	RoleGuest Role = iota
	RoleCustomer
	RoleOwner
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleGuest:
		return "guest"
	case RoleCustomer:
		return "customer"
	case RoleOwner:
		return "owner"
	case RoleAdmin:
		return "admin"
	}
	return "unknown"
}

// Identity is the caller as resolved from the stored user row, never from
// token claims.
type Identity struct {
	UserID uint
	Name   string
	Role   Role
}

func Guest() Identity { return Identity{Role: RoleGuest} }

func (id Identity) IsAuthenticated() bool {
	switch id.Role {
	case RoleCustomer, RoleOwner, RoleAdmin:
		return id.UserID != 0
	case RoleGuest:
		return false
	}
	return false
}

// RoleFromUserType maps the stored user type onto the closed role set.
func RoleFromUserType(t models.UserType) (Role, error) {
	switch t {
	case models.UserTypeCustomer:
		return RoleCustomer, nil
	case models.UserTypeOwner:
		return RoleOwner, nil
	case models.UserTypeAdmin:
		return RoleAdmin, nil
	}
	return RoleGuest, apperr.Validation("malformed user type %q", string(t))
}

// IdentityOf builds the identity of a stored user.
func IdentityOf(u *models.User) (Identity, error) {
	role, err := RoleFromUserType(u.UserType)
	if err != nil {
		return Guest(), err
	}
	name := u.Username
	if u.FirstName != "" || u.LastName != "" {
		name = u.FirstName + " " + u.LastName
	}
	return Identity{UserID: u.ID, Name: name, Role: role}, nil
}

// VisibleRestaurants scopes a restaurants query to what id may see. Owners
// manage their own listings and see nothing else, approved or not.
func VisibleRestaurants(id Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch id.Role {
		case RoleAdmin:
			return db
		case RoleOwner:
			return db.Where("restaurants.owner_id = ?", id.UserID)
		case RoleCustomer, RoleGuest:
			return db.Where("restaurants.is_approved = ?", true)
		}
		return db.Where("1 = 0")
	}
}

func CanView(id Identity, r *models.Restaurant) bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleOwner:
		return r.OwnerID == id.UserID
	case RoleCustomer, RoleGuest:
		return r.IsApproved
	}
	return false
}

// RequireOwner allows only the owner of r to mutate it or anything below it.
func RequireOwner(id Identity, r *models.Restaurant) error {
	switch id.Role {
	case RoleOwner:
		if r.OwnerID == id.UserID {
			return nil
		}
		return apperr.PermissionDenied("you do not own this restaurant")
	case RoleAdmin, RoleCustomer:
		return apperr.PermissionDenied("only the restaurant owner can change this restaurant")
	case RoleGuest:
		return apperr.Unauthenticated("authentication required")
	}
	return apperr.PermissionDenied("unknown role")
}

// RequireRole allows callers whose role is one of roles.
func RequireRole(id Identity, roles ...Role) error {
	if id.Role == RoleGuest && !contains(roles, RoleGuest) {
		return apperr.Unauthenticated("authentication required")
	}
	if contains(roles, id.Role) {
		return nil
	}
	return apperr.PermissionDenied("this action requires the %s role", joinRoles(roles))
}

func RequireAdmin(id Identity) error { return RequireRole(id, RoleAdmin) }

// LoadOwned fetches a restaurant and checks id owns it.
func LoadOwned(db *gorm.DB, id Identity, restaurantID uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := db.First(&r, "id = ?", restaurantID).Error; err != nil {
		return nil, apperr.FromDB(err, "restaurant not found")
	}
	if err := RequireOwner(id, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadVisible fetches a restaurant id may see. Hidden restaurants are NotFound.
func LoadVisible(db *gorm.DB, id Identity, restaurantID uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := db.First(&r, "id = ?", restaurantID).Error; err != nil {
		return nil, apperr.FromDB(err, "restaurant not found")
	}
	if !CanView(id, &r) {
		return nil, apperr.NotFound("restaurant not found")
	}
	return &r, nil
}

func contains(roles []Role, r Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func joinRoles(roles []Role) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += " or "
		}
		s += r.String()
	}
	return s
}

// VisibleMenuItems scopes a menu_items query joined with restaurants.
// Owners see only their own items, inactive ones included.
func VisibleMenuItems(id Identity) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch id.Role {
		case RoleAdmin:
			return db
		case RoleOwner:
			return db.Where("restaurants.owner_id = ?", id.UserID)
		case RoleCustomer, RoleGuest:
			return db.Where("restaurants.is_approved = ? AND menu_items.is_active = ?", true, true)
		}
		return db.Where("1 = 0")
	}
}

// CanViewItem reports whether id may read an item of r.
func CanViewItem(id Identity, r *models.Restaurant, itemActive bool) bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleOwner:
		return r.OwnerID == id.UserID
	case RoleCustomer, RoleGuest:
		return r.IsApproved && itemActive
	}
	return false
}
