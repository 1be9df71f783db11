package audit

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	RestaurantID *uint
	Actor        access.Identity
	EntityType   string
	EntityID     uint
	Action       models.AuditAction
	Description  string
	Before       any
	After        any
}

// WriteLog stores one audit row through db, so callers inside a transaction
// get the row committed or rolled back with their change.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	// jsonb columns need "null" rather than an empty string
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	entry := models.AuditLog{
		RestaurantID: opts.RestaurantID,
		UserID:       opts.Actor.UserID,
		UserName:     opts.Actor.Name,
		EntityType:   opts.EntityType,
		EntityID:     opts.EntityID,
		Action:       opts.Action,
		Description:  truncate(opts.Description, 255),
		BeforeData:   beforeStr,
		AfterData:    afterStr,
	}

	if err := db.Create(&entry).Error; err != nil {
		return fmt.Errorf("audit log could not be saved: %w", err)
	}
	return nil
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
