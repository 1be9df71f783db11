package audit

import (
	"fmt"

	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"github.com/gofiber/fiber/v2"
)

type AuditLogResponse struct {
	ID           uint               `json:"id"`
	CreatedAt    string             `json:"created_at"`
	RestaurantID *uint              `json:"restaurant_id"`
	UserID       uint               `json:"user_id"`
	UserName     string             `json:"user_name"`
	EntityType   string             `json:"entity_type"`
	EntityID     uint               `json:"entity_id"`
	Action       models.AuditAction `json:"action"`
	Description  string             `json:"description"`
}

// GET /api/admin/audit-logs?entity_type=menu_item&entity_id=1&restaurant_id=1&user_id=2
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.WithContext(c.UserContext()).Model(&models.AuditLog{})

		if v := queryUint(c, "restaurant_id"); v > 0 {
			dbq = dbq.Where("restaurant_id = ?", v)
		}
		if v := queryUint(c, "user_id"); v > 0 {
			dbq = dbq.Where("user_id = ?", v)
		}
		if entityType := c.Query("entity_type"); entityType != "" {
			dbq = dbq.Where("entity_type = ?", entityType)
		}
		if v := queryUint(c, "entity_id"); v > 0 {
			dbq = dbq.Where("entity_id = ?", v)
		}

		limit := c.QueryInt("limit", 100)
		if limit <= 0 || limit > 500 {
			limit = 100
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error; err != nil {
			return apperr.Unavailable(err, "audit logs could not be listed")
		}

		resp := make([]AuditLogResponse, 0, len(logs))
		for _, l := range logs {
			resp = append(resp, AuditLogResponse{
				ID:           l.ID,
				CreatedAt:    l.CreatedAt.Format("2006-01-02 15:04:05"),
				RestaurantID: l.RestaurantID,
				UserID:       l.UserID,
				UserName:     l.UserName,
				EntityType:   l.EntityType,
				EntityID:     l.EntityID,
				Action:       l.Action,
				Description:  l.Description,
			})
		}

		return c.JSON(resp)
	}
}

func queryUint(c *fiber.Ctx, key string) uint {
	s := c.Query(key)
	if s == "" {
		return 0
	}
	var v uint
	if _, err := fmt.Sscan(s, &v); err != nil {
		return 0
	}
	return v
}
