package restaurant

import (
	"context"
	"fmt"
	"slices"
	"time"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/audit"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/models"

	"gorm.io/gorm"
)

type DayHours struct {
	Day       string `json:"day"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	IsClosed  bool   `json:"is_closed"`
}

type HolidayHoursInput struct {
	HolidayID uint    `json:"holiday"`
	OpenTime  *string `json:"open_time"`
	CloseTime *string `json:"close_time"`
	IsClosed  *bool   `json:"is_closed"`
}

// HoursInput replaces whichever of the two sets is present.
type HoursInput struct {
	OperatingHours *[]DayHours          `json:"operating_hours"`
	HolidayHours   *[]HolidayHoursInput `json:"holiday_hours"`
}

type HoursView struct {
	OperatingHours []models.OperatingHours `json:"operating_hours"`
	HolidayHours   []HolidayHoursView      `json:"holiday_hours"`
}

type HolidayHoursView struct {
	models.HolidayHours
	HolidayName string `json:"holiday_name"`
	HolidayCode string `json:"holiday_code"`
}

func SetHours(ctx context.Context, actor access.Identity, id uint, in HoursInput) (*HoursView, error) {
	if in.OperatingHours == nil && in.HolidayHours == nil {
		return nil, apperr.Validation("operating_hours or holiday_hours is required")
	}

	var view *HoursView
	err := database.Transact(ctx, func(tx *gorm.DB) error {
		r, err := access.LoadOwned(tx, actor, id)
		if err != nil {
			return err
		}

		if in.OperatingHours != nil {
			rows, err := operatingRows(r.ID, *in.OperatingHours)
			if err != nil {
				return err
			}
			if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.OperatingHours{}).Error; err != nil {
				return err
			}
			if len(rows) > 0 {
				if err := tx.Create(&rows).Error; err != nil {
					return err
				}
			}
		}

		if in.HolidayHours != nil {
			rows, err := holidayRows(tx, r.ID, *in.HolidayHours)
			if err != nil {
				return err
			}
			if err := tx.Where("restaurant_id = ?", r.ID).Delete(&models.HolidayHours{}).Error; err != nil {
				return err
			}
			if len(rows) > 0 {
				if err := tx.Omit("Holiday").Create(&rows).Error; err != nil {
					return err
				}
			}
		}

		if view, err = loadHours(tx, r.ID); err != nil {
			return err
		}
		return audit.WriteLog(tx, audit.LogOptions{
			RestaurantID: &r.ID,
			Actor:        actor,
			EntityType:   entityType,
			EntityID:     r.ID,
			Action:       models.AuditActionUpdate,
			Description:  fmt.Sprintf("updated opening hours of %q", r.Name),
			After:        view,
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func operatingRows(restaurantID uint, days []DayHours) ([]models.OperatingHours, error) {
	seen := map[string]bool{}
	rows := make([]models.OperatingHours, 0, len(days))
	for _, d := range days {
		if !slices.Contains(models.WeekDays, d.Day) {
			return nil, apperr.Validation("day must be one of %v, got %q", models.WeekDays, d.Day)
		}
		if seen[d.Day] {
			return nil, apperr.Validation("%s is listed twice", d.Day)
		}
		seen[d.Day] = true

		if err := checkSpan(d.Day, d.OpenTime, d.CloseTime, d.IsClosed); err != nil {
			return nil, err
		}
		rows = append(rows, models.OperatingHours{
			RestaurantID: restaurantID,
			Day:          d.Day,
			OpenTime:     d.OpenTime,
			CloseTime:    d.CloseTime,
			IsClosed:     d.IsClosed,
		})
	}
	return rows, nil
}

// holidayRows validates holiday hours. A holiday defaults to closed.
func holidayRows(tx *gorm.DB, restaurantID uint, in []HolidayHoursInput) ([]models.HolidayHours, error) {
	seen := map[uint]bool{}
	rows := make([]models.HolidayHours, 0, len(in))
	for _, h := range in {
		if seen[h.HolidayID] {
			return nil, apperr.Validation("holiday %d is listed twice", h.HolidayID)
		}
		seen[h.HolidayID] = true

		var holiday models.Holiday
		if err := tx.First(&holiday, "id = ?", h.HolidayID).Error; err != nil {
			return nil, apperr.FromDB(err, fmt.Sprintf("holiday %d not found", h.HolidayID))
		}
		if !holiday.IsActive {
			return nil, apperr.Validation("holiday %q is inactive", holiday.Name)
		}

		closed := h.IsClosed == nil || *h.IsClosed
		openAt, closeAt := deref(h.OpenTime), deref(h.CloseTime)
		if err := checkSpan(holiday.Name, openAt, closeAt, closed); err != nil {
			return nil, err
		}

		row := models.HolidayHours{RestaurantID: restaurantID, HolidayID: h.HolidayID, IsClosed: closed}
		if openAt != "" {
			row.OpenTime = &openAt
		}
		if closeAt != "" {
			row.CloseTime = &closeAt
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// checkSpan requires HH:MM times, and both of them unless closed.
func checkSpan(label, openAt, closeAt string, closed bool) error {
	for _, t := range []string{openAt, closeAt} {
		if t == "" {
			continue
		}
		if _, err := time.Parse("15:04", t); err != nil {
			return apperr.Validation("%s: time %q must be HH:MM", label, t)
		}
	}
	if !closed && (openAt == "" || closeAt == "") {
		return apperr.Validation("%s: open_time and close_time are required unless closed", label)
	}
	return nil
}

func loadHours(db *gorm.DB, restaurantID uint) (*HoursView, error) {
	view := &HoursView{OperatingHours: []models.OperatingHours{}, HolidayHours: []HolidayHoursView{}}

	var days []models.OperatingHours
	if err := db.Where("restaurant_id = ?", restaurantID).Find(&days).Error; err != nil {
		return nil, err
	}
	slices.SortFunc(days, func(a, b models.OperatingHours) int {
		return slices.Index(models.WeekDays, a.Day) - slices.Index(models.WeekDays, b.Day)
	})
	view.OperatingHours = append(view.OperatingHours, days...)

	var holidays []models.HolidayHours
	if err := db.Preload("Holiday").Where("restaurant_id = ?", restaurantID).Find(&holidays).Error; err != nil {
		return nil, err
	}
	for _, h := range holidays {
		v := HolidayHoursView{HolidayHours: h}
		if h.Holiday != nil {
			v.HolidayName = h.Holiday.Name
			v.HolidayCode = h.Holiday.Code
		}
		view.HolidayHours = append(view.HolidayHours, v)
	}
	slices.SortFunc(view.HolidayHours, func(a, b HolidayHoursView) int {
		switch {
		case a.HolidayName < b.HolidayName:
			return -1
		case a.HolidayName > b.HolidayName:
			return 1
		}
		return 0
	})
	return view, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
