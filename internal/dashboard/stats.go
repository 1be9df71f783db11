// Package dashboard serves the admin overview numbers.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"restaurant-directory/internal/access"
	"restaurant-directory/internal/apperr"
	"restaurant-directory/internal/database"
	"restaurant-directory/internal/logger"
	"restaurant-directory/internal/models"

	"go.uber.org/zap"
)

const (
	statsKey = "dashboard:stats"
	StatsTTL = 5 * time.Minute
)

type Stats struct {
	TotalRestaurants int64     `json:"total_restaurants"`
	PendingApprovals int64     `json:"pending_approvals"`
	ActiveUsers      int64     `json:"active_users"`
	Owners           int64     `json:"owners"`
	Customers        int64     `json:"customers"`
	MenuItems        int64     `json:"menu_items"`
	GeneratedAt      time.Time `json:"generated_at"`
}

type Service struct {
	cache Cache
	ttl   time.Duration
}

func NewService(cache Cache) *Service {
	return &Service{cache: cache, ttl: StatsTTL}
}

// Stats returns cached numbers when fresh. The cache is best-effort: read
// and write failures are logged and the database answers instead.
func (s *Service) Stats(ctx context.Context, actor access.Identity) (*Stats, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}

	if raw, ok, err := s.cache.Get(ctx, statsKey); err != nil {
		logger.L().Warn("stats cache read failed", zap.Error(err))
	} else if ok {
		var st Stats
		if err := json.Unmarshal(raw, &st); err == nil {
			return &st, nil
		}
	}

	st, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(st); err == nil {
		if err := s.cache.Set(ctx, statsKey, raw, s.ttl); err != nil {
			logger.L().Warn("stats cache write failed", zap.Error(err))
		}
	}
	return st, nil
}

func compute(ctx context.Context) (*Stats, error) {
	db := database.DB.WithContext(ctx)
	st := &Stats{GeneratedAt: time.Now().UTC()}

	counts := []struct {
		dst   *int64
		model any
		where string
		args  []any
	}{
		{&st.TotalRestaurants, &models.Restaurant{}, "", nil},
		{&st.PendingApprovals, &models.Restaurant{}, "is_approved = ?", []any{false}},
		{&st.ActiveUsers, &models.User{}, "is_active = ?", []any{true}},
		{&st.Owners, &models.User{}, "user_type = ?", []any{models.UserTypeOwner}},
		{&st.Customers, &models.User{}, "user_type = ?", []any{models.UserTypeCustomer}},
		{&st.MenuItems, &models.MenuItem{}, "", nil},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, apperr.Unavailable(err, "dashboard statistics could not be computed")
		}
	}
	return st, nil
}
