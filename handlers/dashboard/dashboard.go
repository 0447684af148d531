package dashboard

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/model"
	"github.com/webmovil/escolar-api/utils/cache"
	"github.com/webmovil/escolar-api/utils/response"
	"gorm.io/gorm"
)

const (
	totalsCacheKey = "dashboard:user_totals"
	totalsCacheTTL = 60 * time.Second
)

// DashboardHandler serves aggregate counters for the client dashboard
type DashboardHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(db *gorm.DB, redisCache *cache.RedisCache) *DashboardHandler {
	return &DashboardHandler{
		db:    db,
		cache: redisCache,
	}
}

// UserTotals is the per-role population snapshot.
type UserTotals struct {
	Admins   int64 `json:"admins"`
	Maestros int64 `json:"maestros"`
	Alumnos  int64 `json:"alumnos"`
}

// TotalUsers handles GET /api/total-usuarios. Counts come from a short-lived
// cache; a miss recomputes from the database.
func (h *DashboardHandler) TotalUsers(c *fiber.Ctx) error {
	if h.cache != nil {
		var cached UserTotals
		if err := h.cache.GetJSON(c.Context(), totalsCacheKey, &cached); err == nil {
			return response.Success(c, cached)
		}
	}

	totals, err := h.ComputeTotals()
	if err != nil {
		return response.InternalServerError(c, "Failed to count users")
	}

	if h.cache != nil {
		h.cache.SetJSON(c.Context(), totalsCacheKey, totals, totalsCacheTTL)
	}

	return response.Success(c, totals)
}

// ComputeTotals counts active profiles per role. Also used by the periodic
// cache refresh job.
func (h *DashboardHandler) ComputeTotals() (UserTotals, error) {
	var totals UserTotals

	counts := []struct {
		m    interface{}
		dest *int64
	}{
		{&model.Admin{}, &totals.Admins},
		{&model.Teacher{}, &totals.Maestros},
		{&model.Student{}, &totals.Alumnos},
	}
	for _, c := range counts {
		if err := h.db.Model(c.m).Count(c.dest).Error; err != nil {
			return UserTotals{}, err
		}
	}
	return totals, nil
}

// RefreshTotalsCache recomputes the counters and rewrites the cache entry.
func (h *DashboardHandler) RefreshTotalsCache() error {
	if h.cache == nil {
		return nil
	}
	totals, err := h.ComputeTotals()
	if err != nil {
		return err
	}
	return h.cache.SetJSON(context.Background(), totalsCacheKey, totals, totalsCacheTTL)
}
