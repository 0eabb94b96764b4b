package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/cache"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

const dashboardCacheKey = "dashboard:manager"

// recentRequestLimit caps the recent-requests list on the dashboard.
const recentRequestLimit = 10

// DashboardMetrics aggregates request statistics for managers.
type DashboardMetrics struct {
	OpenCount          int           `json:"open_count"`
	CompletedCount     int           `json:"completed_count"`
	EmergencyOpenCount int           `json:"emergency_open_count"`
	AvgResolutionHours float64       `json:"avg_resolution_hours"`
	RecentRequests     []RequestView `json:"recent_requests"`
}

// DashboardService computes manager dashboard statistics over the full
// request store.
type DashboardService struct {
	requests repository.RequestRepository
	users    repository.UserRepository
	cache    *cache.Cache
	cacheTTL time.Duration
}

// NewDashboardService constructs the service; cache may be nil to compute
// every call directly.
func NewDashboardService(requests repository.RequestRepository, users repository.UserRepository, c *cache.Cache, cacheTTL time.Duration) *DashboardService {
	return &DashboardService{requests: requests, users: users, cache: c, cacheTTL: cacheTTL}
}

// ManagerDashboard returns the aggregate metrics, served from the cache when
// a fresh snapshot exists.
func (s *DashboardService) ManagerDashboard(ctx context.Context, manager *domain.User) (*DashboardMetrics, error) {
	if !auth.Authorize(manager, domain.RoleManager) {
		return nil, apperrors.NewForbidden("manager role required")
	}
	if s.cache == nil || s.cacheTTL <= 0 {
		return s.compute(ctx)
	}
	metrics, err := cache.GetOrLoadJSON(s.cache, ctx, dashboardCacheKey, s.cacheTTL, s.compute)
	if err != nil {
		// cache trouble must not take the dashboard down
		return s.compute(ctx)
	}
	return metrics, nil
}

func (s *DashboardService) compute(ctx context.Context) (*DashboardMetrics, error) {
	all, err := s.requests.List(ctx, repository.RequestFilter{})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	metrics := &DashboardMetrics{RecentRequests: []RequestView{}}
	var totalHours float64
	var resolvedCount int

	for i := range all {
		req := &all[i]
		if req.Status == domain.StatusCompleted {
			metrics.CompletedCount++
			if req.ResolvedAt != nil {
				totalHours += req.ResolvedAt.Sub(req.CreatedAt).Hours()
				resolvedCount++
			}
			continue
		}
		metrics.OpenCount++
		if req.Urgency == domain.UrgencyEmergency {
			metrics.EmergencyOpenCount++
		}
	}

	if resolvedCount > 0 {
		metrics.AvgResolutionHours = roundHalfUp(totalHours/float64(resolvedCount), 1)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > recentRequestLimit {
		all = all[:recentRequestLimit]
	}
	recent, err := buildRequestViews(ctx, s.users, all)
	if err != nil {
		return nil, err
	}
	metrics.RecentRequests = recent

	return metrics, nil
}

// roundHalfUp rounds to the given number of decimals with half-up semantics.
func roundHalfUp(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5) / scale
}
