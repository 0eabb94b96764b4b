package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// ManagerHandler exposes the manager dashboard.
type ManagerHandler struct {
	dashboard *service.DashboardService
}

// NewManagerHandler constructs handler.
func NewManagerHandler(dashboardService *service.DashboardService) *ManagerHandler {
	return &ManagerHandler{dashboard: dashboardService}
}

// Dashboard GET /manager/dashboard.
func (h *ManagerHandler) Dashboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	metrics, err := h.dashboard.ManagerDashboard(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DashboardResponse{
		OpenCount:          metrics.OpenCount,
		CompletedCount:     metrics.CompletedCount,
		EmergencyOpenCount: metrics.EmergencyOpenCount,
		AvgResolutionHours: metrics.AvgResolutionHours,
		RecentRequests:     requestResponses(metrics.RecentRequests),
	}})
}
