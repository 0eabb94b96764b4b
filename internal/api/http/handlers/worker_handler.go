package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// WorkerHandler manages worker queue and status-update endpoints.
type WorkerHandler struct {
	queue    *service.QueueService
	requests *service.RequestService
}

// NewWorkerHandler constructs handler.
func NewWorkerHandler(queueService *service.QueueService, requestService *service.RequestService) *WorkerHandler {
	return &WorkerHandler{queue: queueService, requests: requestService}
}

// Queue GET /worker/queue.
func (h *WorkerHandler) Queue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	views, err := h.queue.WorkerQueue(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(views)})
}

// UpdateStatus POST /worker/requests/:id/status.
func (h *WorkerHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	requestID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid request id", map[string]any{"id": c.Params("id")})
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.requests.ApplyUpdate(c.Context(), principal.User, requestID, domain.RequestStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"id":          updated.ID,
		"status":      updated.Status,
		"resolved_at": updated.ResolvedAt,
	}})
}
