package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/dto"
	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/service"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// RequestsHandler manages tenant request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requestService *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requestService}
}

// Submit POST /tenant/requests.
func (h *RequestsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitRequestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	created, err := h.requests.Submit(c.Context(), principal.User, service.SubmitInput{
		UnitNumber:  req.UnitNumber,
		Category:    req.Category,
		Urgency:     req.Urgency,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": fiber.Map{"id": created.ID}})
}

// MyRequests GET /tenant/requests.
func (h *RequestsHandler) MyRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	views, err := h.requests.MyRequests(c.Context(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponses(views)})
}

func requestResponse(view service.RequestView) dto.RequestResponse {
	return dto.RequestResponse{
		ID:             view.ID,
		UnitNumber:     view.UnitNumber,
		Category:       view.Category,
		Urgency:        view.Urgency,
		Description:    view.Description,
		Status:         view.Status,
		CreatedAt:      view.CreatedAt,
		ResolvedAt:     view.ResolvedAt,
		AssignedWorker: view.AssignedWorker,
	}
}

func requestResponses(views []service.RequestView) []dto.RequestResponse {
	items := make([]dto.RequestResponse, 0, len(views))
	for _, view := range views {
		items = append(items, requestResponse(view))
	}
	return items
}
