package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/events"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// RequestService coordinates the maintenance request lifecycle.
type RequestService struct {
	requests   repository.RequestRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// RequestDependencies bundles collaborators for the request service.
type RequestDependencies struct {
	RequestRepo repository.RequestRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// SubmitInput describes a tenant submission payload.
type SubmitInput struct {
	UnitNumber  string
	Category    string
	Urgency     string
	Description string
}

// NewRequestService constructs the service.
func NewRequestService(deps RequestDependencies) *RequestService {
	return &RequestService{
		requests:   deps.RequestRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// allowedTransitions encodes the request state machine. Self-transitions let
// a worker reassign an in-flight request or claim a pending one; a Completed
// request accepts no further updates.
var allowedTransitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.StatusPending:    {domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted},
	domain.StatusInProgress: {domain.StatusInProgress, domain.StatusCompleted},
	domain.StatusCompleted:  {},
}

func isValidTransition(current, next domain.RequestStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Submit creates a new request on behalf of a tenant. The request always
// starts Pending with no worker assigned.
func (s *RequestService) Submit(ctx context.Context, tenant *domain.User, input SubmitInput) (*domain.MaintenanceRequest, error) {
	if !auth.Authorize(tenant, domain.RoleTenant) {
		return nil, apperrors.NewForbidden("tenant role required")
	}

	fields := map[string]any{}
	unitNumber := strings.TrimSpace(input.UnitNumber)
	description := strings.TrimSpace(input.Description)
	if unitNumber == "" {
		fields["unit_number"] = "required"
	}
	if description == "" {
		fields["description"] = "required"
	}
	if input.Category == "" {
		fields["category"] = "required"
	} else if !domain.ValidCategory(input.Category) {
		fields["category"] = "unrecognized category"
	}
	urgency := domain.Urgency(input.Urgency)
	if input.Urgency == "" {
		fields["urgency"] = "required"
	} else if !urgency.Valid() {
		fields["urgency"] = "unrecognized urgency"
	}
	if len(fields) > 0 {
		return nil, apperrors.NewValidationError("invalid submission", fields)
	}

	req := &domain.MaintenanceRequest{
		TenantID:    tenant.ID,
		UnitNumber:  unitNumber,
		Category:    input.Category,
		Urgency:     urgency,
		Description: description,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestSubmitted,
		RequestID: req.ID,
		Actor:     events.Actor{UserID: tenant.ID, Role: tenant.Role},
		Payload: events.RequestSubmittedPayload{
			TenantID:   req.TenantID,
			UnitNumber: req.UnitNumber,
			Category:   req.Category,
			Urgency:    req.Urgency,
		},
	})
	return req, nil
}

// ApplyUpdate transitions a request's status on behalf of a worker. The
// acting worker becomes the assignee; resolved_at is stamped exactly once
// when the request reaches Completed and is never cleared.
func (s *RequestService) ApplyUpdate(ctx context.Context, worker *domain.User, requestID int64, newStatus domain.RequestStatus) (*domain.MaintenanceRequest, error) {
	if !auth.Authorize(worker, domain.RoleWorker) {
		return nil, apperrors.NewForbidden("worker role required")
	}
	if !newStatus.Valid() {
		return nil, apperrors.NewInvalidTransition("unrecognized status", map[string]any{
			"status": string(newStatus),
		})
	}

	var oldStatus domain.RequestStatus
	updated, err := s.requests.Update(ctx, requestID, func(req *domain.MaintenanceRequest) error {
		if !isValidTransition(req.Status, newStatus) {
			return apperrors.NewInvalidTransition("status change not permitted", map[string]any{
				"from": string(req.Status),
				"to":   string(newStatus),
			})
		}
		oldStatus = req.Status
		req.Status = newStatus
		workerID := worker.ID
		req.AssignedWorkerID = &workerID
		if newStatus == domain.StatusCompleted && req.ResolvedAt == nil {
			now := time.Now().UTC()
			req.ResolvedAt = &now
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("request", map[string]any{"request_id": requestID})
		}
		return nil, apperrors.MapError(err)
	}

	actor := events.Actor{UserID: worker.ID, Role: worker.Role}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestStatusChanged,
		RequestID: updated.ID,
		Actor:     actor,
		Payload: events.RequestStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: updated.Status,
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventRequestAssigned,
		RequestID: updated.ID,
		Actor:     actor,
		Payload:   events.RequestAssignedPayload{WorkerID: worker.ID},
	})
	return updated, nil
}

// MyRequests lists a tenant's own requests, newest first.
func (s *RequestService) MyRequests(ctx context.Context, tenant *domain.User) ([]RequestView, error) {
	if !auth.Authorize(tenant, domain.RoleTenant) {
		return nil, apperrors.NewForbidden("tenant role required")
	}
	requests, err := s.requests.ListByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return buildRequestViews(ctx, s.users, requests)
}

func (s *RequestService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
