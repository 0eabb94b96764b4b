package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// RequestView is the read model handed to the transport layer. AssignedWorker
// carries the worker's display name and is nil while the request is
// unassigned.
type RequestView struct {
	ID             int64                `json:"id"`
	UnitNumber     string               `json:"unit_number"`
	Category       string               `json:"category"`
	Urgency        domain.Urgency       `json:"urgency"`
	Description    string               `json:"description"`
	Status         domain.RequestStatus `json:"status"`
	CreatedAt      time.Time            `json:"created_at"`
	ResolvedAt     *time.Time           `json:"resolved_at,omitempty"`
	AssignedWorker *string              `json:"assigned_worker,omitempty"`
}

// buildRequestViews maps requests to views, resolving assigned worker names
// through the user store. A dangling worker reference leaves the name unset
// rather than failing the whole listing.
func buildRequestViews(ctx context.Context, users repository.UserRepository, requests []domain.MaintenanceRequest) ([]RequestView, error) {
	names := make(map[int64]string)
	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		view := RequestView{
			ID:          req.ID,
			UnitNumber:  req.UnitNumber,
			Category:    req.Category,
			Urgency:     req.Urgency,
			Description: req.Description,
			Status:      req.Status,
			CreatedAt:   req.CreatedAt,
			ResolvedAt:  req.ResolvedAt,
		}
		if req.AssignedWorkerID != nil {
			name, ok := names[*req.AssignedWorkerID]
			if !ok {
				worker, err := users.GetByID(ctx, *req.AssignedWorkerID)
				switch {
				case err == nil:
					name = worker.Username
					names[worker.ID] = name
					ok = true
				case errors.Is(err, pgx.ErrNoRows):
				default:
					return nil, err
				}
			}
			if ok {
				view.AssignedWorker = &name
			}
		}
		views = append(views, view)
	}
	return views, nil
}
