package dto

import (
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// SubmitRequestRequest payload for tenant submissions.
type SubmitRequestRequest struct {
	UnitNumber  string `json:"unit_number"`
	Category    string `json:"category"`
	Urgency     string `json:"urgency"`
	Description string `json:"description"`
}

// UpdateStatusRequest payload for worker status updates.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// RequestResponse exposes a request to API clients.
type RequestResponse struct {
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

// DashboardResponse exposes manager dashboard metrics.
type DashboardResponse struct {
	OpenCount          int               `json:"open_count"`
	CompletedCount     int               `json:"completed_count"`
	EmergencyOpenCount int               `json:"emergency_open_count"`
	AvgResolutionHours float64           `json:"avg_resolution_hours"`
	RecentRequests     []RequestResponse `json:"recent_requests"`
}
