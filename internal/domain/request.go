package domain

import "time"

// RequestStatus enumerates lifecycle states for maintenance requests.
type RequestStatus string

const (
	StatusPending    RequestStatus = "Pending"
	StatusInProgress RequestStatus = "In Progress"
	StatusCompleted  RequestStatus = "Completed"
)

// Valid reports whether the status is one of the recognized lifecycle states.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// Urgency enumerates how pressing a request is.
type Urgency string

const (
	UrgencyLow       Urgency = "Low"
	UrgencyMedium    Urgency = "Medium"
	UrgencyHigh      Urgency = "High"
	UrgencyEmergency Urgency = "Emergency"
)

// Rank returns the queue ordering priority for the urgency; lower sorts
// first. Unrecognized urgencies sort after all known values.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyEmergency:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	case UrgencyLow:
		return 3
	default:
		return 4
	}
}

// Valid reports whether the urgency is recognized for submission.
func (u Urgency) Valid() bool {
	return u.Rank() < 4
}

// Categories lists the request categories accepted at submission. The store
// keeps category as free text so the set can grow without migration.
var Categories = []string{"Plumbing", "Electrical", "HVAC", "General"}

// ValidCategory reports whether the category is accepted at submission.
func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// MaintenanceRequest is the aggregate for tenant-reported issues.
//
// ResolvedAt is non-nil exactly when Status is Completed and is set once,
// never cleared. AssignedWorkerID stays nil only while no worker has acted
// on the request.
type MaintenanceRequest struct {
	ID               int64
	TenantID         int64
	UnitNumber       string
	Category         string
	Urgency          Urgency
	Description      string
	Status           RequestStatus
	CreatedAt        time.Time
	ResolvedAt       *time.Time
	AssignedWorkerID *int64
}
