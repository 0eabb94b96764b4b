package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
)

// DemoData populates an empty store with the demo accounts and a sample set
// of requests so the service is explorable immediately after first start.
// A store that already holds users is left untouched.
func DemoData(ctx context.Context, users repository.UserRepository, requests repository.RequestRepository, bcryptCost int, logger *zap.Logger) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	logger.Info("seeding demo data")

	accounts := map[domain.Role]*domain.User{}
	for _, role := range []domain.Role{domain.RoleTenant, domain.RoleWorker, domain.RoleManager} {
		hash, err := auth.HashPassword("password", bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password: %w", err)
		}
		user := &domain.User{
			Username:     string(role),
			PasswordHash: hash,
			Role:         role,
		}
		if err := users.Create(ctx, user); err != nil {
			return fmt.Errorf("seed user %s: %w", role, err)
		}
		accounts[role] = user
	}

	tenantID := accounts[domain.RoleTenant].ID
	workerID := accounts[domain.RoleWorker].ID
	now := time.Now().UTC()

	type sample struct {
		unit        string
		category    string
		urgency     domain.Urgency
		description string
		status      domain.RequestStatus
		ageDays     int
		resolveHrs  int
	}
	samples := []sample{
		{"101", "Plumbing", domain.UrgencyHigh, "Kitchen sink leaking under the cabinet.", domain.StatusPending, 1, 0},
		{"102", "Electrical", domain.UrgencyMedium, "Hallway light flickering.", domain.StatusInProgress, 3, 0},
		{"103", "HVAC", domain.UrgencyEmergency, "No heat in the whole unit.", domain.StatusPending, 0, 0},
		{"104", "General", domain.UrgencyLow, "Front door sticks when it rains.", domain.StatusCompleted, 12, 6},
		{"105", "Plumbing", domain.UrgencyEmergency, "Water heater burst, flooding the bathroom.", domain.StatusInProgress, 1, 0},
		{"106", "Electrical", domain.UrgencyHigh, "Outlet sparking in the bedroom.", domain.StatusCompleted, 9, 4},
		{"107", "HVAC", domain.UrgencyMedium, "AC barely cooling during the afternoon.", domain.StatusPending, 5, 0},
		{"108", "General", domain.UrgencyLow, "Paint peeling on the balcony ceiling.", domain.StatusPending, 20, 0},
		{"101", "HVAC", domain.UrgencyHigh, "Thermostat reads wrong temperature.", domain.StatusCompleted, 15, 30},
		{"103", "Plumbing", domain.UrgencyMedium, "Toilet runs constantly.", domain.StatusInProgress, 7, 0},
		{"106", "General", domain.UrgencyMedium, "Window latch broken.", domain.StatusCompleted, 25, 48},
		{"102", "Electrical", domain.UrgencyLow, "Doorbell stopped working.", domain.StatusPending, 10, 0},
	}

	for _, s := range samples {
		createdAt := now.AddDate(0, 0, -s.ageDays)
		req := &domain.MaintenanceRequest{
			TenantID:    tenantID,
			UnitNumber:  s.unit,
			Category:    s.category,
			Urgency:     s.urgency,
			Description: s.description,
			Status:      s.status,
			CreatedAt:   createdAt,
		}
		if s.status != domain.StatusPending {
			id := workerID
			req.AssignedWorkerID = &id
		}
		if s.status == domain.StatusCompleted {
			resolvedAt := createdAt.Add(time.Duration(s.resolveHrs) * time.Hour)
			req.ResolvedAt = &resolvedAt
		}
		if err := requests.Create(ctx, req); err != nil {
			return fmt.Errorf("seed request: %w", err)
		}
	}

	logger.Info("demo data seeded",
		zap.Int("users", len(accounts)),
		zap.Int("requests", len(samples)))
	return nil
}
