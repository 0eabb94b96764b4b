package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

type testEnv struct {
	users    *repository.MemoryUserRepository
	requests *repository.MemoryRequestRepository
	service  *RequestService
	tenant   *domain.User
	worker   *domain.User
	worker2  *domain.User
	manager  *domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	users := repository.NewMemoryUserRepository()
	requests := repository.NewMemoryRequestRepository()

	env := &testEnv{users: users, requests: requests}
	for _, u := range []struct {
		name string
		role domain.Role
		dst  **domain.User
	}{
		{"alice", domain.RoleTenant, &env.tenant},
		{"bob", domain.RoleWorker, &env.worker},
		{"carol", domain.RoleWorker, &env.worker2},
		{"dave", domain.RoleManager, &env.manager},
	} {
		user := &domain.User{Username: u.name, PasswordHash: "x", Role: u.role}
		if err := users.Create(ctx, user); err != nil {
			t.Fatalf("seed user %s: %v", u.name, err)
		}
		*u.dst = user
	}

	env.service = NewRequestService(RequestDependencies{
		RequestRepo: requests,
		UserRepo:    users,
	})
	return env
}

func (e *testEnv) mustSubmit(t *testing.T, urgency domain.Urgency) *domain.MaintenanceRequest {
	t.Helper()
	req, err := e.service.Submit(context.Background(), e.tenant, SubmitInput{
		UnitNumber:  "101",
		Category:    "Plumbing",
		Urgency:     string(urgency),
		Description: "leaking sink",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return req
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	return domainErr.Code
}

// checkInvariants asserts resolved_at is set exactly when the request is
// Completed and never precedes creation.
func checkInvariants(t *testing.T, req *domain.MaintenanceRequest) {
	t.Helper()
	if (req.Status == domain.StatusCompleted) != (req.ResolvedAt != nil) {
		t.Fatalf("resolved_at/%q invariant broken: resolved_at=%v", req.Status, req.ResolvedAt)
	}
	if req.ResolvedAt != nil && req.ResolvedAt.Before(req.CreatedAt) {
		t.Fatalf("resolved_at %v before created_at %v", req.ResolvedAt, req.CreatedAt)
	}
	if req.Status != domain.StatusPending && req.AssignedWorkerID == nil {
		t.Fatalf("non-pending request without assigned worker")
	}
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	env := newTestEnv(t)
	req := env.mustSubmit(t, domain.UrgencyHigh)

	if req.ID == 0 {
		t.Fatal("submit did not assign an id")
	}
	if req.Status != domain.StatusPending {
		t.Fatalf("status = %q, want Pending", req.Status)
	}
	if req.AssignedWorkerID != nil {
		t.Fatal("new request must not have an assigned worker")
	}
	if req.ResolvedAt != nil {
		t.Fatal("new request must not have resolved_at")
	}
	if req.TenantID != env.tenant.ID {
		t.Fatalf("tenant id = %d, want %d", req.TenantID, env.tenant.ID)
	}
	checkInvariants(t, req)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input SubmitInput
		field string
	}{
		{"empty description", SubmitInput{UnitNumber: "101", Category: "Plumbing", Urgency: "High"}, "description"},
		{"empty unit", SubmitInput{Category: "Plumbing", Urgency: "High", Description: "x"}, "unit_number"},
		{"empty category", SubmitInput{UnitNumber: "101", Urgency: "High", Description: "x"}, "category"},
		{"unknown category", SubmitInput{UnitNumber: "101", Category: "Roofing", Urgency: "High", Description: "x"}, "category"},
		{"empty urgency", SubmitInput{UnitNumber: "101", Category: "Plumbing", Description: "x"}, "urgency"},
		{"unknown urgency", SubmitInput{UnitNumber: "101", Category: "Plumbing", Urgency: "Immediately", Description: "x"}, "urgency"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.Submit(ctx, env.tenant, tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "VALIDATION_FAILED" {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
			if _, ok := domainErr.Details[tc.field]; !ok {
				t.Fatalf("details %v missing field %q", domainErr.Details, tc.field)
			}
		})
	}

	all, err := env.requests.List(ctx, repository.RequestFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("failed submissions created %d records", len(all))
	}
}

func TestSubmitRequiresTenantRole(t *testing.T) {
	env := newTestEnv(t)
	input := SubmitInput{UnitNumber: "101", Category: "Plumbing", Urgency: "High", Description: "x"}

	for _, actor := range []*domain.User{env.worker, env.manager, nil} {
		_, err := env.service.Submit(context.Background(), actor, input)
		if err == nil {
			t.Fatal("expected Forbidden")
		}
		if code := errCode(t, err); code != "FORBIDDEN" {
			t.Fatalf("expected FORBIDDEN, got %s", code)
		}
	}
}

func TestApplyUpdateTransitions(t *testing.T) {
	cases := []struct {
		name       string
		path       []domain.RequestStatus
		wantWorker bool
	}{
		{"pending to in progress", []domain.RequestStatus{domain.StatusInProgress}, true},
		{"pending straight to completed", []domain.RequestStatus{domain.StatusCompleted}, true},
		{"full lifecycle", []domain.RequestStatus{domain.StatusInProgress, domain.StatusCompleted}, true},
		{"re-mark in progress", []domain.RequestStatus{domain.StatusInProgress, domain.StatusInProgress}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			req := env.mustSubmit(t, domain.UrgencyMedium)

			var updated *domain.MaintenanceRequest
			var err error
			for _, status := range tc.path {
				updated, err = env.service.ApplyUpdate(context.Background(), env.worker, req.ID, status)
				if err != nil {
					t.Fatalf("ApplyUpdate(%q): %v", status, err)
				}
				checkInvariants(t, updated)
			}
			if updated.Status != tc.path[len(tc.path)-1] {
				t.Fatalf("final status %q", updated.Status)
			}
			if tc.wantWorker && (updated.AssignedWorkerID == nil || *updated.AssignedWorkerID != env.worker.ID) {
				t.Fatalf("assigned worker = %v, want %d", updated.AssignedWorkerID, env.worker.ID)
			}
		})
	}
}

func TestApplyUpdateReassignment(t *testing.T) {
	env := newTestEnv(t)
	req := env.mustSubmit(t, domain.UrgencyMedium)
	ctx := context.Background()

	if _, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.StatusInProgress); err != nil {
		t.Fatalf("first update: %v", err)
	}
	updated, err := env.service.ApplyUpdate(ctx, env.worker2, req.ID, domain.StatusInProgress)
	if err != nil {
		t.Fatalf("reassignment: %v", err)
	}
	if updated.AssignedWorkerID == nil || *updated.AssignedWorkerID != env.worker2.ID {
		t.Fatalf("reassignment did not change worker: %v", updated.AssignedWorkerID)
	}
}

func TestApplyUpdateSetsResolvedAtOnce(t *testing.T) {
	env := newTestEnv(t)
	req := env.mustSubmit(t, domain.UrgencyLow)
	ctx := context.Background()

	updated, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}
	if updated.ResolvedAt == nil {
		t.Fatal("resolved_at not set on completion")
	}
	if updated.ResolvedAt.Before(updated.CreatedAt) {
		t.Fatalf("resolved_at %v before created_at %v", updated.ResolvedAt, updated.CreatedAt)
	}
}

func TestApplyUpdateInvalidTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("completed accepts no updates", func(t *testing.T) {
		req := env.mustSubmit(t, domain.UrgencyLow)
		if _, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.StatusCompleted); err != nil {
			t.Fatalf("complete: %v", err)
		}
		for _, next := range []domain.RequestStatus{domain.StatusPending, domain.StatusInProgress, domain.StatusCompleted} {
			_, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, next)
			if err == nil {
				t.Fatalf("completed request accepted transition to %q", next)
			}
			if code := errCode(t, err); code != "INVALID_TRANSITION" {
				t.Fatalf("expected INVALID_TRANSITION, got %s", code)
			}
		}
	})

	t.Run("cannot re-enter pending", func(t *testing.T) {
		req := env.mustSubmit(t, domain.UrgencyLow)
		if _, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.StatusInProgress); err != nil {
			t.Fatalf("start: %v", err)
		}
		_, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.StatusPending)
		if err == nil {
			t.Fatal("in-progress request accepted Pending target")
		}
		if code := errCode(t, err); code != "INVALID_TRANSITION" {
			t.Fatalf("expected INVALID_TRANSITION, got %s", code)
		}
	})

	t.Run("unrecognized status", func(t *testing.T) {
		req := env.mustSubmit(t, domain.UrgencyLow)
		_, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.RequestStatus("Done"))
		if err == nil {
			t.Fatal("unrecognized status accepted")
		}
		if code := errCode(t, err); code != "INVALID_TRANSITION" {
			t.Fatalf("expected INVALID_TRANSITION, got %s", code)
		}
	})
}

func TestApplyUpdateRequiresWorkerRole(t *testing.T) {
	env := newTestEnv(t)
	req := env.mustSubmit(t, domain.UrgencyHigh)
	ctx := context.Background()

	for _, actor := range []*domain.User{env.tenant, env.manager, nil} {
		_, err := env.service.ApplyUpdate(ctx, actor, req.ID, domain.StatusInProgress)
		if err == nil {
			t.Fatal("expected Forbidden")
		}
		if code := errCode(t, err); code != "FORBIDDEN" {
			t.Fatalf("expected FORBIDDEN, got %s", code)
		}
	}

	got, err := env.requests.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != domain.StatusPending || got.AssignedWorkerID != nil {
		t.Fatalf("forbidden update modified the request: %+v", got)
	}
}

func TestApplyUpdateNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.service.ApplyUpdate(context.Background(), env.worker, 9999, domain.StatusInProgress)
	if err == nil {
		t.Fatal("expected NotFound")
	}
	if code := errCode(t, err); code != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %s", code)
	}
}

func TestMyRequestsNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		req := &domain.MaintenanceRequest{
			TenantID: env.tenant.ID, UnitNumber: "101", Category: "General",
			Urgency: domain.UrgencyLow, Description: "test",
			Status: domain.StatusPending, CreatedAt: base.Add(offset),
		}
		if err := env.requests.Create(ctx, req); err != nil {
			t.Fatalf("Create %d: %v", i, err)
		}
	}

	views, err := env.service.MyRequests(ctx, env.tenant)
	if err != nil {
		t.Fatalf("MyRequests: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 requests, got %d", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].CreatedAt.After(views[i-1].CreatedAt) {
			t.Fatal("MyRequests not newest first")
		}
	}

	if _, err := env.service.MyRequests(ctx, env.worker); err == nil {
		t.Fatal("expected Forbidden for worker")
	}
}

func TestMyRequestsResolvesWorkerName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	req := env.mustSubmit(t, domain.UrgencyHigh)

	if _, err := env.service.ApplyUpdate(ctx, env.worker, req.ID, domain.StatusInProgress); err != nil {
		t.Fatalf("ApplyUpdate: %v", err)
	}

	views, err := env.service.MyRequests(ctx, env.tenant)
	if err != nil {
		t.Fatalf("MyRequests: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].AssignedWorker == nil || *views[0].AssignedWorker != env.worker.Username {
		t.Fatalf("assigned worker = %v, want %q", views[0].AssignedWorker, env.worker.Username)
	}
}

func TestApplyUpdateConcurrentWorkers(t *testing.T) {
	env := newTestEnv(t)
	req := env.mustSubmit(t, domain.UrgencyEmergency)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, worker := range []*domain.User{env.worker, env.worker2} {
		worker := worker
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_, err := env.service.ApplyUpdate(ctx, worker, req.ID, domain.StatusInProgress)
				if err != nil {
					t.Errorf("ApplyUpdate: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	got, err := env.requests.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	checkInvariants(t, got)
	if got.Status != domain.StatusInProgress {
		t.Fatalf("status %q after concurrent updates", got.Status)
	}
	if got.AssignedWorkerID == nil ||
		(*got.AssignedWorkerID != env.worker.ID && *got.AssignedWorkerID != env.worker2.ID) {
		t.Fatalf("assigned worker not one of the racing workers: %v", got.AssignedWorkerID)
	}
}

func TestApplyUpdateConcurrentCompletion(t *testing.T) {
	env := newTestEnv(t)
	req := env.mustSubmit(t, domain.UrgencyHigh)
	ctx := context.Background()

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		worker := env.worker
		if i%2 == 1 {
			worker = env.worker2
		}
		wg.Add(1)
		go func(w *domain.User) {
			defer wg.Done()
			_, err := env.service.ApplyUpdate(ctx, w, req.ID, domain.StatusCompleted)
			results <- err
		}(worker)
	}
	wg.Wait()
	close(results)

	var successes int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		if code := errCode(t, err); code != "INVALID_TRANSITION" {
			t.Fatalf("unexpected failure code %s", code)
		}
	}
	if successes != 1 {
		t.Fatalf("exactly one completion must win, got %d", successes)
	}

	got, err := env.requests.GetByID(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	checkInvariants(t, got)
	if got.Status != domain.StatusCompleted {
		t.Fatalf("status %q, want Completed", got.Status)
	}
}
