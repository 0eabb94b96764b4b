package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// Memory stores return pgx.ErrNoRows for missing records so callers map
// errors identically regardless of which backing store is wired.

// MemoryUserRepository is an in-process UserRepository used when no
// POSTGRES_DSN is configured and by the test suite.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.User
	byName map[string]int64
}

// NewMemoryUserRepository creates an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		byID:   make(map[int64]domain.User),
		byName: make(map[string]int64),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.byID[user.ID] = *user
	r.byName[user.Username] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := r.byID[id]
	return &user, nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

// MemoryRequestRepository is an in-process RequestRepository with the same
// ordering and atomicity guarantees as the Postgres implementation.
type MemoryRequestRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.MaintenanceRequest
}

// NewMemoryRequestRepository creates an empty in-memory request store.
func NewMemoryRequestRepository() *MemoryRequestRepository {
	return &MemoryRequestRepository{
		nextID: 1,
		byID:   make(map[int64]domain.MaintenanceRequest),
	}
}

func (r *MemoryRequestRepository) Create(_ context.Context, req *domain.MaintenanceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req.ID = r.nextID
	r.nextID++
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	r.byID[req.ID] = cloneRequest(*req)
	return nil
}

func (r *MemoryRequestRepository) GetByID(_ context.Context, id int64) (*domain.MaintenanceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	out := cloneRequest(req)
	return &out, nil
}

func (r *MemoryRequestRepository) List(_ context.Context, filter RequestFilter) ([]domain.MaintenanceRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.MaintenanceRequest
	for _, req := range r.byID {
		if filter.TenantID != nil && req.TenantID != *filter.TenantID {
			continue
		}
		if filter.StatusNot != nil && req.Status == *filter.StatusNot {
			continue
		}
		result = append(result, cloneRequest(req))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *MemoryRequestRepository) ListByTenant(ctx context.Context, tenantID int64) ([]domain.MaintenanceRequest, error) {
	result, err := r.List(ctx, RequestFilter{TenantID: &tenantID})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// Update applies the mutator under the store lock; the record is swapped in
// whole, so concurrent updates never observe a partial write.
func (r *MemoryRequestRepository) Update(_ context.Context, id int64, mutate Mutator) (*domain.MaintenanceRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	updated := cloneRequest(current)
	if err := mutate(&updated); err != nil {
		return nil, err
	}
	updated.ID = current.ID
	updated.CreatedAt = current.CreatedAt
	r.byID[id] = cloneRequest(updated)
	out := cloneRequest(updated)
	return &out, nil
}

func cloneRequest(req domain.MaintenanceRequest) domain.MaintenanceRequest {
	out := req
	if req.ResolvedAt != nil {
		t := *req.ResolvedAt
		out.ResolvedAt = &t
	}
	if req.AssignedWorkerID != nil {
		id := *req.AssignedWorkerID
		out.AssignedWorkerID = &id
	}
	return out
}
