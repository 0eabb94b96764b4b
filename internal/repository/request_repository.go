package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/maintenance-service/internal/domain"
)

// RequestFilter captures query parameters for listing requests.
type RequestFilter struct {
	TenantID  *int64
	StatusNot *domain.RequestStatus
}

// Mutator applies an in-place change to a request inside the store's
// per-record critical section. Returning an error aborts the update without
// persisting anything.
type Mutator func(req *domain.MaintenanceRequest) error

// RequestRepository encapsulates maintenance request persistence.
//
// List results are ordered by id ascending so downstream stable sorts are
// reproducible; ListByTenant is ordered by created_at descending.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.MaintenanceRequest) error
	GetByID(ctx context.Context, id int64) (*domain.MaintenanceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.MaintenanceRequest, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]domain.MaintenanceRequest, error)
	Update(ctx context.Context, id int64, mutate Mutator) (*domain.MaintenanceRequest, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the Postgres-backed repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

const requestColumns = `id, tenant_id, unit_number, category, urgency, description, status, created_at, resolved_at, assigned_worker_id`

func (r *requestRepository) Create(ctx context.Context, req *domain.MaintenanceRequest) error {
	const query = `
        INSERT INTO maintenance_requests (tenant_id, unit_number, category, urgency, description, status, created_at, resolved_at, assigned_worker_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		req.TenantID,
		req.UnitNumber,
		req.Category,
		req.Urgency,
		req.Description,
		req.Status,
		req.CreatedAt,
		req.ResolvedAt,
		req.AssignedWorkerID,
	).Scan(&req.ID)
}

func (r *requestRepository) GetByID(ctx context.Context, id int64) (*domain.MaintenanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE id=$1`, requestColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanRequest(row)
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.MaintenanceRequest, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.TenantID != nil {
		args = append(args, *filter.TenantID)
		clauses = append(clauses, fmt.Sprintf("tenant_id=$%d", len(args)))
	}
	if filter.StatusNot != nil {
		args = append(args, *filter.StatusNot)
		clauses = append(clauses, fmt.Sprintf("status<>$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE %s ORDER BY id ASC`,
		requestColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) ListByTenant(ctx context.Context, tenantID int64) ([]domain.MaintenanceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE tenant_id=$1 ORDER BY created_at DESC, id DESC`, requestColumns)
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

// Update runs the mutator inside a transaction holding a row lock, so two
// concurrent updates to the same request never interleave field writes.
func (r *requestRepository) Update(ctx context.Context, id int64, mutate Mutator) (*domain.MaintenanceRequest, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE id=$1 FOR UPDATE`, requestColumns)
	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	if err := mutate(req); err != nil {
		return nil, err
	}

	const update = `
        UPDATE maintenance_requests
        SET unit_number=$1, category=$2, urgency=$3, description=$4, status=$5, resolved_at=$6, assigned_worker_id=$7
        WHERE id=$8`
	if _, err := tx.Exec(ctx, update,
		req.UnitNumber,
		req.Category,
		req.Urgency,
		req.Description,
		req.Status,
		req.ResolvedAt,
		req.AssignedWorkerID,
		req.ID,
	); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.MaintenanceRequest, error) {
	var req domain.MaintenanceRequest
	if err := row.Scan(
		&req.ID,
		&req.TenantID,
		&req.UnitNumber,
		&req.Category,
		&req.Urgency,
		&req.Description,
		&req.Status,
		&req.CreatedAt,
		&req.ResolvedAt,
		&req.AssignedWorkerID,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func scanRequests(rows pgx.Rows) ([]domain.MaintenanceRequest, error) {
	var result []domain.MaintenanceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *req)
	}
	return result, rows.Err()
}
