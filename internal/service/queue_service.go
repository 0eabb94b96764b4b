package service

import (
	"context"
	"sort"

	"github.com/spec-kit/maintenance-service/internal/auth"
	"github.com/spec-kit/maintenance-service/internal/domain"
	"github.com/spec-kit/maintenance-service/internal/repository"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// QueueService produces the urgency-ordered work queue for workers.
type QueueService struct {
	requests repository.RequestRepository
	users    repository.UserRepository
}

// NewQueueService constructs the service.
func NewQueueService(requests repository.RequestRepository, users repository.UserRepository) *QueueService {
	return &QueueService{requests: requests, users: users}
}

// WorkerQueue returns all open requests ordered by urgency rank. The sort is
// stable over the store's id-ascending retrieval order, so requests of equal
// urgency keep their relative order across calls.
func (s *QueueService) WorkerQueue(ctx context.Context, worker *domain.User) ([]RequestView, error) {
	if !auth.Authorize(worker, domain.RoleWorker) {
		return nil, apperrors.NewForbidden("worker role required")
	}

	completed := domain.StatusCompleted
	open, err := s.requests.List(ctx, repository.RequestFilter{StatusNot: &completed})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	sort.SliceStable(open, func(i, j int) bool {
		return open[i].Urgency.Rank() < open[j].Urgency.Rank()
	})

	return buildRequestViews(ctx, s.users, open)
}
