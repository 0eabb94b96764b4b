package domain

import (
	"fmt"
	"time"
)

// Role enumerates the fixed actor roles in the system.
type Role string

const (
	RoleTenant  Role = "tenant"
	RoleWorker  Role = "worker"
	RoleManager Role = "manager"
)

// ParseRole validates a raw role string at the identity boundary.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleTenant, RoleWorker, RoleManager:
		return Role(raw), nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

// User is an authenticated actor with a fixed role.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
