package auth

import "github.com/spec-kit/maintenance-service/internal/domain"

// Authorize reports whether the identity is present and carries the required
// role. Services consult this before every role-scoped operation; transport
// level gating is not trusted on its own.
func Authorize(identity *domain.User, required domain.Role) bool {
	return identity != nil && identity.Role == required
}
