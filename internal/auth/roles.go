package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/domain"
	apperrors "github.com/spec-kit/maintenance-service/pkg/util"
)

// RequireRole ensures the authenticated caller carries the given role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || !Authorize(principal.User, role) {
			return apperrors.NewForbidden(string(role) + " role required")
		}
		return c.Next()
	}
}
