package middleware

import (
	"context"

	"go-formflow/pkg/utils"

	"github.com/gofiber/fiber/v2"
)

// PermissionChecker is the narrow slice of the permission resolver the
// middleware needs. Checks run on every request against live role
// membership, never against a cached set.
type PermissionChecker interface {
	HasPermission(ctx context.Context, actorID string, permissionName string) (bool, error)
}

// RequirePermission gates a route on the actor holding the named
// permission. Missing claims or resolver failure both deny.
func RequirePermission(checker PermissionChecker, permissionName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals(utils.UserClaimsKey).(*utils.UserClaims)
		if !ok || claims.UserID == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: no authenticated actor",
			})
		}

		allowed, err := checker.HasPermission(c.UserContext(), claims.UserID, permissionName)
		if err != nil || !allowed {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied: insufficient permissions for this action",
			})
		}

		return c.Next()
	}
}
