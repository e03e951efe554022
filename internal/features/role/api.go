package role

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type RoleApi struct {
	controller *RoleController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewRoleApi(controller *RoleController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &RoleApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *RoleApi) Setup(app *fiber.App) {
	group := app.Group("/api/roles", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/:id", h.controller.Get)
	group.Post("/", middleware.RequirePermission(h.checker, "role_create"), h.controller.Create)
	group.Put("/:id/permissions", middleware.RequirePermission(h.checker, "role_manage"), h.controller.UpdatePermissions)
	group.Put("/:id/status", middleware.RequirePermission(h.checker, "role_update"), h.controller.SetStatus)
	group.Delete("/:id", middleware.RequirePermission(h.checker, "role_delete"), h.controller.Delete)
}
