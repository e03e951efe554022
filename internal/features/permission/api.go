package permission

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionApi struct {
	controller *PermissionController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewPermissionApi(controller *PermissionController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &PermissionApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *PermissionApi) Setup(app *fiber.App) {
	group := app.Group("/api/permissions", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Post("/", middleware.RequirePermission(h.checker, "permission_manage"), h.controller.Create)
	group.Delete("/:id", middleware.RequirePermission(h.checker, "permission_manage"), h.controller.Delete)
}
