package department

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DepartmentApi struct {
	controller *DepartmentController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewDepartmentApi(controller *DepartmentController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &DepartmentApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *DepartmentApi) Setup(app *fiber.App) {
	group := app.Group("/api/departments", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/:id", h.controller.Get)
	group.Post("/", middleware.RequirePermission(h.checker, "department_create"), h.controller.Create)
	group.Put("/:id/status", middleware.RequirePermission(h.checker, "department_update"), h.controller.SetStatus)
	group.Put("/:id/manager", middleware.RequirePermission(h.checker, "department_manage"), h.controller.AssignManager)
	group.Delete("/:id", middleware.RequirePermission(h.checker, "department_delete"), h.controller.Delete)
}
