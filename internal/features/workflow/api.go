package workflow

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowApi struct {
	controller *WorkflowController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewWorkflowApi(controller *WorkflowController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &WorkflowApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *WorkflowApi) Setup(app *fiber.App) {
	group := app.Group("/api/workflows", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/:id", h.controller.Get)
	group.Post("/", middleware.RequirePermission(h.checker, "workflow_create"), h.controller.Create)
	group.Put("/:id", middleware.RequirePermission(h.checker, "workflow_update"), h.controller.Update)
	group.Put("/:id/status", middleware.RequirePermission(h.checker, "workflow_update"), h.controller.SetStatus)
	group.Delete("/:id", middleware.RequirePermission(h.checker, "workflow_delete"), h.controller.Delete)
}
