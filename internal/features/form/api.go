package form

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FormApi struct {
	controller *FormController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewFormApi(controller *FormController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &FormApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *FormApi) Setup(app *fiber.App) {
	group := app.Group("/api/forms", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", h.controller.List)
	group.Get("/:id", h.controller.Get)
	group.Post("/", middleware.RequirePermission(h.checker, "form_create"), h.controller.Create)
	group.Put("/:id", middleware.RequirePermission(h.checker, "form_update"), h.controller.Update)
	group.Put("/:id/status", middleware.RequirePermission(h.checker, "form_update"), h.controller.SetStatus)
	group.Delete("/:id", middleware.RequirePermission(h.checker, "form_delete"), h.controller.Delete)
}
