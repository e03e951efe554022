package user

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	controller *UserController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewUserApi(controller *UserController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &UserApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *UserApi) Setup(app *fiber.App) {
	group := app.Group("/api/users", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", middleware.RequirePermission(h.checker, "user_read"), h.controller.List)
	group.Get("/:id", middleware.RequirePermission(h.checker, "user_read"), h.controller.Get)
	group.Post("/", middleware.RequirePermission(h.checker, "user_create"), h.controller.Create)
	group.Put("/:id/status", middleware.RequirePermission(h.checker, "user_update"), h.controller.UpdateStatus)
	group.Put("/:id/role", middleware.RequirePermission(h.checker, "user_manage"), h.controller.AssignRole)
	group.Delete("/:id", middleware.RequirePermission(h.checker, "user_delete"), h.controller.Delete)
}
