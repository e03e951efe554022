package audit

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewAuditApi(controller *AuditController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &AuditApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	group := app.Group("/api/audit", middleware.AuthMiddleware(h.config.SkipAuth))

	group.Get("/", middleware.RequirePermission(h.checker, "audit_view"), h.controller.List)
}
