package archive

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ArchiveApi struct {
	service ArchiveService
	config  *config.Config
	checker middleware.PermissionChecker
}

func NewArchiveApi(service ArchiveService, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &ArchiveApi{
		service: service,
		config:  config,
		checker: checker,
	}
}

func (h *ArchiveApi) Setup(app *fiber.App) {
	group := app.Group("/api/audit/archive",
		middleware.AuthMiddleware(h.config.SkipAuth),
		middleware.RequirePermission(h.checker, "audit_manage"))

	group.Get("/status", h.status)
	group.Post("/run", h.run)
}

func (h *ArchiveApi) status(ctx *fiber.Ctx) error {
	state, err := h.service.Status(ctx.UserContext())
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"enabled": h.service.Enabled(),
		"state":   state,
	})
}

func (h *ArchiveApi) run(ctx *fiber.Ctx) error {
	if !h.service.Enabled() {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "archive target is not configured"})
	}

	count, err := h.service.RunSync(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"archived": count})
}
