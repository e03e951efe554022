package submission

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SubmissionApi struct {
	controller *SubmissionController
	config     *config.Config
	checker    middleware.PermissionChecker
}

func NewSubmissionApi(controller *SubmissionController, config *config.Config, checker middleware.PermissionChecker) api.Route {
	return &SubmissionApi{
		controller: controller,
		config:     config,
		checker:    checker,
	}
}

func (h *SubmissionApi) Setup(app *fiber.App) {
	group := app.Group("/api/submissions", middleware.AuthMiddleware(h.config.SkipAuth))

	// Static paths before the :id wildcard.
	group.Get("/pending", h.controller.Pending)
	group.Get("/mine", h.controller.Mine)
	group.Get("/export", middleware.RequirePermission(h.checker, "submission_read"), h.controller.Export)
	group.Get("/:id", h.controller.Get)
	group.Post("/", middleware.RequirePermission(h.checker, "submission_create"), h.controller.Create)
	group.Post("/:id/act", h.controller.Act)
	group.Post("/:id/resubmit", h.controller.Resubmit)
}
