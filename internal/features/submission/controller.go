package submission

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SubmissionController struct {
	Service SubmissionService
}

func NewSubmissionController(service SubmissionService) *SubmissionController {
	return &SubmissionController{Service: service}
}

// Create godoc
// @Summary Submit a form
// @Tags submissions
// @Accept json
// @Produce json
// @Router /api/submissions [post]
func (c *SubmissionController) Create(ctx *fiber.Ctx) error {
	var req struct {
		FormID   string                 `json:"form_id"`
		Values   map[string]interface{} `json:"values"`
		Priority string                 `json:"priority"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, err := c.Service.Create(ctx.UserContext(), middleware.ActorID(ctx), req.FormID, req.Values, req.Priority)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(sub)
}

// Act godoc
// @Summary Decide the current step of a submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Router /api/submissions/{id}/act [post]
func (c *SubmissionController) Act(ctx *fiber.Ctx) error {
	var req struct {
		Decision string `json:"decision"`
		Comment  string `json:"comment"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, err := c.Service.Act(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Decision, req.Comment)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(sub)
}

// Resubmit godoc
// @Summary Resubmit after a feedback request
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Router /api/submissions/{id}/resubmit [post]
func (c *SubmissionController) Resubmit(ctx *fiber.Ctx) error {
	var req struct {
		Values map[string]interface{} `json:"values"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	sub, err := c.Service.Resubmit(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Values)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(sub)
}

// Pending godoc
// @Summary List pending submissions the caller can decide
// @Tags submissions
// @Produce json
// @Router /api/submissions/pending [get]
func (c *SubmissionController) Pending(ctx *fiber.Ctx) error {
	queue, err := c.Service.ListPendingFor(ctx.UserContext(), middleware.ActorID(ctx))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(queue)
}

// Mine godoc
// @Summary List the caller's own submissions
// @Tags submissions
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Router /api/submissions/mine [get]
func (c *SubmissionController) Mine(ctx *fiber.Ctx) error {
	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 20))

	subs, total, err := c.Service.ListMine(ctx.UserContext(), middleware.ActorID(ctx), page, limit)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"data":  subs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Get godoc
// @Summary Get a submission with its decision history
// @Tags submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) Get(ctx *fiber.Ctx) error {
	sub, err := c.Service.Get(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{
		"submission":        sub,
		"workflow_instance": sub.WorkflowInstance(),
	})
}

// Export godoc
// @Summary Export submissions as an Excel workbook
// @Tags submissions
// @Produce application/octet-stream
// @Param status query string false "Filter by status"
// @Param form query string false "Filter by form name"
// @Router /api/submissions/export [get]
func (c *SubmissionController) Export(ctx *fiber.Ctx) error {
	data, filename, err := c.Service.ExportToExcel(ctx.UserContext(), ctx.Query("status"), ctx.Query("form"))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return ctx.Send(data)
}
