package workflow

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type WorkflowController struct {
	Service WorkflowService
}

func NewWorkflowController(service WorkflowService) *WorkflowController {
	return &WorkflowController{Service: service}
}

type workflowRequest struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Create godoc
// @Summary Create a workflow definition
// @Tags workflows
// @Accept json
// @Produce json
// @Router /api/workflows [post]
func (c *WorkflowController) Create(ctx *fiber.Ctx) error {
	var req workflowRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	wf := &Workflow{Name: req.Name, Steps: req.Steps}
	created, err := c.Service.CreateWorkflow(ctx.UserContext(), middleware.ActorID(ctx), wf)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// List godoc
// @Summary List workflow definitions
// @Tags workflows
// @Produce json
// @Param status query string false "Filter by status"
// @Router /api/workflows [get]
func (c *WorkflowController) List(ctx *fiber.Ctx) error {
	workflows, err := c.Service.ListWorkflows(ctx.UserContext(), ctx.Query("status"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(workflows)
}

// Get godoc
// @Summary Get a workflow definition
// @Tags workflows
// @Produce json
// @Param id path string true "Workflow ID"
// @Router /api/workflows/{id} [get]
func (c *WorkflowController) Get(ctx *fiber.Ctx) error {
	wf, err := c.Service.GetWorkflow(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(wf)
}

// Update godoc
// @Summary Replace a workflow's name and steps
// @Tags workflows
// @Accept json
// @Param id path string true "Workflow ID"
// @Router /api/workflows/{id} [put]
func (c *WorkflowController) Update(ctx *fiber.Ctx) error {
	var req workflowRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	updated, err := c.Service.UpdateWorkflow(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Name, req.Steps)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(updated)
}

// SetStatus godoc
// @Summary Activate or deactivate a workflow
// @Tags workflows
// @Accept json
// @Param id path string true "Workflow ID"
// @Router /api/workflows/{id}/status [put]
func (c *WorkflowController) SetStatus(ctx *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetStatus(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Status); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Workflow status updated"})
}

// Delete godoc
// @Summary Delete an unused workflow definition
// @Tags workflows
// @Param id path string true "Workflow ID"
// @Router /api/workflows/{id} [delete]
func (c *WorkflowController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteWorkflow(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id")); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
