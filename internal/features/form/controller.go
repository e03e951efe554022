package form

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FormController struct {
	Service FormService
}

func NewFormController(service FormService) *FormController {
	return &FormController{Service: service}
}

type formRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Fields      []Field `json:"fields"`
	WorkflowID  string  `json:"workflow_id"`
	Status      string  `json:"status"`
}

func (req *formRequest) toModel() (*Form, error) {
	workflowID, err := primitive.ObjectIDFromHex(req.WorkflowID)
	if err != nil {
		return nil, err
	}
	return &Form{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Fields:      req.Fields,
		WorkflowID:  workflowID,
		Status:      req.Status,
	}, nil
}

// Create godoc
// @Summary Create a form template
// @Tags forms
// @Accept json
// @Produce json
// @Router /api/forms [post]
func (c *FormController) Create(ctx *fiber.Ctx) error {
	var req formRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	f, err := req.toModel()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workflow ID"})
	}

	created, err := c.Service.CreateForm(ctx.UserContext(), middleware.ActorID(ctx), f)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(created)
}

// List godoc
// @Summary List form templates
// @Tags forms
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status"
// @Router /api/forms [get]
func (c *FormController) List(ctx *fiber.Ctx) error {
	forms, err := c.Service.ListForms(ctx.UserContext(), ctx.Query("category"), ctx.Query("status"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(forms)
}

// Get godoc
// @Summary Get a form template
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Router /api/forms/{id} [get]
func (c *FormController) Get(ctx *fiber.Ctx) error {
	f, err := c.Service.GetForm(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(f)
}

// Update godoc
// @Summary Update a form template
// @Tags forms
// @Accept json
// @Param id path string true "Form ID"
// @Router /api/forms/{id} [put]
func (c *FormController) Update(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid form ID"})
	}

	var req formRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	f, err := req.toModel()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid workflow ID"})
	}
	f.ID = id

	updated, err := c.Service.UpdateForm(ctx.UserContext(), middleware.ActorID(ctx), f)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(updated)
}

// SetStatus godoc
// @Summary Change a form's status
// @Tags forms
// @Accept json
// @Param id path string true "Form ID"
// @Router /api/forms/{id}/status [put]
func (c *FormController) SetStatus(ctx *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetStatus(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Status); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Form status updated"})
}

// Delete godoc
// @Summary Delete a form template without submissions
// @Tags forms
// @Param id path string true "Form ID"
// @Router /api/forms/{id} [delete]
func (c *FormController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteForm(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id")); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
