package department

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DepartmentController struct {
	Service DepartmentService
}

func NewDepartmentController(service DepartmentService) *DepartmentController {
	return &DepartmentController{Service: service}
}

// Create godoc
// @Summary Create a department
// @Tags departments
// @Accept json
// @Produce json
// @Router /api/departments [post]
func (c *DepartmentController) Create(ctx *fiber.Ctx) error {
	var input Department
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreateDepartment(ctx.UserContext(), middleware.ActorID(ctx), &input); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(input)
}

// List godoc
// @Summary List departments
// @Tags departments
// @Produce json
// @Router /api/departments [get]
func (c *DepartmentController) List(ctx *fiber.Ctx) error {
	departments, err := c.Service.ListDepartments(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(departments)
}

// Get godoc
// @Summary Get a department
// @Tags departments
// @Produce json
// @Param id path string true "Department ID"
// @Router /api/departments/{id} [get]
func (c *DepartmentController) Get(ctx *fiber.Ctx) error {
	department, err := c.Service.GetDepartmentByID(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(department)
}

// SetStatus godoc
// @Summary Change a department's status
// @Tags departments
// @Accept json
// @Param id path string true "Department ID"
// @Router /api/departments/{id}/status [put]
func (c *DepartmentController) SetStatus(ctx *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetStatus(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Status); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Department status updated"})
}

// AssignManager godoc
// @Summary Assign a department manager
// @Tags departments
// @Accept json
// @Param id path string true "Department ID"
// @Router /api/departments/{id}/manager [put]
func (c *DepartmentController) AssignManager(ctx *fiber.Ctx) error {
	var req struct {
		ManagerID string `json:"manager_id"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	managerID, err := primitive.ObjectIDFromHex(req.ManagerID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid manager_id"})
	}

	if err := c.Service.AssignManager(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), managerID); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Manager assigned"})
}

// Delete godoc
// @Summary Delete a department
// @Tags departments
// @Param id path string true "Department ID"
// @Router /api/departments/{id} [delete]
func (c *DepartmentController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteDepartment(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id")); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
