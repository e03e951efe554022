package permission

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type PermissionController struct {
	Service PermissionService
}

func NewPermissionController(service PermissionService) *PermissionController {
	return &PermissionController{Service: service}
}

// Create godoc
// @Summary Create a permission
// @Tags permissions
// @Accept json
// @Produce json
// @Router /api/permissions [post]
func (c *PermissionController) Create(ctx *fiber.Ctx) error {
	var input Permission
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreatePermission(ctx.UserContext(), middleware.ActorID(ctx), &input); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(input)
}

// List godoc
// @Summary List permissions
// @Tags permissions
// @Produce json
// @Router /api/permissions [get]
func (c *PermissionController) List(ctx *fiber.Ctx) error {
	permissions, err := c.Service.ListPermissions(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(permissions)
}

// Delete godoc
// @Summary Delete a permission
// @Tags permissions
// @Param id path string true "Permission ID"
// @Router /api/permissions/{id} [delete]
func (c *PermissionController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeletePermission(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id")); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
