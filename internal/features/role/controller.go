package role

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleController struct {
	Service RoleService
}

func NewRoleController(service RoleService) *RoleController {
	return &RoleController{Service: service}
}

// Create godoc
// @Summary Create a role
// @Tags roles
// @Accept json
// @Produce json
// @Router /api/roles [post]
func (c *RoleController) Create(ctx *fiber.Ctx) error {
	var input Role
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.CreateRole(ctx.UserContext(), middleware.ActorID(ctx), &input); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(input)
}

// List godoc
// @Summary List roles ordered by level
// @Tags roles
// @Produce json
// @Router /api/roles [get]
func (c *RoleController) List(ctx *fiber.Ctx) error {
	roles, err := c.Service.ListRoles(ctx.UserContext())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(roles)
}

// Get godoc
// @Summary Get a role
// @Tags roles
// @Produce json
// @Param id path string true "Role ID"
// @Router /api/roles/{id} [get]
func (c *RoleController) Get(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role ID"})
	}

	role, err := c.Service.GetRoleByID(ctx.UserContext(), id)
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(role)
}

// UpdatePermissions godoc
// @Summary Replace a role's permission set
// @Tags roles
// @Accept json
// @Param id path string true "Role ID"
// @Router /api/roles/{id}/permissions [put]
func (c *RoleController) UpdatePermissions(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role ID"})
	}

	var req struct {
		PermissionIDs []string `json:"permission_ids"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	permissionIDs := make([]primitive.ObjectID, 0, len(req.PermissionIDs))
	for _, raw := range req.PermissionIDs {
		oid, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid permission ID: " + raw})
		}
		permissionIDs = append(permissionIDs, oid)
	}

	if err := c.Service.UpdateRolePermissions(ctx.UserContext(), middleware.ActorID(ctx), id, permissionIDs); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Role permissions updated"})
}

// SetStatus godoc
// @Summary Change a role's status
// @Tags roles
// @Accept json
// @Param id path string true "Role ID"
// @Router /api/roles/{id}/status [put]
func (c *RoleController) SetStatus(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role ID"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.SetStatus(ctx.UserContext(), middleware.ActorID(ctx), id, req.Status); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Role status updated"})
}

// Delete godoc
// @Summary Delete a role
// @Tags roles
// @Param id path string true "Role ID"
// @Router /api/roles/{id} [delete]
func (c *RoleController) Delete(ctx *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role ID"})
	}

	if err := c.Service.DeleteRole(ctx.UserContext(), middleware.ActorID(ctx), id); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
