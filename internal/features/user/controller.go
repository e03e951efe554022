package user

import (
	"strconv"

	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

type createUserRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	RoleID       string `json:"role_id"`
	DepartmentID string `json:"department_id"`
}

// List godoc
// @Summary List users
// @Tags users
// @Produce json
// @Router /api/users [get]
func (c *UserController) List(ctx *fiber.Ctx) error {
	page, _ := strconv.ParseInt(ctx.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(ctx.Query("limit", "20"), 10, 64)

	filter := map[string]interface{}{
		"status": ctx.Query("status"),
	}

	users, total, err := c.Service.ListUsers(ctx.UserContext(), filter, page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(fiber.Map{"data": users, "total": total, "page": page, "limit": limit})
}

// Get godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Router /api/users/{id} [get]
func (c *UserController) Get(ctx *fiber.Ctx) error {
	u, err := c.Service.GetUserByID(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(u)
}

// Create godoc
// @Summary Create a user
// @Tags users
// @Accept json
// @Produce json
// @Router /api/users [post]
func (c *UserController) Create(ctx *fiber.Ctx) error {
	var req createUserRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	roleID, err := primitive.ObjectIDFromHex(req.RoleID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role_id"})
	}

	u := &User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		RoleID:    roleID,
	}
	if req.DepartmentID != "" {
		deptID, err := primitive.ObjectIDFromHex(req.DepartmentID)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid department_id"})
		}
		u.DepartmentID = &deptID
	}

	if err := c.Service.CreateUser(ctx.UserContext(), middleware.ActorID(ctx), u, req.Password); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(u)
}

// UpdateStatus godoc
// @Summary Change a user's status
// @Tags users
// @Accept json
// @Param id path string true "User ID"
// @Router /api/users/{id}/status [put]
func (c *UserController) UpdateStatus(ctx *fiber.Ctx) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := c.Service.UpdateUserStatus(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), req.Status); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "User status updated"})
}

// AssignRole godoc
// @Summary Assign a role to a user
// @Tags users
// @Accept json
// @Param id path string true "User ID"
// @Router /api/users/{id}/role [put]
func (c *UserController) AssignRole(ctx *fiber.Ctx) error {
	var req struct {
		RoleID string `json:"role_id"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	roleID, err := primitive.ObjectIDFromHex(req.RoleID)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role_id"})
	}

	if err := c.Service.AssignRole(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id"), roleID); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Role assigned"})
}

// Delete godoc
// @Summary Delete a user
// @Tags users
// @Param id path string true "User ID"
// @Router /api/users/{id} [delete]
func (c *UserController) Delete(ctx *fiber.Ctx) error {
	if err := c.Service.DeleteUser(ctx.UserContext(), middleware.ActorID(ctx), ctx.Params("id")); err != nil {
		return ctx.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}
