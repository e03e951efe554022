package auth

import (
	"go-formflow/internal/apperrors"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{
		AuthService: authService,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login godoc
// @Summary      Login
// @Description  Login with username and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginRequest true "Login Input"
// @Success      200  {object} map[string]interface{}
// @Failure      400  {string} string "Invalid request body"
// @Failure      403  {string} string "Invalid credentials"
// @Router       /api/login [post]
func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	token, u, err := ctrl.AuthService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return c.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  u,
	})
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Router       /api/logout [post]
func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	ctrl.AuthService.Logout(c.UserContext(), middleware.ActorID(c))
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// Me godoc
// @Summary      Current user profile
// @Tags         auth
// @Produce      json
// @Router       /api/me [get]
func (ctrl *AuthController) Me(c *fiber.Ctx) error {
	u, err := ctrl.AuthService.Me(c.UserContext(), middleware.ActorID(c))
	if err != nil {
		return c.Status(apperrors.StatusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(u)
}
