package auth

import (
	"go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) api.Route {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

func (h *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/login", h.controller.Login)

	authed := app.Group("/api", middleware.AuthMiddleware(h.config.SkipAuth))
	authed.Post("/logout", h.controller.Logout)
	authed.Get("/me", h.controller.Me)
}
