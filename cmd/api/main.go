package main

import (
	"context"
	"fmt"
	"log"

	common_api "go-formflow/internal/common/api"
	"go-formflow/internal/config"
	"go-formflow/internal/database"
	"go-formflow/internal/features/archive"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/auth"
	"go-formflow/internal/features/department"
	"go-formflow/internal/features/form"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/permission"
	"go-formflow/internal/features/role"
	"go-formflow/internal/features/scheduler"
	"go-formflow/internal/features/submission"
	"go-formflow/internal/features/user"
	"go-formflow/internal/features/workflow"
	"go-formflow/internal/logger"
	"go-formflow/internal/middleware"
	"go-formflow/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),
		fx.ResultTags(`group:"routes"`),
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d route groups\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			NewFiberServer,
			database.NewDatabase,

			// Repositories
			audit.NewAuditRepository,
			user.NewUserRepository,
			department.NewDepartmentRepository,
			role.NewRoleRepository,
			permission.NewPermissionRepository,
			workflow.NewWorkflowRepository,
			form.NewFormRepository,
			submission.NewSubmissionRepository,
			notification.NewNotificationRepository,
			archive.NewStateRepository,

			// Services
			audit.NewAuditService,
			notification.NewNotificationService,
			auth.NewAuthService,
			user.NewUserService,
			department.NewDepartmentService,
			role.NewRoleService,
			permission.NewPermissionService,
			workflow.NewWorkflowService,
			form.NewFormService,
			submission.NewSubmissionService,
			archive.NewArchiveService,

			// Interface adapters to satisfy cross-feature contracts
			func(r user.UserRepository) audit.UserFinder { return user.NewNameFinder(r) },
			func(s notification.NotificationService) notification.Dispatcher { return s },
			func(s *permission.PermissionServiceImpl) permission.PermissionService { return s },
			func(s *permission.PermissionServiceImpl) middleware.PermissionChecker { return s },
			func(s *permission.PermissionServiceImpl) submission.ActorResolver { return s },
			func(r submission.SubmissionRepository) workflow.ReferenceChecker { return r },

			// Controllers
			auth.NewAuthController,
			user.NewUserController,
			department.NewDepartmentController,
			role.NewRoleController,
			permission.NewPermissionController,
			workflow.NewWorkflowController,
			form.NewFormController,
			submission.NewSubmissionController,
			notification.NewNotificationController,
			notification.NewWebSocketController,
			audit.NewAuditController,

			// API routes
			AsRoute(auth.NewAuthApi),
			AsRoute(user.NewUserApi),
			AsRoute(department.NewDepartmentApi),
			AsRoute(role.NewRoleApi),
			AsRoute(permission.NewPermissionApi),
			AsRoute(workflow.NewWorkflowApi),
			AsRoute(form.NewFormApi),
			AsRoute(submission.NewSubmissionApi),
			AsRoute(notification.NewNotificationApi),
			AsRoute(audit.NewAuditApi),
			AsRoute(archive.NewArchiveApi),

			scheduler.NewScheduler,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			func(cfg *config.Config) { utils.SetSecret(cfg.JWTSecret) },
			RegisterAllRoutesWithAnnotation,
			StartServer,
			func(*scheduler.Scheduler) {},
		),
	)

	app.Run()
}
