package main

import (
	"context"
	"time"

	"go-formflow/internal/config"
	"go-formflow/internal/database"
	"go-formflow/internal/features/department"
	"go-formflow/internal/features/permission"
	"go-formflow/internal/features/role"
	"go-formflow/internal/features/user"
	"go-formflow/internal/logger"
	"go-formflow/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// systemPermissions is the closed capability catalog. Names are
// machine keys built from resource and action.
var systemPermissions = []struct {
	Resource string
	Action   permission.Action
	Category string
}{
	{"user", permission.ActionCreate, "Users"},
	{"user", permission.ActionRead, "Users"},
	{"user", permission.ActionUpdate, "Users"},
	{"user", permission.ActionManage, "Users"},
	{"user", permission.ActionDelete, "Users"},
	{"department", permission.ActionCreate, "Departments"},
	{"department", permission.ActionUpdate, "Departments"},
	{"department", permission.ActionManage, "Departments"},
	{"department", permission.ActionDelete, "Departments"},
	{"role", permission.ActionCreate, "Roles"},
	{"role", permission.ActionUpdate, "Roles"},
	{"role", permission.ActionManage, "Roles"},
	{"role", permission.ActionDelete, "Roles"},
	{"permission", permission.ActionManage, "Roles"},
	{"workflow", permission.ActionCreate, "Workflows"},
	{"workflow", permission.ActionUpdate, "Workflows"},
	{"workflow", permission.ActionDelete, "Workflows"},
	{"form", permission.ActionCreate, "Forms"},
	{"form", permission.ActionUpdate, "Forms"},
	{"form", permission.ActionDelete, "Forms"},
	{"submission", permission.ActionCreate, "Submissions"},
	{"submission", permission.ActionRead, "Submissions"},
	{"submission", permission.ActionApprove, "Submissions"},
	{"audit", permission.ActionView, "Audit"},
	{"audit", permission.ActionManage, "Audit"},
}

// Seed provisions the capability catalog, the Administrator role, a
// default department and the first admin account. Safe to run more
// than once: existing records are left alone.
func Seed(
	lc fx.Lifecycle,
	permissionRepo permission.PermissionRepository,
	roleRepo role.RoleRepository,
	departmentRepo department.DepartmentRepository,
	userRepo user.UserRepository,
	logger *zap.Logger,
	shutdowner fx.Shutdowner,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer func() {
					if err := shutdowner.Shutdown(); err != nil {
						logger.Error("Failed to shutdown", zap.Error(err))
					}
				}()

				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				defer cancel()

				if err := seedAll(ctx, permissionRepo, roleRepo, departmentRepo, userRepo, logger); err != nil {
					logger.Error("Seeding failed", zap.Error(err))
					return
				}
				logger.Info("Seeding completed")
			}()
			return nil
		},
	})
}

func seedAll(
	ctx context.Context,
	permissionRepo permission.PermissionRepository,
	roleRepo role.RoleRepository,
	departmentRepo department.DepartmentRepository,
	userRepo user.UserRepository,
	logger *zap.Logger,
) error {
	// 1. Permissions
	var permissionIDs []primitive.ObjectID
	for _, p := range systemPermissions {
		name := utils.MachineKey(p.Resource, string(p.Action))

		existing, err := permissionRepo.FindByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			permissionIDs = append(permissionIDs, existing.ID)
			continue
		}

		perm := &permission.Permission{
			ID:        primitive.NewObjectID(),
			Name:      name,
			Category:  p.Category,
			Resource:  p.Resource,
			Action:    p.Action,
			IsSystem:  true,
			CreatedAt: time.Now(),
		}
		if err := permissionRepo.Create(ctx, perm); err != nil {
			return err
		}
		permissionIDs = append(permissionIDs, perm.ID)
		logger.Info("Seeded permission", zap.String("name", name))
	}

	// 2. Administrator role with the full catalog
	adminRole, err := roleRepo.FindByName(ctx, "Administrator")
	if err != nil {
		return err
	}
	if adminRole == nil {
		adminRole = &role.Role{
			ID:            primitive.NewObjectID(),
			Name:          "Administrator",
			Description:   "Full platform access",
			Level:         100,
			PermissionIDs: permissionIDs,
			Status:        role.StatusActive,
			IsSystem:      true,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}
		if err := roleRepo.Create(ctx, adminRole); err != nil {
			return err
		}
		logger.Info("Seeded Administrator role")
	}

	// 3. Default department
	dept, err := departmentRepo.FindByName(ctx, "General")
	if err != nil {
		return err
	}
	if dept == nil {
		dept = &department.Department{
			ID:        primitive.NewObjectID(),
			Name:      "General",
			Status:    department.StatusActive,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := departmentRepo.Create(ctx, dept); err != nil {
			return err
		}
		logger.Info("Seeded General department")
	}

	// 4. Admin account
	existing, err := userRepo.FindByUsername(ctx, "admin")
	if err != nil {
		return err
	}
	if existing == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &user.User{
			ID:           primitive.NewObjectID(),
			Username:     "admin",
			Password:     string(hash),
			Email:        "admin@example.com",
			Status:       user.StatusActive,
			RoleID:       adminRole.ID,
			DepartmentID: &dept.ID,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := userRepo.Create(ctx, admin); err != nil {
			return err
		}
		logger.Info("Seeded admin user, change the default password")
	}

	return nil
}

func main() {
	app := fx.New(
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			permission.NewPermissionRepository,
			role.NewRoleRepository,
			department.NewDepartmentRepository,
			user.NewUserRepository,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(Seed),
	)

	app.Run()
}
