package permission

import (
	"context"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/role"
	"go-formflow/internal/features/user"
	"go-formflow/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PermissionService interface {
	CreatePermission(ctx context.Context, actorID string, permission *Permission) error
	ListPermissions(ctx context.Context) ([]Permission, error)
	DeletePermission(ctx context.Context, actorID string, id string) error
}

// Resolver computes the effective authorization view of an actor. It
// re-reads role and permission membership on every call; results are
// never cached across requests, so a revoked role takes effect on the
// next privileged operation.
type Resolver interface {
	Resolve(ctx context.Context, actorID string) (*ResolvedActor, error)
	HasPermission(ctx context.Context, actorID string, permissionName string) (bool, error)
}

type PermissionServiceImpl struct {
	Repo         PermissionRepository
	RoleRepo     role.RoleRepository
	UserRepo     user.UserRepository
	AuditService audit.AuditService
}

func NewPermissionService(
	repo PermissionRepository,
	roleRepo role.RoleRepository,
	userRepo user.UserRepository,
	auditService audit.AuditService,
) *PermissionServiceImpl {
	return &PermissionServiceImpl{
		Repo:         repo,
		RoleRepo:     roleRepo,
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

func (s *PermissionServiceImpl) CreatePermission(ctx context.Context, actorID string, permission *Permission) error {
	if permission.Resource == "" || permission.Action == "" {
		return apperrors.NewValidation("resource and action are required", "resource", "action")
	}

	switch permission.Action {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionApprove, ActionManage, ActionView, ActionSubmit:
	default:
		return apperrors.NewValidation("unknown action", "action")
	}

	if permission.Name == "" {
		permission.Name = utils.MachineKey(permission.Resource, string(permission.Action))
	}

	existing, err := s.Repo.FindByName(ctx, permission.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewDuplicateKey("permission", permission.Name)
	}

	if permission.ID.IsZero() {
		permission.ID = primitive.NewObjectID()
	}
	permission.CreatedAt = time.Now()

	if err := s.Repo.Create(ctx, permission); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionCreate,
		ResourceType: common_models.AuditResourcePermission,
		ResourceID:   permission.ID.Hex(),
		NewData:      bson.M{"name": permission.Name},
		Description:  "permission created",
	})

	return nil
}

func (s *PermissionServiceImpl) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.Repo.List(ctx)
}

func (s *PermissionServiceImpl) DeletePermission(ctx context.Context, actorID string, id string) error {
	permission, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if permission == nil {
		return apperrors.NewNotFound("permission", id)
	}
	if permission.IsSystem {
		return apperrors.NewForbidden("system permissions cannot be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionDelete,
		ResourceType: common_models.AuditResourcePermission,
		ResourceID:   id,
		OldData:      bson.M{"name": permission.Name},
		Description:  "permission deleted",
	})

	return nil
}

// Resolve fails closed: a missing or inactive user, a dangling role
// reference, or an inactive role all yield an empty permission set
// rather than an error, so callers treat the actor as unauthorized.
func (s *PermissionServiceImpl) Resolve(ctx context.Context, actorID string) (*ResolvedActor, error) {
	resolved := &ResolvedActor{Permissions: map[string]bool{}}

	u, err := s.UserRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Status != user.StatusActive {
		return resolved, nil
	}

	resolved.UserID = u.ID
	resolved.DepartmentID = u.DepartmentID

	r, err := s.RoleRepo.FindByID(ctx, u.RoleID)
	if err != nil {
		return nil, err
	}
	if r == nil || r.Status != role.StatusActive {
		return resolved, nil
	}

	resolved.RoleID = r.ID
	resolved.RoleName = r.Name
	resolved.Level = r.Level

	if len(r.PermissionIDs) == 0 {
		return resolved, nil
	}

	permissions, err := s.Repo.FindByIDs(ctx, r.PermissionIDs)
	if err != nil {
		return nil, err
	}
	for i := range permissions {
		resolved.Permissions[permissions[i].Name] = true
	}

	return resolved, nil
}

func (s *PermissionServiceImpl) HasPermission(ctx context.Context, actorID string, permissionName string) (bool, error) {
	resolved, err := s.Resolve(ctx, actorID)
	if err != nil {
		return false, err
	}
	return resolved.Has(permissionName), nil
}
