package role

import (
	"context"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RoleService interface {
	CreateRole(ctx context.Context, actorID string, role *Role) error
	GetRoleByID(ctx context.Context, id primitive.ObjectID) (*Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	UpdateRolePermissions(ctx context.Context, actorID string, id primitive.ObjectID, permissionIDs []primitive.ObjectID) error
	SetStatus(ctx context.Context, actorID string, id primitive.ObjectID, status string) error
	DeleteRole(ctx context.Context, actorID string, id primitive.ObjectID) error
}

type RoleServiceImpl struct {
	Repo         RoleRepository
	AuditService audit.AuditService
}

func NewRoleService(repo RoleRepository, auditService audit.AuditService) RoleService {
	return &RoleServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *RoleServiceImpl) CreateRole(ctx context.Context, actorID string, role *Role) error {
	if role.Name == "" {
		return apperrors.NewValidation("role name is required", "name")
	}
	if role.Level < 1 || role.Level > 100 {
		return apperrors.NewValidation("role level must be between 1 and 100", "level")
	}

	existing, err := s.Repo.FindByName(ctx, role.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewDuplicateKey("role", role.Name)
	}

	if role.ID.IsZero() {
		role.ID = primitive.NewObjectID()
	}
	if role.Status == "" {
		role.Status = StatusActive
	}
	if role.PermissionIDs == nil {
		role.PermissionIDs = []primitive.ObjectID{}
	}
	role.CreatedAt = time.Now()
	role.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, role); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionCreate,
		ResourceType: common_models.AuditResourceRole,
		ResourceID:   role.ID.Hex(),
		NewData:      bson.M{"name": role.Name, "level": role.Level},
		Description:  "role created",
	})

	return nil
}

func (s *RoleServiceImpl) GetRoleByID(ctx context.Context, id primitive.ObjectID) (*Role, error) {
	role, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperrors.NewNotFound("role", id.Hex())
	}
	return role, nil
}

func (s *RoleServiceImpl) ListRoles(ctx context.Context) ([]Role, error) {
	return s.Repo.List(ctx)
}

func (s *RoleServiceImpl) UpdateRolePermissions(ctx context.Context, actorID string, id primitive.ObjectID, permissionIDs []primitive.ObjectID) error {
	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}

	if permissionIDs == nil {
		permissionIDs = []primitive.ObjectID{}
	}

	if err := s.Repo.Update(ctx, id, bson.M{"permission_ids": permissionIDs}); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceRole,
		ResourceID:   id.Hex(),
		OldData:      bson.M{"permission_ids": role.PermissionIDs},
		NewData:      bson.M{"permission_ids": permissionIDs},
		Description:  "role permissions updated",
	})

	return nil
}

func (s *RoleServiceImpl) SetStatus(ctx context.Context, actorID string, id primitive.ObjectID, status string) error {
	if status != StatusActive && status != StatusInactive {
		return apperrors.NewValidation("invalid status", "status")
	}

	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, bson.M{"status": status}); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceRole,
		ResourceID:   id.Hex(),
		OldData:      bson.M{"status": role.Status},
		NewData:      bson.M{"status": status},
		Description:  "role status changed",
	})

	return nil
}

func (s *RoleServiceImpl) DeleteRole(ctx context.Context, actorID string, id primitive.ObjectID) error {
	role, err := s.GetRoleByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return apperrors.NewForbidden("system roles cannot be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionDelete,
		ResourceType: common_models.AuditResourceRole,
		ResourceID:   id.Hex(),
		OldData:      bson.M{"name": role.Name},
		Description:  "role deleted",
	})

	return nil
}
