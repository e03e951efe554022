package user

import (
	"context"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/notification"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]User, int64, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, actorID string, u *User, plainPassword string) error
	UpdateUserStatus(ctx context.Context, actorID string, id string, status string) error
	AssignRole(ctx context.Context, actorID string, id string, roleID primitive.ObjectID) error
	DeleteUser(ctx context.Context, actorID string, id string) error
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
	Dispatcher   notification.Dispatcher
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService, dispatcher notification.Dispatcher) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Dispatcher:   dispatcher,
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter map[string]interface{}, page, limit int64) ([]User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	return s.UserRepo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *UserServiceImpl) GetUserByID(ctx context.Context, id string) (*User, error) {
	u, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewNotFound("user", id)
	}
	return u, nil
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, actorID string, u *User, plainPassword string) error {
	if u.Username == "" || plainPassword == "" {
		return apperrors.NewValidation("username and password are required", "username", "password")
	}

	existing, err := s.UserRepo.FindByUsername(ctx, u.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewDuplicateKey("user", u.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plainPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = time.Now()

	if err := s.UserRepo.Create(ctx, u); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionCreate,
		ResourceType: common_models.AuditResourceUser,
		ResourceID:   u.ID.Hex(),
		NewData:      bson.M{"username": u.Username, "email": u.Email, "role_id": u.RoleID.Hex()},
		Description:  "user created",
	})

	return nil
}

func (s *UserServiceImpl) UpdateUserStatus(ctx context.Context, actorID string, id string, status string) error {
	if status != StatusActive && status != StatusInactive && status != StatusSuspended {
		return apperrors.NewValidation("invalid status", "status")
	}

	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Update(ctx, id, bson.M{"status": status, "updated_at": time.Now()}); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceUser,
		ResourceID:   id,
		OldData:      bson.M{"status": u.Status},
		NewData:      bson.M{"status": status},
		Description:  "user status changed",
	})

	return nil
}

func (s *UserServiceImpl) AssignRole(ctx context.Context, actorID string, id string, roleID primitive.ObjectID) error {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Update(ctx, id, bson.M{"role_id": roleID, "updated_at": time.Now()}); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceUser,
		ResourceID:   id,
		OldData:      bson.M{"role_id": u.RoleID.Hex()},
		NewData:      bson.M{"role_id": roleID.Hex()},
		Description:  "user role assigned",
	})

	_ = s.Dispatcher.Notify(ctx, u.ID, notification.KindUserAssignedRole,
		"Role assignment", "Your role has been updated.", nil)

	return nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, actorID string, id string) error {
	u, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.UserRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionDelete,
		ResourceType: common_models.AuditResourceUser,
		ResourceID:   id,
		OldData:      bson.M{"username": u.Username},
		Description:  "user deleted",
	})

	return nil
}
