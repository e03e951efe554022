package auth

import (
	"context"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/user"
	"go-formflow/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	Login(ctx context.Context, username, password string) (string, *user.User, error)
	Logout(ctx context.Context, actorID string)
	Me(ctx context.Context, actorID string) (*user.User, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
	}
}

// Login verifies credentials and issues a signed token. Failed
// attempts are indistinguishable to the caller whether the account is
// missing, inactive or the password is wrong.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, *user.User, error) {
	u, err := s.UserRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if u == nil || u.Status != user.StatusActive {
		return "", nil, apperrors.NewForbidden("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", nil, apperrors.NewForbidden("invalid credentials")
	}

	token, err := utils.GenerateToken(u.ID, u.RoleID.Hex())
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if err := s.UserRepo.Update(ctx, u.ID.Hex(), bson.M{"last_login": now}); err == nil {
		u.LastLogin = &now
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      u.ID.Hex(),
		Action:       common_models.AuditActionLogin,
		ResourceType: common_models.AuditResourceUser,
		ResourceID:   u.ID.Hex(),
		Description:  u.Username + " logged in",
	})
	return token, u, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, actorID string) {
	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionLogout,
		ResourceType: common_models.AuditResourceUser,
		ResourceID:   actorID,
		Description:  "logged out",
	})
}

func (s *AuthServiceImpl) Me(ctx context.Context, actorID string) (*user.User, error) {
	u, err := s.UserRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewNotFound("user", actorID)
	}
	return u, nil
}
