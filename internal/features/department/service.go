package department

import (
	"context"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/notification"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DepartmentService interface {
	CreateDepartment(ctx context.Context, actorID string, department *Department) error
	GetDepartmentByID(ctx context.Context, id string) (*Department, error)
	// GetActiveByName is the cross-entity check consumed by form
	// creation: a form's category must name an active department.
	GetActiveByName(ctx context.Context, name string) (*Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	SetStatus(ctx context.Context, actorID string, id string, status string) error
	AssignManager(ctx context.Context, actorID string, id string, managerID primitive.ObjectID) error
	DeleteDepartment(ctx context.Context, actorID string, id string) error
}

type DepartmentServiceImpl struct {
	Repo         DepartmentRepository
	AuditService audit.AuditService
	Dispatcher   notification.Dispatcher
}

func NewDepartmentService(repo DepartmentRepository, auditService audit.AuditService, dispatcher notification.Dispatcher) DepartmentService {
	return &DepartmentServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Dispatcher:   dispatcher,
	}
}

func (s *DepartmentServiceImpl) CreateDepartment(ctx context.Context, actorID string, department *Department) error {
	if department.Name == "" {
		return apperrors.NewValidation("department name is required", "name")
	}

	existing, err := s.Repo.FindByName(ctx, department.Name)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.NewDuplicateKey("department", department.Name)
	}

	if department.ID.IsZero() {
		department.ID = primitive.NewObjectID()
	}
	if department.Status == "" {
		department.Status = StatusActive
	}
	department.CreatedAt = time.Now()
	department.UpdatedAt = time.Now()

	if err := s.Repo.Create(ctx, department); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionCreate,
		ResourceType: common_models.AuditResourceDepartment,
		ResourceID:   department.ID.Hex(),
		NewData:      bson.M{"name": department.Name},
		Description:  "department created",
	})

	return nil
}

func (s *DepartmentServiceImpl) GetDepartmentByID(ctx context.Context, id string) (*Department, error) {
	department, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, apperrors.NewNotFound("department", id)
	}
	return department, nil
}

func (s *DepartmentServiceImpl) GetActiveByName(ctx context.Context, name string) (*Department, error) {
	department, err := s.Repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if department == nil {
		return nil, apperrors.NewNotFound("department", name)
	}
	if department.Status != StatusActive {
		return nil, apperrors.NewInactive("department", name)
	}
	return department, nil
}

func (s *DepartmentServiceImpl) ListDepartments(ctx context.Context) ([]Department, error) {
	return s.Repo.List(ctx)
}

func (s *DepartmentServiceImpl) SetStatus(ctx context.Context, actorID string, id string, status string) error {
	if status != StatusActive && status != StatusInactive {
		return apperrors.NewValidation("invalid status", "status")
	}

	department, err := s.GetDepartmentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, bson.M{"status": status}); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceDepartment,
		ResourceID:   id,
		OldData:      bson.M{"status": department.Status},
		NewData:      bson.M{"status": status},
		Description:  "department status changed",
	})

	return nil
}

func (s *DepartmentServiceImpl) AssignManager(ctx context.Context, actorID string, id string, managerID primitive.ObjectID) error {
	department, err := s.GetDepartmentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Update(ctx, id, bson.M{"manager_id": managerID}); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceDepartment,
		ResourceID:   id,
		OldData:      bson.M{"manager_id": department.ManagerID},
		NewData:      bson.M{"manager_id": managerID.Hex()},
		Description:  "department manager assigned",
	})

	_ = s.Dispatcher.Notify(ctx, managerID, notification.KindDepartmentAssignedManager,
		"Department management", "You are now the manager of "+department.Name+".", nil)

	return nil
}

func (s *DepartmentServiceImpl) DeleteDepartment(ctx context.Context, actorID string, id string) error {
	department, err := s.GetDepartmentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.AuditService.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionDelete,
		ResourceType: common_models.AuditResourceDepartment,
		ResourceID:   id,
		OldData:      bson.M{"name": department.Name},
		Description:  "department deleted",
	})

	return nil
}
