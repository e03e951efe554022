package workflow

import (
	"context"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReferenceChecker reports whether any submission still references a
// workflow definition in a non-terminal state. Implemented by the
// submission repository and wired in at startup.
type ReferenceChecker interface {
	HasOpenForWorkflow(ctx context.Context, workflowID string) (bool, error)
}

type WorkflowService interface {
	CreateWorkflow(ctx context.Context, actorID string, wf *Workflow) (*Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*Workflow, error)
	ListWorkflows(ctx context.Context, status string) ([]Workflow, error)
	UpdateWorkflow(ctx context.Context, actorID string, id string, name string, steps []Step) (*Workflow, error)
	SetStatus(ctx context.Context, actorID string, id string, status string) error
	DeleteWorkflow(ctx context.Context, actorID string, id string) error
}

type WorkflowServiceImpl struct {
	Repo   WorkflowRepository
	Refs   ReferenceChecker
	Audit  audit.AuditService
	Logger *zap.Logger
}

func NewWorkflowService(repo WorkflowRepository, refs ReferenceChecker, auditSvc audit.AuditService, logger *zap.Logger) WorkflowService {
	return &WorkflowServiceImpl{
		Repo:   repo,
		Refs:   refs,
		Audit:  auditSvc,
		Logger: logger,
	}
}

func (s *WorkflowServiceImpl) CreateWorkflow(ctx context.Context, actorID string, wf *Workflow) (*Workflow, error) {
	if wf.Name == "" {
		return nil, apperrors.NewValidation("workflow name is required", "name")
	}
	if err := wf.ValidateSteps(); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByName(ctx, wf.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewDuplicateKey("workflow", wf.Name)
	}

	for i := range wf.Steps {
		if wf.Steps[i].ID == "" {
			wf.Steps[i].ID = uuid.NewString()
		}
	}
	if wf.Status == "" {
		wf.Status = StatusActive
	}
	wf.UsageCount = 0
	wf.CreatedBy = actorID

	created, err := s.Repo.Create(ctx, wf)
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionCreate,
		ResourceType: common_models.AuditResourceWorkflow,
		ResourceID:   created.ID.Hex(),
		NewData:      created,
		Description:  "created workflow " + created.Name,
	})
	return created, nil
}

func (s *WorkflowServiceImpl) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	wf, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewValidation("invalid workflow id", "id")
	}
	if wf == nil {
		return nil, apperrors.NewNotFound("workflow", id)
	}
	return wf, nil
}

func (s *WorkflowServiceImpl) ListWorkflows(ctx context.Context, status string) ([]Workflow, error) {
	return s.Repo.List(ctx, status)
}

// UpdateWorkflow replaces name and steps. Definitions referenced by
// in-flight submissions are frozen; callers must create a new
// definition instead.
func (s *WorkflowServiceImpl) UpdateWorkflow(ctx context.Context, actorID string, id string, name string, steps []Step) (*Workflow, error) {
	wf, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}

	open, err := s.Refs.HasOpenForWorkflow(ctx, id)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, apperrors.NewInvalidState("workflow has in-flight submissions and cannot change")
	}

	old := *wf

	if name != "" && name != wf.Name {
		existing, err := s.Repo.FindByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewDuplicateKey("workflow", name)
		}
		wf.Name = name
	}

	wf.Steps = steps
	if err := wf.ValidateSteps(); err != nil {
		return nil, err
	}
	for i := range wf.Steps {
		if wf.Steps[i].ID == "" {
			wf.Steps[i].ID = uuid.NewString()
		}
	}

	if err := s.Repo.Update(ctx, wf); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceWorkflow,
		ResourceID:   wf.ID.Hex(),
		OldData:      old,
		NewData:      wf,
		Description:  "updated workflow " + wf.Name,
	})
	return wf, nil
}

func (s *WorkflowServiceImpl) SetStatus(ctx context.Context, actorID string, id string, status string) error {
	if status != StatusActive && status != StatusInactive {
		return apperrors.NewValidation("status must be active or inactive", "status")
	}
	if _, err := s.GetWorkflow(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.SetStatus(ctx, id, status); err != nil {
		return err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceWorkflow,
		ResourceID:   id,
		Description:  "set workflow status to " + status,
	})
	return nil
}

// DeleteWorkflow removes a definition that was never used. Used or
// referenced definitions can only be deactivated.
func (s *WorkflowServiceImpl) DeleteWorkflow(ctx context.Context, actorID string, id string) error {
	wf, err := s.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}
	if wf.UsageCount > 0 {
		return apperrors.NewInvalidState("workflow has been used by submissions and cannot be deleted")
	}
	open, err := s.Refs.HasOpenForWorkflow(ctx, id)
	if err != nil {
		return err
	}
	if open {
		return apperrors.NewInvalidState("workflow has in-flight submissions and cannot be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionDelete,
		ResourceType: common_models.AuditResourceWorkflow,
		ResourceID:   id,
		OldData:      wf,
		Description:  "deleted workflow " + wf.Name,
	})
	return nil
}
