package form

import (
	"context"
	"fmt"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/department"
	"go-formflow/internal/features/workflow"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FormService interface {
	CreateForm(ctx context.Context, actorID string, f *Form) (*Form, error)
	GetForm(ctx context.Context, id string) (*Form, error)
	// GetActiveForm is what submission intake uses: draft and inactive
	// forms are not submittable.
	GetActiveForm(ctx context.Context, id string) (*Form, error)
	ListForms(ctx context.Context, category string, status string) ([]Form, error)
	UpdateForm(ctx context.Context, actorID string, f *Form) (*Form, error)
	SetStatus(ctx context.Context, actorID string, id string, status string) error
	DeleteForm(ctx context.Context, actorID string, id string) error
}

type FormServiceImpl struct {
	Repo        FormRepository
	Departments department.DepartmentService
	Workflows   workflow.WorkflowService
	Audit       audit.AuditService
	Logger      *zap.Logger
}

func NewFormService(repo FormRepository, departments department.DepartmentService, workflows workflow.WorkflowService, auditSvc audit.AuditService, logger *zap.Logger) FormService {
	return &FormServiceImpl{
		Repo:        repo,
		Departments: departments,
		Workflows:   workflows,
		Audit:       auditSvc,
		Logger:      logger,
	}
}

func (s *FormServiceImpl) validate(ctx context.Context, f *Form) error {
	if f.Name == "" {
		return apperrors.NewValidation("form name is required", "name")
	}
	if len(f.Fields) == 0 {
		return apperrors.NewValidation("form requires at least one field", "fields")
	}

	seen := make(map[string]bool, len(f.Fields))
	for i := range f.Fields {
		field := &f.Fields[i]
		if field.ID == "" {
			field.ID = uuid.NewString()
		}
		if seen[field.ID] {
			return apperrors.NewValidation("field ids must be unique", field.ID)
		}
		seen[field.ID] = true
		if field.Label == "" {
			return apperrors.NewValidation("every field requires a label", field.ID)
		}
		if !fieldTypes[field.Type] {
			return apperrors.NewValidation(fmt.Sprintf("unsupported field type %q", field.Type), field.ID)
		}
		if (field.Type == FieldTypeSelect || field.Type == FieldTypeRadio) && len(field.Options) == 0 {
			return apperrors.NewValidation(fmt.Sprintf("field %q requires options", field.Label), field.ID)
		}
	}

	// Category must name a live department; the department service
	// answers NotFound or Inactive and those pass through verbatim.
	if _, err := s.Departments.GetActiveByName(ctx, f.Category); err != nil {
		return err
	}

	wf, err := s.Workflows.GetWorkflow(ctx, f.WorkflowID.Hex())
	if err != nil {
		return err
	}
	if wf.Status != workflow.StatusActive {
		return apperrors.NewInactive("workflow", wf.ID.Hex())
	}
	return nil
}

func (s *FormServiceImpl) CreateForm(ctx context.Context, actorID string, f *Form) (*Form, error) {
	if err := s.validate(ctx, f); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByName(ctx, f.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewDuplicateKey("form", f.Name)
	}

	if f.Status == "" {
		f.Status = StatusDraft
	}
	f.UsageCount = 0
	f.CreatedBy = actorID

	created, err := s.Repo.Create(ctx, f)
	if err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionCreate,
		ResourceType: common_models.AuditResourceFormTemplate,
		ResourceID:   created.ID.Hex(),
		NewData:      created,
		Description:  "created form " + created.Name,
	})
	return created, nil
}

func (s *FormServiceImpl) GetForm(ctx context.Context, id string) (*Form, error) {
	f, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewValidation("invalid form id", "id")
	}
	if f == nil {
		return nil, apperrors.NewNotFound("form", id)
	}
	return f, nil
}

func (s *FormServiceImpl) GetActiveForm(ctx context.Context, id string) (*Form, error) {
	f, err := s.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status != StatusActive {
		return nil, apperrors.NewInactive("form", id)
	}
	return f, nil
}

func (s *FormServiceImpl) ListForms(ctx context.Context, category string, status string) ([]Form, error) {
	filter := map[string]interface{}{}
	if category != "" {
		filter["category"] = category
	}
	if status != "" {
		filter["status"] = status
	}
	return s.Repo.List(ctx, filter)
}

func (s *FormServiceImpl) UpdateForm(ctx context.Context, actorID string, f *Form) (*Form, error) {
	current, err := s.GetForm(ctx, f.ID.Hex())
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, f); err != nil {
		return nil, err
	}

	if f.Name != current.Name {
		existing, err := s.Repo.FindByName(ctx, f.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.NewDuplicateKey("form", f.Name)
		}
	}

	if err := s.Repo.Update(ctx, f); err != nil {
		return nil, err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceFormTemplate,
		ResourceID:   f.ID.Hex(),
		OldData:      current,
		NewData:      f,
		Description:  "updated form " + f.Name,
	})
	return f, nil
}

func (s *FormServiceImpl) SetStatus(ctx context.Context, actorID string, id string, status string) error {
	if status != StatusActive && status != StatusDraft && status != StatusInactive {
		return apperrors.NewValidation("status must be active, draft or inactive", "status")
	}
	if _, err := s.GetForm(ctx, id); err != nil {
		return err
	}
	if err := s.Repo.SetStatus(ctx, id, status); err != nil {
		return err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceFormTemplate,
		ResourceID:   id,
		Description:  "set form status to " + status,
	})
	return nil
}

func (s *FormServiceImpl) DeleteForm(ctx context.Context, actorID string, id string) error {
	f, err := s.GetForm(ctx, id)
	if err != nil {
		return err
	}
	if f.UsageCount > 0 {
		return apperrors.NewInvalidState("form has submissions and cannot be deleted")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionDelete,
		ResourceType: common_models.AuditResourceFormTemplate,
		ResourceID:   id,
		OldData:      f,
		Description:  "deleted form " + f.Name,
	})
	return nil
}
