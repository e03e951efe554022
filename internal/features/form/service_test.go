package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/department"
	"go-formflow/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeFormRepo struct {
	byID map[primitive.ObjectID]*Form
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{byID: map[primitive.ObjectID]*Form{}}
}

func (r *fakeFormRepo) Create(ctx context.Context, f *Form) (*Form, error) {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now()
	f.UpdatedAt = time.Now()
	r.byID[f.ID] = f
	return f, nil
}

func (r *fakeFormRepo) FindByID(ctx context.Context, id string) (*Form, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	f, ok := r.byID[oid]
	if !ok {
		return nil, nil
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFormRepo) FindByName(ctx context.Context, name string) (*Form, error) {
	for _, f := range r.byID {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, nil
}

func (r *fakeFormRepo) List(ctx context.Context, filter map[string]interface{}) ([]Form, error) {
	var out []Form
	for _, f := range r.byID {
		out = append(out, *f)
	}
	return out, nil
}

func (r *fakeFormRepo) Update(ctx context.Context, f *Form) error {
	if stored, ok := r.byID[f.ID]; ok {
		*stored = *f
	}
	return nil
}

func (r *fakeFormRepo) SetStatus(ctx context.Context, id string, status string) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	if f, ok := r.byID[oid]; ok {
		f.Status = status
	}
	return nil
}

func (r *fakeFormRepo) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	if f, ok := r.byID[id]; ok {
		f.UsageCount++
	}
	return nil
}

func (r *fakeFormRepo) Delete(ctx context.Context, id string) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	delete(r.byID, oid)
	return nil
}

type fakeDepartments struct {
	active map[string]bool
}

func (d *fakeDepartments) CreateDepartment(ctx context.Context, actorID string, dep *department.Department) error {
	return nil
}
func (d *fakeDepartments) GetDepartmentByID(ctx context.Context, id string) (*department.Department, error) {
	return nil, nil
}
func (d *fakeDepartments) GetActiveByName(ctx context.Context, name string) (*department.Department, error) {
	if !d.active[name] {
		return nil, apperrors.NewNotFound("department", name)
	}
	return &department.Department{Name: name, Status: department.StatusActive}, nil
}
func (d *fakeDepartments) ListDepartments(ctx context.Context) ([]department.Department, error) {
	return nil, nil
}
func (d *fakeDepartments) SetStatus(ctx context.Context, actorID string, id string, status string) error {
	return nil
}
func (d *fakeDepartments) AssignManager(ctx context.Context, actorID string, id string, managerID primitive.ObjectID) error {
	return nil
}
func (d *fakeDepartments) DeleteDepartment(ctx context.Context, actorID string, id string) error {
	return nil
}

type fakeWorkflows struct {
	wf *workflow.Workflow
}

func (f *fakeWorkflows) CreateWorkflow(ctx context.Context, actorID string, wf *workflow.Workflow) (*workflow.Workflow, error) {
	return wf, nil
}
func (f *fakeWorkflows) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	if f.wf == nil || f.wf.ID.Hex() != id {
		return nil, apperrors.NewNotFound("workflow", id)
	}
	return f.wf, nil
}
func (f *fakeWorkflows) ListWorkflows(ctx context.Context, status string) ([]workflow.Workflow, error) {
	return nil, nil
}
func (f *fakeWorkflows) UpdateWorkflow(ctx context.Context, actorID string, id string, name string, steps []workflow.Step) (*workflow.Workflow, error) {
	return f.wf, nil
}
func (f *fakeWorkflows) SetStatus(ctx context.Context, actorID string, id string, status string) error {
	return nil
}
func (f *fakeWorkflows) DeleteWorkflow(ctx context.Context, actorID string, id string) error {
	return nil
}

type fakeAudit struct {
	entries []audit.Entry
}

func (a *fakeAudit) Record(ctx context.Context, entry audit.Entry) {
	a.entries = append(a.entries, entry)
}
func (a *fakeAudit) ListRecords(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditRecord, error) {
	return nil, nil
}

func newFormService() (*FormServiceImpl, *fakeFormRepo, *workflow.Workflow) {
	wf := &workflow.Workflow{
		ID:     primitive.NewObjectID(),
		Name:   "default-approval",
		Status: workflow.StatusActive,
	}
	repo := newFakeFormRepo()
	svc := &FormServiceImpl{
		Repo:        repo,
		Departments: &fakeDepartments{active: map[string]bool{"Finance": true}},
		Workflows:   &fakeWorkflows{wf: wf},
		Audit:       &fakeAudit{},
		Logger:      zap.NewNop(),
	}
	return svc, repo, wf
}

func baseForm(wf *workflow.Workflow) *Form {
	return &Form{
		Name:       "Expense Report",
		Category:   "Finance",
		WorkflowID: wf.ID,
		Fields: []Field{
			{Label: "Amount", Type: FieldTypeNumber, Required: true},
		},
	}
}

func TestCreateForm(t *testing.T) {
	svc, _, wf := newFormService()
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateForm(context.Background(), actor, baseForm(wf))
	if err != nil {
		t.Fatalf("CreateForm() error = %v", err)
	}
	if created.Status != StatusDraft {
		t.Errorf("Status = %q, want draft default", created.Status)
	}
	if created.Fields[0].ID == "" {
		t.Errorf("field id not generated")
	}

	_, err = svc.CreateForm(context.Background(), actor, baseForm(wf))
	var dup *apperrors.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Errorf("duplicate name error = %v, want duplicate key", err)
	}
}

func TestCreateFormValidation(t *testing.T) {
	svc, _, wf := newFormService()
	actor := primitive.NewObjectID().Hex()

	tests := []struct {
		name   string
		mutate func(*Form)
	}{
		{name: "missing name", mutate: func(f *Form) { f.Name = "" }},
		{name: "no fields", mutate: func(f *Form) { f.Fields = nil }},
		{name: "missing label", mutate: func(f *Form) { f.Fields[0].Label = "" }},
		{name: "unknown type", mutate: func(f *Form) { f.Fields[0].Type = "signature" }},
		{
			name: "select without options",
			mutate: func(f *Form) {
				f.Fields = append(f.Fields, Field{Label: "Pick", Type: FieldTypeSelect})
			},
		},
		{
			name: "duplicate field ids",
			mutate: func(f *Form) {
				f.Fields = []Field{
					{ID: "a", Label: "A", Type: FieldTypeText},
					{ID: "a", Label: "B", Type: FieldTypeText},
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := baseForm(wf)
			tt.mutate(f)
			if _, err := svc.CreateForm(context.Background(), actor, f); !apperrors.IsValidation(err) {
				t.Errorf("CreateForm() error = %v, want validation", err)
			}
		})
	}
}

func TestCreateFormChecksReferences(t *testing.T) {
	svc, _, wf := newFormService()
	actor := primitive.NewObjectID().Hex()

	f := baseForm(wf)
	f.Category = "Ghost Department"
	if _, err := svc.CreateForm(context.Background(), actor, f); !apperrors.IsNotFound(err) {
		t.Errorf("unknown category error = %v, want not found", err)
	}

	f = baseForm(wf)
	f.WorkflowID = primitive.NewObjectID()
	if _, err := svc.CreateForm(context.Background(), actor, f); !apperrors.IsNotFound(err) {
		t.Errorf("unknown workflow error = %v, want not found", err)
	}

	wf.Status = workflow.StatusInactive
	if _, err := svc.CreateForm(context.Background(), actor, baseForm(wf)); apperrors.StatusFor(err) != 422 {
		t.Errorf("inactive workflow error = %v, want inactive resource", err)
	}
}

func TestGetActiveForm(t *testing.T) {
	svc, repo, wf := newFormService()
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateForm(context.Background(), actor, baseForm(wf))
	if err != nil {
		t.Fatalf("CreateForm() error = %v", err)
	}

	// Drafts are not submittable.
	if _, err := svc.GetActiveForm(context.Background(), created.ID.Hex()); apperrors.StatusFor(err) != 422 {
		t.Errorf("GetActiveForm(draft) error = %v, want inactive resource", err)
	}

	repo.byID[created.ID].Status = StatusActive
	if _, err := svc.GetActiveForm(context.Background(), created.ID.Hex()); err != nil {
		t.Errorf("GetActiveForm(active) error = %v", err)
	}
}

func TestDeleteFormGuards(t *testing.T) {
	svc, repo, wf := newFormService()
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateForm(context.Background(), actor, baseForm(wf))
	if err != nil {
		t.Fatalf("CreateForm() error = %v", err)
	}

	repo.byID[created.ID].UsageCount = 2
	err = svc.DeleteForm(context.Background(), actor, created.ID.Hex())
	var state *apperrors.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("delete of used form error = %v, want invalid state", err)
	}

	repo.byID[created.ID].UsageCount = 0
	if err := svc.DeleteForm(context.Background(), actor, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteForm() error = %v", err)
	}
	if len(repo.byID) != 0 {
		t.Errorf("form not removed from repository")
	}
}
