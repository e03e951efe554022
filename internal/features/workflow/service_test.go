package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeWorkflowRepo struct {
	byID    map[primitive.ObjectID]*Workflow
	deleted []string
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{byID: map[primitive.ObjectID]*Workflow{}}
}

func (r *fakeWorkflowRepo) Create(ctx context.Context, wf *Workflow) (*Workflow, error) {
	wf.ID = primitive.NewObjectID()
	wf.CreatedAt = time.Now()
	wf.UpdatedAt = time.Now()
	r.byID[wf.ID] = wf
	return wf, nil
}

func (r *fakeWorkflowRepo) FindByID(ctx context.Context, id string) (*Workflow, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	wf, ok := r.byID[oid]
	if !ok {
		return nil, nil
	}
	copied := *wf
	return &copied, nil
}

func (r *fakeWorkflowRepo) FindByName(ctx context.Context, name string) (*Workflow, error) {
	for _, wf := range r.byID {
		if wf.Name == name {
			return wf, nil
		}
	}
	return nil, nil
}

func (r *fakeWorkflowRepo) List(ctx context.Context, status string) ([]Workflow, error) {
	var out []Workflow
	for _, wf := range r.byID {
		if status == "" || wf.Status == status {
			out = append(out, *wf)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) Update(ctx context.Context, wf *Workflow) error {
	stored, ok := r.byID[wf.ID]
	if !ok {
		return errors.New("not found")
	}
	*stored = *wf
	return nil
}

func (r *fakeWorkflowRepo) SetStatus(ctx context.Context, id string, status string) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	if wf, ok := r.byID[oid]; ok {
		wf.Status = status
	}
	return nil
}

func (r *fakeWorkflowRepo) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	if wf, ok := r.byID[id]; ok {
		wf.UsageCount++
	}
	return nil
}

func (r *fakeWorkflowRepo) Delete(ctx context.Context, id string) error {
	oid, _ := primitive.ObjectIDFromHex(id)
	delete(r.byID, oid)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeRefs struct {
	open bool
}

func (f *fakeRefs) HasOpenForWorkflow(ctx context.Context, workflowID string) (bool, error) {
	return f.open, nil
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

func newService(refs *fakeRefs) (*WorkflowServiceImpl, *fakeWorkflowRepo, *fakeAudit) {
	repo := newFakeWorkflowRepo()
	recorder := &fakeAudit{}
	svc := &WorkflowServiceImpl{
		Repo:   repo,
		Refs:   refs,
		Audit:  recorder,
		Logger: zap.NewNop(),
	}
	return svc, repo, recorder
}

func validSteps() []Step {
	return []Step{
		{Name: "Manager", Order: 1, RequiredRole: primitive.NewObjectID(), Mandatory: true},
		{Name: "Director", Order: 2, RequiredRole: primitive.NewObjectID(), Mandatory: true},
	}
}

func TestCreateWorkflow(t *testing.T) {
	svc, _, recorder := newService(&fakeRefs{})
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateWorkflow(context.Background(), actor, &Workflow{
		Name:  "purchase-approval",
		Steps: validSteps(),
	})
	if err != nil {
		t.Fatalf("CreateWorkflow() error = %v", err)
	}
	if created.Status != StatusActive {
		t.Errorf("Status = %q, want active default", created.Status)
	}
	for i, step := range created.Steps {
		if step.ID == "" {
			t.Errorf("step %d has no generated id", i)
		}
	}
	if len(recorder.entries) != 1 || recorder.entries[0].Action != common_models.AuditActionCreate {
		t.Errorf("audit entries = %+v", recorder.entries)
	}

	// Names are unique.
	_, err = svc.CreateWorkflow(context.Background(), actor, &Workflow{
		Name:  "purchase-approval",
		Steps: validSteps(),
	})
	var dup *apperrors.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("duplicate name error = %v, want duplicate key", err)
	}
}

func TestCreateWorkflowRejectsBadSteps(t *testing.T) {
	svc, _, _ := newService(&fakeRefs{})
	actor := primitive.NewObjectID().Hex()

	_, err := svc.CreateWorkflow(context.Background(), actor, &Workflow{Name: "empty"})
	if !apperrors.IsValidation(err) {
		t.Errorf("no steps error = %v, want validation", err)
	}

	_, err = svc.CreateWorkflow(context.Background(), actor, &Workflow{
		Name:  "all-optional",
		Steps: []Step{{Name: "FYI", Order: 1, RequiredRole: primitive.NewObjectID()}},
	})
	if !apperrors.IsValidation(err) {
		t.Errorf("no mandatory step error = %v, want validation", err)
	}
}

func TestUpdateWorkflowFrozenWhileReferenced(t *testing.T) {
	refs := &fakeRefs{}
	svc, _, _ := newService(refs)
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateWorkflow(context.Background(), actor, &Workflow{
		Name:  "travel-approval",
		Steps: validSteps(),
	})
	if err != nil {
		t.Fatalf("CreateWorkflow() error = %v", err)
	}

	refs.open = true
	_, err = svc.UpdateWorkflow(context.Background(), actor, created.ID.Hex(), "travel-v2", validSteps())
	var state *apperrors.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("update with open submissions error = %v, want invalid state", err)
	}

	refs.open = false
	updated, err := svc.UpdateWorkflow(context.Background(), actor, created.ID.Hex(), "travel-v2", validSteps())
	if err != nil {
		t.Fatalf("UpdateWorkflow() error = %v", err)
	}
	if updated.Name != "travel-v2" {
		t.Errorf("Name = %q, want travel-v2", updated.Name)
	}
}

func TestDeleteWorkflowGuards(t *testing.T) {
	refs := &fakeRefs{}
	svc, repo, _ := newService(refs)
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateWorkflow(context.Background(), actor, &Workflow{
		Name:  "onboarding",
		Steps: validSteps(),
	})
	if err != nil {
		t.Fatalf("CreateWorkflow() error = %v", err)
	}

	// A used definition can only be deactivated.
	repo.byID[created.ID].UsageCount = 3
	err = svc.DeleteWorkflow(context.Background(), actor, created.ID.Hex())
	var state *apperrors.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("delete of used workflow error = %v, want invalid state", err)
	}

	repo.byID[created.ID].UsageCount = 0
	refs.open = true
	if err := svc.DeleteWorkflow(context.Background(), actor, created.ID.Hex()); !errors.As(err, &state) {
		t.Fatalf("delete with open submissions error = %v, want invalid state", err)
	}

	refs.open = false
	if err := svc.DeleteWorkflow(context.Background(), actor, created.ID.Hex()); err != nil {
		t.Fatalf("DeleteWorkflow() error = %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Errorf("deleted = %v, want one entry", repo.deleted)
	}
}

func TestSetStatusValidatesValue(t *testing.T) {
	svc, _, _ := newService(&fakeRefs{})
	actor := primitive.NewObjectID().Hex()

	created, err := svc.CreateWorkflow(context.Background(), actor, &Workflow{
		Name:  "leave-approval",
		Steps: validSteps(),
	})
	if err != nil {
		t.Fatalf("CreateWorkflow() error = %v", err)
	}

	if err := svc.SetStatus(context.Background(), actor, created.ID.Hex(), "archived"); !apperrors.IsValidation(err) {
		t.Errorf("SetStatus(archived) error = %v, want validation", err)
	}
	if err := svc.SetStatus(context.Background(), actor, created.ID.Hex(), StatusInactive); err != nil {
		t.Errorf("SetStatus(inactive) error = %v", err)
	}
}
