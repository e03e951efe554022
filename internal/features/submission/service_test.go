package submission

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/form"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/permission"
	"go-formflow/internal/features/user"
	"go-formflow/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ---- in-memory fakes ----

type fakeSubmissionRepo struct {
	subs    map[primitive.ObjectID]*Submission
	findErr error
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: map[primitive.ObjectID]*Submission{}}
}

func (r *fakeSubmissionRepo) Create(ctx context.Context, sub *Submission) (*Submission, error) {
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()
	stored := *sub
	r.subs[sub.ID] = &stored
	return sub, nil
}

func (r *fakeSubmissionRepo) FindByID(ctx context.Context, id string) (*Submission, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	sub, ok := r.subs[oid]
	if !ok {
		return nil, nil
	}
	copied := *sub
	copied.ApprovalHistory = append([]HistoryEntry{}, sub.ApprovalHistory...)
	return &copied, nil
}

func (r *fakeSubmissionRepo) ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID, page, limit int64) ([]Submission, int64, error) {
	var out []Submission
	for _, sub := range r.subs {
		if sub.SubmitterID == submitterID {
			out = append(out, *sub)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSubmissionRepo) ListByStatus(ctx context.Context, status string) ([]Submission, error) {
	var out []Submission
	for _, sub := range r.subs {
		if sub.Status == status {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Submission, error) {
	var out []Submission
	for _, sub := range r.subs {
		if sub.Status == StatusPending && sub.UpdatedAt.Before(cutoff) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (r *fakeSubmissionRepo) List(ctx context.Context, filter map[string]interface{}) ([]Submission, error) {
	var out []Submission
	for _, sub := range r.subs {
		out = append(out, *sub)
	}
	return out, nil
}

func (r *fakeSubmissionRepo) Transition(ctx context.Context, id primitive.ObjectID, expectedStatus string, expectedStep int, newStatus string, newStep int, entry HistoryEntry) error {
	sub, ok := r.subs[id]
	if !ok || sub.Status != expectedStatus || sub.CurrentStepIndex != expectedStep {
		return apperrors.NewConflict("submission was decided concurrently, reload and retry")
	}
	sub.Status = newStatus
	sub.CurrentStepIndex = newStep
	sub.UpdatedAt = time.Now()
	sub.ApprovalHistory = append(sub.ApprovalHistory, entry)
	return nil
}

func (r *fakeSubmissionRepo) Resubmit(ctx context.Context, id primitive.ObjectID, values map[string]interface{}, entry HistoryEntry) error {
	sub, ok := r.subs[id]
	if !ok || sub.Status != StatusFeedbackRequested {
		return apperrors.NewConflict("submission state changed concurrently, reload and retry")
	}
	sub.Values = values
	sub.Status = StatusPending
	sub.ResubmitCount++
	sub.UpdatedAt = time.Now()
	sub.ApprovalHistory = append(sub.ApprovalHistory, entry)
	return nil
}

func (r *fakeSubmissionRepo) HasOpenForWorkflow(ctx context.Context, workflowID string) (bool, error) {
	for _, sub := range r.subs {
		if sub.WorkflowID.Hex() == workflowID && !sub.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

type fakeForms struct {
	form *form.Form
}

func (f *fakeForms) CreateForm(ctx context.Context, actorID string, m *form.Form) (*form.Form, error) {
	return m, nil
}
func (f *fakeForms) GetForm(ctx context.Context, id string) (*form.Form, error) {
	if f.form == nil || f.form.ID.Hex() != id {
		return nil, apperrors.NewNotFound("form", id)
	}
	return f.form, nil
}
func (f *fakeForms) GetActiveForm(ctx context.Context, id string) (*form.Form, error) {
	m, err := f.GetForm(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != form.StatusActive {
		return nil, apperrors.NewInactive("form", id)
	}
	return m, nil
}
func (f *fakeForms) ListForms(ctx context.Context, category, status string) ([]form.Form, error) {
	return nil, nil
}
func (f *fakeForms) UpdateForm(ctx context.Context, actorID string, m *form.Form) (*form.Form, error) {
	return m, nil
}
func (f *fakeForms) SetStatus(ctx context.Context, actorID, id, status string) error { return nil }
func (f *fakeForms) DeleteForm(ctx context.Context, actorID, id string) error        { return nil }

type fakeFormRepo struct {
	form.FormRepository
	usage int
}

func (f *fakeFormRepo) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	f.usage++
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
func (f *fakeWorkflows) UpdateWorkflow(ctx context.Context, actorID, id, name string, steps []workflow.Step) (*workflow.Workflow, error) {
	return f.wf, nil
}
func (f *fakeWorkflows) SetStatus(ctx context.Context, actorID, id, status string) error { return nil }
func (f *fakeWorkflows) DeleteWorkflow(ctx context.Context, actorID, id string) error    { return nil }

type fakeWorkflowRepo struct {
	workflow.WorkflowRepository
	usage int
}

func (f *fakeWorkflowRepo) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	f.usage++
	return nil
}

type fakeUserRepo struct {
	byRole map[primitive.ObjectID][]user.User
}

func (r *fakeUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) FindByIDs(ctx context.Context, ids []string) ([]user.User, error) {
	return nil, nil
}
func (r *fakeUserRepo) FindByRoleID(ctx context.Context, roleID primitive.ObjectID) ([]user.User, error) {
	return r.byRole[roleID], nil
}
func (r *fakeUserRepo) FindByRoleAndDepartment(ctx context.Context, roleID primitive.ObjectID, departmentID *primitive.ObjectID) ([]user.User, error) {
	var out []user.User
	for _, u := range r.byRole[roleID] {
		if departmentID == nil || (u.DepartmentID != nil && *u.DepartmentID == *departmentID) {
			out = append(out, u)
		}
	}
	return out, nil
}
func (r *fakeUserRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]user.User, int64, error) {
	return nil, 0, nil
}
func (r *fakeUserRepo) Update(ctx context.Context, id string, updates bson.M) error { return nil }
func (r *fakeUserRepo) Delete(ctx context.Context, id string) error                 { return nil }

type fakeResolver struct {
	actors map[string]*permission.ResolvedActor
}

func (r *fakeResolver) Resolve(ctx context.Context, actorID string) (*permission.ResolvedActor, error) {
	if actor, ok := r.actors[actorID]; ok {
		return actor, nil
	}
	return &permission.ResolvedActor{Permissions: map[string]bool{}}, nil
}

type sentNotification struct {
	Recipient primitive.ObjectID
	Kind      notification.Kind
}

type fakeDispatcher struct {
	sent []sentNotification
	fail bool
}

func (d *fakeDispatcher) Notify(ctx context.Context, recipientID primitive.ObjectID, kind notification.Kind, title, message string, submissionID *primitive.ObjectID) error {
	if d.fail {
		return apperrors.NewValidation("dispatch down")
	}
	d.sent = append(d.sent, sentNotification{Recipient: recipientID, Kind: kind})
	return nil
}

func (d *fakeDispatcher) kinds() []notification.Kind {
	out := make([]notification.Kind, 0, len(d.sent))
	for _, n := range d.sent {
		out = append(out, n.Kind)
	}
	return out
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

// ---- fixture ----

type fixture struct {
	svc       *SubmissionServiceImpl
	repo      *fakeSubmissionRepo
	notifier  *fakeDispatcher
	auditLog  *fakeAudit
	resolver  *fakeResolver
	formRepo  *fakeFormRepo
	wfRepo    *fakeWorkflowRepo
	form      *form.Form
	wf        *workflow.Workflow
	submitter primitive.ObjectID

	managerRole primitive.ObjectID
	financeRole primitive.ObjectID
	manager     primitive.ObjectID
	financeHead primitive.ObjectID
	financeDept primitive.ObjectID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:        newFakeSubmissionRepo(),
		notifier:    &fakeDispatcher{},
		auditLog:    &fakeAudit{},
		managerRole: primitive.NewObjectID(),
		financeRole: primitive.NewObjectID(),
		manager:     primitive.NewObjectID(),
		financeHead: primitive.NewObjectID(),
		financeDept: primitive.NewObjectID(),
		submitter:   primitive.NewObjectID(),
	}

	f.wf = &workflow.Workflow{
		ID:     primitive.NewObjectID(),
		Name:   "expense-approval",
		Status: workflow.StatusActive,
		Steps: []workflow.Step{
			{ID: "s1", Name: "Manager Review", Order: 1, RequiredRole: f.managerRole, Mandatory: true},
			{ID: "s2", Name: "FYI Legal", Order: 2, RequiredRole: primitive.NewObjectID(), Mandatory: false},
			{ID: "s3", Name: "Finance Signoff", Order: 3, RequiredRole: f.financeRole, Department: &f.financeDept, Mandatory: true},
		},
	}

	f.form = &form.Form{
		ID:         primitive.NewObjectID(),
		Name:       "Expense Report",
		Category:   "Finance",
		Status:     form.StatusActive,
		WorkflowID: f.wf.ID,
		Fields: []form.Field{
			{ID: "amount", Label: "Amount", Type: form.FieldTypeNumber, Required: true},
			{ID: "reason", Label: "Reason", Type: form.FieldTypeText},
		},
	}

	f.resolver = &fakeResolver{actors: map[string]*permission.ResolvedActor{
		f.manager.Hex(): {
			UserID:      f.manager,
			RoleID:      f.managerRole,
			Permissions: map[string]bool{"submission_approve": true},
		},
		f.financeHead.Hex(): {
			UserID:       f.financeHead,
			RoleID:       f.financeRole,
			DepartmentID: &f.financeDept,
			Permissions:  map[string]bool{"submission_approve": true},
		},
	}}

	f.formRepo = &fakeFormRepo{}
	f.wfRepo = &fakeWorkflowRepo{}

	users := &fakeUserRepo{byRole: map[primitive.ObjectID][]user.User{
		f.managerRole: {{ID: f.manager, Status: user.StatusActive}},
		f.financeRole: {{ID: f.financeHead, Status: user.StatusActive, DepartmentID: &f.financeDept}},
	}}

	f.svc = &SubmissionServiceImpl{
		Repo:         f.repo,
		Forms:        &fakeForms{form: f.form},
		FormRepo:     f.formRepo,
		Workflows:    &fakeWorkflows{wf: f.wf},
		WorkflowRepo: f.wfRepo,
		UserRepo:     users,
		Resolver:     f.resolver,
		Notifier:     f.notifier,
		Audit:        f.auditLog,
		Logger:       zap.NewNop(),
	}
	return f
}

func (f *fixture) create(t *testing.T) *Submission {
	t.Helper()
	sub, err := f.svc.Create(context.Background(), f.submitter.Hex(), f.form.ID.Hex(),
		map[string]interface{}{"amount": 120.50}, "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return sub
}

// ---- tests ----

func TestCreateStartsAtFirstMandatoryStep(t *testing.T) {
	f := newFixture(t)

	sub := f.create(t)

	if sub.Status != StatusPending {
		t.Errorf("Status = %q, want pending", sub.Status)
	}
	if sub.CurrentStepIndex != 0 {
		t.Errorf("CurrentStepIndex = %d, want 0", sub.CurrentStepIndex)
	}
	if sub.Priority != PriorityMedium {
		t.Errorf("Priority = %q, want default medium", sub.Priority)
	}
	if len(sub.ApprovalHistory) != 1 {
		t.Fatalf("new submission has %d history entries, want the submitted entry", len(sub.ApprovalHistory))
	}
	submitted := sub.ApprovalHistory[0]
	if submitted.Decision != DecisionSubmitted || submitted.ActorID != f.submitter {
		t.Errorf("first history entry = %+v, want submitted by submitter", submitted)
	}
	if f.formRepo.usage != 1 || f.wfRepo.usage != 1 {
		t.Errorf("usage counters form=%d wf=%d, want 1 each", f.formRepo.usage, f.wfRepo.usage)
	}

	// Submitter confirmation plus first-step approver.
	kinds := f.notifier.kinds()
	if len(kinds) != 2 || kinds[0] != notification.KindFormSubmitted || kinds[1] != notification.KindApprovalRequired {
		t.Errorf("notification kinds = %v", kinds)
	}
}

func TestCreateRejectsInactiveForm(t *testing.T) {
	f := newFixture(t)
	f.form.Status = form.StatusDraft

	_, err := f.svc.Create(context.Background(), f.submitter.Hex(), f.form.ID.Hex(),
		map[string]interface{}{"amount": 10.0}, "")
	if apperrors.StatusFor(err) != 422 {
		t.Fatalf("Create() on draft form error = %v, want inactive resource", err)
	}
}

func TestCreateValidatesValues(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.submitter.Hex(), f.form.ID.Hex(),
		map[string]interface{}{"reason": "lunch"}, "")
	if !apperrors.IsValidation(err) {
		t.Fatalf("Create() without required amount error = %v, want validation", err)
	}

	_, err = f.svc.Create(context.Background(), f.submitter.Hex(), f.form.ID.Hex(),
		map[string]interface{}{"amount": 10.0, "ghost": true}, "")
	if !apperrors.IsValidation(err) {
		t.Fatalf("Create() with unknown field error = %v, want validation", err)
	}
}

func TestApproveSkipsOptionalStep(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	updated, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, "looks fine")
	if err != nil {
		t.Fatalf("Act(approve) error = %v", err)
	}

	// The optional step at index 1 never holds the cursor.
	if updated.CurrentStepIndex != 2 {
		t.Errorf("CurrentStepIndex = %d, want 2", updated.CurrentStepIndex)
	}
	if updated.Status != StatusPending {
		t.Errorf("Status = %q, want pending", updated.Status)
	}
	if len(updated.ApprovalHistory) != 2 || updated.ApprovalHistory[1].Decision != DecisionApprove {
		t.Errorf("history = %+v", updated.ApprovalHistory)
	}
}

func TestFinalApprovalIsTerminal(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, ""); err != nil {
		t.Fatalf("first approve error = %v", err)
	}
	updated, err := f.svc.Act(context.Background(), f.financeHead.Hex(), sub.ID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("final approve error = %v", err)
	}
	if updated.Status != StatusApproved {
		t.Fatalf("Status = %q, want approved", updated.Status)
	}

	// No decision is accepted on a terminal submission.
	_, err = f.svc.Act(context.Background(), f.financeHead.Hex(), sub.ID.Hex(), DecisionReject, "no")
	var state *apperrors.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("Act on approved submission error = %v, want invalid state", err)
	}
}

func TestRejectIsTerminal(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	updated, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionReject, "missing receipts")
	if err != nil {
		t.Fatalf("Act(reject) error = %v", err)
	}
	if updated.Status != StatusRejected {
		t.Fatalf("Status = %q, want rejected", updated.Status)
	}

	_, err = f.svc.Resubmit(context.Background(), f.submitter.Hex(), sub.ID.Hex(), map[string]interface{}{"amount": 1.0})
	var state *apperrors.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("Resubmit on rejected submission error = %v, want invalid state", err)
	}
}

func TestWrongRoleIsForbidden(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	// financeHead holds the role for step 3, not step 1. Exact required
	// role match, not level comparison.
	auditsBefore := len(f.auditLog.entries)
	_, err := f.svc.Act(context.Background(), f.financeHead.Hex(), sub.ID.Hex(), DecisionApprove, "")
	if !apperrors.IsForbidden(err) {
		t.Fatalf("Act by wrong role error = %v, want forbidden", err)
	}

	// A refused decision changes nothing and records nothing beyond the
	// submitted entry.
	fresh, _ := f.repo.FindByID(context.Background(), sub.ID.Hex())
	if fresh.Status != StatusPending || fresh.CurrentStepIndex != 0 || len(fresh.ApprovalHistory) != 1 {
		t.Errorf("state changed after forbidden decision: %+v", fresh)
	}
	if len(f.auditLog.entries) != auditsBefore {
		t.Errorf("audit recorded for a forbidden decision")
	}
}

func TestDepartmentScopeNarrowsApprovers(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, ""); err != nil {
		t.Fatalf("first approve error = %v", err)
	}

	// Right role, wrong department.
	otherDept := primitive.NewObjectID()
	outsider := primitive.NewObjectID()
	f.resolver.actors[outsider.Hex()] = &permission.ResolvedActor{
		UserID:       outsider,
		RoleID:       f.financeRole,
		DepartmentID: &otherDept,
		Permissions:  map[string]bool{},
	}

	_, err := f.svc.Act(context.Background(), outsider.Hex(), sub.ID.Hex(), DecisionApprove, "")
	if !apperrors.IsForbidden(err) {
		t.Fatalf("Act from wrong department error = %v, want forbidden", err)
	}
}

func TestUnknownActorFailsClosed(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	_, err := f.svc.Act(context.Background(), primitive.NewObjectID().Hex(), sub.ID.Hex(), DecisionApprove, "")
	if !apperrors.IsForbidden(err) {
		t.Fatalf("Act by unknown actor error = %v, want forbidden", err)
	}
}

func TestConcurrentApproversConflict(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	second := primitive.NewObjectID()
	f.resolver.actors[second.Hex()] = &permission.ResolvedActor{
		UserID:      second,
		RoleID:      f.managerRole,
		Permissions: map[string]bool{},
	}

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, ""); err != nil {
		t.Fatalf("first decision error = %v", err)
	}

	// The cursor moved, so the competing decision computed from the old
	// snapshot must lose.
	stale := *sub
	entry := HistoryEntry{ActorID: second, Decision: DecisionApprove, DecidedAt: time.Now()}
	err := f.repo.Transition(context.Background(), stale.ID, StatusPending, stale.CurrentStepIndex, StatusPending, 2, entry)
	if !apperrors.IsConflict(err) {
		t.Fatalf("stale transition error = %v, want conflict", err)
	}

	// Exactly one accepted call, one appended entry: the submitted
	// entry plus the winning approval.
	fresh, _ := f.repo.FindByID(context.Background(), sub.ID.Hex())
	if len(fresh.ApprovalHistory) != 2 {
		t.Errorf("history length = %d, want 2", len(fresh.ApprovalHistory))
	}
}

func TestFeedbackRoundTrip(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	updated, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionRequestFeedback, "need itemized receipts")
	if err != nil {
		t.Fatalf("Act(request_feedback) error = %v", err)
	}
	if updated.Status != StatusFeedbackRequested {
		t.Fatalf("Status = %q, want feedback_requested", updated.Status)
	}

	// While awaiting resubmission no decisions are accepted.
	_, err = f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, "")
	var state *apperrors.InvalidStateError
	if !errors.As(err, &state) {
		t.Fatalf("Act while awaiting resubmission error = %v, want invalid state", err)
	}

	// Only the submitter can resubmit.
	_, err = f.svc.Resubmit(context.Background(), f.manager.Hex(), sub.ID.Hex(), map[string]interface{}{"amount": 99.0})
	if !apperrors.IsForbidden(err) {
		t.Fatalf("Resubmit by non-submitter error = %v, want forbidden", err)
	}

	resubmitted, err := f.svc.Resubmit(context.Background(), f.submitter.Hex(), sub.ID.Hex(), map[string]interface{}{"amount": 99.0})
	if err != nil {
		t.Fatalf("Resubmit() error = %v", err)
	}
	if resubmitted.Status != StatusPending {
		t.Errorf("Status after resubmit = %q, want pending", resubmitted.Status)
	}
	if resubmitted.CurrentStepIndex != 0 {
		t.Errorf("cursor after resubmit = %d, want 0 (same step)", resubmitted.CurrentStepIndex)
	}
	if resubmitted.ResubmitCount != 1 {
		t.Errorf("ResubmitCount = %d, want 1", resubmitted.ResubmitCount)
	}
	if got := resubmitted.ApprovalHistory[len(resubmitted.ApprovalHistory)-1].Decision; got != DecisionResubmit {
		t.Errorf("last history decision = %q, want resubmit", got)
	}
}

func TestRejectNotifiesSubmitterAndPriorApprovers(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, ""); err != nil {
		t.Fatalf("approve error = %v", err)
	}
	f.notifier.sent = nil

	if _, err := f.svc.Act(context.Background(), f.financeHead.Hex(), sub.ID.Hex(), DecisionReject, "over budget"); err != nil {
		t.Fatalf("reject error = %v", err)
	}

	var submitterGot, managerGot bool
	for _, n := range f.notifier.sent {
		if n.Recipient == f.submitter && n.Kind == notification.KindFormRejected {
			submitterGot = true
		}
		if n.Recipient == f.manager && n.Kind == notification.KindSubmissionRejected {
			managerGot = true
		}
	}
	if !submitterGot || !managerGot {
		t.Errorf("notifications = %+v, want submitter rejection and prior-approver notice", f.notifier.sent)
	}
}

func TestNotificationFailureDoesNotFailDecision(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)
	f.notifier.fail = true

	updated, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("Act with failing dispatcher error = %v", err)
	}
	if updated.CurrentStepIndex != 2 {
		t.Errorf("decision did not advance despite notification failure")
	}
}

func TestListPendingForMatchesStepPolicy(t *testing.T) {
	f := newFixture(t)
	f.create(t)
	f.create(t)

	queue, err := f.svc.ListPendingFor(context.Background(), f.manager.Hex())
	if err != nil {
		t.Fatalf("ListPendingFor error = %v", err)
	}
	if len(queue) != 2 {
		t.Errorf("manager queue length = %d, want 2", len(queue))
	}

	// Finance role is not the step-one approver.
	queue, err = f.svc.ListPendingFor(context.Background(), f.financeHead.Hex())
	if err != nil {
		t.Fatalf("ListPendingFor error = %v", err)
	}
	if len(queue) != 0 {
		t.Errorf("finance queue length = %d, want 0", len(queue))
	}

	// Unknown actor resolves fail-closed to an empty queue, not an error.
	queue, err = f.svc.ListPendingFor(context.Background(), primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("ListPendingFor for unknown actor error = %v", err)
	}
	if len(queue) != 0 {
		t.Errorf("unknown actor queue length = %d, want 0", len(queue))
	}
}

func TestNamedApproverPinsStep(t *testing.T) {
	f := newFixture(t)
	pinned := f.manager
	f.wf.Steps[0].ApproverID = &pinned
	sub := f.create(t)

	// Same role, different user: the named approver constraint rejects.
	other := primitive.NewObjectID()
	f.resolver.actors[other.Hex()] = &permission.ResolvedActor{
		UserID:      other,
		RoleID:      f.managerRole,
		Permissions: map[string]bool{},
	}
	_, err := f.svc.Act(context.Background(), other.Hex(), sub.ID.Hex(), DecisionApprove, "")
	if !apperrors.IsForbidden(err) {
		t.Fatalf("Act by non-named approver error = %v, want forbidden", err)
	}

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, ""); err != nil {
		t.Fatalf("Act by named approver error = %v", err)
	}
}

func TestNotifyStalePending(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	// Age the submission past the reminder threshold.
	f.repo.subs[sub.ID].UpdatedAt = time.Now().Add(-48 * time.Hour)
	f.notifier.sent = nil

	count, err := f.svc.NotifyStalePending(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("NotifyStalePending error = %v", err)
	}
	if count != 1 {
		t.Errorf("stale count = %d, want 1", count)
	}
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Kind != notification.KindSubmissionPending {
		t.Errorf("reminder notifications = %+v", f.notifier.sent)
	}
}

func TestRejectWithoutComment(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	// A comment is optional on reject; only feedback requests demand one.
	updated, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionReject, "")
	if err != nil {
		t.Fatalf("Act(reject) without comment error = %v", err)
	}
	if updated.Status != StatusRejected {
		t.Errorf("Status = %q, want rejected", updated.Status)
	}

	sub2 := f.create(t)
	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub2.ID.Hex(), DecisionRequestFeedback, ""); !apperrors.IsValidation(err) {
		t.Errorf("request_feedback without comment error = %v, want validation", err)
	}
}

func TestResubmitWithoutPayloadKeepsValues(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionRequestFeedback, "clarify in person"); err != nil {
		t.Fatalf("Act(request_feedback) error = %v", err)
	}

	resubmitted, err := f.svc.Resubmit(context.Background(), f.submitter.Hex(), sub.ID.Hex(), nil)
	if err != nil {
		t.Fatalf("Resubmit() without payload error = %v", err)
	}
	if resubmitted.Status != StatusPending {
		t.Errorf("Status = %q, want pending", resubmitted.Status)
	}
	if got := resubmitted.Values["amount"]; got != 120.50 {
		t.Errorf("values after payload-less resubmit = %v, want originals kept", resubmitted.Values)
	}
}

func TestWorkflowInstanceProjection(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	states := sub.WorkflowInstance()
	if len(states) != 3 {
		t.Fatalf("projection has %d steps, want 3", len(states))
	}
	for i, state := range states {
		if state.Status != StepPending {
			t.Errorf("step %d status = %q before any decision, want pending", i, state.Status)
		}
	}

	if _, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionApprove, "fine"); err != nil {
		t.Fatalf("approve error = %v", err)
	}
	updated, err := f.svc.Act(context.Background(), f.financeHead.Hex(), sub.ID.Hex(), DecisionApprove, "")
	if err != nil {
		t.Fatalf("final approve error = %v", err)
	}

	states = updated.WorkflowInstance()
	if states[0].Status != StepApproved || states[0].ActorID == nil || *states[0].ActorID != f.manager {
		t.Errorf("step 0 = %+v, want approved by manager", states[0])
	}
	if states[0].Comment != "fine" || states[0].DecidedAt == nil {
		t.Errorf("step 0 missing comment or timestamp: %+v", states[0])
	}
	// The optional step was never acted on and the run is terminal.
	if states[1].Status != StepSkipped {
		t.Errorf("step 1 status = %q, want skipped", states[1].Status)
	}
	if states[2].Status != StepApproved {
		t.Errorf("step 2 status = %q, want approved", states[2].Status)
	}
}

func TestWorkflowInstanceFeedbackCycle(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	updated, err := f.svc.Act(context.Background(), f.manager.Hex(), sub.ID.Hex(), DecisionRequestFeedback, "wrong cost center")
	if err != nil {
		t.Fatalf("Act(request_feedback) error = %v", err)
	}
	if got := updated.WorkflowInstance()[0].Status; got != StepFeedback {
		t.Errorf("step 0 status = %q, want feedback", got)
	}

	resubmitted, err := f.svc.Resubmit(context.Background(), f.submitter.Hex(), sub.ID.Hex(), nil)
	if err != nil {
		t.Fatalf("Resubmit() error = %v", err)
	}
	if got := resubmitted.WorkflowInstance()[0].Status; got != StepPending {
		t.Errorf("step 0 status after resubmission = %q, want pending again", got)
	}
}

func TestLoadPropagatesRepositoryError(t *testing.T) {
	f := newFixture(t)
	sub := f.create(t)

	f.repo.findErr = errors.New("connection reset")
	_, err := f.svc.Get(context.Background(), f.submitter.Hex(), sub.ID.Hex())
	if err == nil || apperrors.IsValidation(err) {
		t.Fatalf("Get() with failing store error = %v, want the store error surfaced", err)
	}

	// A malformed id is still the caller's fault.
	f.repo.findErr = nil
	if _, err := f.svc.Get(context.Background(), f.submitter.Hex(), "not-hex"); !apperrors.IsValidation(err) {
		t.Errorf("Get(malformed id) error = %v, want validation", err)
	}
}
