package submission

import (
	"context"
	"fmt"
	"time"

	"go-formflow/internal/apperrors"
	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/features/audit"
	"go-formflow/internal/features/form"
	"go-formflow/internal/features/notification"
	"go-formflow/internal/features/permission"
	"go-formflow/internal/features/user"
	"go-formflow/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ActorResolver recomputes the effective authorization of an actor on
// every call. Unknown or inactive actors resolve to an empty view,
// never to an error.
type ActorResolver interface {
	Resolve(ctx context.Context, actorID string) (*permission.ResolvedActor, error)
}

type SubmissionService interface {
	Create(ctx context.Context, actorID string, formID string, values map[string]interface{}, priority string) (*Submission, error)
	Act(ctx context.Context, actorID string, submissionID string, decision string, comment string) (*Submission, error)
	Resubmit(ctx context.Context, actorID string, submissionID string, values map[string]interface{}) (*Submission, error)
	ListPendingFor(ctx context.Context, actorID string) ([]Submission, error)
	Get(ctx context.Context, actorID string, submissionID string) (*Submission, error)
	ListMine(ctx context.Context, actorID string, page, limit int64) ([]Submission, int64, error)
	ExportToExcel(ctx context.Context, status string, formName string) ([]byte, string, error)
	// NotifyStalePending re-notifies approvers of submissions that sat
	// pending longer than olderThan. Used by the reminder sweep.
	NotifyStalePending(ctx context.Context, olderThan time.Duration) (int, error)
}

type SubmissionServiceImpl struct {
	Repo         SubmissionRepository
	Forms        form.FormService
	FormRepo     form.FormRepository
	Workflows    workflow.WorkflowService
	WorkflowRepo workflow.WorkflowRepository
	UserRepo     user.UserRepository
	Resolver     ActorResolver
	Notifier     notification.Dispatcher
	Audit        audit.AuditService
	Logger       *zap.Logger
}

func NewSubmissionService(
	repo SubmissionRepository,
	forms form.FormService,
	formRepo form.FormRepository,
	workflows workflow.WorkflowService,
	workflowRepo workflow.WorkflowRepository,
	userRepo user.UserRepository,
	resolver ActorResolver,
	notifier notification.Dispatcher,
	auditSvc audit.AuditService,
	logger *zap.Logger,
) SubmissionService {
	return &SubmissionServiceImpl{
		Repo:         repo,
		Forms:        forms,
		FormRepo:     formRepo,
		Workflows:    workflows,
		WorkflowRepo: workflowRepo,
		UserRepo:     userRepo,
		Resolver:     resolver,
		Notifier:     notifier,
		Audit:        auditSvc,
		Logger:       logger,
	}
}

func (s *SubmissionServiceImpl) Create(ctx context.Context, actorID string, formID string, values map[string]interface{}, priority string) (*Submission, error) {
	submitterID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid actor id", "actor")
	}

	switch priority {
	case "":
		priority = PriorityMedium
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return nil, apperrors.NewValidation("priority must be low, medium or high", "priority")
	}

	f, err := s.Forms.GetActiveForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	if err := form.ValidateValues(ctx, f, values); err != nil {
		return nil, err
	}

	wf, err := s.Workflows.GetWorkflow(ctx, f.WorkflowID.Hex())
	if err != nil {
		return nil, err
	}
	if wf.Status != workflow.StatusActive {
		return nil, apperrors.NewInactive("workflow", wf.ID.Hex())
	}
	// Step invariants must hold again here: the snapshot frozen into
	// the instance is what every later decision runs against.
	if err := wf.ValidateSteps(); err != nil {
		return nil, err
	}

	firstStep := wf.NextMandatoryIndex(-1)
	if firstStep < 0 {
		return nil, apperrors.NewInvalidState("workflow has no mandatory step")
	}

	first := wf.Steps[firstStep]
	sub := &Submission{
		FormID:           f.ID,
		FormName:         f.Name,
		WorkflowID:       wf.ID,
		Steps:            wf.Steps,
		SubmitterID:      submitterID,
		Values:           values,
		Priority:         priority,
		Status:           StatusPending,
		CurrentStepIndex: firstStep,
		ApprovalHistory: []HistoryEntry{{
			StepID:    first.ID,
			StepName:  first.Name,
			StepIndex: firstStep,
			ActorID:   submitterID,
			Decision:  DecisionSubmitted,
			DecidedAt: time.Now(),
		}},
	}

	created, err := s.Repo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}

	// Usage counters are best-effort bookkeeping; a failed increment
	// must not undo an accepted submission.
	if err := s.FormRepo.IncrementUsage(ctx, f.ID); err != nil {
		s.Logger.Warn("form usage increment failed", zap.String("form_id", f.ID.Hex()), zap.Error(err))
	}
	if err := s.WorkflowRepo.IncrementUsage(ctx, wf.ID); err != nil {
		s.Logger.Warn("workflow usage increment failed", zap.String("workflow_id", wf.ID.Hex()), zap.Error(err))
	}

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionSubmit,
		ResourceType: common_models.AuditResourceFormSubmission,
		ResourceID:   created.ID.Hex(),
		NewData:      created,
		Description:  "submitted form " + f.Name,
	})

	s.notify(ctx, submitterID, notification.KindFormSubmitted,
		"Submission received",
		fmt.Sprintf("Your %s submission was received and routed for approval.", f.Name),
		&created.ID)
	s.notifyStep(ctx, created, &created.Steps[firstStep])

	return created, nil
}

// Act applies an approver's decision to the submission's current step.
// The underlying write is conditional on the status and cursor the
// decision was computed from, so two concurrent approvers cannot both
// win: the loser gets a ConflictError and nothing is recorded twice.
func (s *SubmissionServiceImpl) Act(ctx context.Context, actorID string, submissionID string, decision string, comment string) (*Submission, error) {
	sub, err := s.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if sub.IsTerminal() {
		return nil, apperrors.NewInvalidState("submission is already " + sub.Status)
	}
	if sub.Status == StatusFeedbackRequested {
		return nil, apperrors.NewInvalidState("submission is awaiting resubmission")
	}

	step, ok := sub.CurrentStep()
	if !ok {
		return nil, apperrors.NewInvalidState("submission cursor is out of range")
	}

	actorOID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, apperrors.NewValidation("invalid actor id", "actor")
	}
	resolved, err := s.Resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !stepAllows(resolved, step) {
		return nil, apperrors.NewForbidden("actor is not an approver for the current step")
	}

	entry := HistoryEntry{
		StepID:    step.ID,
		StepName:  step.Name,
		StepIndex: sub.CurrentStepIndex,
		ActorID:   actorOID,
		Decision:  decision,
		Comment:   comment,
		DecidedAt: time.Now(),
	}

	switch decision {
	case DecisionApprove:
		return s.approve(ctx, actorID, sub, entry)
	case DecisionReject:
		return s.reject(ctx, actorID, sub, entry)
	case DecisionRequestFeedback:
		if comment == "" {
			return nil, apperrors.NewValidation("a comment is required to request feedback", "comment")
		}
		return s.requestFeedback(ctx, actorID, sub, entry)
	default:
		return nil, apperrors.NewValidation("decision must be approve, reject or request_feedback", "decision")
	}
}

func (s *SubmissionServiceImpl) approve(ctx context.Context, actorID string, sub *Submission, entry HistoryEntry) (*Submission, error) {
	next := sub.NextMandatoryIndex()

	if next < 0 {
		if err := s.Repo.Transition(ctx, sub.ID, StatusPending, sub.CurrentStepIndex, StatusApproved, sub.CurrentStepIndex, entry); err != nil {
			return nil, err
		}
		sub.Status = StatusApproved
		sub.ApprovalHistory = append(sub.ApprovalHistory, entry)

		s.Audit.Record(ctx, audit.Entry{
			ActorID:      actorID,
			Action:       common_models.AuditActionApprove,
			ResourceType: common_models.AuditResourceFormSubmission,
			ResourceID:   sub.ID.Hex(),
			Description:  "approved submission at final step " + entry.StepName,
		})

		s.notify(ctx, sub.SubmitterID, notification.KindFormApproved,
			"Submission approved",
			fmt.Sprintf("Your %s submission was fully approved.", sub.FormName),
			&sub.ID)
		s.notifyPriorApprovers(ctx, sub, entry.ActorID, notification.KindSubmissionApproved,
			"Submission fully approved",
			fmt.Sprintf("The %s submission you approved has cleared all steps.", sub.FormName))
		return sub, nil
	}

	if err := s.Repo.Transition(ctx, sub.ID, StatusPending, sub.CurrentStepIndex, StatusPending, next, entry); err != nil {
		return nil, err
	}
	sub.CurrentStepIndex = next
	sub.ApprovalHistory = append(sub.ApprovalHistory, entry)

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionApprove,
		ResourceType: common_models.AuditResourceFormSubmission,
		ResourceID:   sub.ID.Hex(),
		Description:  "approved submission at step " + entry.StepName,
	})

	s.notifyStep(ctx, sub, &sub.Steps[next])
	return sub, nil
}

func (s *SubmissionServiceImpl) reject(ctx context.Context, actorID string, sub *Submission, entry HistoryEntry) (*Submission, error) {
	if err := s.Repo.Transition(ctx, sub.ID, StatusPending, sub.CurrentStepIndex, StatusRejected, sub.CurrentStepIndex, entry); err != nil {
		return nil, err
	}
	sub.Status = StatusRejected
	sub.ApprovalHistory = append(sub.ApprovalHistory, entry)

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionReject,
		ResourceType: common_models.AuditResourceFormSubmission,
		ResourceID:   sub.ID.Hex(),
		Description:  "rejected submission at step " + entry.StepName,
	})

	message := fmt.Sprintf("Your %s submission was rejected.", sub.FormName)
	if entry.Comment != "" {
		message = fmt.Sprintf("Your %s submission was rejected: %s", sub.FormName, entry.Comment)
	}
	s.notify(ctx, sub.SubmitterID, notification.KindFormRejected,
		"Submission rejected", message, &sub.ID)
	s.notifyPriorApprovers(ctx, sub, entry.ActorID, notification.KindSubmissionRejected,
		"Submission rejected downstream",
		fmt.Sprintf("The %s submission you approved was rejected at step %s.", sub.FormName, entry.StepName))
	return sub, nil
}

func (s *SubmissionServiceImpl) requestFeedback(ctx context.Context, actorID string, sub *Submission, entry HistoryEntry) (*Submission, error) {
	if err := s.Repo.Transition(ctx, sub.ID, StatusPending, sub.CurrentStepIndex, StatusFeedbackRequested, sub.CurrentStepIndex, entry); err != nil {
		return nil, err
	}
	sub.Status = StatusFeedbackRequested
	sub.ApprovalHistory = append(sub.ApprovalHistory, entry)

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionUpdate,
		ResourceType: common_models.AuditResourceFormSubmission,
		ResourceID:   sub.ID.Hex(),
		Description:  "requested feedback on submission at step " + entry.StepName,
	})

	s.notify(ctx, sub.SubmitterID, notification.KindFeedbackReceived,
		"Feedback requested",
		fmt.Sprintf("An approver requested changes to your %s submission: %s", sub.FormName, entry.Comment),
		&sub.ID)
	return sub, nil
}

// Resubmit lets the original submitter answer a feedback request with
// revised values. The submission returns to pending at the same step
// that asked for changes.
func (s *SubmissionServiceImpl) Resubmit(ctx context.Context, actorID string, submissionID string, values map[string]interface{}) (*Submission, error) {
	sub, err := s.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if sub.SubmitterID.Hex() != actorID {
		return nil, apperrors.NewForbidden("only the original submitter can resubmit")
	}
	if sub.Status != StatusFeedbackRequested {
		return nil, apperrors.NewInvalidState("submission is not awaiting resubmission")
	}

	// A nil payload keeps the submitted values as they are; validation
	// only reruns when the submitter actually sends a revision.
	if values == nil {
		values = sub.Values
	} else {
		f, err := s.Forms.GetForm(ctx, sub.FormID.Hex())
		if err != nil {
			return nil, err
		}
		if err := form.ValidateValues(ctx, f, values); err != nil {
			return nil, err
		}
	}

	step, ok := sub.CurrentStep()
	if !ok {
		return nil, apperrors.NewInvalidState("submission cursor is out of range")
	}

	entry := HistoryEntry{
		StepID:    step.ID,
		StepName:  step.Name,
		StepIndex: sub.CurrentStepIndex,
		ActorID:   sub.SubmitterID,
		Decision:  DecisionResubmit,
		DecidedAt: time.Now(),
	}
	if err := s.Repo.Resubmit(ctx, sub.ID, values, entry); err != nil {
		return nil, err
	}
	sub.Values = values
	sub.Status = StatusPending
	sub.ResubmitCount++
	sub.ApprovalHistory = append(sub.ApprovalHistory, entry)

	s.Audit.Record(ctx, audit.Entry{
		ActorID:      actorID,
		Action:       common_models.AuditActionSubmit,
		ResourceType: common_models.AuditResourceFormSubmission,
		ResourceID:   sub.ID.Hex(),
		Description:  "resubmitted " + sub.FormName + " after feedback",
	})

	s.notifyStep(ctx, sub, step)
	return sub, nil
}

// ListPendingFor returns the pending submissions whose current step the
// actor is allowed to decide. An unknown or inactive actor simply sees
// an empty queue.
func (s *SubmissionServiceImpl) ListPendingFor(ctx context.Context, actorID string) ([]Submission, error) {
	resolved, err := s.Resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}

	pending, err := s.Repo.ListByStatus(ctx, StatusPending)
	if err != nil {
		return nil, err
	}

	queue := make([]Submission, 0)
	for i := range pending {
		step, ok := pending[i].CurrentStep()
		if ok && stepAllows(resolved, step) {
			queue = append(queue, pending[i])
		}
	}
	return queue, nil
}

func (s *SubmissionServiceImpl) Get(ctx context.Context, actorID string, submissionID string) (*Submission, error) {
	sub, err := s.load(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.SubmitterID.Hex() == actorID {
		return sub, nil
	}

	resolved, err := s.Resolver.Resolve(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if resolved.Has("submission_read") {
		return sub, nil
	}
	for i := range sub.Steps {
		if stepAllows(resolved, &sub.Steps[i]) {
			return sub, nil
		}
	}
	return nil, apperrors.NewForbidden("actor cannot view this submission")
}

func (s *SubmissionServiceImpl) ListMine(ctx context.Context, actorID string, page, limit int64) ([]Submission, int64, error) {
	submitterID, err := primitive.ObjectIDFromHex(actorID)
	if err != nil {
		return nil, 0, apperrors.NewValidation("invalid actor id", "actor")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.Repo.ListBySubmitter(ctx, submitterID, page, limit)
}

func (s *SubmissionServiceImpl) NotifyStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.Repo.ListPendingOlderThan(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	for i := range stale {
		sub := &stale[i]
		step, ok := sub.CurrentStep()
		if !ok {
			continue
		}
		for _, recipient := range s.stepRecipients(ctx, step) {
			s.notify(ctx, recipient, notification.KindSubmissionPending,
				"Submission awaiting your decision",
				fmt.Sprintf("A %s submission has been waiting at step %s since %s.", sub.FormName, step.Name, sub.UpdatedAt.Format(time.RFC822)),
				&sub.ID)
		}
	}
	return len(stale), nil
}

func (s *SubmissionServiceImpl) load(ctx context.Context, id string) (*Submission, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, apperrors.NewValidation("invalid submission id", "id")
	}
	sub, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, apperrors.NewNotFound("submission", id)
	}
	return sub, nil
}

// stepAllows is the authorization policy for acting on a step: the
// actor's role must equal the step's required role exactly, plus the
// department and named-approver narrowing when the step declares them.
// Role level is never a substitute for the required role.
func stepAllows(actor *permission.ResolvedActor, step *workflow.Step) bool {
	if actor == nil || actor.RoleID.IsZero() {
		return false
	}
	if actor.RoleID != step.RequiredRole {
		return false
	}
	if step.Department != nil {
		if actor.DepartmentID == nil || *actor.DepartmentID != *step.Department {
			return false
		}
	}
	if step.ApproverID != nil && actor.UserID != *step.ApproverID {
		return false
	}
	return true
}

// stepRecipients resolves who should hear about a step needing a
// decision: the named approver when the step pins one, otherwise every
// active holder of the required role within the step's department.
func (s *SubmissionServiceImpl) stepRecipients(ctx context.Context, step *workflow.Step) []primitive.ObjectID {
	if step.ApproverID != nil {
		return []primitive.ObjectID{*step.ApproverID}
	}

	users, err := s.UserRepo.FindByRoleAndDepartment(ctx, step.RequiredRole, step.Department)
	if err != nil {
		s.Logger.Warn("approver lookup for notification failed",
			zap.String("step_id", step.ID), zap.Error(err))
		return nil
	}

	recipients := make([]primitive.ObjectID, 0, len(users))
	for i := range users {
		recipients = append(recipients, users[i].ID)
	}
	return recipients
}

func (s *SubmissionServiceImpl) notifyStep(ctx context.Context, sub *Submission, step *workflow.Step) {
	kind := notification.KindApprovalRequired
	if step.ApproverID != nil {
		kind = notification.KindNewAssignment
	}
	for _, recipient := range s.stepRecipients(ctx, step) {
		s.notify(ctx, recipient, kind,
			"Approval required",
			fmt.Sprintf("A %s submission is waiting for your decision at step %s.", sub.FormName, step.Name),
			&sub.ID)
	}
}

// notifyPriorApprovers informs everyone who approved an earlier step
// about a terminal outcome. The deciding actor is excluded.
func (s *SubmissionServiceImpl) notifyPriorApprovers(ctx context.Context, sub *Submission, deciderID primitive.ObjectID, kind notification.Kind, title, message string) {
	seen := map[primitive.ObjectID]bool{deciderID: true}
	for _, entry := range sub.ApprovalHistory {
		if entry.Decision != DecisionApprove || seen[entry.ActorID] {
			continue
		}
		seen[entry.ActorID] = true
		s.notify(ctx, entry.ActorID, kind, title, message, &sub.ID)
	}
}

// notify is fire-and-forget: delivery failure is logged, never
// surfaced, so a notification outage cannot fail a decision.
func (s *SubmissionServiceImpl) notify(ctx context.Context, recipient primitive.ObjectID, kind notification.Kind, title, message string, submissionID *primitive.ObjectID) {
	if err := s.Notifier.Notify(ctx, recipient, kind, title, message, submissionID); err != nil {
		s.Logger.Warn("notification dispatch failed",
			zap.String("recipient", recipient.Hex()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}
