package submission

import (
	"time"

	"go-formflow/internal/features/workflow"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending           = "pending"
	StatusApproved          = "approved"
	StatusRejected          = "rejected"
	StatusFeedbackRequested = "feedback_requested"
)

const (
	DecisionSubmitted       = "submitted"
	DecisionApprove         = "approve"
	DecisionReject          = "reject"
	DecisionRequestFeedback = "request_feedback"
	DecisionResubmit        = "resubmit"
)

// Per-step statuses in the workflow instance projection.
const (
	StepPending  = "pending"
	StepApproved = "approved"
	StepRejected = "rejected"
	StepFeedback = "feedback"
	StepSkipped  = "skipped"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// HistoryEntry is one decision in a submission's append-only trail.
// Entries are only ever pushed, never edited.
type HistoryEntry struct {
	StepID    string             `bson:"step_id" json:"step_id"`
	StepName  string             `bson:"step_name" json:"step_name"`
	StepIndex int                `bson:"step_index" json:"step_index"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Decision  string             `bson:"decision" json:"decision"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty"`
	DecidedAt time.Time          `bson:"decided_at" json:"decided_at"`
}

// Submission is a user's answer set moving through an approval chain.
// Steps holds a snapshot of the workflow definition taken at creation
// time, so routing never depends on later definition edits.
// CurrentStepIndex is a cursor into that snapshot and only ever moves
// forward; it is meaningless once Status is terminal.
type Submission struct {
	ID               primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	FormID           primitive.ObjectID     `bson:"form_id" json:"form_id"`
	FormName         string                 `bson:"form_name" json:"form_name"`
	WorkflowID       primitive.ObjectID     `bson:"workflow_id" json:"workflow_id"`
	Steps            []workflow.Step        `bson:"steps" json:"steps"`
	SubmitterID      primitive.ObjectID     `bson:"submitter_id" json:"submitter_id"`
	Values           map[string]interface{} `bson:"values" json:"values"`
	Priority         string                 `bson:"priority" json:"priority"`
	Status           string                 `bson:"status" json:"status"`
	CurrentStepIndex int                    `bson:"current_step_index" json:"current_step_index"`
	ApprovalHistory  []HistoryEntry         `bson:"approval_history" json:"approval_history"`
	ResubmitCount    int                    `bson:"resubmit_count" json:"resubmit_count"`
	CreatedAt        time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time              `bson:"updated_at" json:"updated_at"`
}

// IsTerminal reports whether the submission reached a sink state.
// Terminal submissions accept no further decisions.
func (s *Submission) IsTerminal() bool {
	return s.Status == StatusApproved || s.Status == StatusRejected
}

// CurrentStep returns the step the cursor points at.
func (s *Submission) CurrentStep() (*workflow.Step, bool) {
	if s.CurrentStepIndex < 0 || s.CurrentStepIndex >= len(s.Steps) {
		return nil, false
	}
	return &s.Steps[s.CurrentStepIndex], true
}

// NextMandatoryIndex returns the cursor position of the next mandatory
// step after the current one, or -1 when the current step is the last
// gate.
func (s *Submission) NextMandatoryIndex() int {
	for i := s.CurrentStepIndex + 1; i < len(s.Steps); i++ {
		if s.Steps[i].Mandatory {
			return i
		}
	}
	return -1
}

// StepState is one step's entry in the workflow instance projection:
// the step definition from the snapshot plus what happened to it.
type StepState struct {
	StepID    string              `json:"step_id"`
	Name      string              `json:"name"`
	Order     int                 `json:"order"`
	Mandatory bool                `json:"mandatory"`
	Status    string              `json:"status"`
	ActorID   *primitive.ObjectID `json:"actor_id,omitempty"`
	Comment   string              `json:"comment,omitempty"`
	DecidedAt *time.Time          `json:"decided_at,omitempty"`
}

// WorkflowInstance projects the per-step progress of the submission
// from the step snapshot and the approval history. It is derived on
// read, so it can never drift from the history. A step the cursor has
// passed or a terminal submission has left undecided shows as skipped
// when optional; a step whose last entry is a resubmission is pending
// again.
func (s *Submission) WorkflowInstance() []StepState {
	states := make([]StepState, len(s.Steps))
	for i := range s.Steps {
		step := &s.Steps[i]
		states[i] = StepState{
			StepID:    step.ID,
			Name:      step.Name,
			Order:     step.Order,
			Mandatory: step.Mandatory,
			Status:    StepPending,
		}

		var last *HistoryEntry
		for j := range s.ApprovalHistory {
			entry := &s.ApprovalHistory[j]
			if entry.StepID != step.ID || entry.Decision == DecisionSubmitted {
				continue
			}
			last = entry
		}

		if last == nil {
			if !step.Mandatory && (s.IsTerminal() || i < s.CurrentStepIndex) {
				states[i].Status = StepSkipped
			}
			continue
		}

		switch last.Decision {
		case DecisionApprove:
			states[i].Status = StepApproved
		case DecisionReject:
			states[i].Status = StepRejected
		case DecisionRequestFeedback:
			states[i].Status = StepFeedback
		case DecisionResubmit:
			states[i].Status = StepPending
			continue
		}
		actor := last.ActorID
		decidedAt := last.DecidedAt
		states[i].ActorID = &actor
		states[i].Comment = last.Comment
		states[i].DecidedAt = &decidedAt
	}
	return states
}
