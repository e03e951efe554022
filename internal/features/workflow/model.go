package workflow

import (
	"sort"
	"time"

	"go-formflow/internal/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Step is one position in the approval chain. A submission at this step
// can only be acted on by a holder of RequiredRole, further narrowed to
// Department and ApproverID when set. Non-mandatory steps are
// informational: they never block progression.
type Step struct {
	ID           string              `bson:"id" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Order        int                 `bson:"order" json:"order"`
	RequiredRole primitive.ObjectID  `bson:"required_role" json:"required_role"`
	Department   *primitive.ObjectID `bson:"department,omitempty" json:"department,omitempty"`
	ApproverID   *primitive.ObjectID `bson:"approver_id,omitempty" json:"approver_id,omitempty"`
	Mandatory    bool                `bson:"mandatory" json:"mandatory"`
}

// Workflow is an ordered approval chain definition. Steps are immutable
// once any submission references the definition in a non-terminal
// state; evolution is append-only via new definitions.
type Workflow struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Steps      []Step             `bson:"steps" json:"steps"`
	Status     string             `bson:"status" json:"status"`
	UsageCount int64              `bson:"usage_count" json:"usage_count"`
	CreatedBy  string             `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// ValidateSteps checks the step sequence invariants: at least one step,
// at least one mandatory step, unique monotonic order values. Steps are
// sorted by order in place.
func (w *Workflow) ValidateSteps() error {
	if len(w.Steps) == 0 {
		return apperrors.NewValidation("workflow requires at least one step", "steps")
	}

	sort.SliceStable(w.Steps, func(i, j int) bool {
		return w.Steps[i].Order < w.Steps[j].Order
	})

	seen := make(map[int]bool, len(w.Steps))
	hasMandatory := false
	for i := range w.Steps {
		step := &w.Steps[i]
		if seen[step.Order] {
			return apperrors.NewValidation("step order values must be unique", "steps")
		}
		seen[step.Order] = true
		if step.RequiredRole.IsZero() {
			return apperrors.NewValidation("every step requires an approving role", "steps")
		}
		if step.Mandatory {
			hasMandatory = true
		}
	}
	if !hasMandatory {
		return apperrors.NewValidation("workflow requires at least one mandatory step", "steps")
	}
	return nil
}

// StepAt returns the step at a cursor position.
func (w *Workflow) StepAt(index int) (*Step, bool) {
	if index < 0 || index >= len(w.Steps) {
		return nil, false
	}
	return &w.Steps[index], true
}

// NextMandatoryIndex returns the position of the first mandatory step
// after index, or -1 when none remain. Optional steps in between are
// skipped, never blocking progression.
func (w *Workflow) NextMandatoryIndex(index int) int {
	for i := index + 1; i < len(w.Steps); i++ {
		if w.Steps[i].Mandatory {
			return i
		}
	}
	return -1
}

// IsLastMandatory reports whether no mandatory step remains after index.
func (w *Workflow) IsLastMandatory(index int) bool {
	return w.NextMandatoryIndex(index) == -1
}
