package notification

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind is a closed enumeration: each value maps 1:1 to a workflow or
// administrative transition that addresses a user.
type Kind string

const (
	KindFormSubmitted             Kind = "form_submitted"
	KindApprovalRequired          Kind = "approval_required"
	KindFormApproved              Kind = "form_approved"
	KindFormRejected              Kind = "form_rejected"
	KindFeedbackReceived          Kind = "feedback_received"
	KindSubmissionPending         Kind = "submission_pending"
	KindSubmissionApproved        Kind = "submission_approved"
	KindSubmissionRejected        Kind = "submission_rejected"
	KindNewAssignment             Kind = "new_assignment"
	KindUserAssignedRole          Kind = "user_assigned_role"
	KindDepartmentAssignedManager Kind = "department_assigned_manager"
	KindSystemAlert               Kind = "system_alert"
)

type Notification struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Kind         Kind                `bson:"kind" json:"kind"`
	Title        string              `bson:"title" json:"title"`
	Message      string              `bson:"message" json:"message"`
	SubmissionID *primitive.ObjectID `bson:"submission_id,omitempty" json:"submission_id,omitempty"`
	IsRead       bool                `bson:"is_read" json:"is_read"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	ReadAt       *time.Time          `bson:"read_at,omitempty" json:"read_at,omitempty"`
}
