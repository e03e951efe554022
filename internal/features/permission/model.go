package permission

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is the closed verb set permissions are built from.
type Action string

const (
	ActionCreate  Action = "create"
	ActionRead    Action = "read"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionManage  Action = "manage"
	ActionView    Action = "view"
	ActionSubmit  Action = "submit"
)

// Permission is a machine-keyed capability, e.g. "form_template_create".
type Permission struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"` // unique machine key, resource_action
	Category  string             `bson:"category" json:"category"`
	Resource  string             `bson:"resource" json:"resource"`
	Action    Action             `bson:"action" json:"action"`
	IsSystem  bool               `bson:"is_system" json:"is_system"` // system permissions cannot be deleted
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ResolvedActor is the effective authorization view of one user,
// recomputed on every privileged call.
type ResolvedActor struct {
	UserID       primitive.ObjectID
	RoleID       primitive.ObjectID
	RoleName     string
	Level        int
	DepartmentID *primitive.ObjectID
	Permissions  map[string]bool
}

func (a *ResolvedActor) Has(name string) bool {
	return a != nil && a.Permissions[name]
}
