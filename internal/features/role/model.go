package role

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Role binds a named authority level to a set of permissions. Level runs
// 1-100, higher means more authority; it orders roles for display and
// reporting but never substitutes for an exact role match on an
// approval step.
type Role struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name          string               `bson:"name" json:"name"`
	Description   string               `bson:"description,omitempty" json:"description,omitempty"`
	Level         int                  `bson:"level" json:"level"`
	PermissionIDs []primitive.ObjectID `bson:"permission_ids" json:"permission_ids"`
	Status        string               `bson:"status" json:"status"`
	IsSystem      bool                 `bson:"is_system" json:"is_system"` // prevent deletion of system roles
	CreatedAt     time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time            `bson:"updated_at" json:"updated_at"`
}
