package user

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Username     string              `bson:"username" json:"username"`
	Password     string              `bson:"password" json:"-"`
	Email        string              `bson:"email" json:"email"`
	FirstName    string              `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName     string              `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Status       string              `bson:"status" json:"status"` // active, inactive, suspended
	RoleID       primitive.ObjectID  `bson:"role_id" json:"role_id"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"department_id,omitempty"`
	LastLogin    *time.Time          `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}

func (u *User) DisplayName() string {
	if u.FirstName != "" || u.LastName != "" {
		if u.FirstName == "" {
			return u.LastName
		}
		if u.LastName == "" {
			return u.FirstName
		}
		return u.FirstName + " " + u.LastName
	}
	return u.Username
}
