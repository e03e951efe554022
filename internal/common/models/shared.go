package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContextKey string

const (
	// OriginKey carries request origin metadata (caller IP, user agent)
	// from the transport layer down to the audit recorder.
	OriginKey ContextKey = "origin"
)

// Origin captures where a mutation came from.
type Origin struct {
	IPAddress string `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
}

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionApprove AuditAction = "approve"
	AuditActionReject  AuditAction = "reject"
	AuditActionSubmit  AuditAction = "submit"
	AuditActionLogin   AuditAction = "login"
	AuditActionLogout  AuditAction = "logout"
)

type AuditResource string

const (
	AuditResourceFormTemplate   AuditResource = "FormTemplate"
	AuditResourceFormSubmission AuditResource = "FormSubmission"
	AuditResourceUser           AuditResource = "User"
	AuditResourceWorkflow       AuditResource = "Workflow"
	AuditResourceDepartment     AuditResource = "Department"
	AuditResourceSetting        AuditResource = "Setting"
	AuditResourceRole           AuditResource = "Role"
	AuditResourcePermission     AuditResource = "Permission"
	AuditResourceSystem         AuditResource = "System"
)

// AuditRecord is append-only: written once per mutation, never updated
// or deleted afterwards.
type AuditRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ActorID      string             `bson:"actor_id,omitempty" json:"actor_id,omitempty"` // empty for system actions
	ActorName    string             `bson:"-" json:"actor_name,omitempty"`                // populated on read
	Action       AuditAction        `bson:"action" json:"action"`
	ResourceType AuditResource      `bson:"resource_type" json:"resource_type"`
	ResourceID   string             `bson:"resource_id,omitempty" json:"resource_id,omitempty"`
	OldData      interface{}        `bson:"old_data,omitempty" json:"old_data,omitempty"`
	NewData      interface{}        `bson:"new_data,omitempty" json:"new_data,omitempty"`
	Description  string             `bson:"description" json:"description"`
	Origin       *Origin            `bson:"origin,omitempty" json:"origin,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
}

// Log is the row shape the async zap DB writer persists.
type Log struct {
	Message      string    `bson:"message"`
	IpAddress    string    `bson:"ip_address"`
	Caller       string    `bson:"caller"`
	LogLevelId   int       `bson:"log_level_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}
