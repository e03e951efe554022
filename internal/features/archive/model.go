package archive

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// State is the archive high-water mark: everything stamped at or
// before LastSyncedAt already lives in the warehouse. A single
// document per target.
type State struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Target       string             `bson:"target" json:"target"`
	LastSyncedAt time.Time          `bson:"last_synced_at" json:"last_synced_at"`
	LastRunAt    time.Time          `bson:"last_run_at" json:"last_run_at"`
	LastCount    int                `bson:"last_count" json:"last_count"`
	LastError    string             `bson:"last_error,omitempty" json:"last_error,omitempty"`
}

const targetAuditWarehouse = "audit_warehouse"
