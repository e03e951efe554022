package audit

import (
	"context"
	"time"

	common_models "go-formflow/internal/common/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

// Entry is what mutating services hand the recorder.
type Entry struct {
	ActorID      string
	Action       common_models.AuditAction
	ResourceType common_models.AuditResource
	ResourceID   string
	OldData      interface{}
	NewData      interface{}
	Description  string
}

type AuditService interface {
	// Record persists an audit entry. It never reports failure to the
	// caller: audit-trail unavailability must not block the primary
	// operation, so errors are logged and swallowed here.
	Record(ctx context.Context, entry Entry)
	ListRecords(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditRecord, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
	Logger   *zap.Logger
}

func NewAuditService(repo AuditRepository, userRepo UserFinder, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
		Logger:   logger,
	}
}

func (s *AuditServiceImpl) Record(ctx context.Context, entry Entry) {
	record := common_models.AuditRecord{
		ID:           primitive.NewObjectID(),
		ActorID:      entry.ActorID,
		Action:       entry.Action,
		ResourceType: entry.ResourceType,
		ResourceID:   entry.ResourceID,
		OldData:      entry.OldData,
		NewData:      entry.NewData,
		Description:  entry.Description,
		Timestamp:    time.Now(),
	}

	if origin, ok := ctx.Value(common_models.OriginKey).(common_models.Origin); ok {
		record.Origin = &origin
	}

	if err := s.Repo.Create(ctx, record); err != nil {
		s.Logger.Error("audit record write failed",
			zap.String("action", string(entry.Action)),
			zap.String("resource_type", string(entry.ResourceType)),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err))
	}
}

func (s *AuditServiceImpl) ListRecords(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditRecord, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	records, err := s.Repo.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect Actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, record := range records {
		if record.ActorID != "" && !uniqueIDs[record.ActorID] {
			uniqueIDs[record.ActorID] = true
			actorIDs = append(actorIDs, record.ActorID)
		}
	}

	// Batch Fetch Actor Names
	nameByID := map[string]string{}
	if len(actorIDs) > 0 {
		if names, err := s.UserRepo.FindByIDs(ctx, actorIDs); err == nil {
			nameByID = names
		}
	}

	for i, record := range records {
		if record.ActorID == "" {
			records[i].ActorName = "System"
		} else if name, ok := nameByID[record.ActorID]; ok {
			records[i].ActorName = name
		} else {
			records[i].ActorName = "Unknown User"
		}
	}

	return records, nil
}
