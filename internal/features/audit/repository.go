package audit

import (
	"context"
	"time"

	common_models "go-formflow/internal/common/models"
	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AuditRepository interface {
	Create(ctx context.Context, record common_models.AuditRecord) error
	List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditRecord, error)
	ListAfter(ctx context.Context, since time.Time, limit int64) ([]common_models.AuditRecord, error)
}

type AuditRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewAuditRepository(mongodb *database.MongodbDB) AuditRepository {
	return &AuditRepositoryImpl{
		Collection: mongodb.DB.Collection("audit_records"),
	}
}

func (r *AuditRepositoryImpl) Create(ctx context.Context, record common_models.AuditRecord) error {
	_, err := r.Collection.InsertOne(ctx, record)
	return err
}

func (r *AuditRepositoryImpl) List(ctx context.Context, filters map[string]interface{}, limit, offset int64) ([]common_models.AuditRecord, error) {
	opts := options.Find().SetLimit(limit).SetSkip(offset).SetSort(bson.M{"timestamp": -1})

	query := bson.M{}
	for k, v := range filters {
		if v == nil {
			continue
		}
		if str, ok := v.(string); ok && str == "" {
			continue
		}
		query[k] = v
	}

	cursor, err := r.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []common_models.AuditRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListAfter returns records strictly newer than since, oldest first.
// Used by the warehouse sync to page forward from its high-water mark.
func (r *AuditRepositoryImpl) ListAfter(ctx context.Context, since time.Time, limit int64) ([]common_models.AuditRecord, error) {
	opts := options.Find().SetLimit(limit).SetSort(bson.M{"timestamp": 1})

	cursor, err := r.Collection.Find(ctx, bson.M{"timestamp": bson.M{"$gt": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []common_models.AuditRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
