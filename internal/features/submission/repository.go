package submission

import (
	"context"
	"time"

	"go-formflow/internal/apperrors"
	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmissionRepository interface {
	Create(ctx context.Context, sub *Submission) (*Submission, error)
	FindByID(ctx context.Context, id string) (*Submission, error)
	ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID, page, limit int64) ([]Submission, int64, error)
	ListByStatus(ctx context.Context, status string) ([]Submission, error)
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Submission, error)
	List(ctx context.Context, filter map[string]interface{}) ([]Submission, error)
	// Transition applies a decision with an atomic conditional update:
	// the write only lands if the submission still has the expected
	// status and cursor position. A lost race surfaces as ConflictError
	// and nothing is written.
	Transition(ctx context.Context, id primitive.ObjectID, expectedStatus string, expectedStep int, newStatus string, newStep int, entry HistoryEntry) error
	// Resubmit replaces values and returns the submission to pending,
	// guarded on the feedback_requested status the same way.
	Resubmit(ctx context.Context, id primitive.ObjectID, values map[string]interface{}, entry HistoryEntry) error
	HasOpenForWorkflow(ctx context.Context, workflowID string) (bool, error)
}

type submissionRepository struct {
	collection *mongo.Collection
}

func NewSubmissionRepository(db *database.MongodbDB) SubmissionRepository {
	return &submissionRepository{
		collection: db.DB.Collection("submissions"),
	}
}

func (r *submissionRepository) Create(ctx context.Context, sub *Submission) (*Submission, error) {
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = time.Now()
	sub.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, sub)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepository) FindByID(ctx context.Context, id string) (*Submission, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var sub Submission
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepository) ListBySubmitter(ctx context.Context, submitterID primitive.ObjectID, page, limit int64) ([]Submission, int64, error) {
	filter := bson.M{"submitter_id": submitterID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var subs []Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

func (r *submissionRepository) ListByStatus(ctx context.Context, status string) ([]Submission, error) {
	return r.find(ctx, bson.M{"status": status})
}

func (r *submissionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]Submission, error) {
	return r.find(ctx, bson.M{
		"status":     StatusPending,
		"updated_at": bson.M{"$lt": cutoff},
	})
}

func (r *submissionRepository) List(ctx context.Context, filter map[string]interface{}) ([]Submission, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	return r.find(ctx, query)
}

func (r *submissionRepository) find(ctx context.Context, filter bson.M) ([]Submission, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []Submission
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *submissionRepository) Transition(ctx context.Context, id primitive.ObjectID, expectedStatus string, expectedStep int, newStatus string, newStep int, entry HistoryEntry) error {
	filter := bson.M{
		"_id":                id,
		"status":             expectedStatus,
		"current_step_index": expectedStep,
	}
	update := bson.M{
		"$set": bson.M{
			"status":             newStatus,
			"current_step_index": newStep,
			"updated_at":         time.Now(),
		},
		"$push": bson.M{"approval_history": entry},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NewConflict("submission was decided concurrently, reload and retry")
	}
	return nil
}

func (r *submissionRepository) Resubmit(ctx context.Context, id primitive.ObjectID, values map[string]interface{}, entry HistoryEntry) error {
	filter := bson.M{
		"_id":    id,
		"status": StatusFeedbackRequested,
	}
	update := bson.M{
		"$set": bson.M{
			"values":     values,
			"status":     StatusPending,
			"updated_at": time.Now(),
		},
		"$inc":  bson.M{"resubmit_count": 1},
		"$push": bson.M{"approval_history": entry},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NewConflict("submission state changed concurrently, reload and retry")
	}
	return nil
}

func (r *submissionRepository) HasOpenForWorkflow(ctx context.Context, workflowID string) (bool, error) {
	objID, err := primitive.ObjectIDFromHex(workflowID)
	if err != nil {
		return false, err
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"workflow_id": objID,
		"status":      bson.M{"$in": []string{StatusPending, StatusFeedbackRequested}},
	})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
