package workflow

import (
	"context"
	"time"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type WorkflowRepository interface {
	Create(ctx context.Context, wf *Workflow) (*Workflow, error)
	FindByID(ctx context.Context, id string) (*Workflow, error)
	FindByName(ctx context.Context, name string) (*Workflow, error)
	List(ctx context.Context, status string) ([]Workflow, error)
	Update(ctx context.Context, wf *Workflow) error
	SetStatus(ctx context.Context, id string, status string) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id string) error
}

type workflowRepository struct {
	collection *mongo.Collection
}

func NewWorkflowRepository(db *database.MongodbDB) WorkflowRepository {
	return &workflowRepository{
		collection: db.DB.Collection("workflows"),
	}
}

func (r *workflowRepository) Create(ctx context.Context, wf *Workflow) (*Workflow, error) {
	wf.ID = primitive.NewObjectID()
	wf.CreatedAt = time.Now()
	wf.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, wf)
	if err != nil {
		return nil, err
	}
	return wf, nil
}

func (r *workflowRepository) FindByID(ctx context.Context, id string) (*Workflow, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var wf Workflow
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&wf)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &wf, nil
}

func (r *workflowRepository) FindByName(ctx context.Context, name string) (*Workflow, error) {
	var wf Workflow
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&wf)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &wf, nil
}

func (r *workflowRepository) List(ctx context.Context, status string) ([]Workflow, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var workflows []Workflow
	if err := cursor.All(ctx, &workflows); err != nil {
		return nil, err
	}
	return workflows, nil
}

func (r *workflowRepository) Update(ctx context.Context, wf *Workflow) error {
	wf.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"name":       wf.Name,
		"steps":      wf.Steps,
		"updated_at": wf.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": wf.ID}, update)
	return err
}

func (r *workflowRepository) SetStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	return err
}

func (r *workflowRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"usage_count": 1}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *workflowRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
