package form

import (
	"context"
	"time"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FormRepository interface {
	Create(ctx context.Context, f *Form) (*Form, error)
	FindByID(ctx context.Context, id string) (*Form, error)
	FindByName(ctx context.Context, name string) (*Form, error)
	List(ctx context.Context, filter map[string]interface{}) ([]Form, error)
	Update(ctx context.Context, f *Form) error
	SetStatus(ctx context.Context, id string, status string) error
	IncrementUsage(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id string) error
}

type formRepository struct {
	collection *mongo.Collection
}

func NewFormRepository(db *database.MongodbDB) FormRepository {
	return &formRepository{
		collection: db.DB.Collection("forms"),
	}
}

func (r *formRepository) Create(ctx context.Context, f *Form) (*Form, error) {
	f.ID = primitive.NewObjectID()
	f.CreatedAt = time.Now()
	f.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, f)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *formRepository) FindByID(ctx context.Context, id string) (*Form, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var f Form
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *formRepository) FindByName(ctx context.Context, name string) (*Form, error) {
	var f Form
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&f)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *formRepository) List(ctx context.Context, filter map[string]interface{}) ([]Form, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var forms []Form
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, err
	}
	return forms, nil
}

func (r *formRepository) Update(ctx context.Context, f *Form) error {
	f.UpdatedAt = time.Now()

	update := bson.M{"$set": bson.M{
		"name":        f.Name,
		"description": f.Description,
		"category":    f.Category,
		"fields":      f.Fields,
		"workflow_id": f.WorkflowID,
		"updated_at":  f.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": f.ID}, update)
	return err
}

func (r *formRepository) SetStatus(ctx context.Context, id string, status string) error {
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

func (r *formRepository) IncrementUsage(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"usage_count": 1}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *formRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}
