package department

import (
	"context"
	"time"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type DepartmentRepository interface {
	Create(ctx context.Context, department *Department) error
	FindByID(ctx context.Context, id string) (*Department, error)
	FindByName(ctx context.Context, name string) (*Department, error)
	List(ctx context.Context) ([]Department, error)
	Update(ctx context.Context, id string, updates bson.M) error
	Delete(ctx context.Context, id string) error
}

type DepartmentRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewDepartmentRepository(mongodb *database.MongodbDB) DepartmentRepository {
	return &DepartmentRepositoryImpl{
		Collection: mongodb.DB.Collection("departments"),
	}
}

func (r *DepartmentRepositoryImpl) Create(ctx context.Context, department *Department) error {
	_, err := r.Collection.InsertOne(ctx, department)
	return err
}

func (r *DepartmentRepositoryImpl) FindByID(ctx context.Context, id string) (*Department, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var department Department
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&department)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &department, nil
}

func (r *DepartmentRepositoryImpl) FindByName(ctx context.Context, name string) (*Department, error) {
	var department Department
	err := r.Collection.FindOne(ctx, bson.M{"name": name}).Decode(&department)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &department, nil
}

func (r *DepartmentRepositoryImpl) List(ctx context.Context) ([]Department, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var departments []Department
	if err = cursor.All(ctx, &departments); err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *DepartmentRepositoryImpl) Update(ctx context.Context, id string, updates bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	updates["updated_at"] = time.Now()
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *DepartmentRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}
	_, err = r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}
