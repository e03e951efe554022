package archive

import (
	"context"

	"go-formflow/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StateRepository interface {
	Get(ctx context.Context, target string) (*State, error)
	Save(ctx context.Context, state *State) error
}

type stateRepository struct {
	collection *mongo.Collection
}

func NewStateRepository(db *database.MongodbDB) StateRepository {
	return &stateRepository{
		collection: db.DB.Collection("archive_state"),
	}
}

func (r *stateRepository) Get(ctx context.Context, target string) (*State, error) {
	var state State
	err := r.collection.FindOne(ctx, bson.M{"target": target}).Decode(&state)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return &State{Target: target}, nil
		}
		return nil, err
	}
	return &state, nil
}

func (r *stateRepository) Save(ctx context.Context, state *State) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"target": state.Target}, state, opts)
	return err
}
