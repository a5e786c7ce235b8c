package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sm8ta/mongo_user_service/internal/core/domain"
	"github.com/sm8ta/mongo_user_service/internal/core/ports"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const emailIndexName = "email_1"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(coll *mongo.Collection) *MongoUserRepository {
	return &MongoUserRepository{
		coll: coll,
	}
}

// EnsureIndexes creates the unique email index. Safe to call on every start.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName(emailIndexName).SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

// stamp is the single clock for createdAt and updatedAt. BSON datetimes keep milliseconds only.
func stamp() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := stamp()

	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	user := &domain.User{}
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(user); err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (r *MongoUserRepository) ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	query := bson.D{}
	if filter.Role != nil {
		query = append(query, bson.E{Key: "role", Value: *filter.Role})
	}

	cur, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)

	var users []domain.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, classify(err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// UpdateUser sets the supplied fields, stamps updatedAt and returns the new document.
func (r *MongoUserRepository) UpdateUser(ctx context.Context, id primitive.ObjectID, input domain.UserInput) (*domain.User, error) {
	set := bson.D{}
	if input.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *input.Name})
	}
	if input.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *input.Email})
	}
	if input.Age != nil {
		set = append(set, bson.E{Key: "age", Value: *input.Age})
	}
	if input.Role != nil {
		set = append(set, bson.E{Key: "role", Value: *input.Role})
	}

	set = append(set, bson.E{Key: "updatedAt", Value: stamp()})
	update := bson.D{{Key: "$set", Value: set}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	user := &domain.User{}
	err := r.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(user)
	if err != nil {
		return nil, classify(err)
	}
	return user, nil
}

func (r *MongoUserRepository) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return classify(err)
	}

	if result.DeletedCount == 0 {
		return domain.NewNotFoundError(fmt.Errorf("user %s not found", id.Hex()))
	}

	return nil
}

// AverageAge groups every document into one bucket and averages $age. An empty collection yields 0.
func (r *MongoUserRepository) AverageAge(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgAge", Value: bson.D{{Key: "$avg", Value: "$age"}}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, classify(err)
	}
	defer cur.Close(ctx)

	var results []struct {
		AvgAge *float64 `bson:"avgAge"`
	}
	if err := cur.All(ctx, &results); err != nil {
		return 0, classify(err)
	}

	if len(results) == 0 || results[0].AvgAge == nil {
		return 0, nil
	}
	return *results[0].AvgAge, nil
}

// classify maps driver errors onto domain error kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.NewNotFoundError(err)
	case mongo.IsDuplicateKeyError(err):
		return domain.NewDuplicateEmailError(err)
	default:
		return domain.NewInternalError(err)
	}
}

var _ ports.UserRepository = (*MongoUserRepository)(nil)
