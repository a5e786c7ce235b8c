package ports

import (
	"context"

	"github.com/sm8ta/mongo_user_service/internal/core/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	ListUsers(ctx context.Context, filter domain.UserFilter) ([]domain.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, input domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	AverageAge(ctx context.Context) (float64, error)
}

type UserService interface {
	CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListAdmins(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, id string, input domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
	AverageAge(ctx context.Context) (float64, error)
}
