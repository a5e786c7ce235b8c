package services

import (
	"context"

	"github.com/sm8ta/mongo_user_service/internal/core/domain"
	"github.com/sm8ta/mongo_user_service/internal/core/ports"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService struct {
	repo      ports.UserRepository
	logger    ports.LoggerPort
	validator *UserValidator
}

func NewUserService(
	repo ports.UserRepository,
	logger ports.LoggerPort,
	validator *UserValidator,
) *UserService {
	return &UserService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (us *UserService) CreateUser(ctx context.Context, input domain.UserInput) (*domain.User, error) {
	user, err := us.validator.ValidateCreate(input)
	if err != nil {
		us.logger.Info("Validation failed", map[string]interface{}{
			"errors": domain.ValidationMessages(err),
			"method": "CreateUser",
		})
		return nil, err
	}

	created, err := us.repo.CreateUser(ctx, user)
	if err != nil {
		us.logFailure(ctx, "Failed to create user in database", err, map[string]interface{}{
			"email":  user.Email,
			"method": "CreateUser",
		})
		return nil, err
	}

	us.logger.InfoContext(ctx, "User created", map[string]interface{}{
		"id": created.ID.Hex(),
	})
	return created, nil
}

func (us *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	userID, err := us.parseID(id, "GetUser")
	if err != nil {
		return nil, err
	}

	user, err := us.repo.GetUserByID(ctx, userID)
	if err != nil {
		us.logFailure(ctx, "Failed to get user", err, map[string]interface{}{
			"id": id,
		})
		return nil, err
	}

	return user, nil
}

func (us *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := us.repo.ListUsers(ctx, domain.UserFilter{})
	if err != nil {
		us.logFailure(ctx, "Failed to list users", err, nil)
		return nil, err
	}
	return users, nil
}

func (us *UserService) ListAdmins(ctx context.Context) ([]domain.User, error) {
	role := domain.Admin
	users, err := us.repo.ListUsers(ctx, domain.UserFilter{Role: &role})
	if err != nil {
		us.logFailure(ctx, "Failed to list admins", err, nil)
		return nil, err
	}
	return users, nil
}

func (us *UserService) UpdateUser(ctx context.Context, id string, input domain.UserInput) (*domain.User, error) {
	userID, err := us.parseID(id, "UpdateUser")
	if err != nil {
		return nil, err
	}

	if err := us.validator.ValidateUpdate(input); err != nil {
		us.logger.Info("Validation failed", map[string]interface{}{
			"errors": domain.ValidationMessages(err),
			"id":     id,
			"method": "UpdateUser",
		})
		return nil, err
	}

	updatedUser, err := us.repo.UpdateUser(ctx, userID, input)
	if err != nil {
		us.logFailure(ctx, "Failed to update user", err, map[string]interface{}{
			"id": id,
		})
		return nil, err
	}

	us.logger.InfoContext(ctx, "User updated", map[string]interface{}{
		"id": id,
	})
	return updatedUser, nil
}

func (us *UserService) DeleteUser(ctx context.Context, id string) error {
	userID, err := us.parseID(id, "DeleteUser")
	if err != nil {
		return err
	}

	if err := us.repo.DeleteUser(ctx, userID); err != nil {
		us.logFailure(ctx, "Failed to delete user", err, map[string]interface{}{
			"id": id,
		})
		return err
	}

	us.logger.InfoContext(ctx, "User deleted", map[string]interface{}{
		"id": id,
	})
	return nil
}

func (us *UserService) AverageAge(ctx context.Context) (float64, error) {
	avg, err := us.repo.AverageAge(ctx)
	if err != nil {
		us.logFailure(ctx, "Failed to compute average age", err, nil)
		return 0, err
	}
	return avg, nil
}

func (us *UserService) parseID(id, method string) (primitive.ObjectID, error) {
	userID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		us.logger.Info("Invalid ObjectID format", map[string]interface{}{
			"id":     id,
			"method": method,
		})
		return primitive.NilObjectID, domain.NewInvalidIDError(err)
	}
	return userID, nil
}

// logFailure logs expected outcomes (not found, duplicates) at info and storage faults at error.
func (us *UserService) logFailure(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = map[string]interface{}{}
	}
	fields["error"] = err.Error()
	fields["kind"] = domain.KindOf(err).String()

	if domain.KindOf(err) == domain.KindInternal {
		us.logger.ErrorContext(ctx, msg, fields)
		return
	}
	us.logger.InfoContext(ctx, msg, fields)
}

var _ ports.UserService = (*UserService)(nil)
