package service

import (
	"context"
	"fmt"
	"strings"

	"lendit/internal/database"
	"lendit/internal/domain"
	"lendit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	users  domain.UserRepository
	logger *zerolog.Logger
}

func NewUserService(users domain.UserRepository, logger *zerolog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) Create(ctx context.Context, user *models.User) error {
	if err := validateUserFields(user.Name, user.Email); err != nil {
		return err
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", user.ID).Msg("user created")
	return nil
}

func (s *UserService) Update(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	user, err := s.users.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if err := validateUserFields(user.Name, user.Email); err != nil {
		return nil, err
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.DeleteUser(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func validateUserFields(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("user name is blank: %w", database.ErrInvalidArgument)
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("malformed email %q: %w", email, database.ErrInvalidArgument)
	}
	return nil
}
