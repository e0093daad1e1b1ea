package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkobayashi/discussion-board-api/internal/authz"
	"github.com/mkobayashi/discussion-board-api/internal/models"
	"github.com/mkobayashi/discussion-board-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCannotEditUser        = errors.New("not authorized to update this user")
	ErrCannotDeleteUser      = errors.New("only a superuser can delete users")
	ErrCannotChangeAuthLevel = errors.New("only a superuser can change auth levels")
	ErrInvalidAuthLevel      = errors.New("invalid auth level")
)

// UserService provides user listing and administration.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// List returns all users, optionally filtered by a free-text search
// over name and email.
func (s *UserService) List(search string) ([]models.User, error) {
	users, err := s.userRepo.List(strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Get retrieves a user by ID.
func (s *UserService) Get(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateUserInput represents a partial profile update. Nil fields are
// left untouched.
type UpdateUserInput struct {
	Name      *string
	Phone     *string
	AuthLevel *models.AuthLevel
}

// Update applies a profile update. Users may edit their own record;
// superusers may edit anyone. Changing auth_level is superuser-only.
func (s *UserService) Update(actor *models.User, targetID uint64, input UpdateUserInput) (*models.User, error) {
	if !authz.CanUpdateUser(actor, targetID) {
		return nil, ErrCannotEditUser
	}
	if input.AuthLevel != nil && !authz.CanChangeAuthLevel(actor) {
		return nil, ErrCannotChangeAuthLevel
	}

	user, err := s.userRepo.FindByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.AuthLevel != nil {
		level := *input.AuthLevel
		if level != models.AuthLevelUser && level != models.AuthLevelSuperuser {
			return nil, ErrInvalidAuthLevel
		}
		user.AuthLevel = level
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// Delete removes a user account. Superuser only.
func (s *UserService) Delete(actor *models.User, targetID uint64) error {
	if !authz.CanDeleteUser(actor) {
		return ErrCannotDeleteUser
	}

	if _, err := s.userRepo.FindByID(targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
