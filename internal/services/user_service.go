package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkpost/inkpost/internal/models"
	"github.com/inkpost/inkpost/internal/storage"
	pkgauth "github.com/inkpost/inkpost/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id, passwordHash string) (*models.User, error)
	MarkEmailVerified(ctx context.Context, id string) (*models.User, error)
	UpdateProfilePhoto(ctx context.Context, id string, photo models.ProfilePhoto) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// current value untouched.
type ProfileUpdate struct {
	Username *string
	Email    *string
	Bio      *string
	Password *string
}

// UserService handles profile business logic
type UserService struct {
	repo       UserRepository
	photoStore storage.PhotoStore
	logger     *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, photoStore storage.PhotoStore, logger *slog.Logger) *UserService {
	return &UserService{
		repo:       repo,
		photoStore: photoStore,
		logger:     logger,
	}
}

// GetProfile retrieves a single profile by id
func (s *UserService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return user, nil
}

// ListProfiles retrieves profiles with pagination, newest first
func (s *UserService) ListProfiles(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return users, nil
}

// CountUsers returns the total number of registered accounts
func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.Error("failed to count users", slog.Any("error", err))
		return 0, models.ErrInternalServer
	}

	return count, nil
}

// UpdateProfile applies a partial update to the profile. A password change
// goes through the same strength policy as registration.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for update", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}

	if update.Password != nil {
		if err := pkgauth.ValidatePassword(*update.Password); err != nil {
			return nil, err
		}

		hashedPassword, err := pkgauth.HashPassword(*update.Password)
		if err != nil {
			s.logger.Error("failed to hash password", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}

		if _, err := s.repo.UpdatePasswordHash(ctx, id, hashedPassword); err != nil {
			s.logger.Error("failed to update password hash", slog.String("user_id", id), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
	}

	updatedUser, err := s.repo.Update(ctx, id, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("profile updated", slog.String("user_id", id))
	return updatedUser, nil
}

// DeleteProfile removes the account and its photo object. Posts and comments
// are outside this service's scope.
func (s *UserService) DeleteProfile(ctx context.Context, id string) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user for deletion", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	// Remove the photo object first; a storage failure is logged but does not
	// block account deletion.
	if user.ProfilePhoto.Key != "" {
		if err := s.photoStore.Delete(ctx, user.ProfilePhoto.Key); err != nil {
			s.logger.Error("failed to delete profile photo object",
				slog.String("user_id", id),
				slog.String("key", user.ProfilePhoto.Key),
				slog.Any("error", err))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("profile deleted", slog.String("user_id", id))
	return nil
}

// UploadProfilePhoto stores a new photo object, points the profile at it and
// removes the previous object.
func (s *UserService) UploadProfilePhoto(ctx context.Context, id string, data []byte, contentType string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user for photo upload", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	url, key, err := s.photoStore.Upload(ctx, data, contentType)
	if err != nil {
		s.logger.Error("failed to upload profile photo", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	oldKey := user.ProfilePhoto.Key

	updatedUser, err := s.repo.UpdateProfilePhoto(ctx, id, models.ProfilePhoto{URL: url, Key: key})
	if err != nil {
		s.logger.Error("failed to update profile photo", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if oldKey != "" {
		if err := s.photoStore.Delete(ctx, oldKey); err != nil {
			s.logger.Error("failed to delete old profile photo object",
				slog.String("user_id", id),
				slog.String("key", oldKey),
				slog.Any("error", err))
		}
	}

	s.logger.Info("profile photo uploaded", slog.String("user_id", id))
	return updatedUser, nil
}
