package services

import (
	"context"
	"time"

	"github.com/inkpost/inkpost/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc            func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc         func(ctx context.Context, email string) (*models.User, error)
	ListFunc               func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountFunc              func(ctx context.Context) (int64, error)
	CreateFunc             func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc             func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordHashFunc func(ctx context.Context, id, passwordHash string) (*models.User, error)
	MarkEmailVerifiedFunc  func(ctx context.Context, id string) (*models.User, error)
	UpdateProfilePhotoFunc func(ctx context.Context, id string, photo models.ProfilePhoto) (*models.User, error)
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	return 0, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, id, passwordHash string) (*models.User, error) {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, passwordHash)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) MarkEmailVerified(ctx context.Context, id string) (*models.User, error) {
	if m.MarkEmailVerifiedFunc != nil {
		return m.MarkEmailVerifiedFunc(ctx, id)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdateProfilePhoto(ctx context.Context, id string, photo models.ProfilePhoto) (*models.User, error) {
	if m.UpdateProfilePhotoFunc != nil {
		return m.UpdateProfilePhotoFunc(ctx, id, photo)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockVerificationTokenRepository implements VerificationTokenRepository for testing
type MockVerificationTokenRepository struct {
	CreateFunc           func(ctx context.Context, userID, tokenHash, purpose string, expiresAt time.Time) (*models.VerificationToken, error)
	GetByUserAndHashFunc func(ctx context.Context, userID, tokenHash, purpose string) (*models.VerificationToken, error)
	ConsumeFunc          func(ctx context.Context, id string) error
	DeleteByUserIDFunc   func(ctx context.Context, userID string) error
	CleanupExpiredFunc   func(ctx context.Context) (int64, error)
}

func (m *MockVerificationTokenRepository) Create(ctx context.Context, userID, tokenHash, purpose string, expiresAt time.Time) (*models.VerificationToken, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, tokenHash, purpose, expiresAt)
	}
	return &models.VerificationToken{
		ID:        "token123",
		UserID:    userID,
		TokenHash: tokenHash,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}, nil
}

func (m *MockVerificationTokenRepository) GetByUserAndHash(ctx context.Context, userID, tokenHash, purpose string) (*models.VerificationToken, error) {
	if m.GetByUserAndHashFunc != nil {
		return m.GetByUserAndHashFunc(ctx, userID, tokenHash, purpose)
	}
	return nil, models.ErrNotFound
}

func (m *MockVerificationTokenRepository) Consume(ctx context.Context, id string) error {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, id)
	}
	return nil
}

func (m *MockVerificationTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *MockVerificationTokenRepository) CleanupExpired(ctx context.Context) (int64, error) {
	if m.CleanupExpiredFunc != nil {
		return m.CleanupExpiredFunc(ctx)
	}
	return 0, nil
}

// MockEmailService implements EmailService for testing
type MockEmailService struct {
	SentVerification []string // links handed to the notifier
	SentReset        []string
	FailSend         error
}

func (m *MockEmailService) SendVerificationEmail(ctx context.Context, email, link string) error {
	if m.FailSend != nil {
		return m.FailSend
	}
	m.SentVerification = append(m.SentVerification, link)
	return nil
}

func (m *MockEmailService) SendPasswordResetEmail(ctx context.Context, email, link string) error {
	if m.FailSend != nil {
		return m.FailSend
	}
	m.SentReset = append(m.SentReset, link)
	return nil
}

// MockPhotoStore implements storage.PhotoStore for testing
type MockPhotoStore struct {
	UploadFunc  func(ctx context.Context, data []byte, contentType string) (string, string, error)
	DeletedKeys []string
	FailDelete  error
}

func (m *MockPhotoStore) Upload(ctx context.Context, data []byte, contentType string) (string, string, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, data, contentType)
	}
	return "https://media.example.com/photo", "profiles/photo", nil
}

func (m *MockPhotoStore) Delete(ctx context.Context, key string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.DeletedKeys = append(m.DeletedKeys, key)
	return nil
}

// NewTestUser builds a verified user fixture
func NewTestUser(id, username, email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            id,
		Username:      username,
		Email:         email,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
