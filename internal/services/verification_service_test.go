package services

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/models"
	pkgauth "github.com/inkpost/inkpost/pkg/auth"
)

const testBaseURL = "http://localhost:3000"

func newTestVerificationService(tokenRepo VerificationTokenRepository, userRepo UserRepository, email EmailService) *VerificationService {
	return NewVerificationService(tokenRepo, userRepo, email, slog.Default(), testBaseURL, 24*time.Hour)
}

// issuedToken wires a mock token repo so that exactly one plain token value,
// stored as its digest, redeems for the given user and purpose.
func issuedToken(userID, plain, purpose string, expiresAt time.Time) *MockVerificationTokenRepository {
	stored := &models.VerificationToken{
		ID:        "token123",
		UserID:    userID,
		TokenHash: pkgauth.HashToken(plain),
		Purpose:   purpose,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return &MockVerificationTokenRepository{
		GetByUserAndHashFunc: func(ctx context.Context, uid, tokenHash, p string) (*models.VerificationToken, error) {
			if uid == stored.UserID && tokenHash == stored.TokenHash && p == stored.Purpose {
				return stored, nil
			}
			return nil, models.ErrNotFound
		},
	}
}

func TestVerificationService_SendVerificationEmail(t *testing.T) {
	var storedHash, storedPurpose string
	tokenRepo := &MockVerificationTokenRepository{
		CreateFunc: func(ctx context.Context, userID, tokenHash, purpose string, expiresAt time.Time) (*models.VerificationToken, error) {
			storedHash = tokenHash
			storedPurpose = purpose
			return &models.VerificationToken{ID: "token123", UserID: userID, TokenHash: tokenHash, Purpose: purpose, ExpiresAt: expiresAt}, nil
		},
	}
	email := &MockEmailService{}

	svc := newTestVerificationService(tokenRepo, &MockUserRepository{}, email)

	err := svc.SendVerificationEmail(context.Background(), "user123", "a@x.com")

	require.NoError(t, err)
	require.Len(t, email.SentVerification, 1)

	link := email.SentVerification[0]
	assert.True(t, strings.HasPrefix(link, testBaseURL+"/user123/verify-email/"))

	// the link carries the plain token, the store only ever sees its digest
	plain := strings.TrimPrefix(link, testBaseURL+"/user123/verify-email/")
	assert.Len(t, plain, 64)
	assert.Equal(t, pkgauth.HashToken(plain), storedHash)
	assert.NotEqual(t, plain, storedHash)
	assert.Equal(t, models.TokenPurposeEmailVerification, storedPurpose)
}

func TestVerificationService_SendVerificationEmail_NotifierFailureSwallowed(t *testing.T) {
	email := &MockEmailService{FailSend: models.ErrInternalServer}

	svc := newTestVerificationService(&MockVerificationTokenRepository{}, &MockUserRepository{}, email)

	err := svc.SendVerificationEmail(context.Background(), "user123", "a@x.com")

	assert.NoError(t, err)
}

func TestVerificationService_VerifyEmail_Success(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposeEmailVerification, time.Now().Add(time.Hour))

	var consumedID string
	tokenRepo.ConsumeFunc = func(ctx context.Context, id string) error {
		consumedID = id
		return nil
	}

	var verifiedID string
	userRepo := &MockUserRepository{
		MarkEmailVerifiedFunc: func(ctx context.Context, id string) (*models.User, error) {
			verifiedID = id
			return NewTestUser(id, "alice", "a@x.com"), nil
		},
	}

	svc := newTestVerificationService(tokenRepo, userRepo, &MockEmailService{})

	err := svc.VerifyEmail(context.Background(), "user123", plain)

	require.NoError(t, err)
	assert.Equal(t, "token123", consumedID)
	assert.Equal(t, "user123", verifiedID)
}

func TestVerificationService_VerifyEmail_WrongToken(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposeEmailVerification, time.Now().Add(time.Hour))

	marked := false
	userRepo := &MockUserRepository{
		MarkEmailVerifiedFunc: func(ctx context.Context, id string) (*models.User, error) {
			marked = true
			return nil, nil
		},
	}

	svc := newTestVerificationService(tokenRepo, userRepo, &MockEmailService{})

	err := svc.VerifyEmail(context.Background(), "user123", strings.Repeat("cd", 32))

	assert.ErrorIs(t, err, models.ErrAccessDenied)
	assert.False(t, marked)
}

func TestVerificationService_VerifyEmail_WrongUser(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposeEmailVerification, time.Now().Add(time.Hour))

	svc := newTestVerificationService(tokenRepo, &MockUserRepository{}, &MockEmailService{})

	err := svc.VerifyEmail(context.Background(), "user456", plain)

	assert.ErrorIs(t, err, models.ErrAccessDenied)
}

func TestVerificationService_VerifyEmail_Expired(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposeEmailVerification, time.Now().Add(-time.Minute))

	consumed := false
	tokenRepo.ConsumeFunc = func(ctx context.Context, id string) error {
		consumed = true
		return nil
	}

	svc := newTestVerificationService(tokenRepo, &MockUserRepository{}, &MockEmailService{})

	err := svc.VerifyEmail(context.Background(), "user123", plain)

	assert.ErrorIs(t, err, models.ErrAccessDenied)
	assert.False(t, consumed)
}

func TestVerificationService_VerifyEmail_MissingArgs(t *testing.T) {
	svc := newTestVerificationService(&MockVerificationTokenRepository{}, &MockUserRepository{}, &MockEmailService{})

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "", "sometoken"), models.ErrAccessDenied)
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "user123", ""), models.ErrAccessDenied)
}

func TestVerificationService_RequestPasswordReset_Success(t *testing.T) {
	userRepo := &MockUserRepository{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return NewTestUser("user123", "alice", email), nil
		},
	}

	var storedPurpose string
	tokenRepo := &MockVerificationTokenRepository{
		CreateFunc: func(ctx context.Context, userID, tokenHash, purpose string, expiresAt time.Time) (*models.VerificationToken, error) {
			storedPurpose = purpose
			return &models.VerificationToken{ID: "token123", UserID: userID, TokenHash: tokenHash, Purpose: purpose, ExpiresAt: expiresAt}, nil
		},
	}
	email := &MockEmailService{}

	svc := newTestVerificationService(tokenRepo, userRepo, email)

	err := svc.RequestPasswordReset(context.Background(), "a@x.com")

	require.NoError(t, err)
	assert.Equal(t, models.TokenPurposePasswordReset, storedPurpose)
	require.Len(t, email.SentReset, 1)
	assert.True(t, strings.HasPrefix(email.SentReset[0], testBaseURL+"/user123/reset-password/"))
}

func TestVerificationService_RequestPasswordReset_UnknownEmail(t *testing.T) {
	email := &MockEmailService{}

	svc := newTestVerificationService(&MockVerificationTokenRepository{}, &MockUserRepository{}, email)

	err := svc.RequestPasswordReset(context.Background(), "nobody@x.com")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, email.SentReset)
}

func TestVerificationService_ResetPassword_Success(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposePasswordReset, time.Now().Add(time.Hour))

	var consumedID string
	tokenRepo.ConsumeFunc = func(ctx context.Context, id string) error {
		consumedID = id
		return nil
	}

	var newHash string
	userRepo := &MockUserRepository{
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) (*models.User, error) {
			newHash = passwordHash
			return NewTestUser(id, "alice", "a@x.com"), nil
		},
	}

	svc := newTestVerificationService(tokenRepo, userRepo, &MockEmailService{})

	err := svc.ResetPassword(context.Background(), "user123", plain, "N3w!Passw0rd")

	require.NoError(t, err)
	assert.Equal(t, "token123", consumedID)
	assert.NoError(t, pkgauth.ComparePassword(newHash, "N3w!Passw0rd"))
}

func TestVerificationService_ResetPassword_NoToken(t *testing.T) {
	updated := false
	userRepo := &MockUserRepository{
		UpdatePasswordHashFunc: func(ctx context.Context, id, passwordHash string) (*models.User, error) {
			updated = true
			return nil, nil
		},
	}

	svc := newTestVerificationService(&MockVerificationTokenRepository{}, userRepo, &MockEmailService{})

	err := svc.ResetPassword(context.Background(), "user123", strings.Repeat("ab", 32), "N3w!Passw0rd")

	assert.ErrorIs(t, err, models.ErrAccessDenied)
	assert.False(t, updated)
}

func TestVerificationService_ResetPassword_WeakPassword(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposePasswordReset, time.Now().Add(time.Hour))

	svc := newTestVerificationService(tokenRepo, &MockUserRepository{}, &MockEmailService{})

	err := svc.ResetPassword(context.Background(), "user123", plain, "weak")

	var passwordErr *pkgauth.PasswordValidationError
	assert.ErrorAs(t, err, &passwordErr)
}

func TestVerificationService_ResetPassword_Expired(t *testing.T) {
	plain := strings.Repeat("ab", 32)
	tokenRepo := issuedToken("user123", plain, models.TokenPurposePasswordReset, time.Now().Add(-time.Minute))

	svc := newTestVerificationService(tokenRepo, &MockUserRepository{}, &MockEmailService{})

	err := svc.ResetPassword(context.Background(), "user123", plain, "N3w!Passw0rd")

	assert.ErrorIs(t, err, models.ErrAccessDenied)
}
