package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inkpost/inkpost/internal/models"
	pkgauth "github.com/inkpost/inkpost/pkg/auth"
	pkglogger "github.com/inkpost/inkpost/pkg/logger"
)

// VerificationTokenRepository defines the interface for verification token operations
type VerificationTokenRepository interface {
	Create(ctx context.Context, userID, tokenHash, purpose string, expiresAt time.Time) (*models.VerificationToken, error)
	GetByUserAndHash(ctx context.Context, userID, tokenHash, purpose string) (*models.VerificationToken, error)
	Consume(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// VerificationService orchestrates the email-verification and password-reset
// tracks: token issuance, delivery through the notifier, and redemption.
type VerificationService struct {
	tokenRepo    VerificationTokenRepository
	userRepo     UserRepository
	emailService EmailService
	logger       *slog.Logger
	baseURL      string
	tokenExpiry  time.Duration
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(
	tokenRepo VerificationTokenRepository,
	userRepo UserRepository,
	emailService EmailService,
	logger *slog.Logger,
	baseURL string,
	tokenExpiry time.Duration,
) *VerificationService {
	return &VerificationService{
		tokenRepo:    tokenRepo,
		userRepo:     userRepo,
		emailService: emailService,
		logger:       logger,
		baseURL:      baseURL,
		tokenExpiry:  tokenExpiry,
	}
}

// issueToken generates a random token, stores its digest and returns the
// plain value for inclusion in the emailed link.
func (s *VerificationService) issueToken(ctx context.Context, userID, purpose string) (string, error) {
	plainToken, err := pkgauth.GenerateVerificationToken()
	if err != nil {
		return "", err
	}

	expiresAt := time.Now().Add(s.tokenExpiry)

	_, err = s.tokenRepo.Create(ctx, userID, pkgauth.HashToken(plainToken), purpose, expiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to store verification token: %w", err)
	}

	return plainToken, nil
}

// SendVerificationEmail issues an email-verification token and dispatches the
// link. Notifier failure is logged and never propagated.
func (s *VerificationService) SendVerificationEmail(ctx context.Context, userID, email string) error {
	plainToken, err := s.issueToken(ctx, userID, models.TokenPurposeEmailVerification)
	if err != nil {
		s.logger.Error("failed to issue verification token",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return err
	}

	link := fmt.Sprintf("%s/%s/verify-email/%s", s.baseURL, userID, plainToken)

	if err := s.emailService.SendVerificationEmail(ctx, email, link); err != nil {
		s.logger.Error("failed to send verification email",
			slog.String("user_id", userID),
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err))
		return nil
	}

	s.logger.Info("verification email sent",
		slog.String("user_id", userID),
		slog.String("email", pkglogger.SanitizedEmail(email)))

	return nil
}

// VerifyEmail redeems a verification token. Redemption requires an exact
// (user, token) match; success flips the account's verified flag and consumes
// only the redeemed token.
func (s *VerificationService) VerifyEmail(ctx context.Context, userID, plainToken string) error {
	if userID == "" || plainToken == "" {
		return models.ErrAccessDenied
	}

	token, err := s.tokenRepo.GetByUserAndHash(ctx, userID, pkgauth.HashToken(plainToken), models.TokenPurposeEmailVerification)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("verification token not found", slog.String("user_id", userID))
			return models.ErrAccessDenied
		}
		s.logger.Error("failed to retrieve verification token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if token.IsExpired() {
		s.logger.Info("verification token expired",
			slog.String("token_id", token.ID),
			slog.Time("expires_at", token.ExpiresAt))
		return models.ErrAccessDenied
	}

	// Consume before flipping the flag so the token can never redeem twice.
	// A crash between the two writes leaves an unverified account that can
	// re-register the flow, not a reusable token.
	if err := s.tokenRepo.Consume(ctx, token.ID); err != nil {
		s.logger.Error("failed to consume verification token",
			slog.String("token_id", token.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, err := s.userRepo.MarkEmailVerified(ctx, userID); err != nil {
		s.logger.Error("failed to mark email verified",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("email verified", slog.String("user_id", userID))
	return nil
}

// RequestPasswordReset issues a reset token for the account registered under
// the given email and dispatches the reset link.
func (s *VerificationService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset requested for unknown email",
				slog.String("email", pkglogger.SanitizedEmail(email)))
			return models.ErrNotFound
		}
		s.logger.Error("failed to look up account for password reset", slog.Any("error", err))
		return models.ErrInternalServer
	}

	plainToken, err := s.issueToken(ctx, user.ID, models.TokenPurposePasswordReset)
	if err != nil {
		s.logger.Error("failed to issue password reset token",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	link := fmt.Sprintf("%s/%s/reset-password/%s", s.baseURL, user.ID, plainToken)

	if err := s.emailService.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
		s.logger.Error("failed to send password reset email",
			slog.String("user_id", user.ID),
			slog.Any("error", err))
		return nil
	}

	s.logger.Info("password reset email sent", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword redeems a reset token and replaces the account's password
// hash. Redemption binds to the specific issued token value, mirroring the
// email-verification path.
func (s *VerificationService) ResetPassword(ctx context.Context, userID, plainToken, newPassword string) error {
	if userID == "" || plainToken == "" {
		return models.ErrAccessDenied
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	token, err := s.tokenRepo.GetByUserAndHash(ctx, userID, pkgauth.HashToken(plainToken), models.TokenPurposePasswordReset)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("password reset token not found", slog.String("user_id", userID))
			return models.ErrAccessDenied
		}
		s.logger.Error("failed to retrieve password reset token", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if token.IsExpired() {
		s.logger.Info("password reset token expired",
			slog.String("token_id", token.ID),
			slog.Time("expires_at", token.ExpiresAt))
		return models.ErrAccessDenied
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.tokenRepo.Consume(ctx, token.ID); err != nil {
		s.logger.Error("failed to consume password reset token",
			slog.String("token_id", token.ID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	if _, err := s.userRepo.UpdatePasswordHash(ctx, userID, hashedPassword); err != nil {
		s.logger.Error("failed to update password hash",
			slog.String("user_id", userID),
			slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("password reset completed", slog.String("user_id", userID))
	return nil
}
