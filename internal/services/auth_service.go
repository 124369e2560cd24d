package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/models"
	pkgauth "github.com/inkpost/inkpost/pkg/auth"
	pkglogger "github.com/inkpost/inkpost/pkg/logger"
)

// VerificationSender issues verification tokens on behalf of registration
type VerificationSender interface {
	SendVerificationEmail(ctx context.Context, userID, email string) error
}

// AuthService composes the credential and verification-token lifecycle:
// registration, login gating and delegation to the verification flow. All
// collaborators are constructor-injected.
type AuthService struct {
	repo         UserRepository
	tm           *auth.TokenManager
	verification VerificationSender
	logger       *slog.Logger
	auditLogger  *pkglogger.AuditLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	repo UserRepository,
	tm *auth.TokenManager,
	verification VerificationSender,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
) *AuthService {
	return &AuthService{
		repo:         repo,
		tm:           tm,
		verification: verification,
		logger:       logger,
		auditLogger:  auditLogger,
	}
}

// UserResponse represents a user in the HTTP response. The password hash is
// deliberately absent.
type UserResponse struct {
	ID            string              `json:"id"`
	Username      string              `json:"username"`
	Email         string              `json:"email"`
	Bio           string              `json:"bio,omitempty"`
	EmailVerified bool                `json:"email_verified"`
	IsAdmin       bool                `json:"is_admin"`
	ProfilePhoto  models.ProfilePhoto `json:"profile_photo"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// AuthResponse represents the response from a successful login
type AuthResponse struct {
	User  *UserResponse `json:"user"`
	Token string        `json:"token"`
}

// Register creates a new unverified account and kicks off the verification
// track. No session credential is issued until the email is verified.
func (s *AuthService) Register(ctx context.Context, username, password, email string) (*UserResponse, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || password == "" {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	// Fast-path duplicate check for a clean domain error; the users.email
	// UNIQUE constraint remains the authoritative guard under concurrency.
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: email already registered")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check for existing account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	// Fire-and-forget: a failed dispatch is logged inside the verification
	// flow and never fails the registration.
	if err := s.verification.SendVerificationEmail(ctx, createdUser.ID, createdUser.Email); err != nil {
		s.logger.Warn("verification dispatch failed after registration",
			slog.String("user_id", createdUser.ID),
			slog.Any("error", err))
	}

	s.logger.Info("user registered", slog.String("user_id", createdUser.ID))
	s.auditLogger.LogAccountAction("user_registered", createdUser.ID)

	return UserModelToResponse(createdUser), nil
}

// Login authenticates a user and returns a session credential. Accounts with
// an unverified email are refused before any credential is minted.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if email == "" || password == "" {
		return nil, models.ErrBadRequest
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: unknown email")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				FailureReason: "unknown_email",
			})
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "invalid_credentials",
		})
		return nil, models.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		s.logger.Info("login blocked: email not verified", slog.String("user_id", user.ID))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "email_not_verified",
		})
		return nil, models.ErrEmailNotVerified
	}

	token, err := s.tm.GenerateSessionToken(user.ID, user.IsAdmin)
	if err != nil {
		s.logger.Error("failed to generate session token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return &AuthResponse{
		User:  UserModelToResponse(user),
		Token: token,
	}, nil
}

// UserModelToResponse converts a user model to a response DTO
func UserModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Bio:           user.Bio,
		EmailVerified: user.EmailVerified,
		IsAdmin:       user.IsAdmin,
		ProfilePhoto:  user.ProfilePhoto,
		CreatedAt:     user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
