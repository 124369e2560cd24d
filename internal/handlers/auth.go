package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/services"
	pkghttp "github.com/inkpost/inkpost/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Register(ctx context.Context, username, password, email string) (*services.UserResponse, error)
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
}

// VerificationServiceInterface defines the interface for the verification and
// reset tracks
type VerificationServiceInterface interface {
	VerifyEmail(ctx context.Context, userID, plainToken string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, userID, plainToken, newPassword string) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service      AuthServiceInterface
	verification VerificationServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, verification VerificationServiceInterface) *AuthHandler {
	return &AuthHandler{
		service:      service,
		verification: verification,
	}
}

// Request DTOs

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"user_name" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ResetPasswordRequest represents the request body for reset redemption
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}

// MessageResponse is a simple status message
type MessageResponse struct {
	Message string `json:"message"`
}

// Register handles user registration. A successful registration responds with
// a pending-verification message, never a session credential.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := h.service.Register(r.Context(), req.Username, req.Password, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "please check your email to complete the verification process",
	})
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, authResp)
}

// VerifyEmail redeems an email-verification token from the emailed link
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	token := chi.URLParam(r, "token")

	if err := h.verification.VerifyEmail(r.Context(), userID, token); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "your email has been verified successfully",
	})
}

// RequestPasswordReset issues a reset token for the given email
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "email")))
	if email == "" {
		pkghttp.WriteBadRequest(w, "email is required")
		return
	}

	if err := h.verification.RequestPasswordReset(r.Context(), email); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "please check your email to complete the password reset process",
	})
}

// ResetPassword redeems a reset token and sets a new password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	token := chi.URLParam(r, "token")

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.verification.ResetPassword(r.Context(), userID, token, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "password has been changed successfully",
	})
}
