package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/models"
	"github.com/inkpost/inkpost/internal/services"
	pkghttp "github.com/inkpost/inkpost/pkg/http"
)

const maxPhotoSizeBytes = 5 << 20 // 5 MiB

// UserServiceInterface defines the interface for profile business logic
type UserServiceInterface interface {
	GetProfile(ctx context.Context, id string) (*models.User, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, id string, update services.ProfileUpdate) (*models.User, error)
	DeleteProfile(ctx context.Context, id string) error
	UploadProfilePhoto(ctx context.Context, id string, data []byte, contentType string) (*models.User, error)
}

// UserHandler handles profile HTTP requests
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Username *string `json:"user_name" validate:"omitempty,min=1,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Bio      *string `json:"bio" validate:"omitempty,max=500"`
	Password *string `json:"password"`
}

// ListProfilesResponse represents a page of profiles
type ListProfilesResponse struct {
	Users []*services.UserResponse `json:"users"`
	Total int64                    `json:"total"`
}

// UploadPhotoResponse confirms a photo upload
type UploadPhotoResponse struct {
	Message      string              `json:"message"`
	ProfilePhoto models.ProfilePhoto `json:"profile_photo"`
}

// ListProfiles returns all profiles, newest first, hashes excluded
func (h *UserHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50)
	offset := parseQueryInt(r, "offset", 0)

	users, err := h.service.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	total, err := h.service.CountUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := ListProfilesResponse{
		Users: make([]*services.UserResponse, 0, len(users)),
		Total: total,
	}
	for _, user := range users {
		resp.Users = append(resp.Users, services.UserModelToResponse(user))
	}

	pkghttp.WriteJSON(w, http.StatusOK, resp)
}

// CountUsers returns the total number of registered accounts
func (h *UserHandler) CountUsers(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.CountUsers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// GetProfile returns a single profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.UserModelToResponse(user))
}

// UpdateProfile updates a profile. Only the profile owner may update it.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}
	if claims.UserID != id {
		pkghttp.WriteForbidden(w, "only the profile owner can update it")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if req.Email != nil {
		normalized := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &normalized
	}

	user, err := h.service.UpdateProfile(r.Context(), id, services.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, services.UserModelToResponse(user))
}

// DeleteProfile deletes a profile. Allowed for the owner and for admins.
func (h *UserHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}
	if claims.UserID != id && !claims.IsAdmin {
		pkghttp.WriteForbidden(w, "only the profile owner or an admin can delete it")
		return
	}

	if err := h.service.DeleteProfile(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, MessageResponse{
		Message: "profile has been deleted successfully",
	})
}

// UploadProfilePhoto accepts a multipart image and stores it as the caller's
// profile photo.
func (h *UserHandler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSizeBytes); err != nil {
		pkghttp.WriteBadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		pkghttp.WriteBadRequest(w, "no photo provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPhotoSizeBytes+1))
	if err != nil {
		pkghttp.WriteBadRequest(w, "failed to read photo")
		return
	}
	if len(data) > maxPhotoSizeBytes {
		pkghttp.WriteBadRequest(w, "photo exceeds the 5MB size limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		pkghttp.WriteBadRequest(w, "uploaded file must be an image")
		return
	}

	user, err := h.service.UploadProfilePhoto(r.Context(), claims.UserID, data, contentType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UploadPhotoResponse{
		Message:      "profile photo uploaded successfully",
		ProfilePhoto: user.ProfilePhoto,
	})
}

func parseQueryInt(r *http.Request, key string, defaultVal int) int {
	if value := r.URL.Query().Get(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil && intVal >= 0 {
			return intVal
		}
	}
	return defaultVal
}
