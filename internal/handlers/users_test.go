package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpost/inkpost/internal/auth"
	"github.com/inkpost/inkpost/internal/models"
	"github.com/inkpost/inkpost/internal/services"
)

// mockUserService implements UserServiceInterface
type mockUserService struct {
	GetProfileFunc         func(ctx context.Context, id string) (*models.User, error)
	ListProfilesFunc       func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CountUsersFunc         func(ctx context.Context) (int64, error)
	UpdateProfileFunc      func(ctx context.Context, id string, update services.ProfileUpdate) (*models.User, error)
	DeleteProfileFunc      func(ctx context.Context, id string) error
	UploadProfilePhotoFunc func(ctx context.Context, id string, data []byte, contentType string) (*models.User, error)
}

func (m *mockUserService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *mockUserService) ListProfiles(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListProfilesFunc != nil {
		return m.ListProfilesFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *mockUserService) CountUsers(ctx context.Context) (int64, error) {
	if m.CountUsersFunc != nil {
		return m.CountUsersFunc(ctx)
	}
	return 0, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, id string, update services.ProfileUpdate) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, update)
	}
	return nil, models.ErrInternalServer
}

func (m *mockUserService) DeleteProfile(ctx context.Context, id string) error {
	if m.DeleteProfileFunc != nil {
		return m.DeleteProfileFunc(ctx, id)
	}
	return models.ErrInternalServer
}

func (m *mockUserService) UploadProfilePhoto(ctx context.Context, id string, data []byte, contentType string) (*models.User, error) {
	if m.UploadProfilePhotoFunc != nil {
		return m.UploadProfilePhotoFunc(ctx, id, data, contentType)
	}
	return nil, models.ErrInternalServer
}

func testUser(id string) *models.User {
	return &models.User{
		ID:            id,
		Username:      "alice",
		Email:         "a@x.com",
		PasswordHash:  "$2a$12$hash",
		EmailVerified: true,
	}
}

// withClaims injects session claims the way auth.Middleware does
func withClaims(req *http.Request, userID string, isAdmin bool) *http.Request {
	claims := &models.SessionClaims{UserID: userID, IsAdmin: isAdmin}
	return req.WithContext(context.WithValue(req.Context(), auth.UserContextKey, claims))
}

func TestUserHandler_GetProfile(t *testing.T) {
	userService := &mockUserService{
		GetProfileFunc: func(ctx context.Context, id string) (*models.User, error) {
			if id == "user123" {
				return testUser(id), nil
			}
			return nil, models.ErrNotFound
		},
	}
	handler := NewUserHandler(userService)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile/user123", nil)
	req = withURLParams(req, map[string]string{"id": "user123"})
	rec := httptest.NewRecorder()

	handler.GetProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp services.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice", resp.Username)
	// the hash never crosses the wire
	assert.NotContains(t, rec.Body.String(), "$2a$12$hash")
}

func TestUserHandler_GetProfile_NotFound(t *testing.T) {
	handler := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile/missing", nil)
	req = withURLParams(req, map[string]string{"id": "missing"})
	rec := httptest.NewRecorder()

	handler.GetProfile(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_ListProfiles(t *testing.T) {
	userService := &mockUserService{
		ListProfilesFunc: func(ctx context.Context, limit, offset int) ([]*models.User, error) {
			assert.Equal(t, 50, limit, "default limit")
			assert.Equal(t, 0, offset)
			return []*models.User{testUser("u1"), testUser("u2")}, nil
		},
		CountUsersFunc: func(ctx context.Context) (int64, error) {
			return 2, nil
		},
	}
	handler := NewUserHandler(userService)

	req := httptest.NewRequest(http.MethodGet, "/api/users/profile", nil)
	rec := httptest.NewRecorder()

	handler.ListProfiles(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ListProfilesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Users, 2)
	assert.Equal(t, int64(2), resp.Total)
}

func TestUserHandler_CountUsers(t *testing.T) {
	userService := &mockUserService{
		CountUsersFunc: func(ctx context.Context) (int64, error) {
			return 42, nil
		},
	}
	handler := NewUserHandler(userService)

	req := httptest.NewRequest(http.MethodGet, "/api/users/count", nil)
	rec := httptest.NewRecorder()

	handler.CountUsers(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count": 42}`, rec.Body.String())
}

func TestUserHandler_UpdateProfile_OwnerOnly(t *testing.T) {
	called := false
	userService := &mockUserService{
		UpdateProfileFunc: func(ctx context.Context, id string, update services.ProfileUpdate) (*models.User, error) {
			called = true
			return testUser(id), nil
		},
	}
	handler := NewUserHandler(userService)

	tests := []struct {
		name       string
		callerID   string
		isAdmin    bool
		wantStatus int
	}{
		{"owner", "user123", false, http.StatusOK},
		{"other user", "user456", false, http.StatusForbidden},
		{"admin is not the owner", "admin789", true, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false

			req := httptest.NewRequest(http.MethodPut, "/api/users/profile/user123",
				jsonBody(t, UpdateProfileRequest{Bio: strPtr("hello")}))
			req = withURLParams(req, map[string]string{"id": "user123"})
			req = withClaims(req, tt.callerID, tt.isAdmin)
			rec := httptest.NewRecorder()

			handler.UpdateProfile(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
		})
	}
}

func TestUserHandler_UpdateProfile_NoClaims(t *testing.T) {
	handler := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodPut, "/api/users/profile/user123",
		jsonBody(t, UpdateProfileRequest{Bio: strPtr("hello")}))
	req = withURLParams(req, map[string]string{"id": "user123"})
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_UpdateProfile_NormalizesEmail(t *testing.T) {
	var gotUpdate services.ProfileUpdate
	userService := &mockUserService{
		UpdateProfileFunc: func(ctx context.Context, id string, update services.ProfileUpdate) (*models.User, error) {
			gotUpdate = update
			return testUser(id), nil
		},
	}
	handler := NewUserHandler(userService)

	req := httptest.NewRequest(http.MethodPut, "/api/users/profile/user123",
		jsonBody(t, UpdateProfileRequest{Email: strPtr("  New@X.COM ")}))
	req = withURLParams(req, map[string]string{"id": "user123"})
	req = withClaims(req, "user123", false)
	rec := httptest.NewRecorder()

	handler.UpdateProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotUpdate.Email)
	assert.Equal(t, "new@x.com", *gotUpdate.Email)
}

func TestUserHandler_DeleteProfile_OwnerAndAdmin(t *testing.T) {
	userService := &mockUserService{
		DeleteProfileFunc: func(ctx context.Context, id string) error {
			return nil
		},
	}
	handler := NewUserHandler(userService)

	tests := []struct {
		name       string
		callerID   string
		isAdmin    bool
		wantStatus int
	}{
		{"owner", "user123", false, http.StatusOK},
		{"admin", "admin789", true, http.StatusOK},
		{"other user", "user456", false, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodDelete, "/api/users/profile/user123", nil)
			req = withURLParams(req, map[string]string{"id": "user123"})
			req = withClaims(req, tt.callerID, tt.isAdmin)
			rec := httptest.NewRecorder()

			handler.DeleteProfile(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func multipartPhoto(t *testing.T, fieldName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="photo"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &buf, writer.FormDataContentType()
}

func TestUserHandler_UploadProfilePhoto(t *testing.T) {
	userService := &mockUserService{
		UploadProfilePhotoFunc: func(ctx context.Context, id string, data []byte, contentType string) (*models.User, error) {
			assert.Equal(t, "user123", id)
			assert.Equal(t, []byte("fake image bytes"), data)
			assert.Equal(t, "image/png", contentType)
			u := testUser(id)
			u.ProfilePhoto = models.ProfilePhoto{URL: "https://media.example.com/p", Key: "profiles/p"}
			return u, nil
		},
	}
	handler := NewUserHandler(userService)

	body, formContentType := multipartPhoto(t, "image", "image/png", []byte("fake image bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/users/profile/upload-photo", body)
	req.Header.Set("Content-Type", formContentType)
	req = withClaims(req, "user123", false)
	rec := httptest.NewRecorder()

	handler.UploadProfilePhoto(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp UploadPhotoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "profiles/p", resp.ProfilePhoto.Key)
}

func TestUserHandler_UploadProfilePhoto_RejectsNonImage(t *testing.T) {
	uploaded := false
	userService := &mockUserService{
		UploadProfilePhotoFunc: func(ctx context.Context, id string, data []byte, contentType string) (*models.User, error) {
			uploaded = true
			return testUser(id), nil
		},
	}
	handler := NewUserHandler(userService)

	body, formContentType := multipartPhoto(t, "image", "application/pdf", []byte("%PDF-"))

	req := httptest.NewRequest(http.MethodPost, "/api/users/profile/upload-photo", body)
	req.Header.Set("Content-Type", formContentType)
	req = withClaims(req, "user123", false)
	rec := httptest.NewRecorder()

	handler.UploadProfilePhoto(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, uploaded)
}

func TestUserHandler_UploadProfilePhoto_MissingFile(t *testing.T) {
	handler := NewUserHandler(&mockUserService{})

	body, formContentType := multipartPhoto(t, "wrong_field", "image/png", []byte("img"))

	req := httptest.NewRequest(http.MethodPost, "/api/users/profile/upload-photo", body)
	req.Header.Set("Content-Type", formContentType)
	req = withClaims(req, "user123", false)
	rec := httptest.NewRecorder()

	handler.UploadProfilePhoto(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserHandler_UploadProfilePhoto_NoClaims(t *testing.T) {
	handler := NewUserHandler(&mockUserService{})

	body, formContentType := multipartPhoto(t, "image", "image/png", []byte("img"))

	req := httptest.NewRequest(http.MethodPost, "/api/users/profile/upload-photo", body)
	req.Header.Set("Content-Type", formContentType)
	rec := httptest.NewRecorder()

	handler.UploadProfilePhoto(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func strPtr(s string) *string { return &s }
