package handlers

import (
	"errors"
	"net/http"

	"github.com/inkpost/inkpost/internal/models"
	pkgauth "github.com/inkpost/inkpost/pkg/auth"
	pkghttp "github.com/inkpost/inkpost/pkg/http"
)

// writeServiceError maps domain errors to HTTP responses. Domain failures
// stay at 4xx; anything unexpected is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var passwordErr *pkgauth.PasswordValidationError

	switch {
	case errors.As(err, &passwordErr):
		pkghttp.WriteBadRequest(w, passwordErr.Error())
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "all fields are required")
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteBadRequest(w, "this email is already registered")
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteBadRequest(w, "incorrect email or password")
	case errors.Is(err, models.ErrEmailNotVerified):
		pkghttp.WriteBadRequest(w, "access denied: your email is not verified")
	case errors.Is(err, models.ErrAccessDenied):
		pkghttp.WriteBadRequest(w, "access denied")
	case errors.Is(err, models.ErrUnauthorized):
		pkghttp.WriteUnauthorized(w, "authentication required")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "you cannot access this resource")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "resource not found")
	default:
		pkghttp.WriteInternalError(w, "internal server error")
	}
}
