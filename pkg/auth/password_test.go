package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("Str0ng!Pass")

	require.NoError(t, err)
	assert.NotEmpty(t, hashed)
	assert.NotEqual(t, "Str0ng!Pass", hashed)
	assert.True(t, strings.HasPrefix(hashed, "$2a$"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")

	assert.Error(t, err)
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	second, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestComparePassword(t *testing.T) {
	hashed, err := HashPassword("Str0ng!Pass")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hashed, "Str0ng!Pass"))
	assert.Error(t, ComparePassword(hashed, "Wr0ng!Pass"))
	assert.Error(t, ComparePassword(hashed, ""))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "Str0ng!Pass", false},
		{"minimum viable", "abcde1!x", false},
		{"too short", "a1!", true},
		{"too long", strings.Repeat("a1!", 50), true},
		{"no letters", "12345678!", true},
		{"no digits", "abcdefgh!", true},
		{"no symbols", "abcdefgh1", true},
		{"common password", "password123!", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)

			if tt.wantErr {
				require.Error(t, err)
				var validationErr *PasswordValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.NotEmpty(t, validationErr.Errors)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordValidationError_GenericMessage(t *testing.T) {
	err := ValidatePassword("short")

	require.Error(t, err)
	// the public message never leaks the individual policy failures
	assert.Equal(t, "weak password: add letters, numbers and symbols", err.Error())
}
