package errs

import (
	"net/http"
	"testing"
)

func TestNewErrorKnownCode(t *testing.T) {
	err := NewError(ErrEmailExists)

	if err.Code != ErrEmailExists {
		t.Errorf("expected code %d, got %d", ErrEmailExists, err.Code)
	}
	if err.Status != http.StatusConflict {
		t.Errorf("expected status 409, got %d", err.Status)
	}
	if err.Message == "" {
		t.Error("expected a non-empty message")
	}
}

func TestNewErrorUnknownCodeFallsBack(t *testing.T) {
	err := NewError(99999)

	if err.Code != ErrUnknown {
		t.Errorf("expected fallback code %d, got %d", ErrUnknown, err.Code)
	}
	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
}

func TestNewErrorReturnsCopy(t *testing.T) {
	first := NewError(ErrInvalidParams)
	second := NewError(ErrInvalidParams)

	first.Message = "mutated"

	if second.Message == "mutated" {
		t.Error("NewError must not share state between calls")
	}
}

func TestCustomErrorImplementsError(t *testing.T) {
	var err error = NewError(ErrUserNotFound)

	if err.Error() == "" {
		t.Error("Error() returned an empty string")
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		code int
		want int
	}{
		{"rate limit", ErrRateLimitExceeded, http.StatusTooManyRequests},
		{"invalid credentials", ErrInvalidCredentials, http.StatusUnauthorized},
		{"not post author", ErrNotPostAuthor, http.StatusForbidden},
		{"message not found", ErrMessageNotFound, http.StatusNotFound},
		{"persistence failed", ErrPersistenceFailed, http.StatusInternalServerError},
		{"invalid image", ErrInvalidImage, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NewError(tc.code).Status; got != tc.want {
				t.Errorf("code %d: expected status %d, got %d", tc.code, tc.want, got)
			}
		})
	}
}
