package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   Conflict("slot already booked"),
			expected: "CONFLICT: slot already booked",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("internal error", errors.New("connection reset")),
			expected: "INTERNAL_ERROR: internal error (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, originalErr) {
		t.Errorf("errors.Is should see the wrapped cause")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
		fault  bool
	}{
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict, false},
		{"unauthorized", Unauthorized("not the host"), CodeUnauthorized, http.StatusUnauthorized, false},
		{"not found", NotFound("User"), CodeNotFound, http.StatusNotFound, false},
		{"invalid input", InvalidInput("bad body"), CodeInvalidInput, http.StatusBadRequest, false},
		{"validation", Validation("missing", nil), CodeValidation, http.StatusUnprocessableEntity, false},
		{"internal", Internal("failed", errors.New("boom")), CodeInternal, http.StatusInternalServerError, true},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
			if tt.err.IsFault() != tt.fault {
				t.Errorf("IsFault() = %v, want %v", tt.err.IsFault(), tt.fault)
			}
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	if got := NotFound("User").Message; got != "User not found" {
		t.Errorf("expected message 'User not found', got %s", got)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("taken")
	wrapped := fmt.Errorf("booking: %w", appErr)
	regularErr := errors.New("regular error")

	if AsAppError(wrapped) != appErr {
		t.Errorf("AsAppError() should unwrap to the same AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should keep the original error")
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(fmt.Errorf("x: %w", Unauthorized("no")), CodeUnauthorized) {
		t.Errorf("HasCode should match wrapped unauthorized error")
	}
	if HasCode(errors.New("plain"), CodeUnauthorized) {
		t.Errorf("HasCode should not match plain errors")
	}
}

func TestResponseHidesCause(t *testing.T) {
	resp := Internal("Internal server error. Please try again.", errors.New("mongo: socket closed")).Response()

	if resp.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, resp.Code)
	}
	if resp.Message != "Internal server error. Please try again." {
		t.Errorf("unexpected message %q", resp.Message)
	}
}
