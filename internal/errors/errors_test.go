package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name    string
		err     *Error
		kind    Kind
		message string
		wrapped error
	}{
		{"NotFound", NotFound("poll not found"), ErrNotFound, "poll not found", nil},
		{"NotFoundf", NotFoundf("poll %d not found", 7), ErrNotFound, "poll 7 not found", nil},
		{"Validation", Validation("question is required"), ErrValidation, "question is required", nil},
		{"Validationf", Validationf("need at least %d options", 2), ErrValidation, "need at least 2 options", nil},
		{"Conflict", Conflict("already voted"), ErrConflict, "already voted", nil},
		{"InvalidInput", InvalidInput("bad limit"), ErrInvalidInput, "bad limit", nil},
		{"InvalidInputf", InvalidInputf("bad %s", "offset"), ErrInvalidInput, "bad offset", nil},
		{"Unavailable", Unavailable("subgraph unreachable", cause), ErrUnavailable, "subgraph unreachable", cause},
		{"Internal", Internal(cause), ErrInternal, "internal error", cause},
		{"Wrap", Wrap(cause, ErrConflict, "save failed"), ErrConflict, "save failed", cause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("expected kind %s, got %s", tt.kind, tt.err.Kind)
			}
			if tt.err.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, tt.err.Message)
			}
			if tt.err.Err != tt.wrapped {
				t.Errorf("expected wrapped %v, got %v", tt.wrapped, tt.err.Err)
			}
		})
	}
}

func TestError_ErrorString(t *testing.T) {
	if got := NotFound("poll not found").Error(); got != "poll not found" {
		t.Errorf("unexpected message %q", got)
	}

	err := Unavailable("subgraph unreachable", errors.New("timeout"))
	if got := err.Error(); got != "subgraph unreachable: timeout" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestError_UnwrapAndAs(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("record vote: %w", Internal(cause))

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected errors.As to find *Error")
	}
	if appErr.Kind != ErrInternal {
		t.Errorf("expected internal kind, got %s", appErr.Kind)
	}
}

func TestKindOf(t *testing.T) {
	if KindOf(fmt.Errorf("wrapped: %w", NotFound("x"))) != ErrNotFound {
		t.Error("expected not_found through wrapping")
	}
	if KindOf(errors.New("plain")) != ErrInternal {
		t.Error("expected internal for plain errors")
	}
	if KindOf(nil) != ErrInternal {
		t.Error("expected internal for nil")
	}
}

func TestKind_String(t *testing.T) {
	kinds := map[Kind]string{
		ErrInternal:     "internal",
		ErrNotFound:     "not_found",
		ErrValidation:   "validation",
		ErrConflict:     "conflict",
		ErrInvalidInput: "invalid_input",
		ErrUnavailable:  "unavailable",
	}
	for k, want := range kinds {
		if k.String() != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), want)
		}
	}
}
