package providers

import (
	"errors"
	"testing"
)

func TestValidationError(t *testing.T) {
	err := &ValidationError{
		Field:   "baseUrl",
		Message: "base URL is required",
	}

	expected := `validation error for field "baseUrl": base URL is required`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := &TransportError{
		Provider: "openai",
		Cause:    cause,
	}

	expected := `provider "openai" unreachable: connection refused`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	if !errors.Is(err, cause) {
		t.Error("expected error to wrap cause")
	}
}

func TestBackendError(t *testing.T) {
	t.Run("with status code", func(t *testing.T) {
		err := &BackendError{
			Provider:   "openai",
			StatusCode: 500,
			Message:    "internal error",
		}

		expected := `provider "openai" backend error (status 500): internal error`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("without status code", func(t *testing.T) {
		err := &BackendError{
			Provider: "openai",
			Message:  "malformed response payload",
		}

		expected := `provider "openai" backend error: malformed response payload`
		if err.Error() != expected {
			t.Errorf("expected %q, got %q", expected, err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("unexpected end of JSON input")
		err := &BackendError{
			Provider: "openai",
			Message:  "malformed response payload",
			Cause:    cause,
		}

		if errors.Unwrap(err) != cause {
			t.Errorf("expected unwrapped error to be %v, got %v", cause, errors.Unwrap(err))
		}
	})
}
