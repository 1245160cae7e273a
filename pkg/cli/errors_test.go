package cli

import (
	"errors"
	"testing"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("gateway.store_path", "missing required field")

	expected := `invalid configuration "gateway.store_path": missing required field`
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandError(t *testing.T) {
	underlying := errors.New("no active provider")
	err := NewCommandError("send", underlying)

	expected := "relay send: no active provider"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestCommandErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	err := NewCommandError("providers test", underlying)

	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is should reach the wrapped error through CommandError")
	}
}
