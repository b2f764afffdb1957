package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Is(t *testing.T) {
	wrapped := WrapError(ErrInsufficientData, fmt.Errorf("only 1 row"))

	if !errors.Is(wrapped, ErrInsufficientData) {
		t.Error("wrapped error should match its base by code")
	}
	if errors.Is(wrapped, ErrEmptyResultSet) {
		t.Error("wrapped error should not match a different code")
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	wrapped := WrapError(ErrStoreFailed, cause)

	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestError_Message(t *testing.T) {
	err := WrapError(ErrConfigInvalid, fmt.Errorf("bad port"))
	want := "[CONFIG_INVALID] configuration invalid: bad port"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := ErrNoData.Error()
	if bare != "[NO_DATA] no price data available" {
		t.Errorf("bare Error() = %q", bare)
	}
}
