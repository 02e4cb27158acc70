package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRatio, "invalid aspect ratio %q", "0:9")

	if err.Code != ErrCodeInvalidRatio {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRatio)
	}

	if err.Message != `invalid aspect ratio "0:9"` {
		t.Errorf("Message = %v, want %v", err.Message, `invalid aspect ratio "0:9"`)
	}

	expected := `INVALID_RATIO: invalid aspect ratio "0:9"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeExport, cause, "encode png")

	if err.Code != ErrCodeExport {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeExport)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeImageDecode, "test"),
			code:     ErrCodeImageDecode,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeImageDecode, "test"),
			code:     ErrCodeEdit,
			expected: false,
		},
		{
			name:     "outer code of wrapped error",
			err:      Wrap(ErrCodeExport, New(ErrCodeAssetLoad, "inner"), "outer"),
			code:     ErrCodeExport,
			expected: true,
		},
		{
			name:     "inner code of wrapped error",
			err:      Wrap(ErrCodeExport, New(ErrCodeAssetLoad, "inner"), "outer"),
			code:     ErrCodeAssetLoad,
			expected: true,
		},
		{
			name:     "inner code behind fmt wrapping",
			err:      Wrap(ErrCodeExport, fmt.Errorf("compose: %w", New(ErrCodeCanvasUnavailable, "too large")), "outer"),
			code:     ErrCodeCanvasUnavailable,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeBrief, "test"),
			expected: ErrCodeBrief,
		},
		{
			name:     "outermost code wins",
			err:      Wrap(ErrCodeExport, New(ErrCodeAssetLoad, "inner"), "outer"),
			expected: ErrCodeExport,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeQuotaExceeded, "daily generate limit reached"),
			expected: "daily generate limit reached",
		},
		{
			name:     "wrapped chain",
			err:      Wrap(ErrCodeExport, New(ErrCodeAssetLoad, "decode background"), "export failed"),
			expected: "export failed: decode background",
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "plain",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %q, want %q", got, tt.expected)
			}
		})
	}
}
