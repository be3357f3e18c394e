package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidConfig, "test message: %s", "value")

	if err.Code != ErrCodeInvalidConfig {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidConfig)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_CONFIG: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRowSource, cause, "fetch row 3")

	if err.Code != ErrCodeRowSource {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRowSource)
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
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRowSource, New(ErrCodeNetwork, "inner"), "outer"),
			code:     ErrCodeRowSource,
			expected: true,
		},
		{
			name:     "template error",
			err:      Template("row-range-empty", "", "no row bindings"),
			code:     ErrCodeInvalidTemplate,
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
			err:      New(ErrCodeNotFound, "test"),
			expected: ErrCodeNotFound,
		},
		{
			name:     "violation",
			err:      Violation("bad ordinal %d", 3),
			expected: ErrCodeContractViolation,
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
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTemplateError(t *testing.T) {
	t.Run("with subject", func(t *testing.T) {
		err := Template("frozen-row-range", "frozen left", "cannot cover the row range")
		want := "INVALID_TEMPLATE: frozen-row-range (frozen left): cannot cover the row range"
		if err.Error() != want {
			t.Errorf("Error() = %v, want %v", err.Error(), want)
		}
		var te *TemplateError
		if !errors.As(err, &te) {
			t.Fatal("errors.As(*TemplateError) = false")
		}
		if te.Rule != "frozen-row-range" {
			t.Errorf("Rule = %v, want frozen-row-range", te.Rule)
		}
		if te.Code() != ErrCodeInvalidTemplate {
			t.Errorf("Code() = %v, want %v", te.Code(), ErrCodeInvalidTemplate)
		}
	})

	t.Run("without subject", func(t *testing.T) {
		te := &TemplateError{Rule: "no-columns", Message: "template has no columns"}
		if te.Error() != "no-columns: template has no columns" {
			t.Errorf("Error() = %v", te.Error())
		}
	})
}

func TestRecover(t *testing.T) {
	t.Run("nil keeps error", func(t *testing.T) {
		orig := errors.New("orig")
		if got := Recover(nil, orig); got != orig {
			t.Errorf("Recover(nil) = %v, want %v", got, orig)
		}
	})

	t.Run("violation becomes error", func(t *testing.T) {
		got := func() (err error) {
			defer func() { err = Recover(recover(), err) }()
			panic(Violation("boom"))
		}()
		if !Is(got, ErrCodeContractViolation) {
			t.Errorf("Recover() = %v, want contract violation", got)
		}
	})

	t.Run("other panics propagate", func(t *testing.T) {
		defer func() {
			if r := recover(); r != "other" {
				t.Errorf("recovered %v, want other", r)
			}
		}()
		func() (err error) {
			defer func() { err = Recover(recover(), err) }()
			panic("other")
		}()
	})
}
