package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeValidation, "bad attribute on %s", "CUSTOMER")
	want := "VALIDATION_FAILED: bad attribute on CUSTOMER"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeUpstream, cause, "store rejected shape %s", "s1")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause with errors.Is")
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("Error() should include cause, got %q", err.Error())
	}
}

func TestIsMatchesCode(t *testing.T) {
	err := New(ErrCodeShapeNotFound, "shape %s gone", "s1")

	if !Is(err, ErrCodeShapeNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeUpstream) {
		t.Error("Is should not match a different code")
	}

	// Works through additional wrapping
	wrapped := fmt.Errorf("executing command: %w", err)
	if !Is(wrapped, ErrCodeShapeNotFound) {
		t.Error("Is should match through fmt.Errorf wrapping")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeGeneration, "boom")); got != ErrCodeGeneration {
		t.Errorf("GetCode = %q, want %q", got, ErrCodeGeneration)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode for plain error = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeValidation, "malformed line")
	if UserMessage(err) != "malformed line" {
		t.Errorf("UserMessage should strip the code prefix, got %q", UserMessage(err))
	}
	if UserMessage(stderrors.New("plain")) != "plain" {
		t.Error("UserMessage should pass through plain errors")
	}
}

func TestParseError(t *testing.T) {
	err := &ParseError{Line: 3, Text: "CUSTOMER {", Message: "unterminated entity block"}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("ParseError should report the line number, got %q", err.Error())
	}
	if err.Code() != ErrCodeValidation {
		t.Errorf("ParseError code = %q, want %q", err.Code(), ErrCodeValidation)
	}
}
