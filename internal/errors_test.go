package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/history.db",
		Op:   "open",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/history.db") {
		t.Errorf("StorageError.Error() should contain path, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestParseError(t *testing.T) {
	originalErr := errors.New("invalid JSON")
	err := &ParseError{
		Source: "chatHistory",
		Key:    historyKey,
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "parse error") {
		t.Errorf("ParseError.Error() should contain 'parse error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "chatHistory") {
		t.Errorf("ParseError.Error() should contain source, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ParseError.Unwrap() should return original error")
	}

	var pe *ParseError
	wrapped := fmt.Errorf("load: %w", err)
	if !errors.As(wrapped, &pe) || pe.Key != historyKey {
		t.Errorf("errors.As() through wrapping failed, got %v", pe)
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "html",
		Path:   "/output/chat.html",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "html") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}

	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}

func TestSentinelErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: chat-1", ErrChatNotFound)
	if !errors.Is(wrapped, ErrChatNotFound) {
		t.Error("wrapped ErrChatNotFound not matched by errors.Is")
	}
	if errors.Is(wrapped, ErrDuplicateMessage) {
		t.Error("ErrChatNotFound should not match ErrDuplicateMessage")
	}
}
