package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrChatNotFound is returned when a chat id is not in the session
	ErrChatNotFound = errors.New("chat not found")

	// ErrMessageNotFound is returned when a message id is not in a chat
	ErrMessageNotFound = errors.New("message not found")

	// ErrDuplicateMessage is returned when a message id already exists in a chat
	ErrDuplicateMessage = errors.New("duplicate message id")

	// ErrUnknownBrand is returned for a brand id that is neither built in nor
	// a brand file
	ErrUnknownBrand = errors.New("unknown brand")
)

// StorageError represents errors accessing the history store
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "remove"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ParseError represents errors parsing stored or loaded data
type ParseError struct {
	Source string // "chatHistory", "brand"
	Key    string // storage key or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
