// Package apperr defines the coded error envelope shared by every operation
// surface (MCP tools, HTTP API).
package apperr

import (
	"errors"
	"fmt"
)

// Code classifies an operation failure.
type Code string

const (
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeChapterNotFound Code = "CHAPTER_NOT_FOUND"
	CodeReadError       Code = "READ_ERROR"
)

// Error is a structured error carrying a stable code and a human-readable
// message. It serializes to the {code, message} wire shape.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NotFound reports a document or version that does not resolve to a file.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidFormat reports malformed frontmatter or a missing required field.
func InvalidFormat(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidFormat, Message: fmt.Sprintf(format, args...)}
}

// ChapterNotFound reports a chapter title with no exact or case-insensitive match.
func ChapterNotFound(format string, args ...any) *Error {
	return &Error{Code: CodeChapterNotFound, Message: fmt.Sprintf(format, args...)}
}

// ReadError reports an OS-level failure reading a file that was confirmed to exist.
func ReadError(format string, args ...any) *Error {
	return &Error{Code: CodeReadError, Message: fmt.Sprintf(format, args...)}
}

// From converts any error into an *Error, wrapping unclassified errors as READ_ERROR.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeReadError, Message: err.Error()}
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
