package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryProtocol Category = "protocol"
	CategoryConfig   Category = "config"
	CategoryDocument Category = "document"
	CategoryStorage  Category = "storage"
	CategoryCLI      Category = "cli"
)

// Location represents a position in a tree document or config file.
type Location struct {
	File   string
	Line   int
	Column int
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// VTreeError is a structured error with an optional document location,
// tree address and fix suggestion.
type VTreeError struct {
	// Code is a unique error identifier (e.g., "E101").
	Code string

	// Category is the error type (runtime, protocol, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Path is the tree address the error refers to, if any.
	Path string

	// Location is the document position where the error occurred.
	Location *Location

	// Context contains surrounding document lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VTreeError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, e.Path)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VTreeError) Unwrap() error {
	return e.Wrapped
}

// Is matches another VTreeError by code, so callers can test with
// errors.Is(err, errors.New("E101")).
func (e *VTreeError) Is(target error) bool {
	t, ok := target.(*VTreeError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithLocation adds a document position to the error.
func (e *VTreeError) WithLocation(file string, line, column int) *VTreeError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// WithPath records the tree address the error refers to.
func (e *VTreeError) WithPath(path fmt.Stringer) *VTreeError {
	e.Path = path.String()
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VTreeError) WithSuggestion(s string) *VTreeError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VTreeError) WithDetail(d string) *VTreeError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted explanation to the error.
func (e *VTreeError) WithDetailf(format string, args ...any) *VTreeError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithContext adds custom context lines to the error.
func (e *VTreeError) WithContext(lines []string) *VTreeError {
	e.Context = lines
	return e
}

// Wrap wraps another error.
func (e *VTreeError) Wrap(err error) *VTreeError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a VTreeError from a registered error code.
func New(code string) *VTreeError {
	template, ok := registry[code]
	if !ok {
		return &VTreeError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VTreeError{
		Code:       code,
		Category:   template.Category,
		Message:    template.Message,
		Detail:     template.Detail,
		Suggestion: template.Suggestion,
	}
}

// Newf creates a new VTreeError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VTreeError {
	return &VTreeError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a VTreeError.
func FromError(err error, code string) *VTreeError {
	if err == nil {
		return nil
	}
	if ve, ok := err.(*VTreeError); ok {
		return ve
	}
	return New(code).Wrap(err)
}

// Code returns the code of the first VTreeError in err's chain.
func Code(err error) string {
	for err != nil {
		if ve, ok := err.(*VTreeError); ok {
			return ve.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
