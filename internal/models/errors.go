package models

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrRecipeParse ErrorType = iota
	ErrVersion
	ErrTemplate
	ErrFileOp
	ErrInvalidConfig
	ErrChannelIndex
	ErrSignature
	ErrContract
	ErrSource
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrRecipeParse:
		return "RecipeParse"
	case ErrVersion:
		return "Version"
	case ErrTemplate:
		return "Template"
	case ErrFileOp:
		return "FileOp"
	case ErrInvalidConfig:
		return "InvalidConfig"
	case ErrChannelIndex:
		return "ChannelIndex"
	case ErrSignature:
		return "Signature"
	case ErrContract:
		return "Contract"
	case ErrSource:
		return "Source"
	default:
		return "Unknown"
	}
}

// Recoverable reports whether an error of this type only affects a single
// recipe folder. Everything else aborts the run.
func (e ErrorType) Recoverable() bool {
	return e == ErrRecipeParse || e == ErrVersion
}

// DocGenError represents an error during documentation generation
type DocGenError struct {
	Type    ErrorType
	Package string
	Err     error
}

// Error implements the error interface
func (e *DocGenError) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Package, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *DocGenError) Unwrap() error {
	return e.Err
}

// NewError wraps err into a DocGenError of the given type
func NewError(t ErrorType, pkg string, err error) *DocGenError {
	return &DocGenError{Type: t, Package: pkg, Err: err}
}

// IsType reports whether err (or anything it wraps) is a DocGenError of type t
func IsType(err error, t ErrorType) bool {
	var dge *DocGenError
	if errors.As(err, &dge) {
		return dge.Type == t
	}
	return false
}
