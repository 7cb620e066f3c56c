package codedom

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Code classifies a tree error.
type Code string

const (
	// CodeStructural reports a tree that was built inconsistently upstream:
	// a missing parent, parameter, discriminator target or function.
	CodeStructural Code = "structural_inconsistency"

	// CodeUnsupported reports an element kind with no emission rule.
	CodeUnsupported Code = "unsupported_construct"

	CodeDuplicateName    Code = "duplicate_name"
	CodeInvalidPlacement Code = "invalid_placement"
	CodeAlreadyPlaced    Code = "already_placed"
	CodeUnknownElement   Code = "unknown_element"
)

const structuralHint = "the element tree was built inconsistently upstream"

// Error is returned by tree operations and by everything that reads the
// tree to produce output. Element and Path locate the offending element.
type Error struct {
	Code    Code
	Element ID
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, e.Message)
}

func (t *Tree) newError(code Code, id ID, format string, args ...any) error {
	err := errors.WithStack(&Error{
		Code:    code,
		Element: id,
		Path:    t.Path(id),
		Message: fmt.Sprintf(format, args...),
	})
	if code == CodeStructural {
		err = errors.WithHint(err, structuralHint)
	}
	return err
}

// Structuralf returns a structural inconsistency error located at id.
func (t *Tree) Structuralf(id ID, format string, args ...any) error {
	return t.newError(CodeStructural, id, format, args...)
}

// Unsupportedf returns an unsupported construct error located at id.
func (t *Tree) Unsupportedf(id ID, format string, args ...any) error {
	return t.newError(CodeUnsupported, id, format, args...)
}

// ErrorCode returns the code of the first *Error in err's chain, or "".
func ErrorCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsStructural reports whether err is a structural inconsistency.
func IsStructural(err error) bool { return ErrorCode(err) == CodeStructural }

// IsUnsupported reports whether err is an unsupported construct.
func IsUnsupported(err error) bool { return ErrorCode(err) == CodeUnsupported }

// ErrorElement returns the element that caused err, or NoID.
func ErrorElement(err error) ID {
	var e *Error
	if errors.As(err, &e) {
		return e.Element
	}
	return NoID
}
