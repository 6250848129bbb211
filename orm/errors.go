package orm

import (
	"errors"
	"fmt"
)

// Common errors for schema and record operations.
var (
	ErrUnknownField   = errors.New("unknown field")
	ErrUnknownFieldID = errors.New("unknown field id")
	ErrUnknownReport  = errors.New("unknown report")
	ErrInvalidSchema  = errors.New("invalid schema")
	ErrInvalidValue   = errors.New("invalid value")
	ErrTableMismatch  = errors.New("record belongs to a different table")
)

// UnknownFieldError reports an attribute name that is not in the schema.
type UnknownFieldError struct {
	Table     string
	Attribute string
}

// Error implements the error interface.
func (e *UnknownFieldError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("unknown field %q", e.Attribute)
	}
	return fmt.Sprintf("unknown field %q in table %s", e.Attribute, e.Table)
}

// Is reports whether the target matches this error.
func (e *UnknownFieldError) Is(target error) bool {
	return target == ErrUnknownField
}

// UnknownFieldIDError reports a field id that is not in the schema.
type UnknownFieldIDError struct {
	Table   string
	FieldID int
}

// Error implements the error interface.
func (e *UnknownFieldIDError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("unknown field id %d", e.FieldID)
	}
	return fmt.Sprintf("unknown field id %d in table %s", e.FieldID, e.Table)
}

// Is reports whether the target matches this error.
func (e *UnknownFieldIDError) Is(target error) bool {
	return target == ErrUnknownFieldID
}

// UnknownReportError reports a report name not declared on a table.
type UnknownReportError struct {
	Table  string
	Report string
}

// Error implements the error interface.
func (e *UnknownReportError) Error() string {
	return fmt.Sprintf("unknown report %q in table %s", e.Report, e.Table)
}

// Is reports whether the target matches this error.
func (e *UnknownReportError) Is(target error) bool {
	return target == ErrUnknownReport
}

// DuplicateFieldError reports an attribute name declared twice.
type DuplicateFieldError struct {
	Attribute string
}

// Error implements the error interface.
func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("duplicate attribute %q", e.Attribute)
}

// Is reports whether the target matches this error.
func (e *DuplicateFieldError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// DuplicateFieldIDError reports a field id used by two attributes.
type DuplicateFieldIDError struct {
	FieldID    int
	Attributes [2]string
}

// Error implements the error interface.
func (e *DuplicateFieldIDError) Error() string {
	return fmt.Sprintf("field id %d used by both %q and %q", e.FieldID, e.Attributes[0], e.Attributes[1])
}

// Is reports whether the target matches this error.
func (e *DuplicateFieldIDError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// InvalidFieldError reports a malformed attribute declaration.
type InvalidFieldError struct {
	Attribute string
	Message   string
}

// Error implements the error interface.
func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.Attribute, e.Message)
}

// Is reports whether the target matches this error.
func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// InvalidValueError reports a value that does not fit its field's type.
type InvalidValueError struct {
	Attribute string
	Type      FieldType
	Value     any
}

// Error implements the error interface.
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value for %q (%s field): %T %v", e.Attribute, e.Type, e.Value, e.Value)
}

// Is reports whether the target matches this error.
func (e *InvalidValueError) Is(target error) bool {
	return target == ErrInvalidValue
}
