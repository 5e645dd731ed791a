package columns

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors.
var (
	ErrSchema = errors.New("schema error")
	ErrParse  = errors.New("parse error")
)

// SchemaError reports a required canonical field with no alias among the
// available input fields.
type SchemaError struct {
	Field   string
	Aliases []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("required field %s not found (accepted: %s)", e.Field, strings.Join(e.Aliases, ", "))
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ParseError reports a value that could not be converted to the type its
// canonical field expects. It rejects the row, not the batch.
type ParseError struct {
	Row    int
	Field  string
	Column string
	Value  any
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s: %v", e.Row, e.Field, e.Err)
	}
	return fmt.Sprintf("row %d: %s (column %s) value %v: %v", e.Row, e.Field, e.Column, e.Value, e.Err)
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

var (
	errMissingValue = errors.New("missing value")
	errNotFinite    = errors.New("value is not finite")
	errNotNumber    = errors.New("not a number")
	errNotBool      = errors.New("not a boolean")
)
