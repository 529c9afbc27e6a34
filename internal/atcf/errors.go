package atcf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput reports a byte source that contained zero bytes.
var ErrEmptyInput = errors.New("atcf: empty input")

// ErrConnectivity is the error kind a fetch collaborator wraps around
// low-level transport failures, so callers can test with errors.Is without
// depending on transport-specific error types.
var ErrConnectivity = errors.New("atcf: cannot reach remote host")

// FieldError reports a field that failed to decode, identifying the field,
// the line, and the raw cell so the failure can be diagnosed without
// re-parsing the input.
type FieldError struct {
	Field string
	Line  int
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("atcf: line %d: field %s: cannot decode %q: %v", e.Line, e.Field, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MissingRadialWindError reports a line whose isotach field could not be
// parsed as an integer. It is fatal for the whole decode: without radial
// wind information the parametric wind model downstream cannot be built.
type MissingRadialWindError struct {
	Line int
}

func (e *MissingRadialWindError) Error() string {
	return fmt.Sprintf("atcf: line %d: no radial wind information for this storm; parametric wind model cannot be built", e.Line)
}

// NoMatchingRecordsError reports that the filtered, decoded input produced
// zero records.
type NoMatchingRecordsError struct {
	RecordTypes []string
}

func (e *NoMatchingRecordsError) Error() string {
	if len(e.RecordTypes) == 0 {
		return "atcf: no records found"
	}
	return fmt.Sprintf("atcf: no records found with type(s) %q", strings.Join(e.RecordTypes, ", "))
}
