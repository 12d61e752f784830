// Package errcode defines the error kinds shared by the EEPROM codec packages.
//
// Every failure raised by this module carries one of the Code values below,
// either directly or wrapped in an *E that adds context (operation, field,
// atom type, byte offset). Use errors.Is to test for a kind through any
// amount of wrapping:
//
//	if errors.Is(err, errcode.Checksum) {
//	    // image is corrupt
//	}
package errcode

import (
	"errors"
	"fmt"
	"strings"
)

// Code is a stable error kind. It is comparable and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical kinds.
const (
	// Schema: input fails structural/type/range validation before encoding.
	Schema Code = "schema"

	// Resolution: template missing, nested inclusion or conflicting merge.
	Resolution Code = "config_resolution"

	// Constraint: a value does not fit its target field.
	Constraint Code = "encoding_constraint"

	// Structural: mandatory atom missing, duplicated or misordered.
	Structural Code = "structural"

	// Checksum: an atom CRC does not match its contents (decode only).
	Checksum Code = "checksum"

	// Framing: signature, version or length accounting mismatch (decode only).
	Framing Code = "framing"

	// Unknown is returned by Of for errors that carry no code.
	Unknown Code = "unknown"
)

// E wraps a Code with the context needed to pinpoint a violation.
type E struct {
	C  Code
	Op string

	// Field names the configuration key or custom field, if any.
	Field string

	// AtomType is the atom type code involved, or 0.
	AtomType uint16

	// Index is the atom position in the image, or -1 when not applicable.
	Index int

	// Offset is the byte offset into the image, or -1 when not applicable.
	Offset int

	Msg string
	Err error
}

func (e *E) Error() string {
	var b strings.Builder
	b.WriteString(string(e.C))
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.AtomType != 0 {
		fmt.Fprintf(&b, ": atom type 0x%04X", e.AtomType)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, ": atom #%d", e.Index)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, ": offset %d", e.Offset)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *E) Unwrap() error { return e.Err }

// Code returns the error kind.
func (e *E) Code() Code { return e.C }

// Is reports whether target is the same kind as e.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// New returns an *E of kind c with a formatted message and no position info.
func New(c Code, op, format string, args ...interface{}) *E {
	return &E{C: c, Op: op, Index: -1, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// Field returns an *E of kind c that names the offending field.
func Field(c Code, field, format string, args ...interface{}) *E {
	return &E{C: c, Field: field, Index: -1, Offset: -1, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *E of kind c around err.
func Wrap(c Code, op string, err error) *E {
	return &E{C: c, Op: op, Index: -1, Offset: -1, Err: err}
}

// Of extracts a Code from err, defaulting to Unknown. A nil error has no code.
func Of(err error) Code {
	if err == nil {
		return ""
	}
	var e *E
	if errors.As(err, &e) {
		return e.C
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Unknown
}
