// Package xerr defines the sentinel error taxonomy shared by every core
// package (spec.md §7). Callers match with errors.Is; call sites wrap a
// sentinel with fmt.Errorf("...: %w", ...) to attach context, the same way
// icza/mpq wraps its single ErrInvalidArchive sentinel, generalized to one
// sentinel per failure kind instead of one for the whole package.
package xerr

import "errors"

var (
	// ErrNotFound is returned when a required input file or directory is
	// missing. Fatal for the current dispatch.
	ErrNotFound = errors.New("not found")

	// ErrCorruptOrWrongKey is returned when a parsed block hash does not
	// match its containing directory, or expected magic bytes are absent.
	// Fatal for the current dispatch.
	ErrCorruptOrWrongKey = errors.New("corrupt data or wrong key")

	// ErrUnsupportedEndianness is returned for any endianness flag other
	// than little-endian (spec.md §4.5).
	ErrUnsupportedEndianness = errors.New("unsupported endianness")

	// ErrUnsupportedField is returned for a SparkBuffer field/array/map tag
	// outside the implemented type system (spec.md §4.8).
	ErrUnsupportedField = errors.New("unsupported field type")

	// ErrUnsupportedCodec is returned for a recognized-but-unhandled codec
	// or container variant.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrTruncatedInput is returned when a length-prefixed read would
	// exceed the buffer, or a seek target is out of range.
	ErrTruncatedInput = errors.New("truncated input")
)
