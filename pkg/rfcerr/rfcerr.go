// Package rfcerr defines the error taxonomy shared across the rainflow
// counting engine. Every fallible operation in pkg/classify, pkg/filter,
// pkg/residue and pkg/rfc returns one of these kinds; none are retried or
// recovered locally, per spec.md §7.
package rfcerr

import "fmt"

// Kind identifies the category of a counting-run failure.
type Kind int

const (
	// InvalidConfig marks a bad Options/SN-curve field (class_count < 2,
	// class_width <= 0, hysteresis < 0, a missing wl field).
	InvalidConfig Kind = iota
	// NonFinite marks a NaN or +/-Inf input sample.
	NonFinite
	// OutOfRange marks a sample outside [0, N) when auto_resize is false.
	OutOfRange
	// Internal marks a bug in the engine itself (e.g. a residue invariant
	// violated) rather than bad input.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidConfig:
		return "InvalidConfig"
	case NonFinite:
		return "NonFinite"
	case OutOfRange:
		return "OutOfRange"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by the engine. SampleIndex is
// -1 when the failure isn't tied to a specific sample; Field is empty when
// the failure isn't tied to a specific configuration field.
type Error struct {
	Kind        Kind
	Field       string
	SampleIndex int64
	Message     string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.SampleIndex >= 0:
		return fmt.Sprintf("%s: sample[%d]: %s", e.Kind, e.SampleIndex, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// Config builds an InvalidConfig error naming the offending field.
func Config(field, format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidConfig, Field: field, SampleIndex: -1, Message: fmt.Sprintf(format, args...)}
}

// Sample builds a NonFinite or OutOfRange error naming the offending
// sample index.
func Sample(kind Kind, index int64, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, SampleIndex: index, Message: fmt.Sprintf(format, args...)}
}

// InternalErr builds an Internal error with no field or sample attribution.
func InternalErr(format string, args ...interface{}) *Error {
	return &Error{Kind: Internal, SampleIndex: -1, Message: fmt.Sprintf(format, args...)}
}
