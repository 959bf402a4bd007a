// Package wire decodes and encodes the SSH binary packet primitives used by
// public key and signature blobs (RFC 4251 section 5): length-prefixed
// strings and multiple precision integers.
package wire

import "errors"

var (
	// ErrTruncatedInput is returned when the input ends before a length
	// prefix, or the bytes it declares, can be read.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrMalformedField is returned when a field is present but cannot be
	// accepted, such as an unexpected type tag or trailing data.
	ErrMalformedField = errors.New("malformed field")
)
