// Copyright (c) 2018 The ExchangeCoin team
// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec implements the big-endian primitive I/O and
// length-prefixed composite decoding shared by every wire-format type in
// the ledger: fragments, block headers, block contents, and the block0
// genesis encoding all read and write through this package rather than
// rolling their own byte shuffling.
package codec

import "fmt"

// ErrorKind identifies a class of decode failure.  Every decode error
// returned by this package and by the higher-level codecs built on top
// of it (fragment, transaction, block, certificate) is one of these
// kinds; callers that need to distinguish failure classes should use
// errors.Is against the Err* sentinels rather than string matching.
type ErrorKind string

// These constants are the only decode error kinds this package
// produces.  They deliberately mirror spec §4.1's taxonomy one-to-one.
const (
	// ErrNotEnoughBytes indicates a read requested more bytes than were
	// available in the buffer.
	ErrNotEnoughBytes = ErrorKind("ErrNotEnoughBytes")

	// ErrUnconsumedData indicates bytes remained after a top-level
	// decode was expected to consume the entire buffer.
	ErrUnconsumedData = ErrorKind("ErrUnconsumedData")

	// ErrSizeTooBig indicates a length prefix exceeded a caller-imposed
	// limit.
	ErrSizeTooBig = ErrorKind("ErrSizeTooBig")

	// ErrStructureInvalid indicates a composite value failed a
	// structural check that isn't capturable as a simple byte count
	// (e.g. a count of zero where one was required).
	ErrStructureInvalid = ErrorKind("ErrStructureInvalid")

	// ErrUnknownTag indicates a tag byte didn't match any known variant.
	ErrUnknownTag = ErrorKind("ErrUnknownTag")
)

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// Is implements the interface consulted by errors.Is so that wrapped
// Errors compare equal to their bare ErrorKind.
func (e ErrorKind) Is(target error) bool {
	kind, ok := target.(ErrorKind)
	return ok && kind == e
}

// Error is a decode error annotated with the specific values involved.
// It is always a leaf: decode errors are never themselves wrapped in
// further decode errors, only surfaced (spec §7).
type Error struct {
	Err         ErrorKind
	Description string
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return e.Description
}

// Unwrap allows errors.Is(err, codec.ErrNotEnoughBytes) and similar to
// succeed against a *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Err: kind, Description: fmt.Sprintf(format, args...)}
}

// NotEnoughBytesError reports that have bytes were available but need
// were required.
func NotEnoughBytesError(have, need int) error {
	return newError(ErrNotEnoughBytes, "not enough bytes: have %d, need %d", have, need)
}

// UnconsumedDataError reports that left bytes remained after a
// top-level decode.
func UnconsumedDataError(left int) error {
	return newError(ErrUnconsumedData, "unconsumed data: %d bytes left", left)
}

// SizeTooBigError reports that value exceeded the limit allowed in
// context.
func SizeTooBigError(value, limit uint64) error {
	return newError(ErrSizeTooBig, "size too big: %d exceeds limit %d", value, limit)
}

// StructureInvalidError reports a structural violation with a
// human-readable reason.
func StructureInvalidError(reason string) error {
	return newError(ErrStructureInvalid, "invalid structure: %s", reason)
}

// UnknownTagError reports an unrecognized tag byte.
func UnknownTagError(value uint8) error {
	return newError(ErrUnknownTag, "unknown tag: %d", value)
}
