// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package minipack

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock and ErrMore are re-exported from iox at the package boundary,
// the way framer.go re-exposes the same sentinels for its Read/Write callers.
var (
	ErrWouldBlock = iox.ErrWouldBlock
	ErrMore       = iox.ErrMore
)

// ErrorKind is a closed taxonomy of the failure modes a MessageReader,
// MessageWriter, or Allocator can surface.
type ErrorKind int

const (
	_ ErrorKind = iota
	InvalidFormat
	TypeMismatch
	IntegerOverflow
	LengthTooLarge
	StringTooLarge
	IdentifierTooLarge
	InvalidTimestampLength
	TimestampTypeMismatch
	InvalidSurrogatePair
	PrematureEndOfInput
	SizeLimitExceeded
	NonBlockingChannelDetected
	IdentifierCacheSizeExceeded
	AlreadyClosed
	NegativeLength
	Io
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidFormat:
		return "InvalidFormat"
	case TypeMismatch:
		return "TypeMismatch"
	case IntegerOverflow:
		return "IntegerOverflow"
	case LengthTooLarge:
		return "LengthTooLarge"
	case StringTooLarge:
		return "StringTooLarge"
	case IdentifierTooLarge:
		return "IdentifierTooLarge"
	case InvalidTimestampLength:
		return "InvalidTimestampLength"
	case TimestampTypeMismatch:
		return "TimestampTypeMismatch"
	case InvalidSurrogatePair:
		return "InvalidSurrogatePair"
	case PrematureEndOfInput:
		return "PrematureEndOfInput"
	case SizeLimitExceeded:
		return "SizeLimitExceeded"
	case NonBlockingChannelDetected:
		return "NonBlockingChannelDetected"
	case IdentifierCacheSizeExceeded:
		return "IdentifierCacheSizeExceeded"
	case AlreadyClosed:
		return "AlreadyClosed"
	case NegativeLength:
		return "NegativeLength"
	case Io:
		return "Io"
	default:
		return "Unknown"
	}
}

// Error is the closed error sum of §7: every failure mode the codec
// surfaces to a caller carries a Kind plus whatever fields are relevant to
// that kind. Unused fields are left at their zero value.
type Error struct {
	Kind ErrorKind

	// Tag is the offending wire tag byte, for InvalidFormat/TypeMismatch.
	Tag byte
	// Requested names the value-kind or destination type the caller asked
	// for, for TypeMismatch/IntegerOverflow.
	Requested string
	// Value carries the out-of-range value, for IntegerOverflow.
	Value int64
	// Length and Max carry the offending length and its ceiling, for
	// LengthTooLarge/StringTooLarge/IdentifierTooLarge/SizeLimitExceeded.
	Length int64
	Max    int64
	// Resource names what was already closed, for AlreadyClosed.
	Resource string

	// Err wraps an underlying I/O failure from a provider, for Io.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case InvalidFormat:
		return fmt.Sprintf("minipack: invalid format byte 0x%02x", e.Tag)
	case TypeMismatch:
		return fmt.Sprintf("minipack: tag 0x%02x does not match requested %s", e.Tag, e.Requested)
	case IntegerOverflow:
		return fmt.Sprintf("minipack: value %d overflows %s", e.Value, e.Requested)
	case LengthTooLarge:
		return fmt.Sprintf("minipack: length %d exceeds max %d", e.Length, e.Max)
	case StringTooLarge:
		return fmt.Sprintf("minipack: string length %d exceeds max %d", e.Length, e.Max)
	case IdentifierTooLarge:
		return fmt.Sprintf("minipack: identifier length %d exceeds buffer capacity %d", e.Length, e.Max)
	case InvalidTimestampLength:
		return fmt.Sprintf("minipack: invalid timestamp extension length %d", e.Length)
	case TimestampTypeMismatch:
		return fmt.Sprintf("minipack: extension type %d is not a timestamp", e.Value)
	case InvalidSurrogatePair:
		return fmt.Sprintf("minipack: invalid surrogate pair at index %d", e.Length)
	case PrematureEndOfInput:
		return fmt.Sprintf("minipack: premature end of input: required %d, got %d", e.Length, e.Max)
	case SizeLimitExceeded:
		return fmt.Sprintf("minipack: requested size %d exceeds limit %d", e.Length, e.Max)
	case NonBlockingChannelDetected:
		return "minipack: provider made no progress with space available"
	case IdentifierCacheSizeExceeded:
		return fmt.Sprintf("minipack: identifier cache size exceeds max %d", e.Max)
	case AlreadyClosed:
		return fmt.Sprintf("minipack: %s is already closed", e.Resource)
	case NegativeLength:
		return fmt.Sprintf("minipack: negative length %d", e.Length)
	case Io:
		return fmt.Sprintf("minipack: io: %v", e.Err)
	default:
		return "minipack: unknown error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, &minipack.Error{Kind: minipack.TypeMismatch}).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

func wrapIo(err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: Io, Err: err}
}
