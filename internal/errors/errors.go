// Package errors defines the structured error types used across the
// decompilation pipeline: read, constant-pool, decode, and lift failures.
// Every variant carries the context (offset, index, tag, opcode) needed to
// act on it without re-deriving it from the surrounding call; causes are
// wrapped with github.com/pkg/errors so a stack trace survives the
// decoder -> CFG -> lifter -> emitter boundary.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Wrap and Wrapf re-export pkg/errors so callers in this module need only
// import one errors package.
func Wrap(err error, message string) error                 { return errors.Wrap(err, message) }
func Wrapf(err error, format string, args ...interface{}) error { return errors.Wrapf(err, format, args...) }

// ReadError marks a truncated-input or malformed-header failure while
// parsing the class container. Fatal for the whole class.
type ReadError struct {
	Offset int64
	Reason string
	Cause  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read error at offset %d: %s", e.Offset, e.Reason)
}

func (e *ReadError) Unwrap() error { return e.Cause }

func NewReadError(offset int64, reason string, cause error) *ReadError {
	return &ReadError{Offset: offset, Reason: reason, Cause: errors.WithStack(cause)}
}

// PoolError marks a constant-pool resolution failure: an out-of-range
// index or a tag mismatch against what the caller expected. Fatal for the
// operation requesting the lookup.
type PoolError struct {
	Index    uint16
	Expected string
	Got      string
	Cause    error
}

func (e *PoolError) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("constant pool index %d out of range", e.Index)
	}
	return fmt.Sprintf("constant pool index %d: expected %s, got %s", e.Index, e.Expected, e.Got)
}

func (e *PoolError) Unwrap() error { return e.Cause }

func NewPoolIndexError(index uint16) *PoolError {
	return &PoolError{Index: index, Cause: errors.WithStack(fmt.Errorf("index out of range"))}
}

func NewPoolTagError(index uint16, expected, got string) *PoolError {
	return &PoolError{Index: index, Expected: expected, Got: got, Cause: errors.WithStack(fmt.Errorf("tag mismatch"))}
}

// DecodeError marks a malformed opcode stream: an unknown opcode byte or
// an unknown NEWARRAY primitive tag. Fatal for the enclosing method; other
// methods in the class still decode and lift.
type DecodeError struct {
	Offset int64
	Opcode byte
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error at offset %d (opcode 0x%02x): %s", e.Offset, e.Opcode, e.Reason)
}

func NewUnknownOpcodeError(offset int64, opcode byte) *DecodeError {
	return &DecodeError{Offset: offset, Opcode: opcode, Reason: "unknown opcode"}
}

func NewUnknownArrayTypeError(offset int64, tag byte) *DecodeError {
	return &DecodeError{Offset: offset, Opcode: tag, Reason: "unknown NEWARRAY primitive type tag"}
}

// LiftError marks a failure turning a decoded instruction stream into AST:
// an unexpectedly empty stack, residual stack at a block boundary, an
// unsupported opcode (InvokeDynamic), or a pool constant of the wrong
// shape for the operation. Fatal for the enclosing method.
type LiftError struct {
	Offset int64
	Reason string
	Cause  error
}

func (e *LiftError) Error() string {
	return fmt.Sprintf("lift error at offset %d: %s", e.Offset, e.Reason)
}

func (e *LiftError) Unwrap() error { return e.Cause }

func NewLiftError(offset int64, reason string) *LiftError {
	return &LiftError{Offset: offset, Reason: reason, Cause: errors.WithStack(fmt.Errorf(reason))}
}

func NewStackUnderflowError(offset int64) *LiftError {
	return NewLiftError(offset, "stack underflow: expected a value on the operand stack")
}

func NewStackNotEmptyError(offset int64, count int) *LiftError {
	return NewLiftError(offset, fmt.Sprintf("stack not empty at block end: %d residual value(s)", count))
}

func NewUnsupportedOpcodeError(offset int64, mnemonic string) *LiftError {
	return NewLiftError(offset, fmt.Sprintf("unsupported opcode in lifter: %s", mnemonic))
}
