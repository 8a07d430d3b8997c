package vybiumzkevm

import (
	"errors"
	"fmt"

	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/continuation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/ctl"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/generation"
	"github.com/vybium/vybium-zkevm/internal/vybium-zkevm/utils"
)

// ErrorCode represents a Vybium zkEVM error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidInput represents generation inputs no witness can be built from
	ErrInvalidInput

	// ErrVMExecution represents a kernel execution error
	ErrVMExecution

	// ErrKernelMismatch represents kernel code that does not hash to the kernel digest
	ErrKernelMismatch

	// ErrLookupMismatch represents generated tables whose cross-table lookups do not balance
	ErrLookupMismatch

	// ErrStorage represents a memory-continuation store error
	ErrStorage
)

var codeNames = map[ErrorCode]string{
	ErrUnknown:        "unknown",
	ErrInvalidConfig:  "invalid config",
	ErrInvalidInput:   "invalid input",
	ErrVMExecution:    "vm execution",
	ErrKernelMismatch: "kernel mismatch",
	ErrLookupMismatch: "lookup mismatch",
	ErrStorage:        "storage",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int(c))
}

// VMError represents a Vybium zkEVM error
type VMError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *VMError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-zkevm error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-zkevm error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *VMError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *VMError) Is(target error) bool {
	t, ok := target.(*VMError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Code returns the error code carried by err, or ErrUnknown
func Code(err error) ErrorCode {
	var vmErr *VMError
	if errors.As(err, &vmErr) {
		return vmErr.Code
	}
	return ErrUnknown
}

// classify maps internal sentinels to error codes. Execution errors are
// everything the interpreter can fail with, so they are the fallback.
func classify(err error) ErrorCode {
	switch {
	case errors.Is(err, utils.ErrInvalidConfig):
		return ErrInvalidConfig
	case errors.Is(err, generation.ErrMalformedInput):
		return ErrInvalidInput
	case errors.Is(err, generation.ErrKernelHashMismatch):
		return ErrKernelMismatch
	case errors.Is(err, ctl.ErrMismatch):
		return ErrLookupMismatch
	case errors.Is(err, continuation.ErrNoValues):
		return ErrStorage
	default:
		return ErrVMExecution
	}
}

func wrap(message string, err error) error {
	if err == nil {
		return nil
	}
	return &VMError{Code: classify(err), Message: message, Cause: err}
}
