package errors

import (
	"errors"
	"fmt"
)

// Error kinds shared across the harness. Callers wrap these with
// fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrEncoding             = errors.New("encoding error")
	ErrDecoding             = errors.New("decoding error")
	ErrUndefinedComparison  = errors.New("undefined comparison")
	ErrNoRecordsFound       = errors.New("no records found")
	ErrCorruptRecord        = errors.New("corrupt record")
	ErrCodecUnavailable     = errors.New("codec unavailable")
)

// Codec operations reported in CodecError.
const (
	OpEncode = "encode"
	OpDecode = "decode"
	OpSize   = "size"
)

// CodecError represents a codec rejecting its input.
type CodecError struct {
	Codec string
	Op    string
	Path  string // location inside the value, empty when not applicable
	Err   error
}

// Error implements the error interface
func (e *CodecError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s at %s: %v", e.Codec, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Codec, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error { return e.Err }

// Is reports encode failures as ErrEncoding and decode failures as ErrDecoding.
func (e *CodecError) Is(target error) bool {
	switch target {
	case ErrEncoding:
		return e.Op == OpEncode || e.Op == OpSize
	case ErrDecoding:
		return e.Op == OpDecode
	}
	return false
}

// NewEncodingError creates a CodecError for a failed encode.
func NewEncodingError(codec, path string, err error) *CodecError {
	return &CodecError{Codec: codec, Op: OpEncode, Path: path, Err: err}
}

// NewDecodingError creates a CodecError for a failed decode.
func NewDecodingError(codec, path string, err error) *CodecError {
	return &CodecError{Codec: codec, Op: OpDecode, Path: path, Err: err}
}

// CorruptRecordError identifies a stored run record that could not be parsed.
type CorruptRecordError struct {
	Key string
	Err error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("corrupt record %s: %v", e.Key, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }

func (e *CorruptRecordError) Is(target error) bool {
	return target == ErrCorruptRecord
}

// Exit codes returned by the CLI.
const (
	ExitFailure       = 1
	ExitMissingInput  = 2
	ExitInvalidConfig = 3
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrNoRecordsFound), errors.Is(err, ErrCodecUnavailable):
		return ExitMissingInput
	case errors.Is(err, ErrInvalidConfiguration):
		return ExitInvalidConfig
	default:
		return ExitFailure
	}
}
