package flake

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeDrift is returned when the clock reports a time earlier than the
	// last successfully generated ID. Generating IDs in that state could
	// produce the same ID twice. Retry once the clock has caught up.
	ErrTimeDrift = errors.New("flake: clock moved backwards")

	// ErrExhausted is returned when more than 65,536 IDs are requested within
	// the same millisecond. Retrying in the next millisecond succeeds.
	ErrExhausted = errors.New("flake: sequence exhausted for current millisecond")

	// ErrNoNodeIdentifier is returned when a Generator cannot be created
	// because no usable node identifier could be determined.
	ErrNoNodeIdentifier = errors.New("flake: no node identifier")

	// ErrInvalidEncoding is returned when the text or binary form of an ID
	// cannot be decoded.
	ErrInvalidEncoding = errors.New("flake: invalid encoding")
)

// NodeError reports a failure to obtain a node identifier.
// It matches ErrNoNodeIdentifier with errors.Is and unwraps to the underlying
// lookup failure, if any.
type NodeError struct {
	Err error
}

func (e *NodeError) Error() string {
	if e.Err == nil {
		return ErrNoNodeIdentifier.Error()
	}
	return fmt.Sprintf("%s: %s", ErrNoNodeIdentifier, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

func (e *NodeError) Is(target error) bool { return target == ErrNoNodeIdentifier }

// NoNodeIdentifier maps a node resolution failure to a *NodeError, keeping the
// original error as its cause. It returns nil for a nil error.
func NoNodeIdentifier(err error) error {
	if err == nil {
		return nil
	}
	var nerr *NodeError
	if errors.As(err, &nerr) {
		return err
	}
	return &NodeError{Err: err}
}

// DecodeError reports malformed input to Parse or UnmarshalBinary.
// It matches ErrInvalidEncoding with errors.Is.
type DecodeError struct {
	Input string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrInvalidEncoding, e.Input, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrInvalidEncoding }

// IsRetryable reports whether err is a generation failure that can succeed
// when retried after the clock advances.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrExhausted) || errors.Is(err, ErrTimeDrift)
}
