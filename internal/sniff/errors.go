package sniff

import "errors"

// contractError marks a rule bug: a value was read before it was bound.
type contractError struct {
	msg string
}

func (e *contractError) Error() string { return e.msg }

var (
	// ErrFixerNotSet is returned when a fix is attempted without an edit queue.
	ErrFixerNotSet error = &contractError{msg: "The Fixer was not set."}
	// ErrPositionNotSet is returned when a fix is attempted without a scan position.
	ErrPositionNotSet error = &contractError{msg: "The Position was not set."}
)

// FixerNotSet returns the error for an unbound edit queue.
func FixerNotSet() error { return ErrFixerNotSet }

// PositionNotSet returns the error for an unbound scan position.
func PositionNotSet() error { return ErrPositionNotSet }

// IsContractViolation reports whether err (or anything it wraps) signals a
// read-before-bind inside a rule.
func IsContractViolation(err error) bool {
	var ce *contractError
	return errors.As(err, &ce)
}
