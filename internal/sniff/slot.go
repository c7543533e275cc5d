package sniff

import "errors"

// errSlotUnbound is returned by slots built without a dedicated error.
var errSlotUnbound = &contractError{msg: "slot read before bind"}

// Slot holds a value that must be bound before it is read.
//
//	Unbound --Bind--> Bound --Read--> Bound
//	Bound --Release--> Unbound
//
// Slot is not safe for concurrent use.
type Slot[T any] struct {
	value      T
	bound      bool
	errUnbound error
}

// NewSlot returns an unbound slot whose Read fails with errUnbound.
func NewSlot[T any](errUnbound error) Slot[T] {
	return Slot[T]{errUnbound: errUnbound}
}

// Bind stores v, replacing any previous value.
func (s *Slot[T]) Bind(v T) {
	s.value = v
	s.bound = true
}

// Read returns the bound value, or the slot's unbound error.
func (s *Slot[T]) Read() (T, error) {
	if !s.bound {
		var zero T
		if s.errUnbound == nil {
			return zero, errSlotUnbound
		}
		return zero, s.errUnbound
	}
	return s.value, nil
}

// Release drops the value and returns the slot to the unbound state.
func (s *Slot[T]) Release() {
	var zero T
	s.value = zero
	s.bound = false
}

// Bound reports whether a value is bound.
func (s *Slot[T]) Bound() bool {
	return s.bound
}

// ErrUnbound reports the error Read returns while unbound.
func (s *Slot[T]) ErrUnbound() error {
	if s.errUnbound == nil {
		return errSlotUnbound
	}
	return s.errUnbound
}

// IsUnbound reports whether err came from reading an unbound slot.
func (s *Slot[T]) IsUnbound(err error) bool {
	return errors.Is(err, s.ErrUnbound())
}
