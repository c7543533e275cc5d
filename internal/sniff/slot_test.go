package sniff

import (
	"errors"
	"fmt"
	"testing"
)

func TestSlotStateMachine(t *testing.T) {
	s := NewSlot[int](PositionNotSet())
	if s.Bound() {
		t.Fatalf("new slot must be unbound")
	}
	if _, err := s.Read(); !errors.Is(err, ErrPositionNotSet) {
		t.Fatalf("Read on unbound slot = %v, want ErrPositionNotSet", err)
	}

	s.Bind(21)
	for i := 0; i < 3; i++ {
		v, err := s.Read()
		if err != nil || v != 21 {
			t.Fatalf("Read #%d = %d, %v", i, v, err)
		}
	}
	if !s.Bound() {
		t.Fatalf("Read must not change state")
	}

	s.Bind(0)
	if v, err := s.Read(); err != nil || v != 0 {
		t.Fatalf("zero value must be a valid binding, got %d, %v", v, err)
	}

	s.Release()
	if s.Bound() {
		t.Fatalf("Release must unbind")
	}
	if _, err := s.Read(); !s.IsUnbound(err) {
		t.Fatalf("Read after Release = %v", err)
	}
}

func TestZeroSlotHasGenericError(t *testing.T) {
	var s Slot[string]
	_, err := s.Read()
	if err == nil {
		t.Fatalf("zero slot must fail to read")
	}
	if !IsContractViolation(err) {
		t.Fatalf("zero slot error must be a contract violation: %v", err)
	}
}

func TestContractErrors(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{FixerNotSet(), "The Fixer was not set."},
		{PositionNotSet(), "The Position was not set."},
	}
	for _, tc := range cases {
		if tc.err.Error() != tc.want {
			t.Errorf("message = %q, want %q", tc.err.Error(), tc.want)
		}
		if !IsContractViolation(tc.err) {
			t.Errorf("%q must be a contract violation", tc.want)
		}
		wrapped := fmt.Errorf("Standards.Classes.FinalClasses at token 21: %w", tc.err)
		if !errors.Is(wrapped, tc.err) || !IsContractViolation(wrapped) {
			t.Errorf("wrapping must preserve identity of %q", tc.want)
		}
	}
	if errors.Is(FixerNotSet(), ErrPositionNotSet) {
		t.Fatalf("the two errors must be distinct")
	}
	if IsContractViolation(errors.New("The Fixer was not set.")) {
		t.Fatalf("a look-alike message must not count as a contract violation")
	}
}
