package fsm

import (
	"errors"
	"fmt"
)

var (
	ErrStateNotFound = errors.New("fsm: state not found")
	ErrDuplicateKey  = errors.New("fsm: duplicate state key")
	ErrDuplicateType = errors.New("fsm: duplicate state type")
	ErrNilState      = errors.New("fsm: state is nil")
	ErrEmptyGroup    = errors.New("fsm: states group is empty")
)

// ReferenceMissingError reports a state change or transition that points at
// a key or type the machine never registered.
type ReferenceMissingError struct {
	Machine string
	Target  string
	From    Key
}

func (e *ReferenceMissingError) Error() string {
	if e.From != "" {
		return fmt.Sprintf("fsm: machine %q: state %q references missing state %q", e.Machine, e.From, e.Target)
	}
	return fmt.Sprintf("fsm: machine %q: missing state %q", e.Machine, e.Target)
}

func (e *ReferenceMissingError) Unwrap() error {
	return ErrStateNotFound
}

// RegistrationError is returned when a state cannot be added to a registry.
type RegistrationError struct {
	Key  Key
	Type TypeID
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("fsm: register %s (%s): %v", e.Key, e.Type, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
