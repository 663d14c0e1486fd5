package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for operation preconditions. A rejected operation leaves
// the store untouched and emits no notification. Sweeper-driven expiries are
// not errors; they are scheduled transitions.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrDeadlinePassed    = errors.New("deadline already passed")
	ErrConfigOutOfRange  = errors.New("config value out of range")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidArgument   = errors.New("invalid argument")
)

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

func invalidTransition(kind, id string, from, to any) error {
	return fmt.Errorf("%s %q: %v -> %v: %w", kind, id, from, to, ErrInvalidTransition)
}

func denied(op string) error {
	return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
}
