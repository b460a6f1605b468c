package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors below.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate of
	// a unique entity (e.g. a second entry at the same sequence number).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific errors

	// ErrEntryNotFound indicates the requested ledger entry does not exist.
	ErrEntryNotFound = fmt.Errorf("%w: ledger entry", ErrNotFound)

	// ErrLedgerEmpty indicates the ledger holds no entries yet; the next
	// append is the genesis entry.
	ErrLedgerEmpty = errors.New("ledger is empty")

	// ErrSequenceExists indicates an entry already occupies the sequence
	// number being appended, i.e. a concurrent-append race was detected
	// before commit. Callers may retry with refreshed tail state.
	ErrSequenceExists = fmt.Errorf("%w: sequence", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
