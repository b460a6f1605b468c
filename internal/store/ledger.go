package store

import (
	"context"

	"github.com/thermoledger/thermoledger/internal/domain"
)

// LedgerStore defines the interface for ledger entry persistence. Entries
// are append-only: no method mutates or removes a stored entry, and
// implementations must reject a second entry at an existing sequence with
// ErrSequenceExists so the manager can detect append races.
type LedgerStore interface {
	// Append persists a new entry. The entry must be valid according to
	// domain validation rules and its sequence number must not exist yet.
	// Returns ErrSequenceExists when the sequence is already occupied.
	Append(ctx context.Context, entry *domain.LedgerEntry) error

	// GetBySequence retrieves a single entry by sequence number.
	// Returns ErrEntryNotFound if the entry does not exist.
	GetBySequence(ctx context.Context, seq uint64) (*domain.LedgerEntry, error)

	// GetRange retrieves entries with from ≤ sequence ≤ to, ordered by
	// sequence ascending. Out-of-range bounds are clamped; an empty range
	// returns an empty slice, never an error. Callers receive copies and a
	// consistent snapshot: a concurrent append is either fully visible or
	// not at all.
	GetRange(ctx context.Context, from, to uint64) ([]domain.LedgerEntry, error)

	// Tail retrieves the entry with the highest sequence number.
	// Returns ErrLedgerEmpty when no entries exist.
	Tail(ctx context.Context) (*domain.LedgerEntry, error)
}

// AuditNoteStore defines the interface for consensus audit note
// persistence: late or post-finalization votes that must be recorded
// without affecting the delivered decision.
type AuditNoteStore interface {
	// Create persists a new audit note.
	Create(ctx context.Context, note *domain.AuditNote) error

	// ListByProposal retrieves all notes for a proposal reference, ordered
	// by creation time ascending.
	ListByProposal(ctx context.Context, proposalRef string) ([]domain.AuditNote, error)
}
