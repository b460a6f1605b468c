// Package memstore provides in-memory implementations of the store
// interfaces. They are safe for concurrent use and back the server when no
// database URL is configured, as well as the test suites.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/store"
)

// LedgerStore is an in-memory, append-only ledger keyed by sequence number.
type LedgerStore struct {
	mu      sync.RWMutex
	entries map[uint64]domain.LedgerEntry
}

// NewLedgerStore creates an empty in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		entries: make(map[uint64]domain.LedgerEntry),
	}
}

// Ensure LedgerStore implements store.LedgerStore interface
var _ store.LedgerStore = (*LedgerStore)(nil)

// Append implements store.LedgerStore.Append.
func (s *LedgerStore) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.Sequence]; exists {
		return fmt.Errorf("%w: %d", store.ErrSequenceExists, entry.Sequence)
	}

	s.entries[entry.Sequence] = copyEntry(*entry)
	return nil
}

// GetBySequence implements store.LedgerStore.GetBySequence.
func (s *LedgerStore) GetBySequence(ctx context.Context, seq uint64) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[seq]
	if !ok {
		return nil, store.ErrEntryNotFound
	}

	out := copyEntry(entry)
	return &out, nil
}

// GetRange implements store.LedgerStore.GetRange.
func (s *LedgerStore) GetRange(ctx context.Context, from, to uint64) ([]domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := []domain.LedgerEntry{}
	for seq, entry := range s.entries {
		if seq >= from && seq <= to {
			entries = append(entries, copyEntry(entry))
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Sequence < entries[j].Sequence
	})

	return entries, nil
}

// Tail implements store.LedgerStore.Tail.
func (s *LedgerStore) Tail(ctx context.Context) (*domain.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, store.ErrLedgerEmpty
	}

	var max uint64
	for seq := range s.entries {
		if seq > max {
			max = seq
		}
	}

	out := copyEntry(s.entries[max])
	return &out, nil
}

// copyEntry deep-copies an entry so callers can never mutate stored state.
func copyEntry(e domain.LedgerEntry) domain.LedgerEntry {
	out := e
	out.Payload = append([]byte(nil), e.Payload...)
	out.Votes = append([]domain.ValidationVote(nil), e.Votes...)
	out.EntryHash = append([]byte(nil), e.EntryHash...)
	out.PrevHash = append([]byte(nil), e.PrevHash...)
	return out
}

// AuditNoteStore is an in-memory audit note store.
type AuditNoteStore struct {
	mu    sync.RWMutex
	notes []domain.AuditNote
}

// NewAuditNoteStore creates an empty in-memory audit note store.
func NewAuditNoteStore() *AuditNoteStore {
	return &AuditNoteStore{}
}

// Ensure AuditNoteStore implements store.AuditNoteStore interface
var _ store.AuditNoteStore = (*AuditNoteStore)(nil)

// Create implements store.AuditNoteStore.Create.
func (s *AuditNoteStore) Create(ctx context.Context, note *domain.AuditNote) error {
	if err := note.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = append(s.notes, *note)
	return nil
}

// ListByProposal implements store.AuditNoteStore.ListByProposal.
func (s *AuditNoteStore) ListByProposal(ctx context.Context, proposalRef string) ([]domain.AuditNote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := []domain.AuditNote{}
	for _, note := range s.notes {
		if note.ProposalRef == proposalRef {
			notes = append(notes, note)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})

	return notes, nil
}
