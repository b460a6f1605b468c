// Package ledger implements the hash-chained energy ledger: a single-writer
// append path over a LedgerStore, chain verification, and a fail-closed
// halt state entered when verification finds a broken link.
package ledger

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
	"github.com/thermoledger/thermoledger/internal/store"
)

// Ledger manager errors.
var (
	// ErrLedgerHalted is returned by Append while the ledger is halted after
	// a failed chain verification. Reads remain available.
	ErrLedgerHalted = errors.New("ledger is halted pending investigation")

	// ErrChainBroken is returned by VerifyChain when an entry's hash or link
	// does not match.
	ErrChainBroken = errors.New("ledger chain verification failed")
)

// Manager owns the append path of the ledger. All appends serialize through
// a single mutex so sequence numbers and previous-hash links never race;
// reads go straight to the store.
type Manager struct {
	store  store.LedgerStore
	logger *slog.Logger

	mu       sync.Mutex
	tailSeq  uint64 // 0 when the ledger is empty
	tailHash []byte
	halted   bool
}

// NewManager creates a ledger manager and loads the current tail so the
// first append continues the existing chain. An empty ledger starts at
// sequence 1 with the genesis previous hash.
func NewManager(ctx context.Context, ledgerStore store.LedgerStore, log *slog.Logger) (*Manager, error) {
	if ledgerStore == nil {
		panic("ledgerStore cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "ledger_manager"))

	m := &Manager{
		store:    ledgerStore,
		logger:   log,
		tailHash: domain.GenesisPrevHash,
	}

	tail, err := ledgerStore.Tail(ctx)
	switch {
	case err == nil:
		m.tailSeq = tail.Sequence
		m.tailHash = tail.EntryHash
		log.Info("ledger tail loaded", slog.Uint64("sequence", tail.Sequence))
	case errors.Is(err, store.ErrLedgerEmpty):
		log.Info("ledger is empty, next append is genesis")
	default:
		return nil, fmt.Errorf("failed to load ledger tail: %w", err)
	}

	return m, nil
}

// Append commits a finalized proposal to the ledger and returns the new
// entry. The entry hash covers the payload, the canonical vote
// serialization, and the previous entry's hash. Returns ErrLedgerHalted
// while the ledger is halted.
func (m *Manager) Append(
	ctx context.Context,
	kind domain.ProposalKind,
	payload []byte,
	votes []domain.ValidationVote,
	verdict domain.VoteVerdict,
) (*domain.LedgerEntry, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.halted {
		return nil, ErrLedgerHalted
	}

	entry := &domain.LedgerEntry{
		Sequence:  m.tailSeq + 1,
		Kind:      kind,
		Payload:   payload,
		Votes:     votes,
		Verdict:   verdict,
		PrevHash:  m.tailHash,
		CreatedAt: time.Now().UTC(),
	}

	hash, err := computeEntryHash(entry)
	if err != nil {
		return nil, err
	}
	entry.EntryHash = hash

	if err := m.store.Append(ctx, entry); err != nil {
		if errors.Is(err, store.ErrSequenceExists) {
			// Another writer got there first. The single-writer mutex makes
			// this unreachable in-process; it guards against a second server
			// instance sharing the store.
			log.Error("sequence conflict, refusing to fork the chain",
				slog.Uint64("sequence", entry.Sequence))
		}
		return nil, err
	}

	m.tailSeq = entry.Sequence
	m.tailHash = entry.EntryHash

	log.Info("ledger entry committed",
		slog.Uint64("sequence", entry.Sequence),
		slog.String("kind", string(kind)),
		slog.String("verdict", string(verdict)))

	return entry, nil
}

// VerifyChain walks the full ledger and re-derives every entry hash and
// link. It returns the sequence of the first failing entry, or 0 when the
// chain is intact. A failure halts the ledger.
func (m *Manager) VerifyChain(ctx context.Context) (uint64, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	m.mu.Lock()
	tailSeq := m.tailSeq
	m.mu.Unlock()

	if tailSeq == 0 {
		return 0, nil
	}

	entries, err := m.store.GetRange(ctx, 1, tailSeq)
	if err != nil {
		return 0, fmt.Errorf("failed to read ledger for verification: %w", err)
	}

	prevHash := domain.GenesisPrevHash
	expectedSeq := uint64(1)
	for i := range entries {
		entry := &entries[i]

		if entry.Sequence != expectedSeq {
			m.halt(log, expectedSeq, "sequence gap")
			return expectedSeq, fmt.Errorf("%w: missing sequence %d", ErrChainBroken, expectedSeq)
		}

		if !bytes.Equal(entry.PrevHash, prevHash) {
			m.halt(log, entry.Sequence, "previous-hash link mismatch")
			return entry.Sequence, fmt.Errorf("%w: broken link at sequence %d", ErrChainBroken, entry.Sequence)
		}

		hash, err := computeEntryHash(entry)
		if err != nil {
			return entry.Sequence, err
		}
		if !bytes.Equal(entry.EntryHash, hash) {
			m.halt(log, entry.Sequence, "entry hash mismatch")
			return entry.Sequence, fmt.Errorf("%w: hash mismatch at sequence %d", ErrChainBroken, entry.Sequence)
		}

		prevHash = entry.EntryHash
		expectedSeq++
	}

	return 0, nil
}

// GetRange returns entries with from ≤ sequence ≤ to in order. Available
// while halted.
func (m *Manager) GetRange(ctx context.Context, from, to uint64) ([]domain.LedgerEntry, error) {
	if from == 0 {
		from = 1
	}
	if to == 0 {
		m.mu.Lock()
		to = m.tailSeq
		m.mu.Unlock()
	}
	return m.store.GetRange(ctx, from, to)
}

// GetBySequence returns the entry at the given sequence, or
// store.ErrEntryNotFound. Available while halted.
func (m *Manager) GetBySequence(ctx context.Context, seq uint64) (*domain.LedgerEntry, error) {
	return m.store.GetBySequence(ctx, seq)
}

// Tail returns the highest-sequence entry, or store.ErrLedgerEmpty.
func (m *Manager) Tail(ctx context.Context) (*domain.LedgerEntry, error) {
	return m.store.Tail(ctx)
}

// Halted reports whether the ledger is refusing appends.
func (m *Manager) Halted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.halted
}

// Resume clears the halt state after operator intervention.
func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.halted {
		m.halted = false
		m.logger.Warn("ledger resumed by operator")
	}
}

func (m *Manager) halt(log *slog.Logger, seq uint64, reason string) {
	m.mu.Lock()
	m.halted = true
	m.mu.Unlock()

	log.Error("ledger halted",
		slog.Uint64("first_bad_sequence", seq),
		slog.String("reason", reason))
}

// computeEntryHash derives the SHA-256 chain hash over the entry's payload,
// canonical vote serialization, and previous-entry hash, in that order.
func computeEntryHash(entry *domain.LedgerEntry) ([]byte, error) {
	votes, err := entry.CanonicalVotes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize votes for hashing: %w", err)
	}

	h := sha256.New()
	h.Write(entry.Payload)
	h.Write(votes)
	h.Write(entry.PrevHash)
	return h.Sum(nil), nil
}
