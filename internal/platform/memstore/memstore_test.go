package memstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/store"
)

func testEntry(seq uint64) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		Sequence: seq,
		Kind:     domain.KindQuantumTransition,
		Payload:  json.RawMessage(`{"system_id":"sys-1"}`),
		Votes: []domain.ValidationVote{{
			ValidatorID: "validator-1",
			ProposalRef: "ref-1",
			Verdict:     domain.VerdictValid,
			Confidence:  0.9,
		}},
		Verdict:   domain.VerdictValid,
		EntryHash: make([]byte, domain.HashSize),
		PrevHash:  make([]byte, domain.HashSize),
	}
}

func TestLedgerStoreAppend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewLedgerStore()

	require.NoError(t, s.Append(ctx, testEntry(1)))

	t.Run("rejects duplicate sequence", func(t *testing.T) {
		err := s.Append(ctx, testEntry(1))
		assert.ErrorIs(t, err, store.ErrSequenceExists)
	})

	t.Run("rejects invalid entries", func(t *testing.T) {
		bad := testEntry(2)
		bad.Payload = nil
		err := s.Append(ctx, bad)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})
}

func TestLedgerStoreReads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewLedgerStore()

	t.Run("empty store", func(t *testing.T) {
		_, err := s.Tail(ctx)
		assert.ErrorIs(t, err, store.ErrLedgerEmpty)

		_, err = s.GetBySequence(ctx, 1)
		assert.ErrorIs(t, err, store.ErrEntryNotFound)

		entries, err := s.GetRange(ctx, 1, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	for seq := uint64(1); seq <= 4; seq++ {
		require.NoError(t, s.Append(ctx, testEntry(seq)))
	}

	t.Run("get by sequence", func(t *testing.T) {
		entry, err := s.GetBySequence(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, uint64(3), entry.Sequence)
	})

	t.Run("range is ordered and inclusive", func(t *testing.T) {
		entries, err := s.GetRange(ctx, 2, 3)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint64(2), entries[0].Sequence)
		assert.Equal(t, uint64(3), entries[1].Sequence)
	})

	t.Run("tail returns highest sequence", func(t *testing.T) {
		tail, err := s.Tail(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), tail.Sequence)
	})

	t.Run("callers get copies", func(t *testing.T) {
		entry, err := s.GetBySequence(ctx, 1)
		require.NoError(t, err)
		entry.Payload[0] = 'X'

		again, err := s.GetBySequence(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, byte('{'), again.Payload[0])
	})
}

func TestAuditNoteStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewAuditNoteStore()

	require.NoError(t, s.Create(ctx, domain.NewAuditNote("ref-1", "validator-1", "late vote")))
	require.NoError(t, s.Create(ctx, domain.NewAuditNote("ref-1", "validator-2", "post-timeout vote")))
	require.NoError(t, s.Create(ctx, domain.NewAuditNote("ref-2", "validator-1", "other proposal")))

	notes, err := s.ListByProposal(ctx, "ref-1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "late vote", notes[0].Note)

	t.Run("rejects empty notes", func(t *testing.T) {
		err := s.Create(ctx, &domain.AuditNote{ProposalRef: "ref-3"})
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unknown proposal returns empty list", func(t *testing.T) {
		notes, err := s.ListByProposal(ctx, "ref-missing")
		require.NoError(t, err)
		assert.Empty(t, notes)
	})
}
