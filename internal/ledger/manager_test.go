package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/platform/memstore"
	"github.com/thermoledger/thermoledger/internal/store"
)

func testVotes(t *testing.T, ref string) []domain.ValidationVote {
	t.Helper()
	vote, err := domain.NewValidationVote("validator-1", ref, domain.VerdictValid, "", 0.9)
	require.NoError(t, err)
	return []domain.ValidationVote{*vote}
}

func appendN(t *testing.T, m *Manager, n int) []*domain.LedgerEntry {
	t.Helper()
	ctx := context.Background()
	entries := make([]*domain.LedgerEntry, 0, n)
	for i := 0; i < n; i++ {
		payload, err := json.Marshal(map[string]any{"system_id": fmt.Sprintf("sys-%d", i)})
		require.NoError(t, err)

		entry, err := m.Append(ctx, domain.KindQuantumTransition, payload,
			testVotes(t, fmt.Sprintf("ref-%d", i)), domain.VerdictValid)
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

func TestManagerAppendChainsEntries(t *testing.T) {
	t.Parallel()

	m, err := NewManager(context.Background(), memstore.NewLedgerStore(), nil)
	require.NoError(t, err)

	entries := appendN(t, m, 3)

	assert.Equal(t, uint64(1), entries[0].Sequence)
	assert.Equal(t, domain.GenesisPrevHash, entries[0].PrevHash)

	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].Sequence+1, entries[i].Sequence)
		assert.Equal(t, entries[i-1].EntryHash, entries[i].PrevHash)
	}

	for _, e := range entries {
		assert.Len(t, e.EntryHash, domain.HashSize)
	}
}

func TestManagerResumesFromExistingTail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledgerStore := memstore.NewLedgerStore()

	m1, err := NewManager(ctx, ledgerStore, nil)
	require.NoError(t, err)
	first := appendN(t, m1, 2)

	// A fresh manager over the same store continues the chain.
	m2, err := NewManager(ctx, ledgerStore, nil)
	require.NoError(t, err)

	payload, _ := json.Marshal(map[string]any{"system_id": "sys-next"})
	entry, err := m2.Append(ctx, domain.KindStateChange, payload, testVotes(t, "ref-next"), domain.VerdictValid)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), entry.Sequence)
	assert.Equal(t, first[1].EntryHash, entry.PrevHash)
}

func TestManagerVerifyChain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("intact chain verifies", func(t *testing.T) {
		t.Parallel()
		m, err := NewManager(ctx, memstore.NewLedgerStore(), nil)
		require.NoError(t, err)
		appendN(t, m, 5)

		badSeq, err := m.VerifyChain(ctx)
		assert.NoError(t, err)
		assert.Zero(t, badSeq)
		assert.False(t, m.Halted())
	})

	t.Run("empty chain verifies", func(t *testing.T) {
		t.Parallel()
		m, err := NewManager(ctx, memstore.NewLedgerStore(), nil)
		require.NoError(t, err)

		badSeq, err := m.VerifyChain(ctx)
		assert.NoError(t, err)
		assert.Zero(t, badSeq)
	})

	t.Run("tampered payload is caught and halts the ledger", func(t *testing.T) {
		t.Parallel()
		m, err := NewManager(ctx, memstore.NewLedgerStore(), nil)
		require.NoError(t, err)
		appendN(t, m, 3)

		entries, err := m.GetRange(ctx, 1, 3)
		require.NoError(t, err)

		// Rebuild the store with entry 2's payload silently altered.
		tampered := memstore.NewLedgerStore()
		for i := range entries {
			e := entries[i]
			if e.Sequence == 2 {
				e.Payload, _ = json.Marshal(map[string]any{"system_id": "forged"})
			}
			require.NoError(t, tampered.Append(ctx, &e))
		}

		m2, err := NewManager(ctx, tampered, nil)
		require.NoError(t, err)

		badSeq, err := m2.VerifyChain(ctx)
		assert.ErrorIs(t, err, ErrChainBroken)
		assert.Equal(t, uint64(2), badSeq)
		assert.True(t, m2.Halted())

		// Appends are refused while halted.
		payload, _ := json.Marshal(map[string]any{"system_id": "sys-x"})
		_, err = m2.Append(ctx, domain.KindQuantumTransition, payload, testVotes(t, "ref-x"), domain.VerdictValid)
		assert.ErrorIs(t, err, ErrLedgerHalted)

		// Resume restores the append path.
		m2.Resume()
		assert.False(t, m2.Halted())
	})
}

func TestManagerGetRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := NewManager(ctx, memstore.NewLedgerStore(), nil)
	require.NoError(t, err)
	appendN(t, m, 5)

	entries, err := m.GetRange(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(2), entries[0].Sequence)
	assert.Equal(t, uint64(4), entries[2].Sequence)

	// Zero bounds default to the full chain.
	all, err := m.GetRange(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestManagerGetBySequence(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, err := NewManager(ctx, memstore.NewLedgerStore(), nil)
	require.NoError(t, err)
	entries := appendN(t, m, 3)

	entry, err := m.GetBySequence(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, entries[1].EntryHash, entry.EntryHash)

	_, err = m.GetBySequence(ctx, 7)
	assert.ErrorIs(t, err, store.ErrEntryNotFound)
}

func TestManagerSequenceConflict(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledgerStore := memstore.NewLedgerStore()
	m, err := NewManager(ctx, ledgerStore, nil)
	require.NoError(t, err)
	appendN(t, m, 1)

	// A second writer sharing the store takes sequence 2 behind our back.
	foreign := &domain.LedgerEntry{
		Sequence:  2,
		Kind:      domain.KindQuantumTransition,
		Payload:   json.RawMessage(`{"system_id":"other"}`),
		Votes:     testVotes(t, "ref-other"),
		Verdict:   domain.VerdictValid,
		EntryHash: make([]byte, domain.HashSize),
		PrevHash:  make([]byte, domain.HashSize),
	}
	require.NoError(t, ledgerStore.Append(ctx, foreign))

	payload, _ := json.Marshal(map[string]any{"system_id": "sys-2"})
	_, err = m.Append(ctx, domain.KindQuantumTransition, payload, testVotes(t, "ref-2"), domain.VerdictValid)
	assert.ErrorIs(t, err, store.ErrSequenceExists)
}
