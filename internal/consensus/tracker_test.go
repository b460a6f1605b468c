package consensus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermoledger/thermoledger/internal/config"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/platform/memstore"
)

func testTracker(t *testing.T, validatorCount, quorum, deadlineSeconds uint) (*Tracker, *memstore.AuditNoteStore) {
	t.Helper()
	auditStore := memstore.NewAuditNoteStore()
	tracker := NewTracker(config.ConsensusConfig{
		ValidatorCount:  validatorCount,
		QuorumSize:      quorum,
		DeadlineSeconds: deadlineSeconds,
	}, auditStore, nil)
	return tracker, auditStore
}

func mustVote(t *testing.T, validatorID, ref string, verdict domain.VoteVerdict) *domain.ValidationVote {
	t.Helper()
	vote, err := domain.NewValidationVote(validatorID, ref, verdict, "", 0.9)
	require.NoError(t, err)
	return vote
}

func TestTrackerRegister(t *testing.T) {
	t.Parallel()

	tracker, _ := testTracker(t, 5, 3, 60)
	ctx := context.Background()

	require.NoError(t, tracker.Register(ctx, "ref-1"))

	err := tracker.Register(ctx, "ref-1")
	assert.ErrorIs(t, err, ErrProposalExists)

	status, err := tracker.Status(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, StatePending, status.State)
	assert.Equal(t, uint(3), status.Quorum)
}

func TestTrackerQuorumFinalizesValid(t *testing.T) {
	t.Parallel()

	tracker, _ := testTracker(t, 5, 3, 60)
	ctx := context.Background()

	var finalized []State
	var finalVotes []domain.ValidationVote
	tracker.SetFinalizedHandler(func(ctx context.Context, ref string, outcome State, votes []domain.ValidationVote) {
		finalized = append(finalized, outcome)
		finalVotes = votes
	})

	require.NoError(t, tracker.Register(ctx, "ref-1"))

	state, err := tracker.SubmitVote(ctx, mustVote(t, "validator-1", "ref-1", domain.VerdictValid))
	require.NoError(t, err)
	assert.Equal(t, StateCollecting, state)

	state, err = tracker.SubmitVote(ctx, mustVote(t, "validator-2", "ref-1", domain.VerdictValid))
	require.NoError(t, err)
	assert.Equal(t, StateCollecting, state)

	state, err = tracker.SubmitVote(ctx, mustVote(t, "validator-3", "ref-1", domain.VerdictValid))
	require.NoError(t, err)
	assert.Equal(t, StateFinalizedValid, state)

	require.Len(t, finalized, 1)
	assert.Equal(t, StateFinalizedValid, finalized[0])
	require.Len(t, finalVotes, 3)
	// Votes are snapshotted in canonical order for hashing.
	assert.Equal(t, "validator-1", finalVotes[0].ValidatorID)
	assert.Equal(t, "validator-3", finalVotes[2].ValidatorID)
}

func TestTrackerFinalizesInvalidWhenQuorumUnreachable(t *testing.T) {
	t.Parallel()

	// N=5, Q=3: three invalid votes make a valid quorum unreachable.
	tracker, _ := testTracker(t, 5, 3, 60)
	ctx := context.Background()

	require.NoError(t, tracker.Register(ctx, "ref-1"))

	for i := 1; i <= 2; i++ {
		state, err := tracker.SubmitVote(ctx,
			mustVote(t, fmt.Sprintf("validator-%d", i), "ref-1", domain.VerdictInvalid))
		require.NoError(t, err)
		assert.Equal(t, StateCollecting, state)
	}

	state, err := tracker.SubmitVote(ctx, mustVote(t, "validator-3", "ref-1", domain.VerdictInvalid))
	require.NoError(t, err)
	assert.Equal(t, StateFinalizedInvalid, state)
}

func TestTrackerDuplicateVoteReplaces(t *testing.T) {
	t.Parallel()

	tracker, _ := testTracker(t, 5, 3, 60)
	ctx := context.Background()

	require.NoError(t, tracker.Register(ctx, "ref-1"))

	_, err := tracker.SubmitVote(ctx, mustVote(t, "validator-1", "ref-1", domain.VerdictValid))
	require.NoError(t, err)

	// Same validator flips its verdict: the tally must not double count.
	_, err = tracker.SubmitVote(ctx, mustVote(t, "validator-1", "ref-1", domain.VerdictInvalid))
	require.NoError(t, err)

	status, err := tracker.Status(ctx, "ref-1")
	require.NoError(t, err)
	assert.Len(t, status.Votes, 1)
	assert.Equal(t, uint(0), status.ValidCount)
	assert.Equal(t, uint(1), status.InvalidCount)
	assert.Equal(t, domain.VerdictInvalid, status.Votes[0].Verdict)
}

func TestTrackerLateVoteBecomesAuditNote(t *testing.T) {
	t.Parallel()

	tracker, auditStore := testTracker(t, 1, 1, 60)
	ctx := context.Background()

	require.NoError(t, tracker.Register(ctx, "ref-1"))

	state, err := tracker.SubmitVote(ctx, mustVote(t, "validator-1", "ref-1", domain.VerdictValid))
	require.NoError(t, err)
	require.Equal(t, StateFinalizedValid, state)

	state, err = tracker.SubmitVote(ctx, mustVote(t, "validator-2", "ref-1", domain.VerdictInvalid))
	assert.ErrorIs(t, err, ErrProposalFinalized)
	assert.Equal(t, StateFinalizedValid, state)

	notes, err := auditStore.ListByProposal(ctx, "ref-1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "validator-2", notes[0].ValidatorID)
	assert.Contains(t, notes[0].Note, "invalid")
}

func TestTrackerTimeout(t *testing.T) {
	t.Parallel()

	tracker, auditStore := testTracker(t, 5, 3, 1)
	ctx := context.Background()

	var mu sync.Mutex
	var outcome State
	done := make(chan struct{})
	tracker.SetFinalizedHandler(func(ctx context.Context, ref string, state State, votes []domain.ValidationVote) {
		mu.Lock()
		outcome = state
		mu.Unlock()
		close(done)
	})

	require.NoError(t, tracker.Register(ctx, "ref-1"))

	_, err := tracker.SubmitVote(ctx, mustVote(t, "validator-1", "ref-1", domain.VerdictValid))
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("proposal did not time out")
	}

	mu.Lock()
	assert.Equal(t, StateTimedOut, outcome)
	mu.Unlock()

	status, err := tracker.Status(ctx, "ref-1")
	require.NoError(t, err)
	assert.Equal(t, StateTimedOut, status.State)

	// A vote after the timeout is demoted to an audit note.
	_, err = tracker.SubmitVote(ctx, mustVote(t, "validator-2", "ref-1", domain.VerdictValid))
	assert.ErrorIs(t, err, ErrProposalFinalized)

	notes, err := auditStore.ListByProposal(ctx, "ref-1")
	require.NoError(t, err)
	assert.NotEmpty(t, notes)
}

func TestTrackerCancel(t *testing.T) {
	t.Parallel()

	tracker, _ := testTracker(t, 5, 3, 60)
	ctx := context.Background()

	t.Run("cancel before finalization removes the proposal", func(t *testing.T) {
		require.NoError(t, tracker.Register(ctx, "ref-cancel"))
		require.NoError(t, tracker.Cancel(ctx, "ref-cancel"))

		_, err := tracker.Status(ctx, "ref-cancel")
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})

	t.Run("cancel after finalization fails", func(t *testing.T) {
		oneShot, _ := testTracker(t, 1, 1, 60)
		require.NoError(t, oneShot.Register(ctx, "ref-final"))
		_, err := oneShot.SubmitVote(ctx, mustVote(t, "validator-1", "ref-final", domain.VerdictValid))
		require.NoError(t, err)

		err = oneShot.Cancel(ctx, "ref-final")
		assert.ErrorIs(t, err, ErrAlreadyFinalized)
	})

	t.Run("cancel of unknown proposal fails", func(t *testing.T) {
		err := tracker.Cancel(ctx, "ref-missing")
		assert.ErrorIs(t, err, ErrProposalNotFound)
	})
}

func TestTrackerVoteOnUnknownProposal(t *testing.T) {
	t.Parallel()

	tracker, _ := testTracker(t, 5, 3, 60)

	_, err := tracker.SubmitVote(context.Background(), mustVote(t, "validator-1", "ref-missing", domain.VerdictValid))
	assert.ErrorIs(t, err, ErrProposalNotFound)
}

func TestEffectiveQuorumDefault(t *testing.T) {
	t.Parallel()

	// Quorum zero selects a simple majority.
	tracker, _ := testTracker(t, 4, 0, 60)
	assert.Equal(t, uint(3), tracker.Quorum())
}
