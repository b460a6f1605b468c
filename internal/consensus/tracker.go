// Package consensus implements the multi-validator voting state machine.
// Each registered proposal collects votes until a quorum finalizes it, an
// invalid quorum becomes unreachable, or its deadline passes. Terminal
// states are absorbing: once a proposal finalizes or times out its outcome
// never changes, and any later vote is demoted to an audit note.
package consensus

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/thermoledger/thermoledger/internal/config"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
	"github.com/thermoledger/thermoledger/internal/store"
)

// State is the lifecycle state of a tracked proposal.
type State string

const (
	// StatePending means the proposal is registered but has no votes yet.
	StatePending State = "pending"

	// StateCollecting means at least one vote has been recorded and no
	// terminal condition has been reached.
	StateCollecting State = "collecting"

	// StateFinalizedValid means a quorum of valid votes was reached.
	StateFinalizedValid State = "finalized_valid"

	// StateFinalizedInvalid means enough invalid votes arrived that a valid
	// quorum became unreachable.
	StateFinalizedInvalid State = "finalized_invalid"

	// StateTimedOut means the voting deadline passed before either quorum
	// condition was met.
	StateTimedOut State = "timed_out"
)

// Terminal reports whether the state is absorbing.
func (s State) Terminal() bool {
	switch s {
	case StateFinalizedValid, StateFinalizedInvalid, StateTimedOut:
		return true
	}
	return false
}

// FinalizedHandler is invoked exactly once per proposal when it reaches a
// terminal state, outside the tracker's locks. Votes are a sorted snapshot.
type FinalizedHandler func(ctx context.Context, ref string, outcome State, votes []domain.ValidationVote)

// ProposalStatus is a point-in-time snapshot of a tracked proposal.
type ProposalStatus struct {
	ProposalRef  string                  `json:"proposal_ref"`
	State        State                   `json:"state"`
	Votes        []domain.ValidationVote `json:"votes"`
	ValidCount   uint                    `json:"valid_count"`
	InvalidCount uint                    `json:"invalid_count"`
	Quorum       uint                    `json:"quorum"`
	Deadline     time.Time               `json:"deadline"`
}

type proposal struct {
	mu       sync.Mutex
	state    State
	votes    map[string]domain.ValidationVote // keyed by validator ID
	deadline time.Time
	timer    *time.Timer
}

// Tracker runs the consensus state machine over registered proposals.
type Tracker struct {
	mu        sync.RWMutex
	proposals map[string]*proposal

	validatorCount uint
	quorum         uint
	deadline       time.Duration

	auditStore store.AuditNoteStore
	onFinal    FinalizedHandler
	logger     *slog.Logger
}

// NewTracker creates a consensus tracker from the configured validator
// count, quorum, and deadline. Late and post-terminal votes are written to
// auditStore. If logger is nil, a default logger will be used.
func NewTracker(cfg config.ConsensusConfig, auditStore store.AuditNoteStore, logger *slog.Logger) *Tracker {
	if auditStore == nil {
		panic("auditStore cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Tracker{
		proposals:      make(map[string]*proposal),
		validatorCount: cfg.ValidatorCount,
		quorum:         cfg.EffectiveQuorum(),
		deadline:       time.Duration(cfg.DeadlineSeconds) * time.Second,
		auditStore:     auditStore,
		logger:         logger.With(slog.String("component", "consensus_tracker")),
	}
}

// SetFinalizedHandler registers the terminal-state callback. Must be called
// before the first proposal is registered.
func (t *Tracker) SetFinalizedHandler(h FinalizedHandler) {
	t.onFinal = h
}

// Quorum returns the effective quorum size.
func (t *Tracker) Quorum() uint { return t.quorum }

// Register starts tracking a proposal and arms its voting deadline.
// Returns ErrProposalExists when the reference is already tracked.
func (t *Tracker) Register(ctx context.Context, ref string) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	t.mu.Lock()
	if _, exists := t.proposals[ref]; exists {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProposalExists, ref)
	}

	p := &proposal{
		state:    StatePending,
		votes:    make(map[string]domain.ValidationVote),
		deadline: time.Now().Add(t.deadline),
	}
	p.timer = time.AfterFunc(t.deadline, func() {
		t.expire(ref)
	})
	t.proposals[ref] = p
	t.mu.Unlock()

	log.Debug("proposal registered",
		slog.String("proposal_ref", ref),
		slog.Time("deadline", p.deadline))
	return nil
}

// SubmitVote records a validator's vote and returns the proposal's state
// after counting it. A repeat vote from the same validator replaces the
// earlier one rather than double counting. Votes against a terminal
// proposal are persisted as audit notes and rejected with
// ErrProposalFinalized.
func (t *Tracker) SubmitVote(ctx context.Context, vote *domain.ValidationVote) (State, error) {
	log := logger.FromContextOrDefault(ctx, t.logger)

	if err := vote.Validate(); err != nil {
		return "", err
	}

	t.mu.RLock()
	p, ok := t.proposals[vote.ProposalRef]
	t.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProposalNotFound, vote.ProposalRef)
	}

	p.mu.Lock()

	if p.state.Terminal() {
		state := p.state
		p.mu.Unlock()

		note := domain.NewAuditNote(
			vote.ProposalRef,
			vote.ValidatorID,
			fmt.Sprintf("vote %q received in state %s", vote.Verdict, state),
		)
		if err := t.auditStore.Create(ctx, note); err != nil {
			log.Error("failed to record late-vote audit note",
				slog.String("error", err.Error()),
				slog.String("proposal_ref", vote.ProposalRef))
		}

		log.Warn("vote rejected on terminal proposal",
			slog.String("proposal_ref", vote.ProposalRef),
			slog.String("validator_id", vote.ValidatorID),
			slog.String("state", string(state)))
		return state, fmt.Errorf("%w: %s", ErrProposalFinalized, vote.ProposalRef)
	}

	if _, replaced := p.votes[vote.ValidatorID]; replaced {
		log.Debug("vote replaced",
			slog.String("proposal_ref", vote.ProposalRef),
			slog.String("validator_id", vote.ValidatorID))
	}
	p.votes[vote.ValidatorID] = *vote
	p.state = StateCollecting

	valid, invalid := tally(p.votes)
	var outcome State
	switch {
	case valid >= t.quorum:
		outcome = StateFinalizedValid
	case invalid >= t.validatorCount-t.quorum+1:
		outcome = StateFinalizedInvalid
	}

	if outcome == "" {
		state := p.state
		p.mu.Unlock()
		return state, nil
	}

	p.state = outcome
	p.timer.Stop()
	votes := snapshotVotes(p.votes)
	p.mu.Unlock()

	log.Info("proposal finalized",
		slog.String("proposal_ref", vote.ProposalRef),
		slog.String("outcome", string(outcome)),
		slog.Uint64("valid_votes", uint64(valid)),
		slog.Uint64("invalid_votes", uint64(invalid)))

	if t.onFinal != nil {
		t.onFinal(ctx, vote.ProposalRef, outcome, votes)
	}

	return outcome, nil
}

// Status returns a snapshot of the proposal's state and votes.
// Returns ErrProposalNotFound for unknown references.
func (t *Tracker) Status(ctx context.Context, ref string) (*ProposalStatus, error) {
	t.mu.RLock()
	p, ok := t.proposals[ref]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProposalNotFound, ref)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	valid, invalid := tally(p.votes)
	return &ProposalStatus{
		ProposalRef:  ref,
		State:        p.state,
		Votes:        snapshotVotes(p.votes),
		ValidCount:   valid,
		InvalidCount: invalid,
		Quorum:       t.quorum,
		Deadline:     p.deadline,
	}, nil
}

// Cancel withdraws a proposal that has not yet finalized, stopping its
// deadline timer and dropping its votes. Returns ErrAlreadyFinalized when
// the proposal reached a terminal state.
func (t *Tracker) Cancel(ctx context.Context, ref string) error {
	log := logger.FromContextOrDefault(ctx, t.logger)

	t.mu.Lock()
	p, ok := t.proposals[ref]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrProposalNotFound, ref)
	}

	p.mu.Lock()
	if p.state.Terminal() {
		p.mu.Unlock()
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyFinalized, ref)
	}
	p.timer.Stop()
	p.mu.Unlock()

	delete(t.proposals, ref)
	t.mu.Unlock()

	log.Info("proposal cancelled", slog.String("proposal_ref", ref))
	return nil
}

// expire is the deadline-timer callback. A race with a finalizing vote is
// resolved by the state check under the proposal lock: whichever transition
// wins, the other becomes a no-op.
func (t *Tracker) expire(ref string) {
	t.mu.RLock()
	p, ok := t.proposals[ref]
	t.mu.RUnlock()
	if !ok {
		return
	}

	p.mu.Lock()
	if p.state.Terminal() {
		p.mu.Unlock()
		return
	}
	p.state = StateTimedOut
	votes := snapshotVotes(p.votes)
	p.mu.Unlock()

	t.logger.Warn("proposal timed out",
		slog.String("proposal_ref", ref),
		slog.Int("votes_received", len(votes)))

	note := domain.NewAuditNote(ref, "", fmt.Sprintf("timed out with %d votes", len(votes)))
	if err := t.auditStore.Create(context.Background(), note); err != nil {
		t.logger.Error("failed to record timeout audit note",
			slog.String("error", err.Error()),
			slog.String("proposal_ref", ref))
	}

	if t.onFinal != nil {
		t.onFinal(context.Background(), ref, StateTimedOut, votes)
	}
}

func tally(votes map[string]domain.ValidationVote) (valid, invalid uint) {
	for _, v := range votes {
		if v.Verdict == domain.VerdictValid {
			valid++
		} else {
			invalid++
		}
	}
	return valid, invalid
}

// snapshotVotes copies votes sorted by validator ID, the canonical order
// hashed into ledger entries.
func snapshotVotes(votes map[string]domain.ValidationVote) []domain.ValidationVote {
	out := make([]domain.ValidationVote, 0, len(votes))
	for _, v := range votes {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ValidatorID < out[j].ValidatorID
	})
	return out
}
