// Package service contains the application services that orchestrate
// validators, the consensus tracker, and the ledger manager behind the API
// layer.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/thermoledger/thermoledger/internal/consensus"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/events"
	"github.com/thermoledger/thermoledger/internal/ledger"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
	"github.com/thermoledger/thermoledger/internal/validator"
)

// ValidationOutcome is the result of submitting a proposal for validation:
// the submitting validator's local verdict, the consensus state after its
// self-vote, and the committed entry when that vote already finalized the
// proposal (single-validator deployments finalize inline).
type ValidationOutcome struct {
	ProposalRef    string
	Verdict        *domain.Verdict
	Violations     []string
	ConsensusState consensus.State
	Entry          *domain.LedgerEntry
}

type pendingProposal struct {
	kind    domain.ProposalKind
	payload []byte
}

// ValidationService orchestrates the full proposal lifecycle: local physics
// validation, consensus registration and self-vote, and ledger commitment
// when consensus finalizes valid. It registers itself as the tracker's
// finalized handler.
type ValidationService struct {
	quantum *validator.QuantumValidator
	thermo  *validator.ThermoStateTracker
	tracker *consensus.Tracker
	ledger  *ledger.Manager
	emitter events.EventEmitter
	logger  *slog.Logger

	mu        sync.Mutex
	pending   map[string]pendingProposal
	committed map[string]*domain.LedgerEntry
}

// NewValidationService wires the service and installs its finalization
// handler on the tracker. If log is nil, a default logger will be used.
func NewValidationService(
	quantum *validator.QuantumValidator,
	thermo *validator.ThermoStateTracker,
	tracker *consensus.Tracker,
	ledgerManager *ledger.Manager,
	emitter events.EventEmitter,
	log *slog.Logger,
) *ValidationService {
	if quantum == nil || thermo == nil || tracker == nil || ledgerManager == nil || emitter == nil {
		panic("all dependencies are required")
	}

	if log == nil {
		log = slog.Default()
	}

	s := &ValidationService{
		quantum:   quantum,
		thermo:    thermo,
		tracker:   tracker,
		ledger:    ledgerManager,
		emitter:   emitter,
		logger:    log.With(slog.String("component", "validation_service")),
		pending:   make(map[string]pendingProposal),
		committed: make(map[string]*domain.LedgerEntry),
	}
	tracker.SetFinalizedHandler(s.handleFinalized)
	return s
}

// ProposalRef derives the content-addressed reference for a canonical
// payload: the hex SHA-256 of its bytes.
func ProposalRef(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// ValidateQuantum validates a quantum transition, registers it for
// consensus, and submits the caller's vote derived from the local verdict.
// A physics violation is not an error at this level: the proposal still
// enters consensus with an invalid vote so the rejection is witnessed and,
// on finalization, committed. Structural errors are returned directly.
func (s *ValidationService) ValidateQuantum(ctx context.Context, validatorID string, t *domain.QuantumTransition) (*ValidationOutcome, error) {
	verdict, err := s.quantum.Validate(ctx, t)
	if err != nil && !isViolation(err) {
		return nil, err
	}

	payload, perr := t.CanonicalPayload()
	if perr != nil {
		return nil, fmt.Errorf("failed to serialize transition: %w", perr)
	}

	return s.propose(ctx, validatorID, domain.KindQuantumTransition, payload, verdict, err)
}

// ValidateThermo validates a thermodynamic state change, registers it for
// consensus, and submits the caller's vote derived from the local verdict.
func (s *ValidationService) ValidateThermo(ctx context.Context, validatorID string, change *domain.StateChange) (*ValidationOutcome, error) {
	verdict, err := s.thermo.Validate(ctx, change)
	if err != nil && !isViolation(err) {
		return nil, err
	}

	payload, perr := change.CanonicalPayload()
	if perr != nil {
		return nil, fmt.Errorf("failed to serialize state change: %w", perr)
	}

	return s.propose(ctx, validatorID, domain.KindStateChange, payload, verdict, err)
}

// SubmitVote records an external validator's vote on a tracked proposal and
// returns the resulting consensus state, plus the committed entry when the
// vote finalized the proposal.
func (s *ValidationService) SubmitVote(ctx context.Context, vote *domain.ValidationVote) (consensus.State, *domain.LedgerEntry, error) {
	state, err := s.tracker.SubmitVote(ctx, vote)
	if err != nil {
		return state, nil, err
	}
	return state, s.popCommitted(vote.ProposalRef), nil
}

// Cancel withdraws a proposal before finalization and discards its parked
// payload so a cancelled proposal cannot leak memory or be committed later.
func (s *ValidationService) Cancel(ctx context.Context, ref string) error {
	if err := s.tracker.Cancel(ctx, ref); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.pending, ref)
	s.mu.Unlock()

	return nil
}

func (s *ValidationService) propose(
	ctx context.Context,
	validatorID string,
	kind domain.ProposalKind,
	payload []byte,
	verdict *domain.Verdict,
	violation error,
) (*ValidationOutcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	ref := ProposalRef(payload)

	if err := s.tracker.Register(ctx, ref); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pending[ref] = pendingProposal{kind: kind, payload: payload}
	s.mu.Unlock()

	outcome := &ValidationOutcome{ProposalRef: ref, Verdict: verdict}

	voteVerdict := domain.VerdictValid
	confidence := 0.0
	reason := ""
	if verdict != nil {
		confidence = verdict.Confidence
	}
	if violation != nil {
		voteVerdict = domain.VerdictInvalid
		confidence = 1.0
		reason = violation.Error()
		outcome.Violations = violationMessages(violation)
	}

	vote, err := domain.NewValidationVote(validatorID, ref, voteVerdict, reason, confidence)
	if err != nil {
		return nil, err
	}

	state, err := s.tracker.SubmitVote(ctx, vote)
	if err != nil {
		return nil, err
	}
	outcome.ConsensusState = state
	outcome.Entry = s.popCommitted(ref)

	log.Info("proposal submitted",
		slog.String("proposal_ref", ref),
		slog.String("kind", string(kind)),
		slog.String("self_verdict", string(voteVerdict)),
		slog.String("consensus_state", string(state)))

	return outcome, nil
}

// handleFinalized is the tracker's terminal-state callback. Only proposals
// finalized valid are committed to the ledger; rejections and timeouts are
// announced on the event bus without ever touching the chain.
func (s *ValidationService) handleFinalized(ctx context.Context, ref string, outcome consensus.State, votes []domain.ValidationVote) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	prop, ok := s.pending[ref]
	delete(s.pending, ref)
	s.mu.Unlock()

	if !ok {
		log.Warn("finalized proposal has no pending payload",
			slog.String("proposal_ref", ref),
			slog.String("outcome", string(outcome)))
		return
	}

	var sequence *uint64
	if outcome == consensus.StateFinalizedValid {
		entry, err := s.ledger.Append(ctx, prop.kind, prop.payload, votes, domain.VerdictValid)
		if err != nil {
			log.Error("failed to commit finalized proposal",
				slog.String("proposal_ref", ref),
				slog.String("error", err.Error()))
			return
		}

		sequence = &entry.Sequence
		s.mu.Lock()
		s.committed[ref] = entry
		s.mu.Unlock()
	}

	s.emitter.EmitEvent(ctx, events.NewFinalizationEvent(ref, string(outcome), votes, sequence))
}

func (s *ValidationService) popCommitted(ref string) *domain.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.committed[ref]
	delete(s.committed, ref)
	return entry
}

func isViolation(err error) bool {
	var vErr *domain.ViolationError
	return errors.As(err, &vErr)
}

func violationMessages(err error) []string {
	var vErr *domain.ViolationError
	if !errors.As(err, &vErr) {
		return []string{err.Error()}
	}
	msgs := make([]string, len(vErr.Violations))
	for i, v := range vErr.Violations {
		msgs[i] = v.Error()
	}
	return msgs
}
