// Package events defines the in-process finalization event and its
// emitter. Handlers observe consensus outcomes without the tracker or
// service knowing who listens; the audit trail logger is wired this way.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thermoledger/thermoledger/internal/domain"
)

// FinalizationEvent announces that a proposal reached a terminal consensus
// state. Sequence is set only for outcomes committed to the ledger.
type FinalizationEvent struct {
	ID          uuid.UUID               `json:"id"`
	ProposalRef string                  `json:"proposal_ref"`
	Outcome     string                  `json:"outcome"`
	Votes       []domain.ValidationVote `json:"votes"`
	Sequence    *uint64                 `json:"sequence,omitempty"`
	OccurredAt  time.Time               `json:"occurred_at"`
}

// NewFinalizationEvent creates an event stamped with the current UTC time.
func NewFinalizationEvent(proposalRef, outcome string, votes []domain.ValidationVote, sequence *uint64) *FinalizationEvent {
	return &FinalizationEvent{
		ID:          uuid.New(),
		ProposalRef: proposalRef,
		Outcome:     outcome,
		Votes:       votes,
		Sequence:    sequence,
		OccurredAt:  time.Now().UTC(),
	}
}

// EventHandler processes finalization events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *FinalizationEvent) error
}

// EventEmitter dispatches finalization events to registered handlers.
type EventEmitter interface {
	// EmitEvent delivers the event to every registered handler.
	EmitEvent(ctx context.Context, event *FinalizationEvent)

	// RegisterHandler adds a handler for subsequent events.
	RegisterHandler(handler EventHandler)
}
