package consensus

import "errors"

// Consensus tracker errors.
var (
	// ErrProposalNotFound is returned when a vote or query references a
	// proposal the tracker does not know about.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrProposalExists is returned when registering a proposal reference
	// that is already being tracked.
	ErrProposalExists = errors.New("proposal already registered")

	// ErrProposalFinalized is returned when a vote arrives after the
	// proposal reached a terminal state. The vote is recorded as an audit
	// note, never counted.
	ErrProposalFinalized = errors.New("proposal already finalized")

	// ErrAlreadyFinalized is returned when cancelling a proposal that has
	// already reached a terminal state.
	ErrAlreadyFinalized = errors.New("cannot cancel a finalized proposal")
)
