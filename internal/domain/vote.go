package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Vote-specific validation errors
var (
	// ErrVoteValidatorIDEmpty is returned when a vote carries no validator identity.
	ErrVoteValidatorIDEmpty = errors.New("vote validator ID cannot be empty")

	// ErrVoteProposalRefEmpty is returned when a vote references no proposal.
	ErrVoteProposalRefEmpty = errors.New("vote proposal reference cannot be empty")

	// ErrVoteVerdictInvalid is returned when a vote's verdict is not valid/invalid.
	ErrVoteVerdictInvalid = errors.New("vote verdict must be valid or invalid")

	// ErrVoteConfidenceOutOfRange is returned when a confidence score falls
	// outside [0, 1].
	ErrVoteConfidenceOutOfRange = errors.New("vote confidence must be in [0, 1]")

	// ErrAuditNoteEmpty is returned when an audit note is missing its
	// proposal reference or note text.
	ErrAuditNoteEmpty = errors.New("audit note requires a proposal reference and note text")
)

// VoteVerdict is a validator's local decision on a proposal.
type VoteVerdict string

const (
	// VerdictValid marks a proposal as physically admissible.
	VerdictValid VoteVerdict = "valid"

	// VerdictInvalid marks a proposal as violating one or more laws.
	VerdictInvalid VoteVerdict = "invalid"
)

// ValidationVote is one validator's verdict on one proposal. Votes are
// consumed by the consensus tracker and, for finalized-valid proposals,
// embedded in the committed ledger entry.
type ValidationVote struct {
	ValidatorID string      `json:"validator_id"`
	ProposalRef string      `json:"proposal_ref"`
	Verdict     VoteVerdict `json:"verdict"`
	Reason      string      `json:"reason,omitempty"`
	Confidence  float64     `json:"confidence"`
	Timestamp   time.Time   `json:"timestamp"`
}

// NewValidationVote creates a vote stamped with the current UTC time and
// validates it. Timestamps are always UTC so the canonical vote
// serialization hashed into ledger entries is stable across round-trips.
func NewValidationVote(
	validatorID, proposalRef string,
	verdict VoteVerdict,
	reason string,
	confidence float64,
) (*ValidationVote, error) {
	vote := &ValidationVote{
		ValidatorID: validatorID,
		ProposalRef: proposalRef,
		Verdict:     verdict,
		Reason:      reason,
		Confidence:  confidence,
		Timestamp:   time.Now().UTC(),
	}

	if err := vote.Validate(); err != nil {
		return nil, err
	}

	return vote, nil
}

// Validate checks if the vote has valid data.
func (v *ValidationVote) Validate() error {
	if v.ValidatorID == "" {
		return ErrVoteValidatorIDEmpty
	}

	if v.ProposalRef == "" {
		return ErrVoteProposalRefEmpty
	}

	if v.Verdict != VerdictValid && v.Verdict != VerdictInvalid {
		return ErrVoteVerdictInvalid
	}

	if v.Confidence < 0 || v.Confidence > 1 {
		return ErrVoteConfidenceOutOfRange
	}

	return nil
}

// AuditNote records a consensus event that must not affect a delivered
// decision but must not be silently dropped either: votes arriving after
// finalization or after a timeout.
type AuditNote struct {
	ID          uuid.UUID `json:"id"`
	ProposalRef string    `json:"proposal_ref"`
	ValidatorID string    `json:"validator_id"`
	Note        string    `json:"note"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAuditNote creates an audit note stamped with the current UTC time.
func NewAuditNote(proposalRef, validatorID, note string) *AuditNote {
	return &AuditNote{
		ID:          uuid.New(),
		ProposalRef: proposalRef,
		ValidatorID: validatorID,
		Note:        note,
		CreatedAt:   time.Now().UTC(),
	}
}

// Validate checks if the audit note has valid data.
func (n *AuditNote) Validate() error {
	if n.ProposalRef == "" || n.Note == "" {
		return ErrAuditNoteEmpty
	}
	return nil
}
