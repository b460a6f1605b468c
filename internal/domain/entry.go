package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// Entry-specific validation errors
var (
	// ErrEntryPayloadEmpty is returned when a ledger entry has no payload.
	ErrEntryPayloadEmpty = errors.New("ledger entry payload cannot be empty")

	// ErrEntryHashSize is returned when an entry or previous hash is not
	// exactly HashSize bytes.
	ErrEntryHashSize = errors.New("ledger entry hashes must be 32 bytes")

	// ErrEntryNoVotes is returned when a ledger entry carries no contributing votes.
	ErrEntryNoVotes = errors.New("ledger entry must carry at least one vote")
)

// HashSize is the byte length of entry and previous-entry hashes (SHA-256).
const HashSize = 32

// GenesisPrevHash is the well-known previous-hash constant of the genesis
// entry: HashSize zero bytes.
var GenesisPrevHash = make([]byte, HashSize)

// ProposalKind discriminates the payload type of a ledger entry.
type ProposalKind string

const (
	// KindQuantumTransition marks a QuantumTransition payload.
	KindQuantumTransition ProposalKind = "quantum_transition"

	// KindStateChange marks a StateChange payload.
	KindStateChange ProposalKind = "state_change"
)

// Verdict is a single validator's local decision over a proposal, produced
// by the quantum validator or the thermo state tracker.
type Verdict struct {
	// Valid is true when every applicable law passed.
	Valid bool `json:"valid"`

	// Confidence is in [0, 1]; marginal passes score lower.
	Confidence float64 `json:"confidence"`

	// RelaxedSelectionRules is true when quantum numbers were absent and the
	// selection-rule check degraded to the relaxed finite/non-zero energy
	// check. This is a weaker guarantee and consumers may want to know.
	RelaxedSelectionRules bool `json:"relaxed_selection_rules,omitempty"`
}

// LedgerEntry is one finalized, immutable record in the energy ledger.
// EntryHash covers the payload, the canonical vote serialization and
// PrevHash, chaining each entry to its predecessor so retroactive tampering
// is detectable. Entries are never updated or deleted; corrections are new
// entries referencing the old one in their payload.
type LedgerEntry struct {
	Sequence  uint64           `json:"sequence"`
	Kind      ProposalKind     `json:"kind"`
	Payload   json.RawMessage  `json:"payload"`
	Votes     []ValidationVote `json:"votes"`
	Verdict   VoteVerdict      `json:"verdict"`
	EntryHash []byte           `json:"entry_hash"`
	PrevHash  []byte           `json:"prev_hash"`
	CreatedAt time.Time        `json:"created_at"`
}

// Validate checks if the entry has valid data. Hash correctness is the
// ledger manager's concern; this checks shape only.
func (e *LedgerEntry) Validate() error {
	if len(e.Payload) == 0 {
		return ErrEntryPayloadEmpty
	}

	if len(e.Votes) == 0 {
		return ErrEntryNoVotes
	}

	if len(e.EntryHash) != HashSize || len(e.PrevHash) != HashSize {
		return ErrEntryHashSize
	}

	if e.Verdict != VerdictValid && e.Verdict != VerdictInvalid {
		return ErrVoteVerdictInvalid
	}

	return nil
}

// CanonicalVotes returns the canonical JSON serialization of the entry's
// votes, the exact bytes covered by the entry hash. Re-marshaling the
// parsed votes (rather than reusing stored raw bytes) keeps the hash input
// stable across storage backends that normalize JSON.
func (e *LedgerEntry) CanonicalVotes() ([]byte, error) {
	return json.Marshal(e.Votes)
}
