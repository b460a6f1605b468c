package api

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/thermoledger/thermoledger/internal/consensus"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/service"
)

// QuantumTransitionRequest represents the request body for quantum
// transition validation. Energies are in eV, wavelength in nm, frequency
// in Hz.
type QuantumTransitionRequest struct {
	SystemID      string   `json:"system_id"        validate:"required"`
	InitialEnergy float64  `json:"initial_energy_ev"`
	FinalEnergy   float64  `json:"final_energy_ev"`
	PhotonEnergy  float64  `json:"photon_energy_ev"`
	Wavelength    *float64 `json:"wavelength_nm,omitempty"`
	Frequency     *float64 `json:"frequency_hz,omitempty"`
	Timestamp     int64    `json:"timestamp,omitempty"`

	InitialL *int `json:"initial_l,omitempty"`
	FinalL   *int `json:"final_l,omitempty"`
	InitialJ *int `json:"initial_j,omitempty"`
	FinalJ   *int `json:"final_j,omitempty"`
	InitialM *int `json:"initial_m,omitempty"`
	FinalM   *int `json:"final_m,omitempty"`
}

// ToDomain converts the request to a domain transition, stamping the
// submission time when the client omitted one.
func (r *QuantumTransitionRequest) ToDomain() *domain.QuantumTransition {
	ts := r.Timestamp
	if ts == 0 {
		ts = time.Now().UTC().Unix()
	}
	return &domain.QuantumTransition{
		SystemID:      r.SystemID,
		InitialEnergy: r.InitialEnergy,
		FinalEnergy:   r.FinalEnergy,
		PhotonEnergy:  r.PhotonEnergy,
		Wavelength:    r.Wavelength,
		Frequency:     r.Frequency,
		Timestamp:     ts,
		InitialL:      r.InitialL,
		FinalL:        r.FinalL,
		InitialJ:      r.InitialJ,
		FinalJ:        r.FinalJ,
		InitialM:      r.InitialM,
		FinalM:        r.FinalM,
	}
}

// ThermodynamicStateRequest represents one thermodynamic state in a state
// change request. Temperature in K, pressure in Pa, entropy in J/K,
// enthalpy in J.
type ThermodynamicStateRequest struct {
	SubstanceID string  `json:"substance_id" validate:"required"`
	Temperature float64 `json:"temperature_k"`
	Pressure    float64 `json:"pressure_pa"`
	Phase       string  `json:"phase"        validate:"required,oneof=solid liquid gas plasma"`
	Entropy     float64 `json:"entropy_jk"`
	Enthalpy    float64 `json:"enthalpy_j"`
}

// StateChangeRequest represents the request body for thermodynamic state
// change validation.
type StateChangeRequest struct {
	Initial ThermodynamicStateRequest `json:"initial" validate:"required"`
	Final   ThermodynamicStateRequest `json:"final"   validate:"required"`
}

// ToDomain converts the request to a domain state change.
func (r *StateChangeRequest) ToDomain() *domain.StateChange {
	return &domain.StateChange{
		Initial: stateToDomain(r.Initial),
		Final:   stateToDomain(r.Final),
	}
}

func stateToDomain(s ThermodynamicStateRequest) domain.ThermodynamicState {
	return domain.ThermodynamicState{
		SubstanceID: s.SubstanceID,
		Temperature: s.Temperature,
		Pressure:    s.Pressure,
		Phase:       domain.Phase(s.Phase),
		Entropy:     s.Entropy,
		Enthalpy:    s.Enthalpy,
	}
}

// ValidationResponse represents the outcome of a validation submission.
type ValidationResponse struct {
	ProposalRef           string               `json:"proposal_ref"`
	Verdict               string               `json:"verdict"`
	Errors                []string             `json:"errors,omitempty"`
	Confidence            float64              `json:"confidence"`
	RelaxedSelectionRules bool                 `json:"relaxed_selection_rules,omitempty"`
	ConsensusState        string               `json:"consensus_state"`
	Entry                 *LedgerEntryResponse `json:"entry,omitempty"`
}

// VoteRequest represents the request body for submitting a consensus vote.
// The voting validator's identity comes from the bearer token, never the
// body.
type VoteRequest struct {
	ProposalRef string  `json:"proposal_ref" validate:"required"`
	Verdict     string  `json:"verdict"      validate:"required,oneof=valid invalid"`
	Reason      string  `json:"reason,omitempty"`
	Confidence  float64 `json:"confidence"   validate:"gte=0,lte=1"`
}

// VoteResponse represents the consensus state after a vote was counted.
type VoteResponse struct {
	State string               `json:"state"`
	Entry *LedgerEntryResponse `json:"entry,omitempty"`
}

// ProposalStatusResponse represents a tracked proposal's current state.
type ProposalStatusResponse struct {
	ProposalRef   string    `json:"proposal_ref"`
	State         string    `json:"state"`
	VotesReceived int       `json:"votes_received"`
	ValidCount    uint      `json:"valid_count"`
	InvalidCount  uint      `json:"invalid_count"`
	Quorum        uint      `json:"quorum"`
	Deadline      time.Time `json:"deadline"`
}

// LedgerEntryResponse represents one committed ledger entry. Hashes are
// hex encoded.
type LedgerEntryResponse struct {
	Sequence  uint64                  `json:"sequence"`
	Kind      string                  `json:"kind"`
	Payload   json.RawMessage         `json:"payload"`
	Votes     []domain.ValidationVote `json:"votes"`
	Verdict   string                  `json:"verdict"`
	EntryHash string                  `json:"entry_hash"`
	PrevHash  string                  `json:"prev_hash"`
	CreatedAt time.Time               `json:"created_at"`
}

// VerifyResponse represents the result of a chain verification.
type VerifyResponse struct {
	OK              bool    `json:"ok"`
	FirstFailureSeq *uint64 `json:"first_failure_seq,omitempty"`
}

// TokenRequest represents the request body for obtaining an access token.
type TokenRequest struct {
	ValidatorID string `json:"validator_id" validate:"required"`
	Secret      string `json:"secret"       validate:"required"`
}

// TokenResponse represents a successful token issuance.
type TokenResponse struct {
	Token string `json:"token"`
}

// entryToResponse converts a domain ledger entry to its response form.
func entryToResponse(entry *domain.LedgerEntry) *LedgerEntryResponse {
	if entry == nil {
		return nil
	}
	return &LedgerEntryResponse{
		Sequence:  entry.Sequence,
		Kind:      string(entry.Kind),
		Payload:   entry.Payload,
		Votes:     entry.Votes,
		Verdict:   string(entry.Verdict),
		EntryHash: hex.EncodeToString(entry.EntryHash),
		PrevHash:  hex.EncodeToString(entry.PrevHash),
		CreatedAt: entry.CreatedAt,
	}
}

// outcomeToResponse converts a service validation outcome to its response
// form.
func outcomeToResponse(outcome *service.ValidationOutcome) ValidationResponse {
	resp := ValidationResponse{
		ProposalRef:    outcome.ProposalRef,
		Verdict:        string(domain.VerdictValid),
		Errors:         outcome.Violations,
		ConsensusState: string(outcome.ConsensusState),
		Entry:          entryToResponse(outcome.Entry),
	}
	if outcome.Verdict != nil {
		resp.Confidence = outcome.Verdict.Confidence
		resp.RelaxedSelectionRules = outcome.Verdict.RelaxedSelectionRules
	}
	if len(outcome.Violations) > 0 {
		resp.Verdict = string(domain.VerdictInvalid)
		resp.Confidence = 1.0
	}
	return resp
}

// statusToResponse converts a tracker snapshot to its response form.
func statusToResponse(status *consensus.ProposalStatus) ProposalStatusResponse {
	return ProposalStatusResponse{
		ProposalRef:   status.ProposalRef,
		State:         string(status.State),
		VotesReceived: len(status.Votes),
		ValidCount:    status.ValidCount,
		InvalidCount:  status.InvalidCount,
		Quorum:        status.Quorum,
		Deadline:      status.Deadline,
	}
}
