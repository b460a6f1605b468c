package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// State-specific validation errors
var (
	// ErrStateSubstanceIDEmpty is returned when a state has no substance identifier.
	ErrStateSubstanceIDEmpty = errors.New("state substance ID cannot be empty")

	// ErrStateTemperatureNotPositive is returned when a state's temperature is
	// at or below absolute zero. The third law makes 0 K unreachable, so this
	// is a structural invariant, not a physics verdict.
	ErrStateTemperatureNotPositive = errors.New("state temperature must be above absolute zero")

	// ErrStatePressureNotPositive is returned when a state's pressure is not positive.
	ErrStatePressureNotPositive = errors.New("state pressure must be positive")

	// ErrStateValueNotFinite is returned when entropy or enthalpy is NaN or infinite.
	ErrStateValueNotFinite = errors.New("state entropy and enthalpy must be finite")

	// ErrUnknownPhase is returned when a phase string is not one of the
	// recognized phase states.
	ErrUnknownPhase = errors.New("unknown phase")
)

// Phase identifies a thermodynamic phase state.
type Phase string

// Recognized phase states.
const (
	PhaseSolid  Phase = "solid"
	PhaseLiquid Phase = "liquid"
	PhaseGas    Phase = "gas"
	PhasePlasma Phase = "plasma"
)

// ParsePhase converts a string into a Phase, returning ErrUnknownPhase for
// anything outside the recognized set.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseSolid, PhaseLiquid, PhaseGas, PhasePlasma:
		return Phase(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPhase, s)
	}
}

// phaseAdjacency is the symmetric adjacency table over the phase states.
// It permits melting/freezing, vaporization/condensation,
// sublimation/deposition and ionization/recombination. Anything else
// (notably solid to plasma directly) must pass through an intermediate
// phase. The table lives here, in one place, so the permitted transitions
// are auditable at a glance.
var phaseAdjacency = map[Phase][]Phase{
	PhaseSolid:  {PhaseLiquid, PhaseGas},
	PhaseLiquid: {PhaseSolid, PhaseGas},
	PhaseGas:    {PhaseSolid, PhaseLiquid, PhasePlasma},
	PhasePlasma: {PhaseGas},
}

// AdjacentTo reports whether a direct transition from p to other is
// physically meaningful. A self-transition is always permitted.
func (p Phase) AdjacentTo(other Phase) bool {
	if p == other {
		return true
	}
	for _, q := range phaseAdjacency[p] {
		if q == other {
			return true
		}
	}
	return false
}

// ThermodynamicState represents a substance's thermodynamic state at a
// point in time. Temperature is in Kelvin, pressure in Pascal, entropy in
// J/K and enthalpy in J.
type ThermodynamicState struct {
	SubstanceID string  `json:"substance_id"`
	Temperature float64 `json:"temperature_k"`
	Pressure    float64 `json:"pressure_pa"`
	Phase       Phase   `json:"phase"`
	Entropy     float64 `json:"entropy_jk"`
	Enthalpy    float64 `json:"enthalpy_j"`
}

// GibbsEnergy derives the state's Gibbs free energy, G = H − T·S, in joules.
func (s *ThermodynamicState) GibbsEnergy() float64 {
	return s.Enthalpy - s.Temperature*s.Entropy
}

// Validate checks the structural invariants of the state.
func (s *ThermodynamicState) Validate() error {
	if s.SubstanceID == "" {
		return ErrStateSubstanceIDEmpty
	}

	if s.Temperature <= 0 {
		return fmt.Errorf("%w: %g K", ErrStateTemperatureNotPositive, s.Temperature)
	}

	if s.Pressure <= 0 {
		return fmt.Errorf("%w: %g Pa", ErrStatePressureNotPositive, s.Pressure)
	}

	if _, err := ParsePhase(string(s.Phase)); err != nil {
		return err
	}

	for _, v := range []float64{s.Entropy, s.Enthalpy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrStateValueNotFinite
		}
	}

	return nil
}

// StateChange pairs the initial and final states of a proposed
// thermodynamic state change. It is the proposal payload for thermo
// validations, mirroring QuantumTransition for quantum ones.
type StateChange struct {
	Initial ThermodynamicState `json:"initial"`
	Final   ThermodynamicState `json:"final"`
}

// CanonicalPayload returns the canonical JSON serialization of the state
// change, used as the committed ledger payload and the proposal reference
// hash input.
func (c *StateChange) CanonicalPayload() (json.RawMessage, error) {
	return json.Marshal(c)
}
