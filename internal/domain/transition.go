package domain

import (
	"encoding/json"
	"errors"
	"math"
	"time"
)

// Transition-specific validation errors
var (
	// ErrTransitionSystemIDEmpty is returned when a transition has no system identifier.
	ErrTransitionSystemIDEmpty = errors.New("transition system ID cannot be empty")

	// ErrTransitionEnergyNotFinite is returned when an energy field is NaN or infinite.
	ErrTransitionEnergyNotFinite = errors.New("transition energy values must be finite")

	// ErrTransitionDegenerate is returned when a photon energy is asserted for a
	// transition whose initial and final energies are equal.
	ErrTransitionDegenerate = errors.New(
		"initial and final energy must differ when a photon energy is asserted")

	// ErrTransitionPartialQuantumNumbers is returned when only one side of a
	// quantum-number pair is present, making the delta undefined.
	ErrTransitionPartialQuantumNumbers = errors.New(
		"quantum numbers must be given for both the initial and final state")
)

// QuantumTransition represents a proposed electron energy transition.
// Energies are in electronvolts, wavelength in nanometers, frequency in
// hertz. The quantum-number fields are optional; when absent, selection-rule
// validation degrades to a relaxed check (see the physics package).
type QuantumTransition struct {
	SystemID      string   `json:"system_id"`
	InitialEnergy float64  `json:"initial_energy_ev"`
	FinalEnergy   float64  `json:"final_energy_ev"`
	PhotonEnergy  float64  `json:"photon_energy_ev"`
	Wavelength    *float64 `json:"wavelength_nm,omitempty"`
	Frequency     *float64 `json:"frequency_hz,omitempty"`
	Timestamp     int64    `json:"timestamp"`

	// Orbital (l), total angular momentum (j) and magnetic (m) quantum
	// numbers for the initial and final states. A pair must be given for
	// both states or for neither.
	InitialL *int `json:"initial_l,omitempty"`
	FinalL   *int `json:"final_l,omitempty"`
	InitialJ *int `json:"initial_j,omitempty"`
	FinalJ   *int `json:"final_j,omitempty"`
	InitialM *int `json:"initial_m,omitempty"`
	FinalM   *int `json:"final_m,omitempty"`
}

// Validate checks the structural invariants of the transition. Physical
// admissibility (conservation, selection rules) is the validator's job;
// this only rejects inputs no rule could meaningfully evaluate.
func (t *QuantumTransition) Validate() error {
	if t.SystemID == "" {
		return ErrTransitionSystemIDEmpty
	}

	for _, e := range []float64{t.InitialEnergy, t.FinalEnergy, t.PhotonEnergy} {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return ErrTransitionEnergyNotFinite
		}
	}

	if t.PhotonEnergy != 0 && t.InitialEnergy == t.FinalEnergy {
		return ErrTransitionDegenerate
	}

	if (t.InitialL == nil) != (t.FinalL == nil) ||
		(t.InitialJ == nil) != (t.FinalJ == nil) ||
		(t.InitialM == nil) != (t.FinalM == nil) {
		return ErrTransitionPartialQuantumNumbers
	}

	return nil
}

// HasQuantumNumbers reports whether any quantum-number pair is present,
// i.e. whether the strict selection rules can be applied.
func (t *QuantumTransition) HasQuantumNumbers() bool {
	return t.InitialL != nil || t.InitialJ != nil || t.InitialM != nil
}

// CanonicalPayload returns the canonical JSON serialization of the
// transition, used both as the proposal payload committed to the ledger and
// as the input to the proposal reference hash.
func (t *QuantumTransition) CanonicalPayload() (json.RawMessage, error) {
	return json.Marshal(t)
}

// NewQuantumTransition creates a transition stamped with the current time
// and validates it.
func NewQuantumTransition(systemID string, initial, final, photon float64) (*QuantumTransition, error) {
	t := &QuantumTransition{
		SystemID:      systemID,
		InitialEnergy: initial,
		FinalEnergy:   final,
		PhotonEnergy:  photon,
		Timestamp:     time.Now().UTC().Unix(),
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}
