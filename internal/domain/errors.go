package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the physics violation kinds. Each concrete violation
// type wraps one of these so callers can classify with errors.Is while the
// concrete type carries the numeric values that caused the failure.
var (
	// ErrEnergyConservation indicates the photon energy does not match the
	// energy difference of the transition within tolerance.
	ErrEnergyConservation = errors.New("energy conservation violation")

	// ErrSelectionRule indicates the transition's quantum-number changes are
	// forbidden by the selection rules.
	ErrSelectionRule = errors.New("selection rule violation")

	// ErrPhotonConsistency indicates the transition's frequency or wavelength
	// does not match its photon energy (E = hf, λ = c/f).
	ErrPhotonConsistency = errors.New("photon consistency violation")

	// ErrEntropyDecrease indicates the final entropy is below the initial
	// entropy (second law violation).
	ErrEntropyDecrease = errors.New("entropy decrease violation")

	// ErrGibbsEnergy indicates the Gibbs free energy increases (ΔG > 0),
	// so the change is not spontaneous.
	ErrGibbsEnergy = errors.New("gibbs free energy violation")

	// ErrInvalidPhaseTransition indicates a direct transition between
	// non-adjacent phases.
	ErrInvalidPhaseTransition = errors.New("invalid phase transition")

	// ErrInvalidState indicates a state failed its basic physical
	// constraints (temperature, pressure, finiteness).
	ErrInvalidState = errors.New("invalid thermodynamic state")
)

// EnergyConservationError reports the expected and actual photon energy of
// a transition that failed the conservation check, in eV.
type EnergyConservationError struct {
	Expected float64
	Actual   float64
}

func (e *EnergyConservationError) Error() string {
	return fmt.Sprintf("%v: expected %g eV, got %g eV",
		ErrEnergyConservation, e.Expected, e.Actual)
}

func (e *EnergyConservationError) Unwrap() error { return ErrEnergyConservation }

// SelectionRuleError reports which quantum-number rule was violated and the
// offending delta.
type SelectionRuleError struct {
	Rule  string // "delta_l", "delta_j", "delta_m", "partial" or "relaxed"
	Delta int
}

func (e *SelectionRuleError) Error() string {
	switch e.Rule {
	case "relaxed":
		return fmt.Sprintf("%v: energies must be finite and non-zero", ErrSelectionRule)
	case "partial":
		return fmt.Sprintf("%v: quantum numbers must be given for both states", ErrSelectionRule)
	}
	return fmt.Sprintf("%v: %s = %+d is forbidden", ErrSelectionRule, e.Rule, e.Delta)
}

func (e *SelectionRuleError) Unwrap() error { return ErrSelectionRule }

// PhotonConsistencyError reports a mismatch between the transition's
// asserted frequency or wavelength and the value implied by its photon
// energy.
type PhotonConsistencyError struct {
	Quantity string // "frequency" or "wavelength"
	Expected float64
	Actual   float64
}

func (e *PhotonConsistencyError) Error() string {
	return fmt.Sprintf("%v: %s expected %g, got %g",
		ErrPhotonConsistency, e.Quantity, e.Expected, e.Actual)
}

func (e *PhotonConsistencyError) Unwrap() error { return ErrPhotonConsistency }

// EntropyDecreaseError reports the initial and final entropies of a state
// change that decreased entropy, in J/K.
type EntropyDecreaseError struct {
	Initial float64
	Final   float64
}

func (e *EntropyDecreaseError) Error() string {
	return fmt.Sprintf("%v: entropy decreased from %g J/K to %g J/K",
		ErrEntropyDecrease, e.Initial, e.Final)
}

func (e *EntropyDecreaseError) Unwrap() error { return ErrEntropyDecrease }

// GibbsEnergyError reports the positive Gibbs free energy change of a
// non-spontaneous state change, in joules.
type GibbsEnergyError struct {
	DeltaG float64
}

func (e *GibbsEnergyError) Error() string {
	return fmt.Sprintf("%v: ΔG = %g J > 0", ErrGibbsEnergy, e.DeltaG)
}

func (e *GibbsEnergyError) Unwrap() error { return ErrGibbsEnergy }

// PhaseTransitionError reports a direct transition between non-adjacent
// phases.
type PhaseTransitionError struct {
	From Phase
	To   Phase
}

func (e *PhaseTransitionError) Error() string {
	return fmt.Sprintf("%v: %s to %s is not adjacent", ErrInvalidPhaseTransition, e.From, e.To)
}

func (e *PhaseTransitionError) Unwrap() error { return ErrInvalidPhaseTransition }

// InvalidStateError reports a state that failed its basic physical
// constraints, naming which of the pair (initial/final) and why.
type InvalidStateError struct {
	Which string // "initial" or "final"
	Err   error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%v: %s state: %v", ErrInvalidState, e.Which, e.Err)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// ViolationError aggregates every physics law a proposal violated. Thermo
// validation runs all checks regardless of early failures so diagnostics
// can report the complete set; errors.Is matches any wrapped violation.
type ViolationError struct {
	Violations []error
}

func (e *ViolationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the individual violations to errors.Is / errors.As.
func (e *ViolationError) Unwrap() []error { return e.Violations }

// NewViolationError wraps the given violations, returning nil when there
// are none so callers can return it directly.
func NewViolationError(violations []error) error {
	if len(violations) == 0 {
		return nil
	}
	return &ViolationError{Violations: violations}
}
