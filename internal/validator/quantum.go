package validator

import (
	"context"
	"log/slog"

	"github.com/thermoledger/thermoledger/internal/config"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/domain/physics"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
)

// QuantumValidator validates quantum transition proposals against energy
// conservation, the selection rules, and photon consistency. It is
// stateless apart from its configured tolerances and safe for concurrent
// use.
type QuantumValidator struct {
	energyTolerance float64
	logger          *slog.Logger
}

// NewQuantumValidator creates a quantum validator with the configured
// energy tolerance. A zero tolerance falls back to the default. If logger
// is nil, a default logger will be used.
func NewQuantumValidator(cfg config.PhysicsConfig, logger *slog.Logger) *QuantumValidator {
	tolerance := cfg.EnergyToleranceEV
	if tolerance <= 0 {
		tolerance = physics.DefaultEnergyTolerance
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &QuantumValidator{
		energyTolerance: tolerance,
		logger:          logger.With(slog.String("component", "quantum_validator")),
	}
}

// Validate runs all quantum checks over the transition. On success it
// returns a verdict with a confidence score; on violation it returns a
// nil verdict and a *domain.ViolationError aggregating every failed check.
// Structural errors (missing fields, non-finite values) are returned as-is
// from the transition's own validation.
func (v *QuantumValidator) Validate(ctx context.Context, t *domain.QuantumTransition) (*domain.Verdict, error) {
	log := logger.FromContextOrDefault(ctx, v.logger)

	if err := t.Validate(); err != nil {
		log.Debug("transition failed structural validation",
			slog.String("system_id", t.SystemID),
			slog.String("error", err.Error()))
		return nil, err
	}

	var violations []error

	if ok, expected, actual := physics.EnergyConservation(t, v.energyTolerance); !ok {
		violations = append(violations, &domain.EnergyConservationError{
			Expected: expected,
			Actual:   actual,
		})
	}

	selectionViolations, relaxed := physics.SelectionRules(t)
	violations = append(violations, selectionViolations...)

	violations = append(violations, physics.PhotonConsistency(t)...)

	if len(violations) > 0 {
		log.Info("quantum transition rejected",
			slog.String("system_id", t.SystemID),
			slog.Int("violations", len(violations)))
		return nil, domain.NewViolationError(violations)
	}

	verdict := &domain.Verdict{
		Valid:                 true,
		Confidence:            physics.QuantumConfidence(t, v.energyTolerance, relaxed),
		RelaxedSelectionRules: relaxed,
	}

	log.Debug("quantum transition validated",
		slog.String("system_id", t.SystemID),
		slog.Float64("confidence", verdict.Confidence),
		slog.Bool("relaxed", relaxed))

	return verdict, nil
}

// ValidateBatch validates each transition independently. Results are
// positional: result[i] holds the verdict or error for transitions[i].
// A violation in one transition never affects another.
func (v *QuantumValidator) ValidateBatch(ctx context.Context, transitions []*domain.QuantumTransition) []BatchResult {
	results := make([]BatchResult, len(transitions))
	for i, t := range transitions {
		verdict, err := v.Validate(ctx, t)
		results[i] = BatchResult{Verdict: verdict, Err: err}
	}
	return results
}

// BatchResult is one transition's or state change's outcome within a batch.
type BatchResult struct {
	Verdict *domain.Verdict
	Err     error
}
