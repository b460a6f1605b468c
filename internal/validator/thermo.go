package validator

import (
	"context"
	"log/slog"

	"github.com/thermoledger/thermoledger/internal/config"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/domain/physics"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
)

// ThermoStateTracker validates thermodynamic state changes against the
// second law, Gibbs spontaneity, and phase adjacency. All checks run
// regardless of earlier failures so the violation set is complete.
type ThermoStateTracker struct {
	entropyTolerance float64
	gibbsTolerance   float64
	logger           *slog.Logger
}

// NewThermoStateTracker creates a thermo validator with the configured
// tolerances. Zero tolerances fall back to the defaults. If logger is nil,
// a default logger will be used.
func NewThermoStateTracker(cfg config.PhysicsConfig, logger *slog.Logger) *ThermoStateTracker {
	entropyTol := cfg.EntropyToleranceJK
	if entropyTol <= 0 {
		entropyTol = physics.DefaultEntropyTolerance
	}

	gibbsTol := cfg.GibbsToleranceJ
	if gibbsTol <= 0 {
		gibbsTol = physics.DefaultGibbsTolerance
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ThermoStateTracker{
		entropyTolerance: entropyTol,
		gibbsTolerance:   gibbsTol,
		logger:           logger.With(slog.String("component", "thermo_tracker")),
	}
}

// Validate runs all thermodynamic checks over the state change. State
// pre-checks (positive temperature and pressure, known phases, finite
// values) gate the physics checks: a structurally invalid state makes the
// remaining inequalities meaningless, so they are skipped and the state
// errors returned alone.
func (tr *ThermoStateTracker) Validate(ctx context.Context, change *domain.StateChange) (*domain.Verdict, error) {
	log := logger.FromContextOrDefault(ctx, tr.logger)

	var stateErrs []error
	if err := change.Initial.Validate(); err != nil {
		stateErrs = append(stateErrs, &domain.InvalidStateError{Which: "initial", Err: err})
	}
	if err := change.Final.Validate(); err != nil {
		stateErrs = append(stateErrs, &domain.InvalidStateError{Which: "final", Err: err})
	}
	if len(stateErrs) > 0 {
		log.Debug("state change failed structural validation",
			slog.String("substance_id", change.Initial.SubstanceID),
			slog.Int("violations", len(stateErrs)))
		return nil, domain.NewViolationError(stateErrs)
	}

	var violations []error

	if !physics.EntropyNonDecreasing(&change.Initial, &change.Final, tr.entropyTolerance) {
		violations = append(violations, &domain.EntropyDecreaseError{
			Initial: change.Initial.Entropy,
			Final:   change.Final.Entropy,
		})
	}

	if ok, deltaG := physics.GibbsSpontaneity(&change.Initial, &change.Final, tr.gibbsTolerance); !ok {
		violations = append(violations, &domain.GibbsEnergyError{DeltaG: deltaG})
	}

	if !physics.PhaseAdjacency(change.Initial.Phase, change.Final.Phase) {
		violations = append(violations, &domain.PhaseTransitionError{
			From: change.Initial.Phase,
			To:   change.Final.Phase,
		})
	}

	if len(violations) > 0 {
		log.Info("state change rejected",
			slog.String("substance_id", change.Initial.SubstanceID),
			slog.Int("violations", len(violations)))
		return nil, domain.NewViolationError(violations)
	}

	verdict := &domain.Verdict{
		Valid:      true,
		Confidence: physics.ThermoConfidence(&change.Initial, &change.Final),
	}

	log.Debug("state change validated",
		slog.String("substance_id", change.Initial.SubstanceID),
		slog.Float64("confidence", verdict.Confidence))

	return verdict, nil
}

// ValidateBatch validates each state change independently. Results are
// positional: result[i] holds the verdict or error for changes[i].
func (tr *ThermoStateTracker) ValidateBatch(ctx context.Context, changes []*domain.StateChange) []BatchResult {
	results := make([]BatchResult, len(changes))
	for i, change := range changes {
		verdict, err := tr.Validate(ctx, change)
		results[i] = BatchResult{Verdict: verdict, Err: err}
	}
	return results
}
