package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViolationError(t *testing.T) {
	t.Parallel()

	t.Run("nil for empty violation set", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, NewViolationError(nil))
		assert.NoError(t, NewViolationError([]error{}))
	})

	t.Run("matches any wrapped violation with errors.Is", func(t *testing.T) {
		t.Parallel()
		err := NewViolationError([]error{
			&EnergyConservationError{Expected: 10.2, Actual: 9.8},
			&SelectionRuleError{Rule: "delta_l", Delta: 2},
		})
		require.Error(t, err)

		assert.ErrorIs(t, err, ErrEnergyConservation)
		assert.ErrorIs(t, err, ErrSelectionRule)
		assert.NotErrorIs(t, err, ErrEntropyDecrease)
	})

	t.Run("exposes concrete types with errors.As", func(t *testing.T) {
		t.Parallel()
		err := NewViolationError([]error{
			&EnergyConservationError{Expected: 10.2, Actual: 9.8},
		})

		var ecErr *EnergyConservationError
		require.True(t, errors.As(err, &ecErr))
		assert.InDelta(t, 10.2, ecErr.Expected, 1e-9)
		assert.InDelta(t, 9.8, ecErr.Actual, 1e-9)
	})

	t.Run("joins messages", func(t *testing.T) {
		t.Parallel()
		err := NewViolationError([]error{
			&EntropyDecreaseError{Initial: 100, Final: 90},
			&GibbsEnergyError{DeltaG: 500},
		})
		assert.Contains(t, err.Error(), "entropy decrease")
		assert.Contains(t, err.Error(), "gibbs")
	})
}
