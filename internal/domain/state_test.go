package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validState() ThermodynamicState {
	return ThermodynamicState{
		SubstanceID: "water-1",
		Temperature: 300,
		Pressure:    101325,
		Phase:       PhaseLiquid,
		Entropy:     100,
		Enthalpy:    30000,
	}
}

func TestThermodynamicStateValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a well-formed state", func(t *testing.T) {
		t.Parallel()
		s := validState()
		assert.NoError(t, s.Validate())
	})

	t.Run("rejects temperature at or below absolute zero", func(t *testing.T) {
		t.Parallel()
		s := validState()
		s.Temperature = 0
		assert.ErrorIs(t, s.Validate(), ErrStateTemperatureNotPositive)

		s.Temperature = -10
		assert.ErrorIs(t, s.Validate(), ErrStateTemperatureNotPositive)
	})

	t.Run("rejects non-positive pressure", func(t *testing.T) {
		t.Parallel()
		s := validState()
		s.Pressure = 0
		assert.ErrorIs(t, s.Validate(), ErrStatePressureNotPositive)
	})

	t.Run("rejects unknown phases", func(t *testing.T) {
		t.Parallel()
		s := validState()
		s.Phase = "supercritical"
		assert.ErrorIs(t, s.Validate(), ErrUnknownPhase)
	})

	t.Run("rejects non-finite entropy", func(t *testing.T) {
		t.Parallel()
		s := validState()
		s.Entropy = math.NaN()
		assert.ErrorIs(t, s.Validate(), ErrStateValueNotFinite)
	})
}

func TestParsePhase(t *testing.T) {
	t.Parallel()

	for _, valid := range []string{"solid", "liquid", "gas", "plasma"} {
		p, err := ParsePhase(valid)
		require.NoError(t, err)
		assert.Equal(t, Phase(valid), p)
	}

	_, err := ParsePhase("bose-einstein")
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestGibbsEnergy(t *testing.T) {
	t.Parallel()

	s := validState()
	// G = H - T*S = 30000 - 300*100
	assert.InDelta(t, 0.0, s.GibbsEnergy(), 1e-9)
}
