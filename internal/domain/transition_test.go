package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestQuantumTransitionValidate(t *testing.T) {
	t.Parallel()

	valid := func() *QuantumTransition {
		return &QuantumTransition{
			SystemID:      "hydrogen-1",
			InitialEnergy: -3.4,
			FinalEnergy:   -13.6,
			PhotonEnergy:  10.2,
			Timestamp:     1700000000,
		}
	}

	t.Run("accepts a well-formed transition", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects empty system ID", func(t *testing.T) {
		t.Parallel()
		tr := valid()
		tr.SystemID = ""
		assert.ErrorIs(t, tr.Validate(), ErrTransitionSystemIDEmpty)
	})

	t.Run("rejects non-finite energies", func(t *testing.T) {
		t.Parallel()
		tr := valid()
		tr.PhotonEnergy = math.NaN()
		assert.ErrorIs(t, tr.Validate(), ErrTransitionEnergyNotFinite)

		tr = valid()
		tr.InitialEnergy = math.Inf(1)
		assert.ErrorIs(t, tr.Validate(), ErrTransitionEnergyNotFinite)
	})

	t.Run("rejects a photon on a degenerate transition", func(t *testing.T) {
		t.Parallel()
		tr := valid()
		tr.FinalEnergy = tr.InitialEnergy
		assert.ErrorIs(t, tr.Validate(), ErrTransitionDegenerate)
	})

	t.Run("rejects partial quantum number pairs", func(t *testing.T) {
		t.Parallel()
		tr := valid()
		tr.InitialL = intPtr(1)
		assert.ErrorIs(t, tr.Validate(), ErrTransitionPartialQuantumNumbers)
	})
}

func TestHasQuantumNumbers(t *testing.T) {
	t.Parallel()

	tr := &QuantumTransition{SystemID: "sys-1"}
	assert.False(t, tr.HasQuantumNumbers())

	tr.InitialL, tr.FinalL = intPtr(1), intPtr(0)
	assert.True(t, tr.HasQuantumNumbers())
}

func TestCanonicalPayloadIsStable(t *testing.T) {
	t.Parallel()

	tr, err := NewQuantumTransition("hydrogen-1", -3.4, -13.6, 10.2)
	require.NoError(t, err)

	a, err := tr.CanonicalPayload()
	require.NoError(t, err)
	b, err := tr.CanonicalPayload()
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
