package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thermoledger/thermoledger/internal/domain"
)

func intPtr(v int) *int { return &v }

func hydrogenLymanAlpha() *domain.QuantumTransition {
	// n=2 -> n=1 emission: E_i = -3.4 eV, E_f = -13.6 eV, photon 10.2 eV.
	return &domain.QuantumTransition{
		SystemID:      "hydrogen-1",
		InitialEnergy: -3.4,
		FinalEnergy:   -13.6,
		PhotonEnergy:  10.2,
		Timestamp:     1700000000,
	}
}

func TestEnergyConservation(t *testing.T) {
	t.Parallel()

	t.Run("passes when photon energy matches the level difference", func(t *testing.T) {
		t.Parallel()
		ok, expected, actual := EnergyConservation(hydrogenLymanAlpha(), DefaultEnergyTolerance)
		assert.True(t, ok)
		assert.InDelta(t, 10.2, expected, 1e-9)
		assert.InDelta(t, 10.2, actual, 1e-9)
	})

	t.Run("fails when photon energy is off", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.PhotonEnergy = 9.8

		ok, expected, actual := EnergyConservation(tr, DefaultEnergyTolerance)
		assert.False(t, ok)
		assert.InDelta(t, 10.2, expected, 1e-9)
		assert.InDelta(t, 9.8, actual, 1e-9)
	})

	t.Run("tolerance bounds are inclusive", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.PhotonEnergy = 10.2 + 0.5

		ok, _, _ := EnergyConservation(tr, 0.5)
		assert.True(t, ok)
	})
}

func TestSelectionRules(t *testing.T) {
	t.Parallel()

	t.Run("allows delta l of one", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialL, tr.FinalL = intPtr(1), intPtr(0)
		tr.InitialJ, tr.FinalJ = intPtr(1), intPtr(1)
		tr.InitialM, tr.FinalM = intPtr(0), intPtr(0)

		violations, relaxed := SelectionRules(tr)
		assert.Empty(t, violations)
		assert.False(t, relaxed)
	})

	t.Run("forbids delta l of zero", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialL, tr.FinalL = intPtr(1), intPtr(1)

		violations, relaxed := SelectionRules(tr)
		require.Len(t, violations, 1)
		assert.False(t, relaxed)
		assert.ErrorIs(t, violations[0], domain.ErrSelectionRule)
	})

	t.Run("forbids delta l of two", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialL, tr.FinalL = intPtr(2), intPtr(0)

		violations, _ := SelectionRules(tr)
		require.Len(t, violations, 1)
	})

	t.Run("forbids j zero to zero", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialJ, tr.FinalJ = intPtr(0), intPtr(0)

		violations, _ := SelectionRules(tr)
		require.Len(t, violations, 1)
		assert.ErrorIs(t, violations[0], domain.ErrSelectionRule)
	})

	t.Run("forbids delta m of two", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialM, tr.FinalM = intPtr(-1), intPtr(1)

		violations, _ := SelectionRules(tr)
		require.Len(t, violations, 1)
	})

	t.Run("degrades to relaxed mode without quantum numbers", func(t *testing.T) {
		t.Parallel()
		violations, relaxed := SelectionRules(hydrogenLymanAlpha())
		assert.Empty(t, violations)
		assert.True(t, relaxed)
	})

	t.Run("relaxed mode rejects zero energies", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialEnergy = 0

		violations, relaxed := SelectionRules(tr)
		require.Len(t, violations, 1)
		assert.True(t, relaxed)
	})

	t.Run("reports multiple violations together", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		tr.InitialL, tr.FinalL = intPtr(0), intPtr(0)
		tr.InitialJ, tr.FinalJ = intPtr(0), intPtr(2)
		tr.InitialM, tr.FinalM = intPtr(0), intPtr(2)

		violations, _ := SelectionRules(tr)
		assert.Len(t, violations, 3)
	})

	t.Run("rejects partial quantum-number pairs without panicking", func(t *testing.T) {
		t.Parallel()
		for _, set := range []func(tr *domain.QuantumTransition){
			func(tr *domain.QuantumTransition) { tr.InitialL = intPtr(1) },
			func(tr *domain.QuantumTransition) { tr.FinalL = intPtr(0) },
			func(tr *domain.QuantumTransition) { tr.InitialJ = intPtr(1) },
			func(tr *domain.QuantumTransition) { tr.FinalM = intPtr(0) },
		} {
			tr := hydrogenLymanAlpha()
			set(tr)

			violations, relaxed := SelectionRules(tr)
			require.Len(t, violations, 1)
			assert.False(t, relaxed)
			assert.ErrorIs(t, violations[0], domain.ErrSelectionRule)
		}
	})
}

func TestPhotonConsistency(t *testing.T) {
	t.Parallel()

	t.Run("accepts matching frequency and wavelength", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		// f = E·e/h for 10.2 eV, λ = c/f in nm.
		freq := 10.2 * ElectronCharge / PlanckConstant
		wl := SpeedOfLight / freq * 1e9
		tr.Frequency = &freq
		tr.Wavelength = &wl

		assert.Empty(t, PhotonConsistency(tr))
	})

	t.Run("rejects mismatched frequency", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		freq := 1e15 // far from the 2.466e15 Hz the photon energy implies
		tr.Frequency = &freq

		violations := PhotonConsistency(tr)
		require.Len(t, violations, 1)
		assert.ErrorIs(t, violations[0], domain.ErrPhotonConsistency)
	})

	t.Run("rejects mismatched wavelength", func(t *testing.T) {
		t.Parallel()
		tr := hydrogenLymanAlpha()
		freq := 10.2 * ElectronCharge / PlanckConstant
		wl := 500.0 // Lyman alpha is ~121.6 nm
		tr.Frequency = &freq
		tr.Wavelength = &wl

		violations := PhotonConsistency(tr)
		require.Len(t, violations, 1)
	})

	t.Run("skips absent fields", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, PhotonConsistency(hydrogenLymanAlpha()))
	})
}

func TestEntropyNonDecreasing(t *testing.T) {
	t.Parallel()

	initial := &domain.ThermodynamicState{Entropy: 100}
	assert.True(t, EntropyNonDecreasing(initial, &domain.ThermodynamicState{Entropy: 150}, DefaultEntropyTolerance))
	assert.True(t, EntropyNonDecreasing(initial, &domain.ThermodynamicState{Entropy: 100}, DefaultEntropyTolerance))
	assert.False(t, EntropyNonDecreasing(initial, &domain.ThermodynamicState{Entropy: 99}, DefaultEntropyTolerance))
}

func TestGibbsSpontaneity(t *testing.T) {
	t.Parallel()

	t.Run("spontaneous change passes", func(t *testing.T) {
		t.Parallel()
		initial := &domain.ThermodynamicState{Temperature: 300, Entropy: 100, Enthalpy: 50000}
		final := &domain.ThermodynamicState{Temperature: 300, Entropy: 150, Enthalpy: 50000}

		ok, deltaG := GibbsSpontaneity(initial, final, DefaultGibbsTolerance)
		assert.True(t, ok)
		assert.InDelta(t, -15000, deltaG, 1e-6)
	})

	t.Run("non-spontaneous change fails with positive delta G", func(t *testing.T) {
		t.Parallel()
		initial := &domain.ThermodynamicState{Temperature: 300, Entropy: 100, Enthalpy: 50000}
		final := &domain.ThermodynamicState{Temperature: 300, Entropy: 100, Enthalpy: 60000}

		ok, deltaG := GibbsSpontaneity(initial, final, DefaultGibbsTolerance)
		assert.False(t, ok)
		assert.InDelta(t, 10000, deltaG, 1e-6)
	})

	t.Run("equilibrium is allowed", func(t *testing.T) {
		t.Parallel()
		state := &domain.ThermodynamicState{Temperature: 273.15, Entropy: 100, Enthalpy: 30000}

		ok, deltaG := GibbsSpontaneity(state, state, DefaultGibbsTolerance)
		assert.True(t, ok)
		assert.Zero(t, deltaG)
	})
}

func TestPhaseAdjacency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to domain.Phase
		want     bool
	}{
		{domain.PhaseSolid, domain.PhaseLiquid, true},
		{domain.PhaseLiquid, domain.PhaseGas, true},
		{domain.PhaseSolid, domain.PhaseGas, true},
		{domain.PhaseGas, domain.PhasePlasma, true},
		{domain.PhasePlasma, domain.PhaseGas, true},
		{domain.PhaseSolid, domain.PhasePlasma, false},
		{domain.PhasePlasma, domain.PhaseSolid, false},
		{domain.PhasePlasma, domain.PhaseLiquid, false},
		{domain.PhaseLiquid, domain.PhaseLiquid, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, PhaseAdjacency(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestQuantumConfidence(t *testing.T) {
	t.Parallel()

	t.Run("exact match on a known line scores full confidence", func(t *testing.T) {
		t.Parallel()
		score := QuantumConfidence(hydrogenLymanAlpha(), DefaultEnergyTolerance, false)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("relaxed mode caps the score", func(t *testing.T) {
		t.Parallel()
		score := QuantumConfidence(hydrogenLymanAlpha(), DefaultEnergyTolerance, true)
		assert.InDelta(t, 0.75, score, 1e-9)
	})

	t.Run("marginal pass scores lower", func(t *testing.T) {
		t.Parallel()
		tr := &domain.QuantumTransition{
			SystemID:      "sys-1",
			InitialEnergy: -2.0,
			FinalEnergy:   -7.0,
			PhotonEnergy:  5.0 + 0.4,
		}
		score := QuantumConfidence(tr, 0.5, false)
		assert.Less(t, score, 0.3)
		assert.GreaterOrEqual(t, score, 0.0)
	})
}

func TestThermoConfidence(t *testing.T) {
	t.Parallel()

	t.Run("melting with entropy gain scores above half", func(t *testing.T) {
		t.Parallel()
		initial := &domain.ThermodynamicState{
			Temperature: 273.15, Pressure: 101325,
			Phase: domain.PhaseSolid, Entropy: 100, Enthalpy: 30000,
		}
		final := &domain.ThermodynamicState{
			Temperature: 274.15, Pressure: 101325,
			Phase: domain.PhaseLiquid, Entropy: 122, Enthalpy: 30000,
		}

		score := ThermoConfidence(initial, final)
		assert.Greater(t, score, 0.5)
		assert.LessOrEqual(t, score, 1.0)
	})

	t.Run("extreme temperature swing reduces the score", func(t *testing.T) {
		t.Parallel()
		initial := &domain.ThermodynamicState{
			Temperature: 300, Pressure: 101325,
			Phase: domain.PhaseGas, Entropy: 100, Enthalpy: 30000,
		}
		calm := &domain.ThermodynamicState{
			Temperature: 310, Pressure: 101325,
			Phase: domain.PhaseGas, Entropy: 120, Enthalpy: 30000,
		}
		extreme := &domain.ThermodynamicState{
			Temperature: 3000, Pressure: 101325,
			Phase: domain.PhaseGas, Entropy: 120, Enthalpy: 30000,
		}

		assert.Greater(t, ThermoConfidence(initial, calm), ThermoConfidence(initial, extreme))
	})
}

func TestIsCommonTransition(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCommonTransition(hydrogenLymanAlpha()))

	absorption := &domain.QuantumTransition{
		SystemID:      "hydrogen-1",
		InitialEnergy: -13.6,
		FinalEnergy:   -3.4,
		PhotonEnergy:  10.2,
	}
	assert.True(t, IsCommonTransition(absorption))

	exotic := &domain.QuantumTransition{
		SystemID:      "sys-1",
		InitialEnergy: -40.0,
		FinalEnergy:   -90.0,
		PhotonEnergy:  50.0,
	}
	assert.False(t, IsCommonTransition(exotic))
}
