package physics

// Physical constants (CODATA 2018 exact values where defined).
const (
	// PlanckConstant is h in J·s.
	PlanckConstant = 6.62607015e-34

	// SpeedOfLight is c in m/s.
	SpeedOfLight = 299792458.0

	// BoltzmannConstant is k_B in J/K.
	BoltzmannConstant = 1.380649e-23

	// GasConstant is R in J/(mol·K).
	GasConstant = 8.314462618

	// ElectronCharge is e in C, also the J-per-eV conversion factor.
	ElectronCharge = 1.602176634e-19
)

// Default tolerances. All are configurable; these are the fallbacks the
// config layer applies when unset.
const (
	// DefaultEnergyTolerance is the absolute tolerance for the energy
	// conservation check, in eV. An absolute tolerance rather than exact
	// equality accounts for floating-point representation of physical
	// quantities.
	DefaultEnergyTolerance = 1e-12

	// DefaultEntropyTolerance is the absolute slack allowed on the entropy
	// non-decrease check, in J/K.
	DefaultEntropyTolerance = 1e-6

	// DefaultGibbsTolerance is the absolute slack allowed on the Gibbs
	// spontaneity check, in J, admitting reversible transitions at ΔG ≈ 0.
	DefaultGibbsTolerance = 1e-3

	// photonRelativeTolerance is the relative tolerance for the optional
	// frequency/wavelength consistency checks.
	photonRelativeTolerance = 1e-10
)
