package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Physics   PhysicsConfig   `mapstructure:"physics"   validate:"required"`
	Consensus ConsensusConfig `mapstructure:"consensus" validate:"required"`
	Ledger    LedgerConfig    `mapstructure:"ledger"    validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
// An empty URL selects the in-memory ledger store (ephemeral mode).
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// AuthConfig contains the validator-identity authentication settings.
// Validators authenticate with their shared secret to obtain a JWT that
// names them on vote and validation submissions.
type AuthConfig struct {
	JWTSecret            string                `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int                   `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	Validators           []ValidatorCredential `mapstructure:"validators"             validate:"required,min=1,dive"`
}

// ValidatorCredential registers one validator identity and the bcrypt hash
// of its shared secret. Hashes are generated with cmd/hash-generator.
type ValidatorCredential struct {
	ID         string `mapstructure:"id"          validate:"required"`
	SecretHash string `mapstructure:"secret_hash" validate:"required"`
}

// PhysicsConfig contains the tolerances applied by the physics rules.
type PhysicsConfig struct {
	// EnergyToleranceEV is the absolute tolerance for the energy
	// conservation check, in eV.
	EnergyToleranceEV float64 `mapstructure:"energy_tolerance_ev" validate:"required,gt=0"`

	// EntropyToleranceJK is the absolute slack on the entropy non-decrease
	// check, in J/K.
	EntropyToleranceJK float64 `mapstructure:"entropy_tolerance_jk" validate:"gte=0"`

	// GibbsToleranceJ is the absolute slack on the Gibbs spontaneity check,
	// in J.
	GibbsToleranceJ float64 `mapstructure:"gibbs_tolerance_j" validate:"gte=0"`
}

// ConsensusConfig contains the multi-party validation settings.
type ConsensusConfig struct {
	// ValidatorCount is the number of validator identities expected to vote
	// on each proposal.
	ValidatorCount uint `mapstructure:"validator_count" validate:"required,gt=0"`

	// QuorumSize is the number of matching valid votes needed to finalize.
	// Zero selects a simple majority, ⌊N/2⌋+1.
	QuorumSize uint `mapstructure:"quorum_size" validate:"ltefield=ValidatorCount"`

	// DeadlineSeconds bounds how long a proposal may collect votes before
	// timing out.
	DeadlineSeconds uint `mapstructure:"deadline_seconds" validate:"required,gt=0"`
}

// LedgerConfig contains the ledger manager settings.
type LedgerConfig struct {
	// HashAlgorithm selects the chain hash. Only sha256 is supported.
	HashAlgorithm string `mapstructure:"hash_algorithm" validate:"required,oneof=sha256"`

	// VerifyIntervalMinutes is how often the background auditor re-verifies
	// the whole chain. Zero disables the periodic sweep.
	VerifyIntervalMinutes uint `mapstructure:"verify_interval_minutes"`
}

// EffectiveQuorum resolves the configured quorum size, applying the simple
// majority default when unset.
func (c ConsensusConfig) EffectiveQuorum() uint {
	if c.QuorumSize > 0 {
		return c.QuorumSize
	}
	return c.ValidatorCount/2 + 1
}
