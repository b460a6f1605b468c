package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/thermoledger/thermoledger/internal/config"
	"github.com/thermoledger/thermoledger/internal/consensus"
	"github.com/thermoledger/thermoledger/internal/events"
	"github.com/thermoledger/thermoledger/internal/ledger"
	"github.com/thermoledger/thermoledger/internal/platform/memstore"
	"github.com/thermoledger/thermoledger/internal/platform/postgres"
	"github.com/thermoledger/thermoledger/internal/service"
	"github.com/thermoledger/thermoledger/internal/service/auth"
	"github.com/thermoledger/thermoledger/internal/store"
	"github.com/thermoledger/thermoledger/internal/validator"
)

// AuditTrailEventHandler logs every finalization event as a structured
// audit record, giving operators a complete trail of consensus outcomes
// independent of the ledger itself.
type AuditTrailEventHandler struct {
	logger *slog.Logger
}

// HandleEvent processes finalization events by writing them to the audit log.
func (h *AuditTrailEventHandler) HandleEvent(ctx context.Context, event *events.FinalizationEvent) error {
	attrs := []any{
		"event_id", event.ID,
		"proposal_ref", event.ProposalRef,
		"outcome", event.Outcome,
		"votes", len(event.Votes),
		"occurred_at", event.OccurredAt,
	}
	if event.Sequence != nil {
		attrs = append(attrs, "sequence", *event.Sequence)
	}

	h.logger.Info("proposal finalized", attrs...)
	return nil
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB // nil in ephemeral (in-memory) mode

	// Stores (using interfaces for proper abstraction)
	ledgerStore store.LedgerStore
	auditStore  store.AuditNoteStore

	// Service interfaces
	jwtService        auth.JWTService
	credentialChecker *auth.CredentialChecker
	quantumValidator  *validator.QuantumValidator
	thermoTracker     *validator.ThermoStateTracker
	tracker           *consensus.Tracker
	ledgerManager     *ledger.Manager
	validationService *service.ValidationService

	// Event system
	eventEmitter events.EventEmitter

	// Background chain verification
	auditor *ledger.Auditor
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection (nil selects the in-memory stores) that must be
// established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize credential checker
	app.credentialChecker = auth.NewCredentialChecker(cfg.Auth.Validators, auth.NewBcryptVerifier())

	// Initialize stores
	if db != nil {
		app.ledgerStore = postgres.NewPostgresLedgerStore(db, logger)
		app.auditStore = postgres.NewPostgresAuditNoteStore(db, logger)
	} else {
		app.ledgerStore = memstore.NewLedgerStore()
		app.auditStore = memstore.NewAuditNoteStore()
		logger.Warn("no database configured, running with ephemeral in-memory ledger")
	}

	// Initialize physics validators
	app.quantumValidator = validator.NewQuantumValidator(cfg.Physics, logger)
	app.thermoTracker = validator.NewThermoStateTracker(cfg.Physics, logger)

	// Initialize consensus tracker
	app.tracker = consensus.NewTracker(cfg.Consensus, app.auditStore, logger)
	logger.Info("consensus tracker initialized",
		"validator_count", cfg.Consensus.ValidatorCount,
		"quorum", cfg.Consensus.EffectiveQuorum(),
		"deadline_seconds", cfg.Consensus.DeadlineSeconds)

	// Initialize ledger manager
	app.ledgerManager, err = ledger.NewManager(ctx, app.ledgerStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ledger manager: %w", err)
	}

	// Initialize event emitter and audit trail
	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(&AuditTrailEventHandler{
		logger: logger.With("component", "audit_trail"),
	})
	app.eventEmitter = emitter

	// Initialize the orchestrating validation service. This also installs
	// the tracker's finalization handler.
	app.validationService = service.NewValidationService(
		app.quantumValidator,
		app.thermoTracker,
		app.tracker,
		app.ledgerManager,
		app.eventEmitter,
		logger,
	)

	// Initialize the background chain auditor
	interval := time.Duration(cfg.Ledger.VerifyIntervalMinutes) * time.Minute
	app.auditor = ledger.NewAuditor(app.ledgerManager, interval, logger)

	return app, nil
}

// cleanup stops background work and closes shared resources. Called during
// graceful shutdown.
func (app *application) cleanup() {
	if app.auditor != nil {
		app.auditor.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
