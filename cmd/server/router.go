package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/thermoledger/thermoledger/internal/api"
	apiMiddleware "github.com/thermoledger/thermoledger/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware) // Add trace IDs for improved error handling

	// Create API handlers using the application's services
	authHandler := api.NewAuthHandler(app.credentialChecker, app.jwtService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	validationHandler := api.NewValidationHandler(app.validationService)
	consensusHandler := api.NewConsensusHandler(app.validationService, app.tracker)
	ledgerHandler := api.NewLedgerHandler(app.ledgerManager)

	// Register routes
	r.Route("/api", func(r chi.Router) {
		// Authentication endpoint (public)
		r.Post("/auth/token", authHandler.Token)

		// Ledger reads are public; the chain is tamper-evident, not secret
		r.Get("/ledger/entries", ledgerHandler.GetEntries)
		r.Get("/ledger/entries/{seq}", ledgerHandler.GetEntry)
		r.Get("/ledger/verify", ledgerHandler.Verify)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Validation endpoints
			r.Post("/validate/quantum", validationHandler.ValidateQuantum)
			r.Post("/validate/thermo", validationHandler.ValidateThermo)

			// Consensus endpoints
			r.Post("/consensus/votes", consensusHandler.SubmitVote)
			r.Get("/consensus/proposals/{ref}", consensusHandler.GetProposal)
			r.Delete("/consensus/proposals/{ref}", consensusHandler.CancelProposal)

			// Operator surface for clearing a ledger halt after an audit
			r.Post("/ledger/resume", ledgerHandler.Resume)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte("OK"))
		if err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
