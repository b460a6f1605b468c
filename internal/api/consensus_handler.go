package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thermoledger/thermoledger/internal/api/shared"
	"github.com/thermoledger/thermoledger/internal/consensus"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/service"
)

// ConsensusHandler handles consensus-related HTTP requests
type ConsensusHandler struct {
	service *service.ValidationService
	tracker *consensus.Tracker
}

// NewConsensusHandler creates a new ConsensusHandler
func NewConsensusHandler(svc *service.ValidationService, tracker *consensus.Tracker) *ConsensusHandler {
	return &ConsensusHandler{
		service: svc,
		tracker: tracker,
	}
}

// SubmitVote handles POST /api/consensus/votes requests. The voting
// validator's identity comes from the bearer token, never the body.
func (h *ConsensusHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	validatorID, ok := r.Context().Value(shared.ValidatorIDContextKey).(string)
	if !ok || validatorID == "" {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Validator identity not found")
		return
	}

	var req VoteRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	vote, err := domain.NewValidationVote(
		validatorID,
		req.ProposalRef,
		domain.VoteVerdict(req.Verdict),
		req.Reason,
		req.Confidence,
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	state, entry, err := h.service.SubmitVote(r.Context(), vote)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VoteResponse{
		State: string(state),
		Entry: entryToResponse(entry),
	})
}

// GetProposal handles GET /api/consensus/proposals/{ref} requests
func (h *ConsensusHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Proposal reference required")
		return
	}

	status, err := h.tracker.Status(r.Context(), ref)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, statusToResponse(status))
}

// CancelProposal handles DELETE /api/consensus/proposals/{ref} requests.
// Cancellation goes through the service so the parked proposal payload is
// released along with the consensus tracking.
func (h *ConsensusHandler) CancelProposal(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Proposal reference required")
		return
	}

	if err := h.service.Cancel(r.Context(), ref); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
