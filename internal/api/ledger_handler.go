package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/thermoledger/thermoledger/internal/api/shared"
	"github.com/thermoledger/thermoledger/internal/ledger"
)

// LedgerHandler handles ledger query and verification HTTP requests
type LedgerHandler struct {
	manager *ledger.Manager
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(manager *ledger.Manager) *LedgerHandler {
	return &LedgerHandler{manager: manager}
}

// GetEntries handles GET /api/ledger/entries?from=&to= requests. Omitted
// bounds default to the full chain.
func (h *LedgerHandler) GetEntries(w http.ResponseWriter, r *http.Request) {
	from, err := parseSeqParam(r, "from", 0)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid 'from' parameter")
		return
	}
	to, err := parseSeqParam(r, "to", 0)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid 'to' parameter")
		return
	}

	entries, err := h.manager.GetRange(r.Context(), from, to)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *entryToResponse(&entries[i])
	}

	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GetEntry handles GET /api/ledger/entries/{seq} requests
func (h *LedgerHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseUint(chi.URLParam(r, "seq"), 10, 64)
	if err != nil || seq == 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid sequence number")
		return
	}

	entry, err := h.manager.GetBySequence(r.Context(), seq)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, entryToResponse(entry))
}

// Resume handles POST /api/ledger/resume requests: the operator surface for
// clearing a halt. The chain is re-verified first and writes resume only on
// a passing audit; a still-broken chain answers 409 with the first failing
// sequence.
func (h *LedgerHandler) Resume(w http.ResponseWriter, r *http.Request) {
	badSeq, err := h.manager.VerifyChain(r.Context())
	if err != nil {
		if badSeq > 0 {
			shared.RespondWithJSON(w, r, http.StatusConflict, VerifyResponse{
				OK:              false,
				FirstFailureSeq: &badSeq,
			})
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.manager.Resume()
	shared.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{OK: true})
}

// Verify handles GET /api/ledger/verify requests
func (h *LedgerHandler) Verify(w http.ResponseWriter, r *http.Request) {
	badSeq, err := h.manager.VerifyChain(r.Context())
	if err != nil {
		if badSeq > 0 {
			shared.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{
				OK:              false,
				FirstFailureSeq: &badSeq,
			})
			return
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, VerifyResponse{OK: true})
}

func parseSeqParam(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
