package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/declanlscott/printdesk-sub002/internal/logger"
	"github.com/declanlscott/printdesk-sub002/internal/sync"
	"github.com/declanlscott/printdesk-sub002/internal/utils"
	"github.com/declanlscott/printdesk-sub002/models"
)

// pull handles POST /api/replicache/pull.
//
// Recoverable protocol errors (ClientStateNotFound, VersionNotSupported)
// are written with HTTP 200 so the Replicache client processes them;
// anything else is a transport-level failure.
func (h *Handler) pull(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("error decoding pull request")
		http.Error(w, "malformed pull request", http.StatusBadRequest)
		return
	}

	result, err := h.puller.Pull(r.Context(), principal, req)
	if err != nil {
		h.writeSyncFailure(w, r, err)
		return
	}

	if result.Error != nil {
		_, _ = utils.WriteJSON(w, result.Error, http.StatusOK)
		return
	}

	_, _ = utils.WriteJSON(w, result.Response, http.StatusOK)
}

// push handles POST /api/replicache/push. A successful push has an empty
// JSON object as its body.
func (h *Handler) push(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("error decoding push request")
		http.Error(w, "malformed push request", http.StatusBadRequest)
		return
	}

	result, err := h.pusher.Push(r.Context(), principal, req)
	if err != nil {
		h.writeSyncFailure(w, r, err)
		return
	}

	if result.Error != nil {
		_, _ = utils.WriteJSON(w, result.Error, http.StatusOK)
		return
	}

	_, _ = utils.WriteJSON(w, struct{}{}, http.StatusOK)
}

// poke handles GET /api/replicache/poke by upgrading the request to a
// websocket subscription scoped to the principal's tenant.
func (h *Handler) poke(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.GetPrincipalFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	// Subscribe writes the upgrade failure response itself
	_ = h.subscriber.Subscribe(w, r, principal.TenantID)
}

func (h *Handler) writeSyncFailure(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	if errors.Is(err, sync.ErrOwnershipViolation) {
		log.Warn().Err(err).Msg("rejecting sync request for foreign client group")
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}

	log.Err(err).Msg("sync request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
