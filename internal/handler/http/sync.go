package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mlevkov/lockstep/internal/app"
	"github.com/mlevkov/lockstep/internal/logger"
	"github.com/mlevkov/lockstep/internal/service"
	"github.com/mlevkov/lockstep/internal/utils"
	"github.com/mlevkov/lockstep/models"
)

func (h *Handler) pushChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pushChanges").Msg("no account was given")
		http.Error(w, app.MsgNoAccountProvided, http.StatusUnauthorized)
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("invalid JSON was passed")
		http.Error(w, app.MsgInvalidDataProvided, http.StatusBadRequest)
		return
	}

	resp, err := h.sync.Push(ctx, account, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingIdempotencyKey):
			log.Err(err).Msg("push batch without idempotency key")
			http.Error(w, app.MsgMissingIdempotencyKey, http.StatusBadRequest)
			return
		case errors.Is(err, service.ErrInvalidChangeBatch):
			log.Err(err).Msg("push batch failed validation")
			http.Error(w, app.MsgInvalidChangeBatch, http.StatusBadRequest)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during push")
			http.Error(w, app.MsgInternalServerError, http.StatusInternalServerError)
			return
		}
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

func (h *Handler) pullChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	account, found := utils.GetAccountFromContext(ctx)
	if !found {
		log.Error().Str("func", "*Handler.pullChanges").Msg("no account was given")
		http.Error(w, app.MsgNoAccountProvided, http.StatusUnauthorized)
		return
	}

	query := r.URL.Query()
	var types []string
	if raw := query.Get("types"); raw != "" {
		types = strings.Split(raw, ",")
	}

	resp, err := h.sync.Pull(ctx, account, types, query.Get("since"), query.Get("clientId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSyncToken):
			log.Err(err).Str("since", query.Get("since")).Msg("invalid sync token")
			http.Error(w, app.MsgInvalidSyncToken, http.StatusBadRequest)
			return
		default:
			log.Err(err).Msg("unexpected error occurred during pull")
			http.Error(w, app.MsgInternalServerError, http.StatusInternalServerError)
			return
		}
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}
