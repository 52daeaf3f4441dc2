package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/types"
)

// PlayersDependencies defines the table read operations.
type PlayersDependencies interface {
	PlayerByID(ctx context.Context, id string) (model.Player, error)
	Players(ctx context.Context, offset, limit int) ([]model.Player, int, error)
}

// PlayersHandler serves the player table.
type PlayersHandler struct {
	deps     PlayersDependencies
	maxLimit int
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayersDependencies, maxLimit int) *PlayersHandler {
	return &PlayersHandler{deps: deps, maxLimit: maxLimit}
}

// HandleList handles GET /players?offset=N&limit=M.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	offset, limit, err := pageParams(r.URL.Query(), h.maxLimit, h.maxLimit)
	if err != nil {
		writeFailure(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	players, total, err := h.deps.Players(r.Context(), offset, limit)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.PlayerPage{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		Players: types.FromPlayers(players),
	})
}

// HandleGet handles GET /players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	id := chi.URLParam(r, "id")
	if id == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	p, err := h.deps.PlayerByID(r.Context(), id)
	if err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.FromPlayer(p))
}
