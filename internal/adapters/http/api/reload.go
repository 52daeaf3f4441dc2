package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/scout/internal/domain/model"
	"github.com/okian/scout/internal/domain/types"
	"github.com/okian/scout/pkg/logger"
)

// ReloadDependencies queues dataset reloads.
type ReloadDependencies interface {
	RequestReload(ctx context.Context, reason string, force bool) (id string, duplicate bool, err error)
}

// ReloadHandler handles reload requests.
type ReloadHandler struct {
	deps ReloadDependencies
	log  logger.Logger
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps ReloadDependencies, l logger.Logger) *ReloadHandler {
	return &ReloadHandler{deps: deps, log: l}
}

// HandleReload handles POST /reload[?force=true]. The reload runs
// asynchronously; 202 means it was queued.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	const op = "api.reload"
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeFailure(w, WrapKind(op, ErrBadRequest, err))
			return
		}
		force = v
	}

	id, duplicate, err := h.deps.RequestReload(r.Context(), model.ReasonManual, force)
	if err != nil {
		h.log.Warn(r.Context(), "reload rejected", logger.Error(err))
		writeFailure(w, Wrap(op, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, types.ReloadAccepted{Status: "duplicate"})
		return
	}
	writeJSON(w, http.StatusAccepted, types.ReloadAccepted{RequestID: id, Status: "queued"})
}
