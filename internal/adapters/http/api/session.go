package api

import (
	"net/http"

	"github.com/okian/mitiplan/internal/domain/cooldown"
)

// SessionHandler re-points the planning session.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandlePutSession handles PUT /session. The roster accepts a flat job id
// list or the per-role object shape.
func (h *SessionHandler) HandlePutSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_session"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var u cooldown.Update
	if err := decode(op, r, &u); err != nil {
		writeFailure(w, err)
		return
	}
	h.deps.UpdateSession(r.Context(), u)
	w.WriteHeader(http.StatusNoContent)
}
