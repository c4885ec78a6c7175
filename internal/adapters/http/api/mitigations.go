package api

import (
	"net/http"

	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/optimistic"
)

// outcomeResponse is written for add requests that did not commit.
type outcomeResponse struct {
	optimistic.Outcome
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MitigationsHandler serves mitigation writes and pending markers.
type MitigationsHandler struct {
	deps MitigationDependencies
}

// NewMitigationsHandler creates a new mitigations handler.
func NewMitigationsHandler(deps MitigationDependencies) *MitigationsHandler {
	return &MitigationsHandler{deps: deps}
}

// HandleMitigations dispatches POST and DELETE /mitigations.
func (h *MitigationsHandler) HandleMitigations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleAdd(w, r)
	case http.MethodDelete:
		h.handleRemove(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *MitigationsHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_mitigation"
	var req optimistic.Request
	if err := decode(op, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	out, err := h.deps.AddMitigation(r.Context(), req)
	if err != nil {
		status, code := statusOf(err)
		if status == http.StatusConflict {
			writeJSON(w, status, outcomeResponse{Outcome: out, Code: code, Message: err.Error()})
			return
		}
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// handleRemove handles DELETE /mitigations?event=&ability=&position=.
func (h *MitigationsHandler) handleRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_mitigation"
	eventID := r.URL.Query().Get("event")
	slot := model.Slot{
		AbilityID:    r.URL.Query().Get("ability"),
		TankPosition: model.TankPosition(r.URL.Query().Get("position")),
	}
	if eventID == "" || slot.AbilityID == "" || !slot.TankPosition.Valid() {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.RemoveMitigation(r.Context(), eventID, slot); err != nil {
		writeFailure(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePending handles GET /pending.
func (h *MitigationsHandler) HandlePending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Pending(r.Context()))
}
