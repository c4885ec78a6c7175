package api

import (
	"net/http"

	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/model"
)

// batchRequest is the body of POST /availability/batch.
type batchRequest struct {
	Abilities []string           `json:"abilities" validate:"required,min=1,dive,required"`
	Time      *float64           `json:"time" validate:"required,gte=0"`
	Event     string             `json:"event,omitempty"`
	Caster    string             `json:"caster,omitempty"`
	Position  model.TankPosition `json:"position,omitempty" validate:"omitempty,oneof=shared mainTank offTank"`
}

// simulateRequest is the body of POST /simulate.
type simulateRequest struct {
	Ability string   `json:"ability" validate:"required"`
	Time    *float64 `json:"time" validate:"required,gte=0"`
	Event   string   `json:"event" validate:"required"`
}

// AvailabilityHandler serves the availability queries.
type AvailabilityHandler struct {
	deps AvailabilityDependencies
}

// NewAvailabilityHandler creates a new availability handler.
func NewAvailabilityHandler(deps AvailabilityDependencies) *AvailabilityHandler {
	return &AvailabilityHandler{deps: deps}
}

// HandleGetAvailability handles GET /availability?ability=&time=&event=&caster=&position=.
func (h *AvailabilityHandler) HandleGetAvailability(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_availability"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	abilityID := r.URL.Query().Get("ability")
	if abilityID == "" {
		writeFailure(w, NewKind(op, ErrBadRequest))
		return
	}
	at, err := queryTime(op, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	q, err := queryScope(op, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.CheckAvailability(r.Context(), abilityID, at, r.URL.Query().Get("event"), q))
}

// HandleBatch handles POST /availability/batch.
func (h *AvailabilityHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_availability_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := decode(op, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	q := cooldown.Query{CasterJobID: req.Caster, TankPosition: req.Position}
	writeJSON(w, http.StatusOK, h.deps.CheckMultiple(r.Context(), req.Abilities, *req.Time, req.Event, q))
}

// HandleListAvailable handles GET /availability/all?time=&event=.
func (h *AvailabilityHandler) HandleListAvailable(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_availability_all"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	at, err := queryTime(op, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	q, err := queryScope(op, r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	results := h.deps.ListAvailableAt(r.Context(), at, r.URL.Query().Get("event"), q)
	if results == nil {
		results = []cooldown.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleSimulate handles POST /simulate.
func (h *AvailabilityHandler) HandleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_simulate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req simulateRequest
	if err := decode(op, r, &req); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SimulateUsage(r.Context(), req.Ability, *req.Time, req.Event))
}
