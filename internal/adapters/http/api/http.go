// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/okian/mitiplan/internal/domain/cooldown"
	"github.com/okian/mitiplan/internal/domain/model"
	"github.com/okian/mitiplan/internal/domain/optimistic"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AvailabilityDependencies
	MitigationDependencies
	SessionDependencies
}

// AvailabilityDependencies answers read-only availability questions.
type AvailabilityDependencies interface {
	CheckAvailability(ctx context.Context, abilityID string, at float64, eventID string, q cooldown.Query) cooldown.Result
	CheckMultiple(ctx context.Context, abilityIDs []string, at float64, eventID string, q cooldown.Query) map[string]cooldown.Result
	ListAvailableAt(ctx context.Context, at float64, eventID string, q cooldown.Query) []cooldown.Result
	SimulateUsage(ctx context.Context, abilityID string, at float64, eventID string) cooldown.Preview
}

// MitigationDependencies changes the authoritative assignments.
type MitigationDependencies interface {
	AddMitigation(ctx context.Context, req optimistic.Request) (optimistic.Outcome, error)
	RemoveMitigation(ctx context.Context, eventID string, slot model.Slot) error
	Pending(ctx context.Context) []optimistic.Pending
}

// SessionDependencies re-points the planning session.
type SessionDependencies interface {
	UpdateSession(ctx context.Context, u cooldown.Update)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	availabilityHandler *AvailabilityHandler
	mitigationsHandler  *MitigationsHandler
	sessionHandler      *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		availabilityHandler: NewAvailabilityHandler(deps),
		mitigationsHandler:  NewMitigationsHandler(deps),
		sessionHandler:      NewSessionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/availability", MetricsMiddleware(s.availabilityHandler.HandleGetAvailability, "availability"))
	mux.HandleFunc("/availability/batch", MetricsMiddleware(s.availabilityHandler.HandleBatch, "availability_batch"))
	mux.HandleFunc("/availability/all", MetricsMiddleware(s.availabilityHandler.HandleListAvailable, "availability_all"))
	mux.HandleFunc("/simulate", MetricsMiddleware(s.availabilityHandler.HandleSimulate, "simulate"))
	mux.HandleFunc("/mitigations", MetricsMiddleware(s.mitigationsHandler.HandleMitigations, "mitigations"))
	mux.HandleFunc("/pending", MetricsMiddleware(s.mitigationsHandler.HandlePending, "pending"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandlePutSession, "session"))
}

var validate = validator.New()

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure writes err with the status its chain maps to.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusOf(err)
	writeError(w, status, code, err)
}

// decode reads a JSON body into v and validates it.
func decode(op string, r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// queryTime parses a required finite, non-negative time parameter.
func queryTime(op string, r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("time")
	if raw == "" {
		return 0, NewKind(op, ErrBadRequest)
	}
	at, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(at) || math.IsInf(at, 0) || at < 0 {
		return 0, NewKind(op, ErrBadRequest)
	}
	return at, nil
}

// queryScope reads the optional caster and position parameters.
func queryScope(op string, r *http.Request) (cooldown.Query, error) {
	q := cooldown.Query{
		CasterJobID:  r.URL.Query().Get("caster"),
		TankPosition: model.TankPosition(r.URL.Query().Get("position")),
	}
	if q.TankPosition != "" && !q.TankPosition.Valid() {
		return q, NewKind(op, ErrBadRequest)
	}
	return q, nil
}
