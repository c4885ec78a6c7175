// Package ws receives remote assignment snapshots over a websocket and hands
// them to the snapshot queue.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/mitiplan/internal/adapters/mq/queue"
	"github.com/okian/mitiplan/internal/domain/reconcile"
	"github.com/okian/mitiplan/pkg/logger"
	"github.com/okian/mitiplan/pkg/metrics"
)

// Ack statuses.
const (
	StatusQueued   = "queued"
	StatusRejected = "rejected"
)

// Submitter accepts snapshots for asynchronous reconciliation.
type Submitter interface {
	Submit(ctx context.Context, snap reconcile.Snapshot) error
}

// Ack answers one inbound frame.
type Ack struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Handler upgrades connections and reads snapshot frames until the peer
// disconnects.
type Handler struct {
	submitter Submitter
	upgrader  websocket.Upgrader
	validate  *validator.Validate
	logger    logger.Logger
}

// NewHandler creates a websocket handler feeding submitter.
func NewHandler(submitter Submitter, opts ...Option) *Handler {
	h := &Handler{
		submitter: submitter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		validate: validator.New(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the websocket route to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.Handle)
}

// Handle serves GET /ws.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(ctx, "websocket upgrade failed", logger.Error(err))
		metrics.RecordErrorByComponent("ws", "upgrade")
		return
	}
	defer func() { _ = conn.Close() }()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug(ctx, "websocket closed", logger.Error(err))
			}
			return
		}
		ack := h.receive(ctx, payload)
		if err := conn.WriteJSON(ack); err != nil {
			h.logger.Warn(ctx, "websocket ack failed", logger.String("id", ack.ID), logger.Error(err))
			return
		}
	}
}

// receive decodes, validates and submits one frame. Snapshots without an id
// get one so the ack can be correlated.
func (h *Handler) receive(ctx context.Context, payload []byte) Ack {
	var snap reconcile.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return h.reject(ctx, Ack{}, "malformed", err)
	}
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	ack := Ack{ID: snap.ID}
	if err := h.validate.Struct(snap); err != nil {
		return h.reject(ctx, ack, "invalid", err)
	}
	if err := h.submitter.Submit(ctx, snap); err != nil {
		reason := "unavailable"
		if errors.Is(err, queue.ErrQueueFull) {
			reason = "backpressure"
		}
		return h.reject(ctx, ack, reason, err)
	}
	ack.Status = StatusQueued
	return ack
}

func (h *Handler) reject(ctx context.Context, ack Ack, reason string, err error) Ack {
	h.logger.Debug(ctx, "snapshot frame rejected",
		logger.String("id", ack.ID),
		logger.String("reason", reason),
		logger.Error(err),
	)
	metrics.RecordSnapshot(StatusRejected)
	ack.Status = StatusRejected
	ack.Reason = reason
	return ack
}
