// Package handlers provides HTTP handlers for commentary, as JSON, server-sent events or WebSocket.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/valveprice/internal/modules/commentary"
	"github.com/aristath/valveprice/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Handler handles commentary HTTP requests
type Handler struct {
	service        *commentary.Service
	originPatterns []string
	log            zerolog.Logger
}

// NewHandler creates a new commentary handler.
// originPatterns lists the cross-origin hosts allowed to open the WebSocket.
func NewHandler(service *commentary.Service, originPatterns []string, log zerolog.Logger) *Handler {
	return &Handler{
		service:        service,
		originPatterns: originPatterns,
		log:            log.With().Str("handler", "commentary").Logger(),
	}
}

// wsEvent is a stream event tagged with its session
type wsEvent struct {
	Session string `json:"session"`
	commentary.Event
}

// HandleGenerate handles POST /api/commentary/{kind}
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	kind, err := commentary.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		utils.WriteError(w, r, http.StatusNotFound, err.Error())
		return
	}

	var req commentary.Request
	if err := utils.DecodeAndValidate(r, &req); err != nil && !errors.Is(err, utils.ErrEmptyBody) {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.service.Generate(r.Context(), kind, req)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"data": c,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleStream handles GET /api/commentary/stream (SSE)
func (h *Handler) HandleStream(w http.ResponseWriter, r *http.Request) {
	kind, req, err := parseStreamQuery(r)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	events, err := h.service.Stream(r.Context(), kind, req)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session := uuid.NewString()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Stream-Session", session)
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log := h.log.With().Str("session", session).Str("kind", string(kind)).Logger()
	log.Debug().Msg("Commentary stream opened")

	for ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Msg("Failed to encode stream event")
			return
		}
		fmt.Fprintf(w, "event: %s\n", ev.Type)
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		if r.Context().Err() != nil {
			log.Debug().Msg("Client disconnected from commentary stream")
			return
		}
	}
	log.Debug().Msg("Commentary stream closed")
}

// HandleWebSocket handles GET /api/commentary/ws
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	kind, req, err := parseStreamQuery(r)
	if err != nil {
		utils.WriteError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")

	session := uuid.NewString()
	log := h.log.With().Str("session", session).Str("kind", string(kind)).Logger()

	// cancelled when the client closes the connection
	ctx := conn.CloseRead(r.Context())

	events, err := h.service.Stream(ctx, kind, req)
	if err != nil {
		_ = wsjson.Write(ctx, conn, wsEvent{Session: session, Event: commentary.Event{Type: commentary.EventError, Error: err.Error()}})
		conn.Close(websocket.StatusPolicyViolation, "invalid request")
		return
	}

	for ev := range events {
		if err := wsjson.Write(ctx, conn, wsEvent{Session: session, Event: ev}); err != nil {
			log.Debug().Err(err).Msg("Client disconnected from commentary socket")
			return
		}
	}

	conn.Close(websocket.StatusNormalClosure, "")
	log.Debug().Msg("Commentary socket closed")
}

func parseStreamQuery(r *http.Request) (commentary.Kind, commentary.Request, error) {
	q := r.URL.Query()
	kind, err := commentary.ParseKind(q.Get("kind"))
	if err != nil {
		return "", commentary.Request{}, err
	}

	req := commentary.Request{
		Policy:   q.Get("policy"),
		Series:   q.Get("series"),
		Strategy: q.Get("strategy"),
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", commentary.Request{}, fmt.Errorf("limit must be an integer")
		}
		req.Limit = n
	}
	if raw := q.Get("lag"); raw != "" {
		lag, err := strconv.Atoi(raw)
		if err != nil {
			return "", commentary.Request{}, fmt.Errorf("lag must be an integer")
		}
		req.Lag = &lag
	}
	if err := utils.ValidateStruct(&req); err != nil {
		return "", commentary.Request{}, err
	}
	return kind, req, nil
}
