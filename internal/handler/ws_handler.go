package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/middleware"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
	ws "github.com/stemsi/dictant-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler serves the student realtime stream.
type WSHandler struct {
	admission *service.AdmissionService
	bus       notify.Bus
	log       zerolog.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(admission *service.AdmissionService, bus notify.Bus, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		admission: admission,
		bus:       bus,
		log:       log.With().Str("component", "ws_handler").Logger(),
		upgrader:  buildUpgrader(allowedOrigins),
	}
}

// StudentStream godoc
// WS /ws/v1/student/stream?token=
// Relays the session room's events to the student and accepts
// student_activity heartbeats and pings.
func (h *WSHandler) StudentStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Str("student", claims.StudentKey).
		Str("session", claims.SessionName).
		Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	room, stop, err := h.bus.Subscribe(ctx, claims.SessionName)
	if err != nil {
		wsLog.Error().Err(err).Msg("Room subscribe failed")
		_ = conn.WriteError("realtime unavailable")
		return
	}
	defer stop()
	go h.relay(conn, room, wsLog)

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.RequestEnvelope
		if err := conn.ReadTyped(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionActivity:
			events, err := h.admission.RecordActivity(ctx, claims.StudentName, claims.SessionName)
			if err != nil {
				wsLog.Error().Err(err).Msg("Activity update failed")
				_ = conn.WriteError("activity failed")
				continue
			}
			h.bus.Publish(ctx, events...)
			status := "ok"
			if len(events) == 0 {
				status = "untracked"
			}
			_ = conn.WriteTyped(ws.ActivityResponse{Event: ws.EventActivity, Status: status})
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			_ = conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// relay forwards room envelopes until the subscription closes.
func (h *WSHandler) relay(conn *ws.Conn, room <-chan []byte, log zerolog.Logger) {
	for data := range room {
		var env notify.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Warn().Err(err).Msg("Dropping malformed room event")
			continue
		}
		if err := conn.WriteTyped(ws.RoomEventResponse{Event: ws.EventRoom, Name: env.Event, Payload: env.Payload}); err != nil {
			return
		}
	}
}
