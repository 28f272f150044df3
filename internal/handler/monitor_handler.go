package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/config"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second // prevent slow queries from blocking the SSE loop
)

type MonitorHandler struct {
	bus            notify.Subscriber
	events         notify.Publisher
	admission      *service.AdmissionService
	monitorService *service.MonitorService
	log            zerolog.Logger
}

func NewMonitorHandler(
	bus notify.Subscriber,
	events notify.Publisher,
	admission *service.AdmissionService,
	monitorService *service.MonitorService,
	log zerolog.Logger,
) *MonitorHandler {
	return &MonitorHandler{
		bus:            bus,
		events:         events,
		admission:      admission,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// ListActive godoc
// GET /api/v1/admin/active?session=
// Sweeps stale presence first, then lists records by start time.
func (h *MonitorHandler) ListActive(c *gin.Context) {
	list, events, err := h.admission.ListActive(c.Request.Context(), c.Query("session"))
	if err != nil {
		failService(c, h.log, err)
		return
	}
	h.events.Publish(c.Request.Context(), events...)
	response.Success(c, http.StatusOK, gin.H{"active": list})
}

// MonitorSSE godoc
// GET /api/v1/admin/monitor?session=
// Streams a snapshot followed by every event of the session room. Without
// a session every room is streamed.
func (h *MonitorHandler) MonitorSSE(c *gin.Context) {
	session := c.Query("session")
	reqCtx := c.Request.Context()

	ch, stop, err := h.bus.Subscribe(reqCtx, session)
	if err != nil {
		h.log.Error().Err(err).Str("session", session).Msg("Subscribe failed")
		response.Fail(c, http.StatusServiceUnavailable, response.ErrInternal)
		return
	}
	defer stop()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	if !h.sendSnapshot(c, reqCtx, session) {
		return
	}

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()
	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	// Skip periodic refreshes while nothing is happening.
	dirty := false

	log := h.log.With().Str("room", config.CacheKey.Room(session)).Logger()
	log.Info().Msg("Admin attached to live monitor SSE")

	for {
		select {
		case <-reqCtx.Done():
			log.Info().Msg("Admin disconnected from live monitor SSE")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Envelopes are already JSON; forward them untouched.
			_, _ = c.Writer.Write([]byte("event: message\ndata: "))
			_, _ = c.Writer.Write(msg)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
			dirty = true

		case <-refreshTicker.C:
			if !dirty {
				continue
			}
			dirty = false
			if !h.sendSnapshot(c, reqCtx, session) {
				return
			}

		case <-keepAliveTicker.C:
			_, _ = c.Writer.Write([]byte(": ping\n\n"))
			c.Writer.Flush()
		}
	}
}

// sendSnapshot writes the current session state as a "snapshot" event.
func (h *MonitorHandler) sendSnapshot(c *gin.Context, parent context.Context, session string) bool {
	ctx, cancel := context.WithTimeout(parent, refreshTimeout)
	defer cancel()

	snap, err := h.monitorService.Snapshot(ctx, session)
	if err != nil {
		h.log.Warn().Err(err).Str("session", session).Msg("Failed to build monitor snapshot")
		return parent.Err() == nil
	}
	c.SSEvent("snapshot", snap)
	c.Writer.Flush()
	return true
}
