package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/middleware"
	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
	"github.com/stemsi/dictant-backend/internal/validator"
)

// StudentPortalHandler serves the student attempt endpoints.
type StudentPortalHandler struct {
	admission *service.AdmissionService
	events    notify.Publisher
	log       zerolog.Logger
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(admission *service.AdmissionService, events notify.Publisher, log zerolog.Logger) *StudentPortalHandler {
	return &StudentPortalHandler{
		admission: admission,
		events:    events,
		log:       log.With().Str("component", "student_portal").Logger(),
	}
}

// StartSession godoc
// POST /api/v1/student/start
// Admits a student by join code and roster and returns their shuffled ticket.
func (h *StudentPortalHandler) StartSession(c *gin.Context) {
	var req model.StartRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, events, err := h.admission.StartSession(c.Request.Context(), req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	h.events.Publish(c.Request.Context(), events...)

	response.Success(c, http.StatusOK, resp)
}

// RecordActivity godoc
// POST /api/v1/student/activity
// Heartbeat keeping the student's presence record active.
func (h *StudentPortalHandler) RecordActivity(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	events, err := h.admission.RecordActivity(c.Request.Context(), claims.StudentName, claims.SessionName)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	h.events.Publish(c.Request.Context(), events...)

	response.Success(c, http.StatusOK, gin.H{"status": "ok", "tracked": len(events) > 0})
}

// Submit godoc
// POST /api/v1/student/submit
// Scores and stores the attempt, then closes the student's presence.
func (h *StudentPortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitRequest
	if fields := validator.BindOptional(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, events, err := h.admission.Submit(c.Request.Context(), claims, req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	h.events.Publish(c.Request.Context(), events...)

	response.Success(c, http.StatusCreated, model.SubmitResponse{ID: sub.ID, Score: sub.Score})
}
