package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
	"github.com/stemsi/dictant-backend/internal/sheet"
	"github.com/stemsi/dictant-backend/internal/validator"
)

// ExamHandler handles exam session and roster administration.
type ExamHandler struct {
	sessionService *service.ExamSessionService
	maxUpload      int64
	log            zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(sessionService *service.ExamSessionService, maxUpload int64, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		sessionService: sessionService,
		maxUpload:      maxUpload,
		log:            log.With().Str("component", "exam_handler").Logger(),
	}
}

// ListExamSessions godoc
// GET /api/v1/admin/exam-sessions
func (h *ExamHandler) ListExamSessions(c *gin.Context) {
	list, err := h.sessionService.List(c.Request.Context())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam_sessions": list})
}

// CreateExamSession godoc
// POST /api/v1/admin/exam-sessions
// Creates a session with a generated join code. Sessions start open unless
// is_open is false.
func (h *ExamHandler) CreateExamSession(c *gin.Context) {
	var req model.CreateExamSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	es, err := h.sessionService.Create(c.Request.Context(), req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"exam_session": es})
}

// GetExamSession godoc
// GET /api/v1/admin/exam-sessions/:id
func (h *ExamHandler) GetExamSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	es, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam_session": es})
}

// UpdateExamSession godoc
// PATCH /api/v1/admin/exam-sessions/:id
func (h *ExamHandler) UpdateExamSession(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateExamSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	es, err := h.sessionService.SetOpen(c.Request.Context(), id, *req.IsOpen)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exam_session": es})
}

// ReplaceRoster godoc
// PUT /api/v1/admin/exam-sessions/:id/roster
// Accepts an xlsx upload (first column, multipart field "file") or a JSON
// body {"names": [...]}.
func (h *ExamHandler) ReplaceRoster(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var names []string
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			failUpload(c, err)
			return
		}
		defer file.Close()
		if !isWorkbook(header.Filename) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
			return
		}
		names, err = sheet.ReadRoster(file)
		if err != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrUnsupportedFile, map[string]string{"file": err.Error()})
			return
		}
	} else {
		var req model.UploadRosterRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		names = req.Names
	}

	result, err := h.sessionService.ReplaceRoster(c.Request.Context(), id, names)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetRoster godoc
// GET /api/v1/admin/exam-sessions/:id/roster
func (h *ExamHandler) GetRoster(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	roster, err := h.sessionService.Roster(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"roster": roster})
}
