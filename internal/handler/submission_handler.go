package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
)

// SubmissionHandler serves the submission history.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	log               zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		log:               log.With().Str("component", "submission_handler").Logger(),
	}
}

// submissionFilter reads ?session=, ?exam_session_id=, ?page= and ?per_page=.
func submissionFilter(c *gin.Context) model.SubmissionFilter {
	f := model.SubmissionFilter{SessionName: c.Query("session")}
	if raw := c.Query("exam_session_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			f.ExamSessionID = &id
		}
	}
	f.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	f.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "50"))
	return f
}

// ListSubmissions godoc
// GET /api/v1/admin/submissions
// Newest first.
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	page, err := h.submissionService.List(c.Request.Context(), submissionFilter(c))
	if err != nil {
		failService(c, h.log, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"submissions": page.Items},
		response.NewPagination(page.Page, page.PerPage, page.Total))
}

// GetSubmission godoc
// GET /api/v1/admin/submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sub, err := h.submissionService.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"submission": sub})
}
