package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/export"
	"github.com/stemsi/dictant-backend/internal/service"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeJSON = "application/json; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves file downloads of submissions and the master table.
type ExportHandler struct {
	submissionService *service.SubmissionService
	settingService    *service.SettingService
	now               func() time.Time
	log               zerolog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(submissionService *service.SubmissionService, settingService *service.SettingService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		submissionService: submissionService,
		settingService:    settingService,
		now:               time.Now,
		log:               log.With().Str("component", "export_handler").Logger(),
	}
}

func (h *ExportHandler) attach(c *gin.Context, filename, mime string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, mime, body)
}

func (h *ExportHandler) submissions(c *gin.Context) (export.Table, bool) {
	list, err := h.submissionService.ForExport(c.Request.Context(), submissionFilter(c))
	if err != nil {
		failService(c, h.log, err)
		return export.Table{}, false
	}
	return export.Submissions(list), true
}

// SubmissionsCSV godoc
// GET /api/v1/admin/export/submissions.csv
func (h *ExportHandler) SubmissionsCSV(c *gin.Context) {
	table, ok := h.submissions(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		failService(c, h.log, err)
		return
	}
	h.attach(c, "dictant_submissions.csv", mimeCSV, buf.Bytes())
}

// SubmissionsXLSX godoc
// GET /api/v1/admin/export/submissions.xlsx
func (h *ExportHandler) SubmissionsXLSX(c *gin.Context) {
	table, ok := h.submissions(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, "Submissions", table); err != nil {
		failService(c, h.log, err)
		return
	}
	h.attach(c, "dictant_submissions.xlsx", mimeXLSX, buf.Bytes())
}

// MasterJSON godoc
// GET /api/v1/admin/export/master.json
func (h *ExportHandler) MasterJSON(c *gin.Context) {
	key, err := h.settingService.AnswerKey(c.Request.Context())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	body, err := export.MasterJSON(key)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	h.attach(c, export.Filename("master", "json", h.now()), mimeJSON, body)
}

// MasterXLSX godoc
// GET /api/v1/admin/export/master.xlsx
// The workbook uses the upload column layout.
func (h *ExportHandler) MasterXLSX(c *gin.Context) {
	key, err := h.settingService.AnswerKey(c.Request.Context())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, "master", export.Master(key)); err != nil {
		failService(c, h.log, err)
		return
	}
	h.attach(c, export.Filename("master", "xlsx", h.now()), mimeXLSX, buf.Bytes())
}
