package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/notify"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
	"github.com/stemsi/dictant-backend/internal/sheet"
	"github.com/stemsi/dictant-backend/internal/validator"
)

type SettingHandler struct {
	settingService *service.SettingService
	events         notify.Publisher
	maxUpload      int64
	log            zerolog.Logger
}

func NewSettingHandler(settingService *service.SettingService, events notify.Publisher, maxUpload int64, log zerolog.Logger) *SettingHandler {
	return &SettingHandler{
		settingService: settingService,
		events:         events,
		maxUpload:      maxUpload,
		log:            log.With().Str("component", "setting_handler").Logger(),
	}
}

// GetSettings godoc
// GET /api/v1/admin/settings
func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingService.GetSettings(c.Request.Context())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// PUT /api/v1/admin/settings
// Only the fields present in the body change.
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	settings, events, err := h.settingService.UpdateSettings(c.Request.Context(), req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	h.events.Publish(c.Request.Context(), events...)

	response.Success(c, http.StatusOK, settings)
}

// UploadMaster godoc
// POST /api/v1/admin/master
// Replaces the answer key from an xlsx master table (multipart field "file").
func (h *SettingHandler) UploadMaster(c *gin.Context) {
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

	key, skipped, err := sheet.ReadMaster(file)
	if err != nil {
		h.log.Warn().Err(err).Str("file", header.Filename).Msg("Unreadable master table")
		response.FailWithFields(c, http.StatusBadRequest, response.ErrUnsupportedFile, map[string]string{"file": err.Error()})
		return
	}

	result, err := h.settingService.ReplaceMaster(c.Request.Context(), key, skipped)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func isWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".xlsm"
}

func failUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}
	response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
}
