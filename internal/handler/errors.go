package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
)

// failService maps a service error to its HTTP response. Unknown errors are
// logged and reported as internal.
func failService(c *gin.Context, log zerolog.Logger, err error) {
	var vErr *service.ValidationError
	var resErr *service.ResolutionError
	switch {
	case errors.As(err, &vErr):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, vErr.Fields)
	case errors.As(err, &resErr):
		details := make([]string, 0, len(resErr.Problems))
		for _, p := range resErr.Problems {
			details = append(details, p.String())
		}
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrUnresolved, resErr.Fields(), details)

	case errors.Is(err, service.ErrInvalidCode):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidCode)
	case errors.Is(err, service.ErrSessionClosed):
		response.Fail(c, http.StatusForbidden, response.ErrSessionClosed)
	case errors.Is(err, service.ErrNotOnRoster):
		response.Fail(c, http.StatusForbidden, response.ErrNotOnRoster)
	case errors.Is(err, service.ErrAlreadyAttempted):
		response.Fail(c, http.StatusConflict, response.ErrAlreadyAttempted)
	case errors.Is(err, service.ErrNotConfigured):
		response.Fail(c, http.StatusConflict, response.ErrNotConfigured)

	case errors.Is(err, service.ErrExamSessionNotFound), errors.Is(err, service.ErrSubmissionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrSessionNameTaken):
		response.Fail(c, http.StatusConflict, response.ErrSessionNameUsed)
	case errors.Is(err, service.ErrMasterNotLoaded):
		response.Fail(c, http.StatusBadRequest, response.ErrMasterNotLoaded)
	case errors.Is(err, service.ErrNothingToExport):
		response.Fail(c, http.StatusBadRequest, response.ErrNothingToExport)

	case errors.Is(err, service.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, service.ErrAdminNotConfigured):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAdminNotConfigured)

	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}
