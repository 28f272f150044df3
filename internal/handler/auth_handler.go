package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/dictant-backend/internal/model"
	"github.com/stemsi/dictant-backend/internal/response"
	"github.com/stemsi/dictant-backend/internal/service"
	"github.com/stemsi/dictant-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req model.AdminLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	token, expires, err := h.authService.AdminLogin(req.Username, req.Password)
	if err != nil {
		h.log.Warn().Str("username", req.Username).Str("ip", c.ClientIP()).Msg("Admin login failed")
		failService(c, h.log, err)
		return
	}

	response.Success(c, http.StatusOK, model.AdminLoginResponse{Token: token, ExpiresAt: expires})
}
