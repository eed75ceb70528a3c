package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/wilayah_api/internal/service"
	"github.com/GTDGit/wilayah_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AdminAuthService
}

func NewAuthHandler(authService *service.AdminAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /v1/admin/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
		return
	case errors.Is(err, utils.ErrAccountInactive):
		utils.Error(c, 403, "ACCOUNT_INACTIVE", "Account is inactive")
		return
	case err != nil:
		respondError(c, err)
		return
	}

	utils.Success(c, 200, "Login successful", result)
}

// Me handles GET /v1/admin/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	utils.Success(c, 200, "Authenticated", actor(c))
}
