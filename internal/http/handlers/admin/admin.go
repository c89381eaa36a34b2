package admin

import (
	"errors"
	"time"

	"github.com/ibheros/studio/internal/http/handlers/shared"
	"github.com/ibheros/studio/internal/http/response"
	"github.com/ibheros/studio/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminProfile 登录账号信息
type AdminProfile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string       `json:"token"`
	User      AdminProfile `json:"user"`
	ExpiresAt string       `json:"expires_at"`
}

// AdminLogin 后台登录，签发 JWT
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		requestLog(c).Infow("admin_login_rejected", "username", req.Username)
		respondError(c, response.CodeUnauthorized, "error.login_failed", nil)
		return
	case err != nil:
		respondError(c, response.CodeInternal, "error.server_error", err)
		return
	}
	requestLog(c).Infow("admin_login", "admin_id", admin.ID)
	response.Success(c, LoginResponse{
		Token:     token,
		User:      AdminProfile{ID: admin.ID, Username: admin.Username},
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

// GetAdminProfile 当前登录账号
func (h *Handler) GetAdminProfile(c *gin.Context) {
	id, ok := shared.GetAdminID(c)
	if !ok {
		return
	}
	response.Success(c, AdminProfile{ID: id, Username: c.GetString("username")})
}
