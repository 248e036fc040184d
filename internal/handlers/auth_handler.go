// internal/handlers/auth_handler.go

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/auth"
)

// AuthHandler 登录接口
type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(a *auth.Service) *AuthHandler {
	return &AuthHandler{auth: a}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 工作人员登录,签发令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request", err)
		return
	}
	token, identity, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrInvalidPassword) {
			fail(c, http.StatusUnauthorized, "login failed", err)
			return
		}
		fail(c, http.StatusInternalServerError, "login failed", err)
		return
	}
	ok(c, gin.H{"token": token, "identity": identity})
}
