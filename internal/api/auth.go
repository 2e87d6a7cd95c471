package api

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/auth"
	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
	Logger    *zap.Logger
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "username and password required")
		return
	}

	user, err := store.GetUserByUsername(c.Request.Context(), h.DB, req.Username)
	if err != nil {
		h.Logger.Error("failed to look up user", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.Logger.Warn("login failed", zap.String("username", req.Username), zap.String("remote", c.ClientIP()))
		jsonError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Username, user.Role)
	if err != nil {
		h.Logger.Error("failed to generate token", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to generate token")
		return
	}

	h.Logger.Info("user logged in", zap.String("user", user.Username), zap.String("role", user.Role))
	c.JSON(http.StatusOK, loginResponse{Token: token})
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	claims := GetClaims(c)

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "current and new password required")
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := store.GetUser(c.Request.Context(), h.DB, claims.UserID)
	if err != nil || user == nil {
		jsonError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		jsonError(c, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}
	if err := store.UpdateUserPassword(c.Request.Context(), h.DB, claims.UserID, hash); err != nil {
		h.Logger.Error("failed to update password", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to update password")
		return
	}

	h.Logger.Info("user changed own password", actor(c))
	message(c, http.StatusOK, "password updated")
}

// Logout handles POST /api/auth/logout by revoking the caller's token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := GetClaims(c)

	if err := store.RevokeToken(c.Request.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		h.Logger.Error("failed to revoke token", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to log out")
		return
	}

	h.Logger.Info("user logged out", actor(c))
	message(c, http.StatusOK, "logged out")
}
