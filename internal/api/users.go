package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/auth"
	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/store"
)

// UsersHandler handles operator management (admin only).
type UsersHandler struct {
	DB     *sql.DB
	Logger *zap.Logger
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *gin.Context) {
	users, err := store.ListUsers(c.Request.Context(), h.DB)
	if err != nil {
		h.Logger.Error("failed to list users", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "username, password, and role required")
		return
	}
	if !model.ValidRole(req.Role) {
		jsonError(c, http.StatusBadRequest, "invalid role")
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	existing, err := store.GetUserByUsername(ctx, h.DB, req.Username)
	if err != nil {
		h.Logger.Error("failed to look up user", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		jsonError(c, http.StatusConflict, "username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		jsonError(c, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(ctx, h.DB, req.Username, hash, req.Role)
	if err != nil {
		h.Logger.Error("failed to create user", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.Logger.Info("user created", actor(c), zap.String("new_user", user.Username), zap.String("role", user.Role))
	c.JSON(http.StatusCreated, user)
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		jsonError(c, http.StatusBadRequest, "invalid user id")
		return
	}
	if claims := GetClaims(c); claims != nil && claims.UserID == id {
		jsonError(c, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	ctx := c.Request.Context()
	target, err := store.GetUser(ctx, h.DB, id)
	if err != nil {
		h.Logger.Error("failed to get user", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if target == nil || target.DeletedAt != nil {
		jsonError(c, http.StatusNotFound, "user not found")
		return
	}

	if err := store.DeleteUser(ctx, h.DB, id); err != nil {
		h.Logger.Error("failed to delete user", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.Logger.Info("user deleted", actor(c), zap.String("deleted_user", target.Username))
	message(c, http.StatusOK, "user deleted")
}
