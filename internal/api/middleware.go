package api

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/auth"
	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/store"
)

const claimsKey = "claims"

// AuthMiddleware validates the bearer token, rejects revoked tokens and
// stores the claims on the context.
func AuthMiddleware(secret string, db *sql.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			jsonError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		claims, err := auth.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			jsonError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		revoked, err := store.IsTokenRevoked(c.Request.Context(), db, claims.ID)
		if err != nil {
			logger.Error("failed to check token revocation", zap.Error(err))
			jsonError(c, http.StatusInternalServerError, "internal error")
			return
		}
		if revoked {
			jsonError(c, http.StatusUnauthorized, "token revoked")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects callers below the minimum role.
func RequireRole(minimum string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			jsonError(c, http.StatusUnauthorized, "not authenticated")
			return
		}
		if !model.RoleAtLeast(claims.Role, minimum) {
			jsonError(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims stored by AuthMiddleware, or nil.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func actor(c *gin.Context) zap.Field {
	if claims := GetClaims(c); claims != nil {
		return zap.String("user", claims.Username)
	}
	return zap.Skip()
}

// LoggingMiddleware logs every request once it completes.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
