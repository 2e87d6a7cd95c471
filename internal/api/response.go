package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/ledger"
)

// jsonError aborts the request with a JSON error body.
func jsonError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// ledgerError maps a ledger failure to a response. Rule violations are the
// caller's fault and keep the ledger's message; anything else is logged and
// hidden.
func ledgerError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, ledger.ErrDuplicateID),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrEventHasAllocations):
		jsonError(c, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrInvalidQuantity):
		jsonError(c, http.StatusBadRequest, err.Error())
	default:
		logger.Error("ledger operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}
