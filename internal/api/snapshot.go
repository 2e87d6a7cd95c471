package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/ledger"
	"github.com/erazemk/eventstock/internal/snapshot"
)

// SnapshotHandler saves the ledger on demand.
type SnapshotHandler struct {
	Ledger *ledger.Ledger
	Store  snapshot.Store
	Logger *zap.Logger
}

// Save handles POST /api/snapshot.
func (h *SnapshotHandler) Save(c *gin.Context) {
	if h.Store == nil {
		jsonError(c, http.StatusServiceUnavailable, "no snapshot store configured")
		return
	}
	if err := h.Ledger.SaveSnapshot(c.Request.Context(), h.Store); err != nil {
		h.Logger.Error("manual snapshot failed", zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to save snapshot")
		return
	}

	items, events := h.Ledger.Stats()
	h.Logger.Info("snapshot saved", actor(c), zap.Int("items", items), zap.Int("events", events))
	c.JSON(http.StatusOK, gin.H{"items": items, "events": events})
}
