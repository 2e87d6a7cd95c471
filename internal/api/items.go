package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/imaging"
	"github.com/erazemk/eventstock/internal/ledger"
	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/store"
)

// ItemsHandler handles stock item endpoints.
type ItemsHandler struct {
	DB                *sql.DB
	Ledger            *ledger.Ledger
	LowStockThreshold int
	Logger            *zap.Logger
}

type createItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	Unit     string `json:"unit"`
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

// itemResponse is an item with the quantity currently reserved for events.
type itemResponse struct {
	model.StockItem
	Reserved int `json:"reserved"`
}

// List handles GET /api/items, optionally filtered by ?category=.
func (h *ItemsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.Ledger.ListItems(c.Query("category")))
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "item_id, name, and category required")
		return
	}

	item, err := h.Ledger.AddItem(req.ItemID, req.Name, req.Quantity, req.Category, req.Unit)
	if err != nil {
		ledgerError(c, h.Logger, err)
		return
	}

	h.Logger.Info("item added", actor(c), zap.String("item_id", item.ID), zap.Int("quantity", item.Quantity))
	c.JSON(http.StatusCreated, item)
}

// Get handles GET /api/items/:id.
func (h *ItemsHandler) Get(c *gin.Context) {
	id := c.Param("id")
	item := h.Ledger.GetItem(id)
	if item == nil {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}
	_, reserved, _ := h.Ledger.Totals(id)
	c.JSON(http.StatusOK, itemResponse{StockItem: *item, Reserved: reserved})
}

// Delete handles DELETE /api/items/:id. Reservations that reference the item
// stay on their events.
func (h *ItemsHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !h.Ledger.RemoveItem(id) {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}

	h.Logger.Info("item removed", actor(c), zap.String("item_id", id))
	message(c, http.StatusOK, "item removed")
}

// Adjust handles POST /api/items/:id/adjust.
func (h *ItemsHandler) Adjust(c *gin.Context) {
	var req adjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	id := c.Param("id")
	ok, err := h.Ledger.UpdateQuantity(id, req.Delta)
	if err != nil {
		ledgerError(c, h.Logger, err)
		return
	}
	if !ok {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}

	item := h.Ledger.GetItem(id)
	h.Logger.Info("item quantity adjusted", actor(c), zap.String("item_id", id), zap.Int("delta", req.Delta))
	c.JSON(http.StatusOK, item)
}

// LowStock handles GET /api/low-stock with an optional ?threshold=.
func (h *ItemsHandler) LowStock(c *gin.Context) {
	threshold := h.LowStockThreshold
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			jsonError(c, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = n
	}
	c.JSON(http.StatusOK, h.Ledger.LowStock(threshold))
}

// UploadImage handles PUT /api/items/:id/image.
func (h *ItemsHandler) UploadImage(c *gin.Context) {
	id := c.Param("id")
	if h.Ledger.GetItem(id) == nil {
		jsonError(c, http.StatusNotFound, "item not found")
		return
	}

	photo, err := imaging.Normalize(c.Request.Body)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, imaging.ErrTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		jsonError(c, status, err.Error())
		return
	}

	if err := store.SetItemImage(c.Request.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		h.Logger.Error("failed to store image", zap.String("item_id", id), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to store image")
		return
	}

	h.Logger.Info("item image uploaded", actor(c), zap.String("item_id", id),
		zap.Int("width", photo.Width), zap.Int("height", photo.Height))
	message(c, http.StatusOK, "image uploaded")
}

// GetImage handles GET /api/items/:id/image. ?size=thumb returns a
// thumbnail.
func (h *ItemsHandler) GetImage(c *gin.Context) {
	id := c.Param("id")
	img, err := store.GetItemImage(c.Request.Context(), h.DB, id)
	if err != nil {
		h.Logger.Error("failed to load image", zap.String("item_id", id), zap.Error(err))
		jsonError(c, http.StatusInternalServerError, "failed to load image")
		return
	}
	if img == nil {
		jsonError(c, http.StatusNotFound, "no image")
		return
	}

	data, mime := img.Data, img.MIME
	if c.Query("size") == "thumb" {
		thumb, err := imaging.Thumbnail(img.Data)
		if err != nil {
			h.Logger.Error("failed to build thumbnail", zap.String("item_id", id), zap.Error(err))
			jsonError(c, http.StatusInternalServerError, "failed to build thumbnail")
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, mime, data)
}
