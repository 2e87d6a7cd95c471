package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erazemk/eventstock/internal/ledger"
)

// EventsHandler handles event and allocation endpoints.
type EventsHandler struct {
	Ledger *ledger.Ledger
	Logger *zap.Logger
}

type createEventRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Date     string `json:"date"`
	Location string `json:"location"`
}

type allocationRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity"`
}

// List handles GET /api/events.
func (h *EventsHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.Ledger.ListEvents())
}

// Create handles POST /api/events.
func (h *EventsHandler) Create(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "event_id and name required")
		return
	}

	event, err := h.Ledger.CreateEvent(req.EventID, req.Name, req.Date, req.Location)
	if err != nil {
		ledgerError(c, h.Logger, err)
		return
	}

	h.Logger.Info("event created", actor(c), zap.String("event_id", event.ID))
	c.JSON(http.StatusCreated, event)
}

// Get handles GET /api/events/:id.
func (h *EventsHandler) Get(c *gin.Context) {
	event := h.Ledger.GetEvent(c.Param("id"))
	if event == nil {
		jsonError(c, http.StatusNotFound, "event not found")
		return
	}
	c.JSON(http.StatusOK, event)
}

// Delete handles DELETE /api/events/:id.
func (h *EventsHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	ok, err := h.Ledger.DeleteEvent(id)
	if err != nil {
		ledgerError(c, h.Logger, err)
		return
	}
	if !ok {
		jsonError(c, http.StatusNotFound, "event not found")
		return
	}

	h.Logger.Info("event deleted", actor(c), zap.String("event_id", id))
	message(c, http.StatusOK, "event deleted")
}

// Summary handles GET /api/events/:id/summary.
func (h *EventsHandler) Summary(c *gin.Context) {
	summary := h.Ledger.EventSummary(c.Param("id"))
	if summary == nil {
		jsonError(c, http.StatusNotFound, "event not found")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Allocate handles POST /api/events/:id/allocate.
func (h *EventsHandler) Allocate(c *gin.Context) {
	h.move(c, "allocated", h.Ledger.AllocateStock)
}

// Deallocate handles POST /api/events/:id/deallocate.
func (h *EventsHandler) Deallocate(c *gin.Context) {
	h.move(c, "deallocated", h.Ledger.DeallocateStock)
}

func (h *EventsHandler) move(c *gin.Context, verb string, op func(eventID, itemID string, quantity int) (bool, error)) {
	var req allocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		jsonError(c, http.StatusBadRequest, "item_id and quantity required")
		return
	}

	eventID := c.Param("id")
	ok, err := op(eventID, req.ItemID, req.Quantity)
	if err != nil {
		ledgerError(c, h.Logger, err)
		return
	}
	if !ok {
		jsonError(c, http.StatusNotFound, "event or item not found")
		return
	}

	h.Logger.Info("stock "+verb, actor(c),
		zap.String("event_id", eventID),
		zap.String("item_id", req.ItemID),
		zap.Int("quantity", req.Quantity))
	c.JSON(http.StatusOK, h.Ledger.EventSummary(eventID))
}
