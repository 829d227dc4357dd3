package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/vet-scheduler/internal/httperr"
	"github.com/BruksfildServices01/vet-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	ucInventory "github.com/BruksfildServices01/vet-scheduler/internal/usecase/inventory"
)

type InventoryHandler struct {
	loc      *time.Location
	lowStock *ucInventory.ListLowStock
	receive  *ucInventory.ReceiveBatch
}

func NewInventoryHandler(
	loc *time.Location,
	lowStock *ucInventory.ListLowStock,
	receive *ucInventory.ReceiveBatch,
) *InventoryHandler {
	return &InventoryHandler{loc: loc, lowStock: lowStock, receive: receive}
}

type ReceiveBatchRequest struct {
	LotCode   string          `json:"lot_code" binding:"required"`
	ExpiresAt string          `json:"expires_at" binding:"required"` // YYYY-MM-DD
	Quantity  decimal.Decimal `json:"quantity"`
}

func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.lowStock.Execute(c.Request.Context())
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	httpresp.List(c, items)
}

func (h *InventoryHandler) ReceiveBatch(c *gin.Context) {
	id, err := uuidParam(c, "id")
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	var req ReceiveBatchRequest
	if err := bindJSON(c, &req); err != nil {
		httperr.Respond(c, err)
		return
	}

	expires, err := parseDate(req.ExpiresAt, h.loc)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	batch, err := h.receive.Execute(c.Request.Context(), ucInventory.ReceiveBatchInput{
		Actor:        middleware.ActorFrom(c),
		SupplyItemID: id,
		LotCode:      strings.TrimSpace(req.LotCode),
		ExpiresAt:    expires,
		Quantity:     req.Quantity,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.Created(c, batch)
}
