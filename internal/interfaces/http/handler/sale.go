package handler

import (
	"bytes"
	"context"
	"encoding/json"

	tradeapp "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleService is the sale use case surface the handler depends on
type SaleService interface {
	Create(ctx context.Context, actx tradeapp.ActionContext, requests []trade.SaleRequest) ([]tradeapp.SaleResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.SaleResponse, error)
}

// SaleHandler handles sale recording endpoints
type SaleHandler struct {
	BaseHandler
	sales SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales SaleService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		BaseHandler: newBaseHandler(logger),
		sales:       sales,
	}
}

// Create records a single sale or an atomic batch.
// POST /sales accepts either one sale object or an array of them; the
// response data is always an array of created sales in input order.
func (h *SaleHandler) Create(c *gin.Context) {
	actx, ok := h.actionContext(c)
	if !ok {
		return
	}

	requests, ok := h.decodeSaleRequests(c)
	if !ok {
		return
	}

	sales, err := h.sales.Create(c.Request.Context(), actx, requests)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sales)
}

// GetByID returns one recorded sale
// GET /sales/:id
func (h *SaleHandler) GetByID(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	sale, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

func (h *SaleHandler) decodeSaleRequests(c *gin.Context) ([]trade.SaleRequest, bool) {
	body, err := c.GetRawData()
	if err != nil {
		h.decodeError(c, err)
		return nil, false
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		h.BadRequest(c, "Request body is empty")
		return nil, false
	}

	if trimmed[0] == '[' {
		var requests []trade.SaleRequest
		if err := json.Unmarshal(trimmed, &requests); err != nil {
			h.decodeError(c, err)
			return nil, false
		}
		return requests, true
	}

	var single trade.SaleRequest
	if err := json.Unmarshal(trimmed, &single); err != nil {
		h.decodeError(c, err)
		return nil, false
	}
	return []trade.SaleRequest{single}, true
}
