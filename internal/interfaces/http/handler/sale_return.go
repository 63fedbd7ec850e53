package handler

import (
	"context"

	tradeapp "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SaleReturnService is the return lifecycle surface the handler depends on
type SaleReturnService interface {
	FileReturn(ctx context.Context, actx tradeapp.ActionContext, saleID uuid.UUID, req tradeapp.FileReturnRequest) (*tradeapp.SaleReturnResponse, error)
	UpdateReturnStatus(ctx context.Context, actx tradeapp.ActionContext, returnID uuid.UUID, req tradeapp.UpdateReturnStatusRequest) (*tradeapp.ReturnStatusUpdateResponse, error)
	ListBySale(ctx context.Context, saleID uuid.UUID, filter tradeapp.ReturnListFilter) ([]tradeapp.SaleReturnResponse, int64, error)
}

// SaleReturnHandler handles sale return endpoints
type SaleReturnHandler struct {
	BaseHandler
	returns SaleReturnService
}

// NewSaleReturnHandler creates a new SaleReturnHandler
func NewSaleReturnHandler(returns SaleReturnService, logger *zap.Logger) *SaleReturnHandler {
	return &SaleReturnHandler{
		BaseHandler: newBaseHandler(logger),
		returns:     returns,
	}
}

// FileReturn files a pending return against a sale
// POST /sales/:id/returns
func (h *SaleReturnHandler) FileReturn(c *gin.Context) {
	saleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	actx, ok := h.actionContext(c)
	if !ok {
		return
	}

	var req tradeapp.FileReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ret, err := h.returns.FileReturn(c.Request.Context(), actx, saleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, ret)
}

// ListBySale lists the returns filed against a sale, newest first
// GET /sales/:id/returns
func (h *SaleReturnHandler) ListBySale(c *gin.Context) {
	saleID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var filter tradeapp.ReturnListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = dto.DefaultPageSize
	}

	returns, total, err := h.returns.ListBySale(c.Request.Context(), saleID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, returns, total, filter.Page, filter.PageSize)
}

// UpdateStatus moves a return through its lifecycle
// PATCH /returns/:id/status
func (h *SaleReturnHandler) UpdateStatus(c *gin.Context) {
	returnID, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	actx, ok := h.actionContext(c)
	if !ok {
		return
	}

	var req tradeapp.UpdateReturnStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.returns.UpdateReturnStatus(c.Request.Context(), actx, returnID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
