package handler

import (
	"net/http"
	"testing"

	tradeapp "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupReturnRouter(svc SaleReturnService) *gin.Engine {
	r := newTestEngine()
	h := NewSaleReturnHandler(svc, nil)
	r.POST("/sales/:id/returns", h.FileReturn)
	r.GET("/sales/:id/returns", h.ListBySale)
	r.PATCH("/returns/:id/status", h.UpdateStatus)
	return r
}

func TestSaleReturnHandler_FileReturn(t *testing.T) {
	t.Run("files with restockable defaulted", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		saleID := uuid.New()
		svc.On("FileReturn", mock.Anything, mock.Anything, saleID,
			mock.MatchedBy(func(req tradeapp.FileReturnRequest) bool {
				return req.ReturnQuantity == 3 && req.Reason == "damaged" && req.Restockable == nil && req.IsRestockable()
			}),
		).Return(&tradeapp.SaleReturnResponse{ID: uuid.New(), SaleID: saleID, Status: "PENDING"}, nil)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/sales/"+saleID.String()+"/returns", testActor,
			map[string]any{"return_quantity": 3, "reason": "damaged"})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("explicit non-restockable", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		saleID := uuid.New()
		svc.On("FileReturn", mock.Anything, mock.Anything, saleID,
			mock.MatchedBy(func(req tradeapp.FileReturnRequest) bool { return !req.IsRestockable() }),
		).Return(&tradeapp.SaleReturnResponse{ID: uuid.New()}, nil)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/sales/"+saleID.String()+"/returns", testActor,
			map[string]any{"return_quantity": 1, "reason": "expired", "restockable": false})

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("binding failures list fields", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/sales/"+uuid.NewString()+"/returns", testActor,
			map[string]any{"return_quantity": 0})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		fields := make([]string, 0, len(resp.Error.Details))
		for _, d := range resp.Error.Details {
			fields = append(fields, d.Field)
		}
		assert.ElementsMatch(t, []string{"return_quantity", "reason"}, fields)
		svc.AssertNotCalled(t, "FileReturn", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("quantity above sold is a validation error", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		svc.On("FileReturn", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, shared.NewValidationError("RETURN_QUANTITY_EXCEEDS_SALE", "return quantity 12 exceeds remaining 10").WithField("return_quantity"))
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPost, "/sales/"+uuid.NewString()+"/returns", testActor,
			map[string]any{"return_quantity": 12, "reason": "wrong item"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "RETURN_QUANTITY_EXCEEDS_SALE", resp.Error.Reason)
		assert.Equal(t, "return_quantity", resp.Error.Field)
	})

	t.Run("invalid sale id", func(t *testing.T) {
		r := setupReturnRouter(new(mockSaleReturnService))

		w := doJSON(t, r, http.MethodPost, "/sales/nope/returns", testActor, map[string]any{"return_quantity": 1, "reason": "x"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSaleReturnHandler_ListBySale(t *testing.T) {
	t.Run("defaults paging", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		saleID := uuid.New()
		svc.On("ListBySale", mock.Anything, saleID, tradeapp.ReturnListFilter{Page: 1, PageSize: dto.DefaultPageSize}).
			Return([]tradeapp.SaleReturnResponse{{ID: uuid.New()}}, int64(1), nil)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodGet, "/sales/"+saleID.String()+"/returns", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(1), resp.Meta.Total)
		assert.Equal(t, 1, resp.Meta.Page)
		assert.Equal(t, 1, resp.Meta.TotalPages)
		svc.AssertExpectations(t)
	})

	t.Run("explicit paging", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		saleID := uuid.New()
		svc.On("ListBySale", mock.Anything, saleID, tradeapp.ReturnListFilter{Page: 2, PageSize: 5}).
			Return([]tradeapp.SaleReturnResponse{}, int64(7), nil)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodGet, "/sales/"+saleID.String()+"/returns?page=2&page_size=5", "", nil)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, 2, resp.Meta.TotalPages)
	})

	t.Run("page size above limit", func(t *testing.T) {
		r := setupReturnRouter(new(mockSaleReturnService))

		w := doJSON(t, r, http.MethodGet, "/sales/"+uuid.NewString()+"/returns?page_size=500", "", nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "page_size", resp.Error.Details[0].Field)
	})
}

func TestSaleReturnHandler_UpdateStatus(t *testing.T) {
	t.Run("processed reports side effects", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		returnID := uuid.New()
		movementID := uuid.New()
		svc.On("UpdateReturnStatus", mock.Anything,
			mock.MatchedBy(func(a tradeapp.ActionContext) bool { return a.ActorID.String() == testActor }),
			returnID,
			tradeapp.UpdateReturnStatusRequest{Status: "PROCESSED", Notes: "restocked"},
		).Return(&tradeapp.ReturnStatusUpdateResponse{
			Return: tradeapp.SaleReturnResponse{ID: returnID, Status: "PROCESSED"},
			SideEffects: tradeapp.ReturnSideEffects{
				InventoryRestocked: true,
				QuantityRestocked:  4,
				MovementID:         &movementID,
				SaleStatus:         "PARTIALLY_RETURNED",
				SaleStatusChanged:  true,
			},
		}, nil)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPatch, "/returns/"+returnID.String()+"/status", testActor,
			map[string]any{"status": "PROCESSED", "notes": "restocked"})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"inventory_restocked":true`)
		assert.Contains(t, w.Body.String(), `"quantity_restocked":4`)
		svc.AssertExpectations(t)
	})

	t.Run("unknown status rejected by binding", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPatch, "/returns/"+uuid.NewString()+"/status", testActor,
			map[string]any{"status": "PENDING"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "UpdateReturnStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("illegal transition", func(t *testing.T) {
		svc := new(mockSaleReturnService)
		svc.On("UpdateReturnStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, shared.NewStateTransitionError("INVALID_STATUS_TRANSITION", "cannot move return from PROCESSED to CANCELLED"))
		r := setupReturnRouter(svc)

		w := doJSON(t, r, http.MethodPatch, "/returns/"+uuid.NewString()+"/status", testActor,
			map[string]any{"status": "CANCELLED"})

		assert.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
		assert.Equal(t, "INVALID_STATUS_TRANSITION", resp.Error.Reason)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := setupReturnRouter(new(mockSaleReturnService))

		w := doJSON(t, r, http.MethodPatch, "/returns/"+uuid.NewString()+"/status", testActor, `{"status":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}
