package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	tradeapp "github.com/erp/salesengine/internal/application/trade"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/interfaces/http/dto"
	"github.com/erp/salesengine/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type mockSaleService struct {
	mock.Mock
}

func (m *mockSaleService) Create(ctx context.Context, actx tradeapp.ActionContext, requests []trade.SaleRequest) ([]tradeapp.SaleResponse, error) {
	args := m.Called(ctx, actx, requests)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tradeapp.SaleResponse), args.Error(1)
}

func (m *mockSaleService) GetByID(ctx context.Context, id uuid.UUID) (*tradeapp.SaleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleResponse), args.Error(1)
}

type mockSaleReturnService struct {
	mock.Mock
}

func (m *mockSaleReturnService) FileReturn(ctx context.Context, actx tradeapp.ActionContext, saleID uuid.UUID, req tradeapp.FileReturnRequest) (*tradeapp.SaleReturnResponse, error) {
	args := m.Called(ctx, actx, saleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.SaleReturnResponse), args.Error(1)
}

func (m *mockSaleReturnService) UpdateReturnStatus(ctx context.Context, actx tradeapp.ActionContext, returnID uuid.UUID, req tradeapp.UpdateReturnStatusRequest) (*tradeapp.ReturnStatusUpdateResponse, error) {
	args := m.Called(ctx, actx, returnID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tradeapp.ReturnStatusUpdateResponse), args.Error(1)
}

func (m *mockSaleReturnService) ListBySale(ctx context.Context, saleID uuid.UUID, filter tradeapp.ReturnListFilter) ([]tradeapp.SaleReturnResponse, int64, error) {
	args := m.Called(ctx, saleID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]tradeapp.SaleReturnResponse), args.Get(1).(int64), args.Error(2)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping() error { return p.err }

// newTestEngine wires the identity middleware the handlers rely on
func newTestEngine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Actor())
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, actor string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(middleware.HeaderUserID, actor)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
