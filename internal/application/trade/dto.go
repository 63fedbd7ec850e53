package trade

import (
	"time"

	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Sale DTOs
// ============================================================================

// SaleResponse represents a sale record in API responses
type SaleResponse struct {
	ID                  uuid.UUID       `json:"id"`
	ReferenceCode       string          `json:"reference_code"`
	PoolID              uuid.UUID       `json:"pool_id"`
	ProductID           uuid.UUID       `json:"product_id"`
	BatchID             uuid.UUID       `json:"batch_id"`
	ProductName         string          `json:"product_name"`
	BatchNumber         string          `json:"batch_number"`
	SupplierName        string          `json:"supplier_name"`
	CustomerID          uuid.UUID       `json:"customer_id"`
	CustomerName        string          `json:"customer_name"`
	DistrictID          uuid.UUID       `json:"district_id"`
	SalespersonID       uuid.UUID       `json:"salesperson_id"`
	Quantity            int64           `json:"quantity"`
	UnitCostPrice       decimal.Decimal `json:"unit_cost_price"`
	UnitRetailPrice     decimal.Decimal `json:"unit_retail_price"`
	TotalBeforeDiscount decimal.Decimal `json:"total_before_discount"`
	Discount            decimal.Decimal `json:"discount"`
	FinalPrice          decimal.Decimal `json:"final_price"`
	AmountPaid          decimal.Decimal `json:"amount_paid"`
	Balance             decimal.Decimal `json:"balance"`
	PaymentTerms        string          `json:"payment_terms"`
	PaymentMethod       string          `json:"payment_method"`
	DueDate             *time.Time      `json:"due_date,omitempty"`
	InvoiceNumber       string          `json:"invoice_number,omitempty"`
	DocumentType        string          `json:"document_type,omitempty"`
	Notes               string          `json:"notes,omitempty"`
	Classification      string          `json:"classification,omitempty"`
	AreaCode            string          `json:"area_code,omitempty"`
	Status              string          `json:"status"`
	Fingerprint         string          `json:"fingerprint"`
	CreatedBy           uuid.UUID       `json:"created_by"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Version             int             `json:"version"`
}

// ToSaleResponse converts a domain SaleRecord to a response DTO
func ToSaleResponse(s *trade.SaleRecord) SaleResponse {
	return SaleResponse{
		ID:                  s.ID,
		ReferenceCode:       s.ReferenceCode,
		PoolID:              s.PoolID,
		ProductID:           s.ProductID,
		BatchID:             s.BatchID,
		ProductName:         s.ProductName,
		BatchNumber:         s.BatchNumber,
		SupplierName:        s.SupplierName,
		CustomerID:          s.CustomerID,
		CustomerName:        s.CustomerName,
		DistrictID:          s.DistrictID,
		SalespersonID:       s.SalespersonID,
		Quantity:            s.Quantity,
		UnitCostPrice:       s.UnitCostPrice,
		UnitRetailPrice:     s.UnitRetailPrice,
		TotalBeforeDiscount: s.TotalBeforeDiscount,
		Discount:            s.Discount,
		FinalPrice:          s.FinalPrice,
		AmountPaid:          s.AmountPaid,
		Balance:             s.Balance,
		PaymentTerms:        string(s.PaymentTerms),
		PaymentMethod:       string(s.PaymentMethod),
		DueDate:             s.DueDate,
		InvoiceNumber:       s.InvoiceNumber,
		DocumentType:        s.DocumentType,
		Notes:               s.Notes,
		Classification:      s.Classification,
		AreaCode:            s.AreaCode,
		Status:              string(s.Status),
		Fingerprint:         s.Fingerprint,
		CreatedBy:           s.CreatedBy,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
		Version:             s.Version,
	}
}

// ToSaleResponses converts a slice of sale records to response DTOs
func ToSaleResponses(sales []*trade.SaleRecord) []SaleResponse {
	responses := make([]SaleResponse, len(sales))
	for i, s := range sales {
		responses[i] = ToSaleResponse(s)
	}
	return responses
}

// ============================================================================
// Sale Return DTOs
// ============================================================================

// FileReturnRequest represents a request to file a return against a sale
type FileReturnRequest struct {
	ReturnQuantity int64  `json:"return_quantity" binding:"required,min=1"`
	Reason         string `json:"reason" binding:"required,max=255"`
	Notes          string `json:"notes" binding:"max=500"`
	// Restockable defaults to true when omitted
	Restockable *bool `json:"restockable"`
}

// IsRestockable resolves the optional restockable flag
func (r FileReturnRequest) IsRestockable() bool {
	return r.Restockable == nil || *r.Restockable
}

// UpdateReturnStatusRequest represents a request to move a return to another status
type UpdateReturnStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=APPROVED PROCESSED REJECTED CANCELLED"`
	Notes  string `json:"notes" binding:"max=500"`
}

// ReturnListFilter represents filter options for listing a sale's returns
type ReturnListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// SaleReturnResponse represents a sale return in API responses
type SaleReturnResponse struct {
	ID                uuid.UUID       `json:"id"`
	ReferenceCode     string          `json:"reference_code"`
	SaleID            uuid.UUID       `json:"sale_id"`
	SaleReferenceCode string          `json:"sale_reference_code"`
	PoolID            uuid.UUID       `json:"pool_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ReturnQuantity    int64           `json:"return_quantity"`
	ReturnPrice       decimal.Decimal `json:"return_price"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	Reason            string          `json:"reason"`
	Notes             string          `json:"notes,omitempty"`
	Restockable       bool            `json:"restockable"`
	Status            string          `json:"status"`
	StatusNotes       string          `json:"status_notes,omitempty"`
	StatusChangedBy   *uuid.UUID      `json:"status_changed_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	ProcessedAt       *time.Time      `json:"processed_at,omitempty"`
	RejectedAt        *time.Time      `json:"rejected_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	CreatedBy         uuid.UUID       `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	Version           int             `json:"version"`
}

// ToSaleReturnResponse converts a domain SaleReturn to a response DTO
func ToSaleReturnResponse(r *trade.SaleReturn) SaleReturnResponse {
	return SaleReturnResponse{
		ID:                r.ID,
		ReferenceCode:     r.ReferenceCode,
		SaleID:            r.SaleID,
		SaleReferenceCode: r.SaleReferenceCode,
		PoolID:            r.PoolID,
		ProductID:         r.ProductID,
		ReturnQuantity:    r.ReturnQuantity,
		ReturnPrice:       r.ReturnPrice,
		RefundAmount:      r.RefundAmount,
		Reason:            r.Reason,
		Notes:             r.Notes,
		Restockable:       r.Restockable,
		Status:            string(r.Status),
		StatusNotes:       r.StatusNotes,
		StatusChangedBy:   r.StatusChangedBy,
		ApprovedAt:        r.ApprovedAt,
		ProcessedAt:       r.ProcessedAt,
		RejectedAt:        r.RejectedAt,
		CancelledAt:       r.CancelledAt,
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		Version:           r.Version,
	}
}

// ToSaleReturnResponses converts a slice of returns to response DTOs
func ToSaleReturnResponses(returns []trade.SaleReturn) []SaleReturnResponse {
	responses := make([]SaleReturnResponse, len(returns))
	for i := range returns {
		responses[i] = ToSaleReturnResponse(&returns[i])
	}
	return responses
}

// ReturnSideEffects reports what reaching a status changed outside the return itself
type ReturnSideEffects struct {
	InventoryRestocked   bool       `json:"inventory_restocked"`
	QuantityRestocked    int64      `json:"quantity_restocked"`
	MovementID           *uuid.UUID `json:"movement_id,omitempty"`
	ProductTransactionID *uuid.UUID `json:"product_transaction_id,omitempty"`
	SaleStatus           string     `json:"sale_status,omitempty"`
	SaleStatusChanged    bool       `json:"sale_status_changed"`
}

// ReturnStatusUpdateResponse is the result of a return status transition
type ReturnStatusUpdateResponse struct {
	Return      SaleReturnResponse `json:"return"`
	SideEffects ReturnSideEffects  `json:"side_effects"`
}
