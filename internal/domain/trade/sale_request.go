package trade

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTerms represents when a sale must be paid
type PaymentTerms string

const (
	PaymentTermsCash     PaymentTerms = "CASH"
	PaymentTermsCredit30 PaymentTerms = "CREDIT_30"
	PaymentTermsCredit60 PaymentTerms = "CREDIT_60"
	PaymentTermsCredit90 PaymentTerms = "CREDIT_90"
)

// String returns the string representation of PaymentTerms
func (t PaymentTerms) String() string {
	return string(t)
}

// IsValid checks if the terms are a known PaymentTerms value
func (t PaymentTerms) IsValid() bool {
	switch t {
	case PaymentTermsCash, PaymentTermsCredit30, PaymentTermsCredit60, PaymentTermsCredit90:
		return true
	}
	return false
}

// IsCash returns true for immediate payment terms
func (t PaymentTerms) IsCash() bool {
	return t == PaymentTermsCash
}

// CreditDays parses the credit period from the terms name, e.g. CREDIT_30 -> 30.
// Returns false for cash or unknown terms.
func (t PaymentTerms) CreditDays() (int, bool) {
	if !t.IsValid() || t.IsCash() {
		return 0, false
	}
	_, days, found := strings.Cut(string(t), "_")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(days)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// PaymentMethod represents how a payment is made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard    PaymentMethod = "DEBIT_CARD"
)

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid checks if the method is a known PaymentMethod value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheck, PaymentMethodBankTransfer,
		PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}

// SettlesImmediately returns true for cash and digital methods, the only
// methods allowed with CASH terms
func (m PaymentMethod) SettlesImmediately() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCreditCard, PaymentMethodDebitCard:
		return true
	}
	return false
}

// SaleRequest is one line of a sale submission. It is never persisted.
// Exactly one of CustomerID and CustomerName must be set.
type SaleRequest struct {
	PoolID         uuid.UUID       `json:"pool_id" validate:"required"`
	CustomerID     *uuid.UUID      `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty" validate:"omitempty,min=2,max=100,customer_name"`
	DistrictID     uuid.UUID       `json:"district_id" validate:"required"`
	SalespersonID  uuid.UUID       `json:"salesperson_id" validate:"required"`
	Quantity       int64           `json:"quantity" validate:"min=1,max=999999"`
	Discount       decimal.Decimal `json:"discount"`
	PaymentTerms   PaymentTerms    `json:"payment_terms" validate:"required,oneof=CASH CREDIT_30 CREDIT_60 CREDIT_90"`
	PaymentMethod  PaymentMethod   `json:"payment_method" validate:"required,oneof=CASH CHECK BANK_TRANSFER CREDIT_CARD DEBIT_CARD"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	InvoiceNumber  string          `json:"invoice_number,omitempty" validate:"omitempty,max=50,invoice_number"`
	DocumentType   string          `json:"document_type,omitempty" validate:"omitempty,max=50,no_script"`
	Notes          string          `json:"notes,omitempty" validate:"omitempty,max=500,no_script"`
	Classification string          `json:"classification,omitempty" validate:"omitempty,max=50,classification"`
	AreaCode       string          `json:"area_code,omitempty" validate:"omitempty,min=2,max=10,area_code"`
}

// HasCustomerID returns true if the line references an existing customer
func (r SaleRequest) HasCustomerID() bool {
	return r.CustomerID != nil && *r.CustomerID != uuid.Nil
}

// HasCustomerName returns true if the line names a customer as free text
func (r SaleRequest) HasCustomerName() bool {
	return strings.TrimSpace(r.CustomerName) != ""
}
