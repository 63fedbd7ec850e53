package trade

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/google/uuid"
)

// CanonicalSale is the normalized, comparable form of a SaleRequest.
// Two requests meaning the same sale have equal CanonicalSale values.
type CanonicalSale struct {
	PoolID         string `json:"pool_id"`
	CustomerID     string `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	DistrictID     string `json:"district_id"`
	SalespersonID  string `json:"salesperson_id"`
	Quantity       int64  `json:"quantity"`
	Discount       string `json:"discount"`
	PaymentTerms   string `json:"payment_terms"`
	PaymentMethod  string `json:"payment_method"`
	AmountPaid     string `json:"amount_paid"`
	DueDate        string `json:"due_date"`
	InvoiceNumber  string `json:"invoice_number"`
	DocumentType   string `json:"document_type"`
	Notes          string `json:"notes"`
	Classification string `json:"classification"`
	AreaCode       string `json:"area_code"`
}

// Canonical returns the normalized form of the request: trimmed text,
// case-folded customer name, amounts fixed to 2 places and dates as YYYY-MM-DD.
func (r SaleRequest) Canonical() CanonicalSale {
	c := CanonicalSale{
		PoolID:         r.PoolID.String(),
		CustomerName:   partner.NormalizeName(r.CustomerName),
		DistrictID:     r.DistrictID.String(),
		SalespersonID:  r.SalespersonID.String(),
		Quantity:       r.Quantity,
		Discount:       r.Discount.StringFixed(2),
		PaymentTerms:   string(r.PaymentTerms),
		PaymentMethod:  string(r.PaymentMethod),
		AmountPaid:     r.AmountPaid.StringFixed(2),
		InvoiceNumber:  strings.TrimSpace(r.InvoiceNumber),
		DocumentType:   strings.TrimSpace(r.DocumentType),
		Notes:          strings.TrimSpace(r.Notes),
		Classification: strings.TrimSpace(r.Classification),
		AreaCode:       strings.ToUpper(strings.TrimSpace(r.AreaCode)),
	}
	if r.HasCustomerID() {
		c.CustomerID = r.CustomerID.String()
	}
	if r.DueDate != nil {
		c.DueDate = r.DueDate.Format("2006-01-02")
	}
	return c
}

// Fingerprint returns the idempotency fingerprint of a request submitted by actorID:
// the hex SHA-256 of a stable JSON serialization of the actor and the canonical request.
func Fingerprint(actorID uuid.UUID, r SaleRequest) (string, error) {
	payload := struct {
		ActorID string        `json:"actor_id"`
		Sale    CanonicalSale `json:"sale"`
	}{
		ActorID: actorID.String(),
		Sale:    r.Canonical(),
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
