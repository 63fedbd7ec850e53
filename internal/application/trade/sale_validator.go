package trade

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/partner"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input limits
const (
	MaxBatchLines  = 100
	DefaultDueDays = 365
)

var (
	maxDiscount   = decimal.RequireFromString("999999.99")
	maxAmountPaid = decimal.RequireFromString("999999999.99")

	customerNamePattern   = regexp.MustCompile(`^[\p{L}\p{N} .,'&()/-]+$`)
	invoiceNumberPattern  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9/_.-]*$`)
	classificationPattern = regexp.MustCompile(`^[\p{L}\p{N} _-]+$`)
	areaCodePattern       = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	scriptPattern         = regexp.MustCompile(`(?i)<\s*/?\s*(script|iframe|object|embed|style|svg)\b|(java|vb)script\s*:|\bon[a-z]+\s*=|data\s*:\s*text/html`)
)

// ValidatedLine is one sanitized request together with its resolved pool
type ValidatedLine struct {
	Line      int // 1-based
	Request   trade.SaleRequest
	Canonical trade.CanonicalSale
	Pool      *inventory.Pool
}

// ValidatedBatch is the successful result of validating a submission
type ValidatedBatch struct {
	Lines []ValidatedLine
	Pools map[uuid.UUID]*inventory.Pool
}

// DemandLines returns the batch as availability demand lines
func (b *ValidatedBatch) DemandLines() []inventory.DemandLine {
	lines := make([]inventory.DemandLine, len(b.Lines))
	for i, l := range b.Lines {
		lines[i] = inventory.DemandLine{Line: l.Line, PoolID: l.Request.PoolID, Quantity: l.Request.Quantity}
	}
	return lines
}

// SaleValidatorConfig holds the tunable validation limits
type SaleValidatorConfig struct {
	MaxDueDays int
	Now        func() time.Time
}

// SaleValidator checks raw sale requests before anything is mutated
type SaleValidator struct {
	validate    *validator.Validate
	pools       inventory.PoolRepository
	districts   partner.DistrictRepository
	salespeople partner.SalespersonRepository
	customers   partner.CustomerRepository
	pricing     *trade.PricingCalculator
	maxDueDays  int
	now         func() time.Time
}

// NewSaleValidator creates a new SaleValidator
func NewSaleValidator(
	pools inventory.PoolRepository,
	districts partner.DistrictRepository,
	salespeople partner.SalespersonRepository,
	customers partner.CustomerRepository,
	pricing *trade.PricingCalculator,
	cfg SaleValidatorConfig,
) *SaleValidator {
	if cfg.MaxDueDays <= 0 {
		cfg.MaxDueDays = DefaultDueDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SaleValidator{
		validate:    newRequestValidator(),
		pools:       pools,
		districts:   districts,
		salespeople: salespeople,
		customers:   customers,
		pricing:     pricing,
		maxDueDays:  cfg.MaxDueDays,
		now:         cfg.Now,
	}
}

// newRequestValidator builds a validator that reports json field names and
// knows the sale-specific string rules
func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	patterns := map[string]*regexp.Regexp{
		"customer_name":  customerNamePattern,
		"invoice_number": invoiceNumberPattern,
		"classification": classificationPattern,
		"area_code":      areaCodePattern,
	}
	for tag, re := range patterns {
		re := re
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("no_script", func(fl validator.FieldLevel) bool {
		return !scriptPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate runs every input check over the batch. The first failure is returned
// as a DomainError naming the 1-based line; nothing is mutated.
func (v *SaleValidator) Validate(ctx context.Context, requests []trade.SaleRequest) (*ValidatedBatch, error) {
	if len(requests) == 0 {
		return nil, shared.NewValidationError("EMPTY_BATCH", "At least one sale is required")
	}
	if len(requests) > MaxBatchLines {
		return nil, shared.NewValidationError("BATCH_TOO_LARGE",
			fmt.Sprintf("A batch may contain at most %d sales", MaxBatchLines))
	}

	today := truncateDay(v.now())
	lines := make([]ValidatedLine, len(requests))
	for i, raw := range requests {
		req := sanitize(raw)
		if err := v.checkLine(req, today); err != nil {
			return nil, err.AtLine(i + 1)
		}
		lines[i] = ValidatedLine{Line: i + 1, Request: req, Canonical: req.Canonical()}
	}

	pools, err := v.checkReferences(ctx, lines)
	if err != nil {
		return nil, err
	}

	for i := range lines {
		l := &lines[i]
		l.Pool = pools[l.Request.PoolID]
		if _, err := v.pricing.Calculate(trade.PricingInput{
			RetailPrice: l.Pool.RetailPrice,
			Quantity:    l.Request.Quantity,
			Discount:    l.Request.Discount,
			AmountPaid:  l.Request.AmountPaid,
			Terms:       l.Request.PaymentTerms,
			DueDate:     l.Request.DueDate,
			Today:       today,
		}); err != nil {
			return nil, atLine(err, l.Line)
		}
	}

	seen := make(map[trade.CanonicalSale]int, len(lines))
	for _, l := range lines {
		if first, ok := seen[l.Canonical]; ok {
			return nil, shared.NewValidationError("DUPLICATE_LINE",
				fmt.Sprintf("Sale duplicates line %d of the same submission", first)).AtLine(l.Line)
		}
		seen[l.Canonical] = l.Line
	}

	return &ValidatedBatch{Lines: lines, Pools: pools}, nil
}

// sanitize trims free text and normalizes casing where it carries no meaning
func sanitize(r trade.SaleRequest) trade.SaleRequest {
	r.CustomerName = partner.CollapseSpaces(r.CustomerName)
	r.InvoiceNumber = strings.TrimSpace(r.InvoiceNumber)
	r.DocumentType = strings.TrimSpace(r.DocumentType)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Classification = partner.CollapseSpaces(r.Classification)
	r.AreaCode = strings.ToUpper(strings.TrimSpace(r.AreaCode))
	r.PaymentTerms = trade.PaymentTerms(strings.ToUpper(strings.TrimSpace(string(r.PaymentTerms))))
	r.PaymentMethod = trade.PaymentMethod(strings.ToUpper(strings.TrimSpace(string(r.PaymentMethod))))
	if r.CustomerID != nil && *r.CustomerID == uuid.Nil {
		r.CustomerID = nil
	}
	if r.DueDate != nil {
		d := truncateDay(*r.DueDate)
		r.DueDate = &d
	}
	return r
}

// checkLine runs the per-line checks that need no storage access
func (v *SaleValidator) checkLine(r trade.SaleRequest, today time.Time) *shared.DomainError {
	if err := v.validate.Struct(r); err != nil {
		return fromValidatorError(err)
	}

	if err := checkAmount("discount", r.Discount, maxDiscount); err != nil {
		return err
	}
	if err := checkAmount("amount_paid", r.AmountPaid, maxAmountPaid); err != nil {
		return err
	}

	if r.PaymentTerms.IsCash() && !r.PaymentMethod.SettlesImmediately() {
		return shared.NewValidationError("INVALID_PAYMENT_METHOD",
			fmt.Sprintf("payment_method %s cannot be used with CASH terms", r.PaymentMethod)).WithField("payment_method")
	}

	if r.DueDate != nil {
		if r.PaymentTerms.IsCash() {
			return shared.NewValidationError("INVALID_DUE_DATE", "due_date is only allowed for credit terms").WithField("due_date")
		}
		latest := today.AddDate(0, 0, v.maxDueDays)
		if r.DueDate.Before(today) || r.DueDate.After(latest) {
			return shared.NewValidationError("INVALID_DUE_DATE",
				fmt.Sprintf("due_date must be between %s and %s", today.Format("2006-01-02"), latest.Format("2006-01-02"))).
				WithField("due_date")
		}
	}

	switch {
	case r.HasCustomerID() && r.HasCustomerName():
		return shared.NewValidationError("AMBIGUOUS_CUSTOMER", "Provide either customer_id or customer_name, not both").WithField("customer_id")
	case !r.HasCustomerID() && !r.HasCustomerName():
		return shared.NewValidationError("MISSING_CUSTOMER", "Either customer_id or customer_name is required").WithField("customer_id")
	}
	return nil
}

// checkAmount verifies 0 <= amount <= limit with at most 2 decimal places
func checkAmount(field string, amount, limit decimal.Decimal) *shared.DomainError {
	if amount.IsNegative() || amount.GreaterThan(limit) {
		return shared.NewValidationError("OUT_OF_RANGE",
			fmt.Sprintf("%s must be between 0 and %s", field, limit.StringFixed(2))).WithField(field)
	}
	if !amount.Equal(amount.Truncate(2)) {
		return shared.NewValidationError("INVALID_PRECISION",
			fmt.Sprintf("%s must have at most 2 decimal places", field)).WithField(field)
	}
	return nil
}

// checkReferences resolves every referenced pool, district, salesperson and
// customer with one lookup per directory and verifies each is active
func (v *SaleValidator) checkReferences(ctx context.Context, lines []ValidatedLine) (map[uuid.UUID]*inventory.Pool, error) {
	poolLines := make(map[uuid.UUID]int)
	districtLines := make(map[uuid.UUID]int)
	salespersonLines := make(map[uuid.UUID]int)
	customerLines := make(map[uuid.UUID]int)
	for _, l := range lines {
		firstLine(poolLines, l.Request.PoolID, l.Line)
		firstLine(districtLines, l.Request.DistrictID, l.Line)
		firstLine(salespersonLines, l.Request.SalespersonID, l.Line)
		if l.Request.HasCustomerID() {
			firstLine(customerLines, *l.Request.CustomerID, l.Line)
		}
	}

	poolList, err := v.pools.FindByIDs(ctx, keys(poolLines))
	if err != nil {
		return nil, fmt.Errorf("lookup pools: %w", err)
	}
	pools := make(map[uuid.UUID]*inventory.Pool, len(poolList))
	for i := range poolList {
		pools[poolList[i].ID] = &poolList[i]
	}
	for _, id := range orderedKeys(poolLines) {
		p, ok := pools[id]
		if !ok {
			return nil, shared.NewReferenceNotFoundError("POOL_NOT_FOUND",
				fmt.Sprintf("Inventory pool %s not found", id)).WithField("pool_id").AtLine(poolLines[id])
		}
		if !p.IsActive() {
			return nil, shared.NewReferenceNotFoundError("POOL_INACTIVE",
				fmt.Sprintf("Inventory pool %s (batch %s) is %s", id, p.BatchNumber, p.Status)).WithField("pool_id").AtLine(poolLines[id])
		}
	}

	districts, err := v.districts.FindByIDs(ctx, keys(districtLines))
	if err != nil {
		return nil, fmt.Errorf("lookup districts: %w", err)
	}
	activeDistricts := make(map[uuid.UUID]bool, len(districts))
	for _, d := range districts {
		activeDistricts[d.ID] = d.Active
	}
	if err := requireActive("District", "district_id", districtLines, activeDistricts); err != nil {
		return nil, err
	}

	salespeople, err := v.salespeople.FindByIDs(ctx, keys(salespersonLines))
	if err != nil {
		return nil, fmt.Errorf("lookup salespeople: %w", err)
	}
	activeSalespeople := make(map[uuid.UUID]bool, len(salespeople))
	for _, s := range salespeople {
		activeSalespeople[s.ID] = s.Active
	}
	if err := requireActive("Salesperson", "salesperson_id", salespersonLines, activeSalespeople); err != nil {
		return nil, err
	}

	if len(customerLines) > 0 {
		customers, err := v.customers.FindByIDs(ctx, keys(customerLines))
		if err != nil {
			return nil, fmt.Errorf("lookup customers: %w", err)
		}
		activeCustomers := make(map[uuid.UUID]bool, len(customers))
		for _, c := range customers {
			activeCustomers[c.ID] = c.IsActive()
		}
		if err := requireActive("Customer", "customer_id", customerLines, activeCustomers); err != nil {
			return nil, err
		}
	}

	return pools, nil
}

func requireActive(kind, field string, lines map[uuid.UUID]int, active map[uuid.UUID]bool) error {
	code := strings.ToUpper(kind)
	for _, id := range orderedKeys(lines) {
		isActive, ok := active[id]
		if !ok {
			return shared.NewReferenceNotFoundError(code+"_NOT_FOUND",
				fmt.Sprintf("%s %s not found", kind, id)).WithField(field).AtLine(lines[id])
		}
		if !isActive {
			return shared.NewReferenceNotFoundError(code+"_INACTIVE",
				fmt.Sprintf("%s %s is inactive", kind, id)).WithField(field).AtLine(lines[id])
		}
	}
	return nil
}

func firstLine(m map[uuid.UUID]int, id uuid.UUID, line int) {
	if _, ok := m[id]; !ok {
		m[id] = line
	}
}

func keys(m map[uuid.UUID]int) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

// orderedKeys returns ids ordered by the line that first referenced them
func orderedKeys(m map[uuid.UUID]int) []uuid.UUID {
	ids := keys(m)
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && m[ids[j]] < m[ids[j-1]]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
	return ids
}

// fromValidatorError turns the first struct validation failure into a DomainError
func fromValidatorError(err error) *shared.DomainError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return shared.NewValidationError("INVALID_INPUT", err.Error())
	}
	fe := fieldErrs[0]
	return shared.NewValidationError("INVALID_"+strings.ToUpper(fe.Field()),
		fe.Field()+" "+validationMessage(fe)).WithField(fe.Field())
}

// validationMessage returns a human-readable validation message
func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be between 1 and 999999"
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be between 1 and 999999"
	case "oneof":
		return "must be one of: " + e.Param()
	case "no_script":
		return "contains script-like content"
	case "customer_name", "invoice_number", "classification", "area_code":
		return "contains invalid characters"
	default:
		return "is invalid"
	}
}

func atLine(err error, line int) error {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.AtLine(line)
	}
	return err
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
