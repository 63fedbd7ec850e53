package trade

import (
	"fmt"
	"time"

	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultOverpaymentTolerance allows paying up to 110% of the final price
var DefaultOverpaymentTolerance = decimal.RequireFromString("0.10")

// PricingInput holds everything the calculator needs for one line
type PricingInput struct {
	RetailPrice decimal.Decimal
	Quantity    int64
	Discount    decimal.Decimal
	AmountPaid  decimal.Decimal
	Terms       PaymentTerms
	DueDate     *time.Time // explicit due date, optional
	Today       time.Time
}

// PricingResult is the derived money and due date of one line
type PricingResult struct {
	TotalBeforeDiscount decimal.Decimal
	Discount            decimal.Decimal
	FinalPrice          decimal.Decimal
	AmountPaid          decimal.Decimal
	Balance             decimal.Decimal
	DueDate             *time.Time
}

// PricingCalculator derives totals and balance with exact decimal arithmetic
type PricingCalculator struct {
	overpaymentTolerance decimal.Decimal
}

// NewPricingCalculator creates a calculator; a negative tolerance falls back to the default
func NewPricingCalculator(overpaymentTolerance decimal.Decimal) *PricingCalculator {
	if overpaymentTolerance.IsNegative() {
		overpaymentTolerance = DefaultOverpaymentTolerance
	}
	return &PricingCalculator{overpaymentTolerance: overpaymentTolerance}
}

// Calculate computes totalBeforeDiscount = retail x quantity, finalPrice = total - discount
// and balance = finalPrice - amountPaid, then enforces the line invariants.
func (c *PricingCalculator) Calculate(in PricingInput) (PricingResult, error) {
	if in.Quantity <= 0 {
		return PricingResult{}, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if in.Discount.IsNegative() {
		return PricingResult{}, shared.NewValidationError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if in.AmountPaid.IsNegative() {
		return PricingResult{}, shared.NewValidationError("INVALID_AMOUNT_PAID", "Amount paid cannot be negative")
	}

	total := in.RetailPrice.Mul(decimal.NewFromInt(in.Quantity))
	if !in.Discount.LessThan(total) {
		return PricingResult{}, shared.NewInvariantViolationError("DISCOUNT_EXCEEDS_TOTAL",
			fmt.Sprintf("Discount %s must be less than the line value %s", in.Discount.StringFixed(2), total.StringFixed(2)))
	}

	final := total.Sub(in.Discount)
	ceiling := final.Mul(decimal.NewFromInt(1).Add(c.overpaymentTolerance))
	if in.AmountPaid.GreaterThan(ceiling) {
		return PricingResult{}, shared.NewInvariantViolationError("OVERPAYMENT",
			fmt.Sprintf("Amount paid %s exceeds the allowed maximum %s", in.AmountPaid.StringFixed(2), ceiling.StringFixed(2)))
	}

	balance := final.Sub(in.AmountPaid)
	if balance.IsNegative() {
		return PricingResult{}, shared.NewInvariantViolationError("NEGATIVE_BALANCE",
			fmt.Sprintf("Amount paid %s exceeds the final price %s", in.AmountPaid.StringFixed(2), final.StringFixed(2)))
	}
	if balance.IsZero() && !in.Terms.IsCash() {
		return PricingResult{}, shared.NewInvariantViolationError("CASH_BALANCE_MISMATCH",
			fmt.Sprintf("A fully paid sale must use CASH terms, got %s", in.Terms))
	}
	if !balance.IsZero() && in.Terms.IsCash() {
		return PricingResult{}, shared.NewInvariantViolationError("CASH_BALANCE_MISMATCH",
			fmt.Sprintf("CASH terms require full payment, outstanding balance %s", balance.StringFixed(2)))
	}

	dueDate, err := resolveDueDate(in.Terms, in.DueDate, in.Today)
	if err != nil {
		return PricingResult{}, err
	}

	return PricingResult{
		TotalBeforeDiscount: total,
		Discount:            in.Discount,
		FinalPrice:          final,
		AmountPaid:          in.AmountPaid,
		Balance:             balance,
		DueDate:             dueDate,
	}, nil
}

// resolveDueDate keeps an explicit due date, or derives today + N days for credit terms
func resolveDueDate(terms PaymentTerms, explicit *time.Time, today time.Time) (*time.Time, error) {
	if terms.IsCash() {
		if explicit != nil {
			return nil, shared.NewInvariantViolationError("CASH_DUE_DATE", "CASH terms cannot carry a due date")
		}
		return nil, nil
	}
	if explicit != nil {
		d := truncateDay(*explicit)
		return &d, nil
	}
	days, ok := terms.CreditDays()
	if !ok {
		return nil, shared.NewValidationError("INVALID_PAYMENT_TERMS", fmt.Sprintf("Invalid payment terms: %s", terms))
	}
	d := truncateDay(today).AddDate(0, 0, days)
	return &d, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
