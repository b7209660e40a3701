// Package tax computes the withholding split for commercial rent paid
// to a resident landlord in Tanzania: the tenant withholds a share of
// the base rent for the revenue authority and pays the landlord the
// remainder plus VAT.
package tax

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/money"
)

// Rates holds the tax parameters. Passed by value and never mutated;
// there is no global rate state.
type Rates struct {
	// Withholding is the share of base rent withheld, default 10%
	Withholding decimal.Decimal
	// StandardVAT is the expected VAT rate, default 18%
	StandardVAT decimal.Decimal
	// Tolerance is the epsilon for amount comparisons
	Tolerance decimal.Decimal
	// RemittanceDays is how many days after the invoice date the
	// withheld amount is due to the authority. Informational only.
	RemittanceDays int
}

// DefaultRates returns the statutory defaults
func DefaultRates() Rates {
	return Rates{
		Withholding:    money.MustFromString("0.10"),
		StandardVAT:    money.MustFromString("0.18"),
		Tolerance:      money.DefaultTolerance,
		RemittanceDays: 7,
	}
}

// Calculator derives payment breakdowns from reconciled records
type Calculator struct {
	rates Rates
}

// NewCalculator creates a calculator with the given rates
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Rates returns the calculator's rate configuration
func (c *Calculator) Rates() Rates {
	return c.rates
}

// Compute builds the payment breakdown for a record. Base rent must be
// a known positive amount; an unknown VAT is treated as zero. The split
// conserves money exactly: ToLandlord + ToAuthority == base + VAT, with
// rounding applied only to the withholding itself.
func (c *Calculator) Compute(rec *model.InvoiceRecord) (*model.PaymentBreakdown, error) {
	if !rec.BaseRent.Known() {
		return nil, model.NewInvalidBaseRentError(decimal.Zero, false)
	}
	base := rec.BaseRent.Amount
	if !money.IsPositive(base) {
		return nil, model.NewInvalidBaseRentError(base, true)
	}

	vat := decimal.Zero
	if rec.VATAmount.Known() {
		vat = rec.VATAmount.Amount
	}

	withholding := money.Round2(money.Percent(base, c.rates.Withholding))
	toLandlord := base.Sub(withholding).Add(vat)
	toAuthority := withholding
	outflow := toLandlord.Add(toAuthority)

	b := &model.PaymentBreakdown{
		BaseRent:     base,
		VATAmount:    vat,
		Withholding:  withholding,
		ToLandlord:   money.Round2(toLandlord),
		ToAuthority:  toAuthority,
		TotalOutflow: money.Round2(outflow),
	}

	if rec.TotalAmount.Known() {
		matches := money.WithinTolerance(outflow, rec.TotalAmount.Amount, c.rates.Tolerance)
		b.OutflowMatchesTotal = &matches
	}

	if !rec.InvoiceDate.IsZero() {
		deadline := rec.InvoiceDate.AddDate(0, 0, c.rates.RemittanceDays)
		b.RemittanceDeadline = &deadline
	}

	return b, nil
}
