// Package reconcile checks the arithmetic relationship between a rent
// invoice's base, VAT, and total amounts, inferring a single missing
// amount from the other two.
package reconcile

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/money"
)

// Result describes the outcome of reconciling one record
type Result struct {
	Status   model.Status
	Inferred string // field filled in by inference, if any
	Warnings []string

	Conflict   *model.AmountConflictError
	Incomplete *model.IncompleteRecordError
}

// Reconciler verifies base + VAT == total within a tolerance
type Reconciler struct {
	tolerance       decimal.Decimal
	standardVATRate decimal.Decimal
	rateTolerance   decimal.Decimal
}

// Option configures a Reconciler
type Option func(*Reconciler)

// WithTolerance sets the epsilon for amount equality checks
func WithTolerance(tol decimal.Decimal) Option {
	return func(r *Reconciler) { r.tolerance = tol }
}

// WithStandardVATRate sets the rate the implied VAT rate is compared to
func WithStandardVATRate(rate decimal.Decimal) Option {
	return func(r *Reconciler) { r.standardVATRate = rate }
}

// New creates a reconciler. Defaults: tolerance 1.00, standard VAT rate
// 18%, implied-rate deviation tolerance of one percentage point.
func New(opts ...Option) *Reconciler {
	r := &Reconciler{
		tolerance:       money.DefaultTolerance,
		standardVATRate: money.MustFromString("0.18"),
		rateTolerance:   money.MustFromString("0.01"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile classifies the record's monetary fields and sets rec.Status.
// With all three present it verifies the sum; with two it infers the
// third and writes it back marked inferred; with fewer it reports which
// fields are missing. Extracted values are never overwritten.
func (r *Reconciler) Reconcile(rec *model.InvoiceRecord) *Result {
	res := &Result{}

	switch rec.KnownAmounts() {
	case 3:
		r.verify(rec, res)
	case 2:
		r.infer(rec, res)
	default:
		res.Status = model.StatusIncomplete
		missing := rec.MissingAmounts()
		known := knownFields(rec)
		res.Incomplete = model.NewIncompleteRecordError(known, missing)
	}

	rec.Status = res.Status
	r.checkVATRate(rec, res)
	return res
}

func (r *Reconciler) verify(rec *model.InvoiceRecord, res *Result) {
	base := rec.BaseRent.Amount
	vat := rec.VATAmount.Amount
	total := rec.TotalAmount.Amount

	if money.WithinTolerance(base.Add(vat), total, r.tolerance) {
		res.Status = model.StatusConsistent
		return
	}

	res.Status = model.StatusConflicting
	res.Conflict = model.NewAmountConflictError(base, vat, total)
}

func (r *Reconciler) infer(rec *model.InvoiceRecord, res *Result) {
	switch {
	case !rec.TotalAmount.Known():
		rec.TotalAmount = model.Inferred(rec.BaseRent.Amount.Add(rec.VATAmount.Amount))
		res.Inferred = "total_amount"

	case !rec.VATAmount.Known():
		vat := rec.TotalAmount.Amount.Sub(rec.BaseRent.Amount)
		if vat.IsNegative() {
			res.Status = model.StatusConflicting
			res.Conflict = model.NewAmountConflictError(
				rec.BaseRent.Amount, vat, rec.TotalAmount.Amount)
			return
		}
		rec.VATAmount = model.Inferred(vat)
		res.Inferred = "vat_amount"

	default:
		base := rec.TotalAmount.Amount.Sub(rec.VATAmount.Amount)
		if base.IsNegative() {
			res.Status = model.StatusConflicting
			res.Conflict = model.NewAmountConflictError(
				base, rec.VATAmount.Amount, rec.TotalAmount.Amount)
			return
		}
		rec.BaseRent = model.Inferred(base)
		res.Inferred = "base_rent"
	}

	res.Status = model.StatusConsistent
}

// checkVATRate compares the implied VAT rate to the standard rate and
// records a non-fatal warning when it deviates by more than the rate
// tolerance. Never blocks calculation.
func (r *Reconciler) checkVATRate(rec *model.InvoiceRecord, res *Result) {
	implied, ok := rec.ImpliedVATRate()
	if !ok {
		return
	}
	if !money.WithinTolerance(implied, r.standardVATRate, r.rateTolerance) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"implied VAT rate %s deviates from standard rate %s",
			implied, r.standardVATRate))
	}
}

func knownFields(rec *model.InvoiceRecord) []string {
	var known []string
	if rec.BaseRent.Known() {
		known = append(known, "base_rent")
	}
	if rec.VATAmount.Known() {
		known = append(known, "vat_amount")
	}
	if rec.TotalAmount.Known() {
		known = append(known, "total_amount")
	}
	return known
}
