package reconcile_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/reconcile"
)

func record(base, vat, total string) *model.InvoiceRecord {
	rec := &model.InvoiceRecord{}
	if base != "" {
		rec.BaseRent = model.Extracted(decimal.RequireFromString(base))
	}
	if vat != "" {
		rec.VATAmount = model.Extracted(decimal.RequireFromString(vat))
	}
	if total != "" {
		rec.TotalAmount = model.Extracted(decimal.RequireFromString(total))
	}
	return rec
}

func TestReconcile_AllThreeConsistent(t *testing.T) {
	r := reconcile.New()
	rec := record("5000000", "900000", "5900000")

	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConsistent, res.Status)
	assert.Equal(t, model.StatusConsistent, rec.Status)
	assert.Empty(t, res.Inferred)
	assert.Nil(t, res.Conflict)
	assert.Empty(t, res.Warnings)
}

func TestReconcile_WithinTolerance(t *testing.T) {
	r := reconcile.New()

	// OCR rounding noise of 0.75 is absorbed by the default tolerance
	rec := record("5000000.00", "900000.00", "5900000.75")
	res := r.Reconcile(rec)
	assert.Equal(t, model.StatusConsistent, res.Status)

	// Exactly at the tolerance boundary still passes
	rec = record("5000000.00", "900000.00", "5900001.00")
	res = r.Reconcile(rec)
	assert.Equal(t, model.StatusConsistent, res.Status)
}

func TestReconcile_Conflict(t *testing.T) {
	r := reconcile.New()
	rec := record("5000000", "900000", "6000000")

	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConflicting, res.Status)
	require.NotNil(t, res.Conflict)
	assert.True(t, res.Conflict.Delta.Equal(decimal.NewFromInt(-100000)),
		"got delta %s", res.Conflict.Delta.String())

	// No silent resolution: all three extracted values survive untouched
	assert.Equal(t, model.SourceExtracted, rec.BaseRent.Source)
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.NewFromInt(6000000)))
}

func TestReconcile_InferTotal(t *testing.T) {
	r := reconcile.New()
	rec := record("5000000", "900000", "")

	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConsistent, res.Status)
	assert.Equal(t, "total_amount", res.Inferred)
	assert.Equal(t, model.SourceInferred, rec.TotalAmount.Source)
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.NewFromInt(5900000)))
}

func TestReconcile_InferVAT(t *testing.T) {
	r := reconcile.New()
	rec := record("5000000", "", "5900000")

	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConsistent, res.Status)
	assert.Equal(t, "vat_amount", res.Inferred)
	assert.Equal(t, model.SourceInferred, rec.VATAmount.Source)
	assert.True(t, rec.VATAmount.Amount.Equal(decimal.NewFromInt(900000)))
}

func TestReconcile_InferBase(t *testing.T) {
	r := reconcile.New()
	rec := record("", "900000", "5900000")

	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConsistent, res.Status)
	assert.Equal(t, "base_rent", res.Inferred)
	assert.Equal(t, model.SourceInferred, rec.BaseRent.Source)
	assert.True(t, rec.BaseRent.Amount.Equal(decimal.NewFromInt(5000000)))
}

func TestReconcile_NegativeInferredBase(t *testing.T) {
	r := reconcile.New()

	// VAT larger than the total: inferred base would be negative
	rec := record("", "900000", "500000")
	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConflicting, res.Status)
	require.NotNil(t, res.Conflict)
	assert.False(t, rec.BaseRent.Known(), "conflicting base must not be written back")
}

func TestReconcile_NegativeInferredVAT(t *testing.T) {
	r := reconcile.New()

	rec := record("900000", "", "500000")
	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConflicting, res.Status)
	require.NotNil(t, res.Conflict)
	assert.False(t, rec.VATAmount.Known())
}

func TestReconcile_Incomplete(t *testing.T) {
	r := reconcile.New()

	tests := []struct {
		name    string
		rec     *model.InvoiceRecord
		missing int
	}{
		{"only base", record("5000000", "", ""), 2},
		{"only total", record("", "", "5900000"), 2},
		{"nothing", record("", "", ""), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Reconcile(tt.rec)

			assert.Equal(t, model.StatusIncomplete, res.Status)
			require.NotNil(t, res.Incomplete)
			assert.Len(t, res.Incomplete.Missing, tt.missing)
			assert.Empty(t, res.Inferred, "no inference from a single amount")
		})
	}
}

func TestReconcile_VATRateWarning(t *testing.T) {
	r := reconcile.New()

	// 15% VAT: more than a percentage point off the 18% standard
	rec := record("5000000", "750000", "5750000")
	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConsistent, res.Status, "rate deviation never blocks")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "VAT rate")
}

func TestReconcile_VATRateWithinTolerance(t *testing.T) {
	r := reconcile.New()

	// 17.5% rounds to within one percentage point of 18%
	rec := record("1000000", "175000", "1175000")
	res := r.Reconcile(rec)

	assert.Empty(t, res.Warnings)
}

func TestReconcile_Idempotent(t *testing.T) {
	r := reconcile.New()
	rec := record("5000000", "900000", "")

	first := r.Reconcile(rec)
	require.Equal(t, model.StatusConsistent, first.Status)

	// Reconciling the already reconciled record changes nothing
	second := r.Reconcile(rec)
	assert.Equal(t, model.StatusConsistent, second.Status)
	assert.Empty(t, second.Inferred)
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.NewFromInt(5900000)))
	assert.Equal(t, model.SourceInferred, rec.TotalAmount.Source)
}

func TestReconcile_CustomTolerance(t *testing.T) {
	r := reconcile.New(reconcile.WithTolerance(decimal.RequireFromString("0.10")))

	rec := record("5000000.00", "900000.00", "5900000.75")
	res := r.Reconcile(rec)

	assert.Equal(t, model.StatusConflicting, res.Status)
}
