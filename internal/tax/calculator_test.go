package tax_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/tax"
)

func TestCompute_StandardSplit(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	rec := &model.InvoiceRecord{
		BaseRent:    model.Extracted(decimal.NewFromInt(5000000)),
		VATAmount:   model.Extracted(decimal.NewFromInt(900000)),
		TotalAmount: model.Extracted(decimal.NewFromInt(5900000)),
	}

	b, err := calc.Compute(rec)
	require.NoError(t, err)

	// Withholding = 10% of base rent
	assert.True(t, b.Withholding.Equal(decimal.NewFromInt(500000)),
		"withholding: got %s", b.Withholding.String())

	// Landlord gets (base - withholding) + VAT
	assert.True(t, b.ToLandlord.Equal(decimal.NewFromInt(5400000)),
		"to landlord: got %s", b.ToLandlord.String())

	assert.True(t, b.ToAuthority.Equal(decimal.NewFromInt(500000)))
	assert.True(t, b.TotalOutflow.Equal(decimal.NewFromInt(5900000)))

	require.NotNil(t, b.OutflowMatchesTotal)
	assert.True(t, *b.OutflowMatchesTotal)
}

func TestCompute_ConservesMoney(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	// Odd base forcing the withholding to round
	tests := []struct {
		base string
		vat  string
	}{
		{"152423.35", "27436.20"},
		{"999999.99", "180000.00"},
		{"3333333.33", "599999.99"},
		{"1", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			rec := &model.InvoiceRecord{
				BaseRent:  model.Extracted(decimal.RequireFromString(tt.base)),
				VATAmount: model.Extracted(decimal.RequireFromString(tt.vat)),
			}

			b, err := calc.Compute(rec)
			require.NoError(t, err)

			// ToLandlord + ToAuthority must equal base + VAT exactly,
			// whatever the withholding rounded to
			inflow := decimal.RequireFromString(tt.base).Add(decimal.RequireFromString(tt.vat))
			outflow := b.ToLandlord.Add(b.ToAuthority)
			assert.True(t, outflow.Equal(inflow),
				"outflow %s != inflow %s", outflow.String(), inflow.String())
		})
	}
}

func TestCompute_WithholdingRoundsHalfUp(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	// 10% of 152423.35 = 15242.335, rounds half-up to 15242.34
	rec := &model.InvoiceRecord{
		BaseRent: model.Extracted(decimal.RequireFromString("152423.35")),
	}

	b, err := calc.Compute(rec)
	require.NoError(t, err)
	assert.True(t, b.Withholding.Equal(decimal.RequireFromString("15242.34")),
		"got %s", b.Withholding.String())
}

func TestCompute_ZeroVAT(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	// Unknown VAT is treated as zero at this level
	rec := &model.InvoiceRecord{
		BaseRent: model.Extracted(decimal.NewFromInt(2000000)),
	}

	b, err := calc.Compute(rec)
	require.NoError(t, err)

	assert.True(t, b.Withholding.Equal(decimal.NewFromInt(200000)))
	assert.True(t, b.ToLandlord.Equal(decimal.NewFromInt(1800000)))
	assert.True(t, b.TotalOutflow.Equal(decimal.NewFromInt(2000000)))
	assert.Nil(t, b.OutflowMatchesTotal, "no invoice total to compare against")
}

func TestCompute_BaseRentAbsent(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	_, err := calc.Compute(&model.InvoiceRecord{})
	require.Error(t, err)

	var invalidBase *model.InvalidBaseRentError
	require.ErrorAs(t, err, &invalidBase)
	assert.False(t, invalidBase.Known)
}

func TestCompute_BaseRentZero(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	rec := &model.InvoiceRecord{
		BaseRent: model.Extracted(decimal.Zero),
	}

	_, err := calc.Compute(rec)
	require.Error(t, err)

	var invalidBase *model.InvalidBaseRentError
	require.ErrorAs(t, err, &invalidBase)
	assert.True(t, invalidBase.Known)
	assert.True(t, invalidBase.Value.IsZero())
}

func TestCompute_BaseRentNegative(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	rec := &model.InvoiceRecord{
		BaseRent: model.Extracted(decimal.NewFromInt(-100)),
	}

	_, err := calc.Compute(rec)
	var invalidBase *model.InvalidBaseRentError
	require.ErrorAs(t, err, &invalidBase)
}

func TestCompute_RemittanceDeadline(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	rec := &model.InvoiceRecord{
		InvoiceDate: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		BaseRent:    model.Extracted(decimal.NewFromInt(1000000)),
	}

	b, err := calc.Compute(rec)
	require.NoError(t, err)

	require.NotNil(t, b.RemittanceDeadline)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), *b.RemittanceDeadline)
}

func TestCompute_OutflowMismatch(t *testing.T) {
	calc := tax.NewCalculator(tax.DefaultRates())

	// Stated total disagrees with base + VAT
	rec := &model.InvoiceRecord{
		BaseRent:    model.Extracted(decimal.NewFromInt(5000000)),
		VATAmount:   model.Extracted(decimal.NewFromInt(900000)),
		TotalAmount: model.Extracted(decimal.NewFromInt(6000000)),
	}

	b, err := calc.Compute(rec)
	require.NoError(t, err)

	require.NotNil(t, b.OutflowMatchesTotal)
	assert.False(t, *b.OutflowMatchesTotal)
}

func TestCompute_CustomRates(t *testing.T) {
	rates := tax.DefaultRates()
	rates.Withholding = decimal.RequireFromString("0.15")
	calc := tax.NewCalculator(rates)

	rec := &model.InvoiceRecord{
		BaseRent: model.Extracted(decimal.NewFromInt(1000000)),
	}

	b, err := calc.Compute(rec)
	require.NoError(t, err)
	assert.True(t, b.Withholding.Equal(decimal.NewFromInt(150000)))
}

func BenchmarkCompute(b *testing.B) {
	calc := tax.NewCalculator(tax.DefaultRates())
	rec := &model.InvoiceRecord{
		BaseRent:    model.Extracted(decimal.NewFromInt(5000000)),
		VATAmount:   model.Extracted(decimal.NewFromInt(900000)),
		TotalAmount: model.Extracted(decimal.NewFromInt(5900000)),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := calc.Compute(rec); err != nil {
			b.Fatal(err)
		}
	}
}
