package extract_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/rentwht/internal/extract"
	"github.com/rezonia/rentwht/internal/model"
)

const labeledInvoice = `COMMERCIAL INVOICE
Invoice No: INV-2026-042
Date: 05/03/2026
Landlord: Mwenge Properties Ltd
TIN: 123-456-789
Period: March 2026
Description: Office Rent - Plot 45 Kinondoni

Base Rent: TZS 5,000,000.00
VAT @ 18%: TZS 900,000.00
Total: TZS 5,900,000.00

Bank: CRDB Bank
Account: 0150-2233-4455
USD 2,250.00 equivalent at prevailing rate`

func TestExtract_LabeledInvoice(t *testing.T) {
	rec, warnings := extract.Extract(labeledInvoice)
	require.NotNil(t, rec)
	assert.Empty(t, warnings)

	assert.Equal(t, "INV-2026-042", rec.InvoiceNumber)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), rec.InvoiceDate)
	assert.Equal(t, "Mwenge Properties Ltd", rec.Landlord)
	assert.Equal(t, "123-456-789", rec.LandlordTIN)
	assert.Equal(t, "March 2026", rec.Period)
	assert.Equal(t, "CRDB Bank", rec.BankName)
	assert.Equal(t, "0150-2233-4455", rec.AccountNumber)
	assert.Equal(t, "USD 2,250.00", rec.USDNote)

	require.Equal(t, model.SourceExtracted, rec.BaseRent.Source)
	require.Equal(t, model.SourceExtracted, rec.VATAmount.Source)
	require.Equal(t, model.SourceExtracted, rec.TotalAmount.Source)

	assert.True(t, rec.BaseRent.Amount.Equal(decimal.NewFromInt(5000000)),
		"base rent: got %s", rec.BaseRent.Amount.String())
	assert.True(t, rec.VATAmount.Amount.Equal(decimal.NewFromInt(900000)),
		"VAT: got %s", rec.VATAmount.Amount.String())
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.NewFromInt(5900000)),
		"total: got %s", rec.TotalAmount.Amount.String())
}

func TestExtract_Deterministic(t *testing.T) {
	first, _ := extract.Extract(labeledInvoice)
	second, _ := extract.Extract(labeledInvoice)
	assert.Equal(t, first, second)
}

func TestExtract_PositionalFallback(t *testing.T) {
	text := `Rent for March 2026
Office space rental, Plot 12

TZS 5,000,000.00
TZS 900,000.00
TZS 5,900,000.00`

	rec, _ := extract.Extract(text)

	// No labels: last amount is the total, second to last the VAT.
	// Base rent is never guessed positionally.
	assert.False(t, rec.BaseRent.Known())
	require.True(t, rec.VATAmount.Known())
	require.True(t, rec.TotalAmount.Known())

	assert.True(t, rec.VATAmount.Amount.Equal(decimal.NewFromInt(900000)))
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.NewFromInt(5900000)))
	assert.Equal(t, "March 2026", rec.Period)
}

func TestExtract_SuffixCurrencyToken(t *testing.T) {
	text := `Monthly rent invoice
900,000.00 TSh
5,900,000.00 TSh`

	rec, _ := extract.Extract(text)

	require.True(t, rec.TotalAmount.Known())
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.RequireFromString("5900000.00")))
	// Only two amounts: VAT is not guessed
	assert.False(t, rec.VATAmount.Known())
}

func TestExtract_LabelsBeatPosition(t *testing.T) {
	// Labeled VAT earlier in the text wins over the positional guess
	text := `VAT: TZS 450,000.00
TZS 2,500,000.00
TZS 2,950,000.00`

	rec, _ := extract.Extract(text)

	require.True(t, rec.VATAmount.Known())
	assert.True(t, rec.VATAmount.Amount.Equal(decimal.NewFromInt(450000)),
		"got %s", rec.VATAmount.Amount.String())

	// Total still comes from position: last currency amount in the text
	require.True(t, rec.TotalAmount.Known())
	assert.True(t, rec.TotalAmount.Amount.Equal(decimal.NewFromInt(2950000)),
		"got %s", rec.TotalAmount.Amount.String())
}

func TestExtract_MalformedTIN(t *testing.T) {
	text := `Landlord: Ubungo Estates Ltd
TIN: 123456789
Total: TZS 1,000,000.00`

	rec, warnings := extract.Extract(text)

	// Nine plain digits is not the hyphenated TIN shape
	assert.Empty(t, rec.LandlordTIN)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "landlord_tin")
}

func TestExtract_MalformedDate(t *testing.T) {
	text := `Date: 45/99/2026
Total: TZS 1,000,000.00`

	rec, warnings := extract.Extract(text)

	assert.True(t, rec.InvoiceDate.IsZero())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "invoice_date")
}

func TestExtract_EmptyText(t *testing.T) {
	rec, warnings := extract.Extract("")
	require.NotNil(t, rec)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, rec.KnownAmounts())
	assert.Len(t, rec.MissingAmounts(), 3)
}

func TestExtract_TextualDate(t *testing.T) {
	text := `Invoice Date: 5 March 2026
Total: TZS 1,000,000.00`

	rec, _ := extract.Extract(text)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), rec.InvoiceDate)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
		wantErr  bool
	}{
		{"plain", "5000000", "5000000", false},
		{"thousands separators", "5,000,000.00", "5000000.00", false},
		{"prefix token", "TZS 900,000.00", "900000.00", false},
		{"suffix token", "900,000.00 TSh", "900000.00", false},
		{"lowercase token", "tzs 1,500.50", "1500.50", false},
		{"negative rejected", "-500", "", true},
		{"garbage rejected", "5,0O0,000", "", true},
		{"empty rejected", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := extract.ParseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, d.Equal(decimal.RequireFromString(tt.expected)),
				"got %s, want %s", d.String(), tt.expected)
		})
	}
}

func TestFirstMatch_OrderIsAuthoritative(t *testing.T) {
	matchers := []extract.Matcher{
		extract.Pattern(`specific[:\s]*(\d+)`),
		extract.Pattern(`(\d+)`),
	}

	v, ok := extract.FirstMatch("specific: 42 then 99", matchers)
	require.True(t, ok)
	assert.Equal(t, "42", v)

	v, ok = extract.FirstMatch("just 99", matchers)
	require.True(t, ok)
	assert.Equal(t, "99", v)
}

func BenchmarkExtract(b *testing.B) {
	for i := 0; i < b.N; i++ {
		extract.Extract(labeledInvoice)
	}
}
