// Package model defines the invoice record extracted from rent invoices
// and the payment breakdown derived from it.
package model

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// Provenance records where a monetary value came from
type Provenance string

const (
	// SourceAbsent means the field was not found and could not be derived
	SourceAbsent Provenance = "absent"
	// SourceExtracted means the value was read directly from the document text
	SourceExtracted Provenance = "extracted"
	// SourceInferred means the value was derived from the other two amounts
	SourceInferred Provenance = "inferred"
)

// Status is the reconciliation state of a record's monetary fields
type Status string

const (
	StatusConsistent  Status = "consistent"
	StatusConflicting Status = "conflicting"
	StatusIncomplete  Status = "incomplete"
)

// Field is a monetary amount tagged with its provenance. The zero value
// is an absent field, so provenance can never drift from the value.
type Field struct {
	Amount decimal.Decimal `json:"amount"`
	Source Provenance      `json:"source"`
}

// Extracted builds a field read directly from document text
func Extracted(amount decimal.Decimal) Field {
	return Field{Amount: amount, Source: SourceExtracted}
}

// Inferred builds a field derived from the other two amounts
func Inferred(amount decimal.Decimal) Field {
	return Field{Amount: amount, Source: SourceInferred}
}

// Known reports whether the field carries a usable value
func (f Field) Known() bool {
	return f.Source == SourceExtracted || f.Source == SourceInferred
}

// MarshalJSON normalizes an unset Source to "absent"
func (f Field) MarshalJSON() ([]byte, error) {
	src := f.Source
	if src == "" {
		src = SourceAbsent
	}
	return json.Marshal(struct {
		Amount decimal.Decimal `json:"amount"`
		Source Provenance      `json:"source"`
	}{f.Amount, src})
}

// tinPattern matches a Tanzanian TIN: three hyphen-separated digit groups
var tinPattern = regexp.MustCompile(`^\d+-\d+-\d+$`)

// ValidTIN reports whether s has the expected TIN shape
func ValidTIN(s string) bool {
	return tinPattern.MatchString(s)
}

// InvoiceRecord is a rent invoice after field extraction. Monetary fields
// carry provenance; Status is set by reconciliation and is empty before it.
type InvoiceRecord struct {
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	InvoiceDate   time.Time `json:"invoice_date,omitempty"`
	Period        string    `json:"period,omitempty"`
	Description   string    `json:"description,omitempty"`

	Landlord      string `json:"landlord,omitempty"`
	LandlordTIN   string `json:"landlord_tin,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`

	BaseRent    Field `json:"base_rent"`
	VATAmount   Field `json:"vat_amount"`
	TotalAmount Field `json:"total_amount"`

	// USDNote is the raw USD-equivalent line some invoices carry,
	// kept verbatim and never converted
	USDNote string `json:"usd_note,omitempty"`

	Status Status `json:"status,omitempty"`
}

// KnownAmounts counts how many of the three monetary fields are usable
func (r *InvoiceRecord) KnownAmounts() int {
	n := 0
	for _, f := range []Field{r.BaseRent, r.VATAmount, r.TotalAmount} {
		if f.Known() {
			n++
		}
	}
	return n
}

// MissingAmounts lists the monetary fields that are not usable
func (r *InvoiceRecord) MissingAmounts() []string {
	var missing []string
	if !r.BaseRent.Known() {
		missing = append(missing, "base_rent")
	}
	if !r.VATAmount.Known() {
		missing = append(missing, "vat_amount")
	}
	if !r.TotalAmount.Known() {
		missing = append(missing, "total_amount")
	}
	return missing
}

// ImpliedVATRate returns VAT/base at 4 digits, and false when either
// amount is unknown or base is zero. Derived, never stored.
func (r *InvoiceRecord) ImpliedVATRate() (decimal.Decimal, bool) {
	if !r.BaseRent.Known() || !r.VATAmount.Known() || r.BaseRent.Amount.IsZero() {
		return decimal.Zero, false
	}
	return r.VATAmount.Amount.Div(r.BaseRent.Amount).Round(4), true
}

// PaymentBreakdown is the withholding split for a reconciled invoice.
// ToLandlord + ToAuthority always equals base + VAT exactly.
type PaymentBreakdown struct {
	BaseRent    decimal.Decimal `json:"base_rent"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	Withholding decimal.Decimal `json:"withholding"`

	ToLandlord   decimal.Decimal `json:"to_landlord"`
	ToAuthority  decimal.Decimal `json:"to_authority"`
	TotalOutflow decimal.Decimal `json:"total_outflow"`

	// OutflowMatchesTotal is set only when the invoice total is known
	OutflowMatchesTotal *bool `json:"outflow_matches_total,omitempty"`

	// RemittanceDeadline is informational: the date the withheld amount
	// is due to the revenue authority, when an invoice date is known
	RemittanceDeadline *time.Time `json:"remittance_deadline,omitempty"`
}
