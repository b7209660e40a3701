package server

import (
	"github.com/shopspring/decimal"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/processor"
)

// ProcessResponse is the response for process endpoints
type ProcessResponse struct {
	Record    *model.InvoiceRecord    `json:"record"`
	Breakdown *model.PaymentBreakdown `json:"breakdown,omitempty"`
	Outcome   string                  `json:"outcome"`
	Warnings  []string                `json:"warnings,omitempty"`
	Missing   []string                `json:"missing,omitempty"`
	Conflict  *ConflictDetail         `json:"conflict,omitempty"`
}

// ConflictDetail carries the disagreeing amounts of a conflict outcome
type ConflictDetail struct {
	BaseRent    decimal.Decimal `json:"base_rent"`
	VATAmount   decimal.Decimal `json:"vat_amount"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Delta       decimal.Decimal `json:"delta"`
}

// ProcessTextRequest is the request body for the text endpoint
type ProcessTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// ProcessRecordRequest is the request body for the record endpoint
type ProcessRecordRequest struct {
	Record    *model.InvoiceRecord `json:"record" binding:"required"`
	Overrides *processor.Overrides `json:"overrides,omitempty"`
}

// CalculateRequest is the request body for the calculate endpoint
type CalculateRequest struct {
	BaseRent    decimal.Decimal  `json:"base_rent"`
	VATAmount   *decimal.Decimal `json:"vat_amount,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  string   `json:"details,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}
