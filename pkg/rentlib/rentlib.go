// Package rentlib provides a public API for extracting and reconciling
// Tanzanian commercial rent invoices and computing the withholding tax
// split.
//
// Example usage:
//
//	p := rentlib.NewDefaultProcessor()
//	result := p.ProcessText(ctx, ocrText)
//	if result.Outcome == rentlib.OutcomeComplete {
//	    fmt.Println(result.Breakdown.ToLandlord)
//	}
package rentlib

import (
	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/processor"
	"github.com/rezonia/rentwht/internal/tax"
)

// Re-export core types for public API
type (
	InvoiceRecord    = model.InvoiceRecord
	Field            = model.Field
	Provenance       = model.Provenance
	PaymentBreakdown = model.PaymentBreakdown
	Rates            = tax.Rates
	Result           = processor.Result
	Outcome          = processor.Outcome
	Overrides        = processor.Overrides
)

// Re-export provenance constants
const (
	SourceAbsent    = model.SourceAbsent
	SourceExtracted = model.SourceExtracted
	SourceInferred  = model.SourceInferred
)

// Re-export outcomes
const (
	OutcomeComplete              = processor.OutcomeComplete
	OutcomeCompleteWithInference = processor.OutcomeCompleteWithInference
	OutcomeNeedsInput            = processor.OutcomeNeedsInput
	OutcomeConflict              = processor.OutcomeConflict
)

// Re-export error types
type (
	AmountConflictError   = model.AmountConflictError
	IncompleteRecordError = model.IncompleteRecordError
	InvalidBaseRentError  = model.InvalidBaseRentError
	MalformedFieldError   = model.MalformedFieldError
)

// DefaultRates returns the statutory default rates
func DefaultRates() Rates {
	return tax.DefaultRates()
}
