// Package processor wires extraction, reconciliation, and the
// withholding calculation into a single pipeline.
package processor

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/rezonia/rentwht/internal/extract"
	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/reconcile"
	"github.com/rezonia/rentwht/internal/tax"
	"github.com/rezonia/rentwht/internal/textextract"
)

// Outcome classifies a processing result
type Outcome string

const (
	// OutcomeComplete means all amounts were extracted and reconciled
	OutcomeComplete Outcome = "complete"
	// OutcomeCompleteWithInference means one amount was derived from the
	// other two
	OutcomeCompleteWithInference Outcome = "complete-with-inference"
	// OutcomeNeedsInput means too few amounts were found to proceed
	OutcomeNeedsInput Outcome = "needs-input"
	// OutcomeConflict means the extracted amounts disagree with each
	// other; a caller must resolve before a breakdown can be computed
	OutcomeConflict Outcome = "conflict"
)

// Result is the outcome of processing one invoice
type Result struct {
	Record    *model.InvoiceRecord    `json:"record"`
	Breakdown *model.PaymentBreakdown `json:"breakdown,omitempty"`
	Outcome   Outcome                 `json:"outcome,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`

	// Conflict carries the disagreeing amounts when Outcome is conflict
	Conflict *model.AmountConflictError `json:"-"`
	// Missing lists absent amount fields when Outcome is needs-input
	Missing []string `json:"missing,omitempty"`

	Error error `json:"-"`
}

// Overrides lets a caller replace or discard extracted amounts, e.g. to
// resolve a conflict by declaring which value to trust. Replacements
// are authoritative; discarded fields are re-inferred from the rest.
type Overrides struct {
	BaseRent    *decimal.Decimal `json:"base_rent,omitempty"`
	VATAmount   *decimal.Decimal `json:"vat_amount,omitempty"`
	TotalAmount *decimal.Decimal `json:"total_amount,omitempty"`

	Discard []string `json:"discard,omitempty"`
}

// Pipeline orchestrates text extraction through payment calculation
type Pipeline struct {
	rates      tax.Rates
	reconciler *reconcile.Reconciler
	calculator *tax.Calculator
	extractor  textextract.Extractor
	log        zerolog.Logger
}

// Option configures the pipeline
type Option func(*Pipeline)

// WithRates sets the tax rates used for reconciliation and calculation
func WithRates(rates tax.Rates) Option {
	return func(p *Pipeline) { p.rates = rates }
}

// WithTextExtractor sets the extractor used by ProcessDocument for
// non-text documents
func WithTextExtractor(e textextract.Extractor) Option {
	return func(p *Pipeline) { p.extractor = e }
}

// WithLogger sets the pipeline logger
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline creates a processing pipeline
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		rates: tax.DefaultRates(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.reconciler = reconcile.New(
		reconcile.WithTolerance(p.rates.Tolerance),
		reconcile.WithStandardVATRate(p.rates.StandardVAT),
	)
	p.calculator = tax.NewCalculator(p.rates)
	return p
}

// ProcessText extracts a record from raw invoice text, reconciles it,
// and computes the payment breakdown when the record is consistent.
func (p *Pipeline) ProcessText(ctx context.Context, text string) *Result {
	rec, warnings := extract.Extract(text)
	return p.finish(rec, warnings)
}

// ProcessRecord reconciles and calculates over a caller-supplied record,
// the manual-entry and conflict-resolution path. Overrides may be nil.
func (p *Pipeline) ProcessRecord(ctx context.Context, rec *model.InvoiceRecord, overrides *Overrides) *Result {
	applyOverrides(rec, overrides)
	return p.finish(rec, nil)
}

// ProcessDocument detects the document format, recovers its text, and
// processes it. Plain text skips the extractor entirely.
func (p *Pipeline) ProcessDocument(ctx context.Context, data []byte) *Result {
	format := DetectFormat(data)
	p.log.Debug().Str("format", format.String()).Int("size", len(data)).Msg("processing document")

	switch format {
	case FormatText:
		return p.ProcessText(ctx, string(data))

	case FormatPDF, FormatImage:
		if p.extractor == nil {
			return &Result{Error: textextract.NewExtractError("ProcessDocument",
				textextract.ErrExtractionUnavailable, "no text extractor configured")}
		}
		text, err := p.extractor.ExtractText(ctx, data)
		if err != nil {
			return &Result{Error: err}
		}
		return p.ProcessText(ctx, text)

	default:
		return &Result{Error: textextract.NewExtractError("ProcessDocument",
			textextract.ErrUnsupportedFormat, "")}
	}
}

func (p *Pipeline) finish(rec *model.InvoiceRecord, warnings []string) *Result {
	res := &Result{Record: rec, Warnings: warnings}

	rr := p.reconciler.Reconcile(rec)
	res.Warnings = append(res.Warnings, rr.Warnings...)

	switch rr.Status {
	case model.StatusConflicting:
		res.Outcome = OutcomeConflict
		res.Conflict = rr.Conflict
		res.Warnings = append(res.Warnings, rr.Conflict.Error())
		p.log.Warn().Str("outcome", string(res.Outcome)).Msg("amounts conflict")
		return res

	case model.StatusIncomplete:
		res.Outcome = OutcomeNeedsInput
		res.Missing = rr.Incomplete.Missing
		p.log.Info().Strs("missing", res.Missing).Msg("record incomplete")
		return res
	}

	breakdown, err := p.calculator.Compute(rec)
	if err != nil {
		res.Error = err
		return res
	}
	res.Breakdown = breakdown

	if inferredAny(rec) {
		res.Outcome = OutcomeCompleteWithInference
	} else {
		res.Outcome = OutcomeComplete
	}
	p.log.Debug().Str("outcome", string(res.Outcome)).Msg("processed invoice")
	return res
}

func applyOverrides(rec *model.InvoiceRecord, ov *Overrides) {
	if ov == nil {
		return
	}

	if ov.BaseRent != nil {
		rec.BaseRent = model.Extracted(*ov.BaseRent)
	}
	if ov.VATAmount != nil {
		rec.VATAmount = model.Extracted(*ov.VATAmount)
	}
	if ov.TotalAmount != nil {
		rec.TotalAmount = model.Extracted(*ov.TotalAmount)
	}

	for _, field := range ov.Discard {
		switch field {
		case "base_rent":
			rec.BaseRent = model.Field{}
		case "vat_amount":
			rec.VATAmount = model.Field{}
		case "total_amount":
			rec.TotalAmount = model.Field{}
		}
	}

	// Overriding amounts invalidates any previous reconciliation
	rec.Status = ""
}

func inferredAny(rec *model.InvoiceRecord) bool {
	return rec.BaseRent.Source == model.SourceInferred ||
		rec.VATAmount.Source == model.SourceInferred ||
		rec.TotalAmount.Source == model.SourceInferred
}
