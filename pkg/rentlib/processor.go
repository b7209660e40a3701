package rentlib

import (
	"context"
	"fmt"
	"io"

	"github.com/rezonia/rentwht/internal/processor"
	"github.com/rezonia/rentwht/internal/tax"
	"github.com/rezonia/rentwht/internal/textextract"
)

// Options configures the processor
type Options struct {
	// Rates are the tax parameters; zero value means the defaults
	Rates Rates

	// APIKey enables vision transcription of scanned images
	APIKey string
	// VisionBaseURL overrides the vision API endpoint
	VisionBaseURL string
	// VisionModel overrides the transcription model
	VisionModel string
}

// DefaultOptions returns the default processor options
func DefaultOptions() Options {
	return Options{Rates: tax.DefaultRates()}
}

// Processor is the public entry point wrapping the internal pipeline
type Processor struct {
	pipeline *processor.Pipeline
}

// NewProcessor creates a processor with the given options
func NewProcessor(opts Options) *Processor {
	rates := opts.Rates
	if rates.Withholding.IsZero() {
		rates = tax.DefaultRates()
	}

	var vision textextract.Extractor
	if opts.APIKey != "" {
		var visionOpts []textextract.VisionOption
		if opts.VisionBaseURL != "" {
			visionOpts = append(visionOpts, textextract.WithVisionBaseURL(opts.VisionBaseURL))
		}
		if opts.VisionModel != "" {
			visionOpts = append(visionOpts, textextract.WithVisionModel(opts.VisionModel))
		}
		vision = textextract.NewVisionExtractor(opts.APIKey, visionOpts...)
	}
	chain := textextract.NewChain(textextract.NewPDFExtractor(), vision)

	return &Processor{
		pipeline: processor.NewPipeline(
			processor.WithRates(rates),
			processor.WithTextExtractor(chain),
		),
	}
}

// NewDefaultProcessor creates a processor with default options
func NewDefaultProcessor() *Processor {
	return NewProcessor(DefaultOptions())
}

// ProcessText extracts, reconciles, and calculates from raw invoice text
func (p *Processor) ProcessText(ctx context.Context, text string) *Result {
	return p.pipeline.ProcessText(ctx, text)
}

// ProcessRecord reconciles and calculates over a caller-built record,
// optionally applying overrides
func (p *Processor) ProcessRecord(ctx context.Context, rec *InvoiceRecord, overrides *Overrides) *Result {
	return p.pipeline.ProcessRecord(ctx, rec, overrides)
}

// ProcessDocument auto-detects the document format and processes it
func (p *Processor) ProcessDocument(ctx context.Context, data []byte) *Result {
	return p.pipeline.ProcessDocument(ctx, data)
}

// Process reads a document from r and processes it
func (p *Processor) Process(ctx context.Context, r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return p.ProcessDocument(ctx, data), nil
}

// ProcessBatch processes multiple documents concurrently. The result
// slice is index-aligned with the input; per-document failures are
// carried in each Result rather than aborting the batch.
func (p *Processor) ProcessBatch(ctx context.Context, inputs [][]byte) []*Result {
	results := make([]*Result, len(inputs))
	done := make(chan struct{}, len(inputs))

	for i, data := range inputs {
		go func(idx int, data []byte) {
			results[idx] = p.ProcessDocument(ctx, data)
			done <- struct{}{}
		}(i, data)
	}

	for range inputs {
		<-done
	}

	return results
}
