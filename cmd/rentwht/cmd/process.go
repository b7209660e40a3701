package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/money"
	"github.com/rezonia/rentwht/internal/processor"
	"github.com/rezonia/rentwht/internal/textextract"
)

var (
	outputFile string
	timeout    time.Duration
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Process invoice files",
	Long: `Process one or more invoice files and compute the withholding split.

Supported formats:
  - Plain text: .txt (OCR output, pasted invoice text)
  - PDF: .pdf (text layer; scans need an API key)
  - Images: .png, .jpg, .jpeg, .tiff (requires API key)

Examples:
  rentwht process invoice.txt
  rentwht process invoice.pdf
  rentwht process scans/*.png --api-key <key>
  rentwht process invoices/ -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	processCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Processing timeout per file")
}

func runProcess(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no files found to process")
	}

	printVerbose("Found %d files to process\n", len(files))

	pipeline, err := buildPipeline()
	if err != nil {
		return err
	}

	results := make([]*ProcessResult, 0, len(files))
	for _, file := range files {
		printVerbose("Processing: %s\n", file)

		result := processFile(pipeline, file)
		results = append(results, result)

		if result.Error != "" {
			printVerbose("  Error: %s\n", result.Error)
		} else {
			printVerbose("  Outcome: %s\n", result.Outcome)
		}
	}

	return outputResults(results)
}

func buildPipeline() (*processor.Pipeline, error) {
	rates, err := ratesFromFlags()
	if err != nil {
		return nil, err
	}

	var vision textextract.Extractor
	if apiKey != "" {
		var visionOpts []textextract.VisionOption
		if visionBaseURL != "" {
			visionOpts = append(visionOpts, textextract.WithVisionBaseURL(visionBaseURL))
		}
		if visionModel != "" {
			visionOpts = append(visionOpts, textextract.WithVisionModel(visionModel))
		}
		vision = textextract.NewVisionExtractor(apiKey, visionOpts...)
		printVerbose("Vision transcription enabled\n")
	}
	chain := textextract.NewChain(textextract.NewPDFExtractor(), vision)

	return processor.NewPipeline(
		processor.WithRates(rates),
		processor.WithTextExtractor(chain),
	), nil
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isSupportedFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
		} else {
			for _, match := range matches {
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				if !info.IsDir() && isSupportedFile(match) {
					files = append(files, match)
				}
			}
		}
	}

	return files, nil
}

func isSupportedFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".text", ".pdf", ".png", ".jpg", ".jpeg", ".tiff", ".tif":
		return true
	default:
		return false
	}
}

func processFile(pipeline *processor.Pipeline, filePath string) *ProcessResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result := &ProcessResult{
		File: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read file: %v", err)
		return result
	}

	pipelineResult := pipeline.ProcessDocument(ctx, data)
	if pipelineResult.Error != nil {
		result.Error = pipelineResult.Error.Error()
		result.Warnings = pipelineResult.Warnings
		return result
	}

	result.Record = pipelineResult.Record
	result.Breakdown = pipelineResult.Breakdown
	result.Outcome = string(pipelineResult.Outcome)
	result.Warnings = pipelineResult.Warnings
	result.Missing = pipelineResult.Missing

	return result
}

func outputResults(results []*ProcessResult) error {
	var writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, results)
	case "table":
		return outputTable(writer, results)
	case "csv":
		return outputCSV(writer, results)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w *os.File, results []*ProcessResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}

func outputTable(w *os.File, results []*ProcessResult) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tOUTCOME\tBASE RENT\tVAT\tWHT\tTO LANDLORD\tTO TRA")
	fmt.Fprintln(tw, "----\t-------\t---------\t---\t---\t-----------\t------")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\t\t\t\t\t\n", r.File, r.Error)
			continue
		}

		if r.Breakdown == nil {
			fmt.Fprintf(tw, "%s\t%s\t\t\t\t\t\n", r.File, r.Outcome)
			continue
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.File,
			r.Outcome,
			money.Format(r.Breakdown.BaseRent),
			money.Format(r.Breakdown.VATAmount),
			money.Format(r.Breakdown.Withholding),
			money.Format(r.Breakdown.ToLandlord),
			money.Format(r.Breakdown.ToAuthority),
		)
	}

	return tw.Flush()
}

func outputCSV(w *os.File, results []*ProcessResult) error {
	fmt.Fprintln(w, "file,outcome,landlord,tin,period,base_rent,vat_amount,total_amount,withholding,to_landlord,to_authority,error")

	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(w, "%s,,,,,,,,,,,%s\n", r.File, escapeCSV(r.Error))
			continue
		}

		rec := r.Record
		base, vat, total := "", "", ""
		if rec != nil {
			if rec.BaseRent.Known() {
				base = rec.BaseRent.Amount.String()
			}
			if rec.VATAmount.Known() {
				vat = rec.VATAmount.Amount.String()
			}
			if rec.TotalAmount.Known() {
				total = rec.TotalAmount.Amount.String()
			}
		}

		wht, toLandlord, toAuthority := "", "", ""
		if r.Breakdown != nil {
			wht = r.Breakdown.Withholding.String()
			toLandlord = r.Breakdown.ToLandlord.String()
			toAuthority = r.Breakdown.ToAuthority.String()
		}

		fmt.Fprintf(w, "%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,%s,\n",
			r.File,
			r.Outcome,
			escapeCSV(rec.Landlord),
			rec.LandlordTIN,
			escapeCSV(rec.Period),
			base,
			vat,
			total,
			wht,
			toLandlord,
			toAuthority,
		)
	}

	return nil
}

func escapeCSV(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") || strings.Contains(s, "\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}

// ProcessResult holds the result of processing a single file
type ProcessResult struct {
	File      string                  `json:"file"`
	Record    *model.InvoiceRecord    `json:"record,omitempty"`
	Breakdown *model.PaymentBreakdown `json:"breakdown,omitempty"`
	Outcome   string                  `json:"outcome,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
	Missing   []string                `json:"missing,omitempty"`
	Error     string                  `json:"error,omitempty"`
}
