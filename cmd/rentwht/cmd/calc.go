package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/money"
	"github.com/rezonia/rentwht/internal/processor"
)

var (
	calcBase  string
	calcVAT   string
	calcTotal string
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute the withholding split from manually entered amounts",
	Long: `Compute the withholding tax split without a document. At least two of
base rent, VAT, and total must be given; a missing third amount is
derived from the other two.

Examples:
  rentwht calc --base 5000000 --vat 900000
  rentwht calc --base 5000000 --total 5900000
  rentwht calc --base 5000000 --vat 900000 --total 5900000 -f table`,
	RunE: runCalc,
}

func init() {
	rootCmd.AddCommand(calcCmd)

	calcCmd.Flags().StringVar(&calcBase, "base", "", "Base rent amount")
	calcCmd.Flags().StringVar(&calcVAT, "vat", "", "VAT amount")
	calcCmd.Flags().StringVar(&calcTotal, "total", "", "Invoice total amount")
}

func runCalc(cmd *cobra.Command, args []string) error {
	rec := &model.InvoiceRecord{}

	if calcBase != "" {
		d, err := money.FromString(calcBase)
		if err != nil {
			return fmt.Errorf("invalid --base %q: %w", calcBase, err)
		}
		rec.BaseRent = model.Extracted(d)
	}
	if calcVAT != "" {
		d, err := money.FromString(calcVAT)
		if err != nil {
			return fmt.Errorf("invalid --vat %q: %w", calcVAT, err)
		}
		rec.VATAmount = model.Extracted(d)
	}
	if calcTotal != "" {
		d, err := money.FromString(calcTotal)
		if err != nil {
			return fmt.Errorf("invalid --total %q: %w", calcTotal, err)
		}
		rec.TotalAmount = model.Extracted(d)
	}

	rates, err := ratesFromFlags()
	if err != nil {
		return err
	}

	pipeline := processor.NewPipeline(processor.WithRates(rates))
	result := pipeline.ProcessRecord(context.Background(), rec, nil)

	if result.Error != nil {
		return result.Error
	}

	switch result.Outcome {
	case processor.OutcomeConflict:
		return fmt.Errorf("amounts conflict: %s", result.Conflict.Error())
	case processor.OutcomeNeedsInput:
		return fmt.Errorf("not enough amounts: need at least two of --base, --vat, --total")
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	return printBreakdown(result)
}

func printBreakdown(result *processor.Result) error {
	b := result.Breakdown
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Base rent:\t%s\n", money.FormatTZS(b.BaseRent))
	fmt.Fprintf(tw, "VAT:\t%s\n", money.FormatTZS(b.VATAmount))
	fmt.Fprintf(tw, "Withholding (to TRA):\t%s\n", money.FormatTZS(b.ToAuthority))
	fmt.Fprintf(tw, "Pay landlord:\t%s\n", money.FormatTZS(b.ToLandlord))
	fmt.Fprintf(tw, "Total outflow:\t%s\n", money.FormatTZS(b.TotalOutflow))

	if b.RemittanceDeadline != nil {
		fmt.Fprintf(tw, "Remit WHT by:\t%s\n", b.RemittanceDeadline.Format("2006-01-02"))
	}
	if result.Outcome == processor.OutcomeCompleteWithInference {
		fmt.Fprintln(tw, "Note:\tone amount was derived, not read from input")
	}

	return tw.Flush()
}
