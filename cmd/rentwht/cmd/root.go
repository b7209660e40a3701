package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/rentwht/internal/logger"
	"github.com/rezonia/rentwht/internal/money"
	"github.com/rezonia/rentwht/internal/tax"
)

var (
	version = "1.0.0"

	// Global flags
	verbose       bool
	outputFormat  string
	apiKey        string
	visionBaseURL string
	visionModel   string
	whtRate       string
	vatRate       string
	tolerance     string
)

var rootCmd = &cobra.Command{
	Use:   "rentwht",
	Short: "Extract and reconcile Tanzanian rent invoices",
	Long: `rentwht reads commercial rent invoices (text, PDF, or scanned image),
extracts the base rent, VAT, and total, reconciles them, and computes
the withholding tax split: what to pay the landlord and what to remit
to the revenue authority.

Examples:
  # Process an invoice PDF
  rentwht process invoice.pdf

  # Process a scanned image (requires an API key for transcription)
  rentwht process scan.png --api-key <openrouter-key>

  # Manual entry when no document is available
  rentwht calc --base 5000000 --vat 900000

  # Start the HTTP API
  rentwht serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for vision transcription (env: RENTWHT_API_KEY)")
	rootCmd.PersistentFlags().StringVar(&visionBaseURL, "vision-base-url", "", "Vision API base URL (env: RENTWHT_VISION_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&visionModel, "vision-model", "", "Vision transcription model (env: RENTWHT_VISION_MODEL)")
	rootCmd.PersistentFlags().StringVar(&whtRate, "wht-rate", "", "Withholding rate override, e.g. 0.10")
	rootCmd.PersistentFlags().StringVar(&vatRate, "vat-rate", "", "Standard VAT rate override, e.g. 0.18")
	rootCmd.PersistentFlags().StringVar(&tolerance, "tolerance", "", "Amount comparison tolerance, e.g. 1.00")

	// Load from environment variables if not set via flags
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if apiKey == "" {
		apiKey = os.Getenv("RENTWHT_API_KEY")
	}
	if visionBaseURL == "" {
		visionBaseURL = os.Getenv("RENTWHT_VISION_BASE_URL")
	}
	if visionModel == "" {
		visionModel = os.Getenv("RENTWHT_VISION_MODEL")
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	// Logger setup only fails on an unknown level
	_ = logger.Setup(logger.Config{Level: level, Format: "console"})
}

// ratesFromFlags builds the rate config, applying any CLI overrides
func ratesFromFlags() (tax.Rates, error) {
	rates := tax.DefaultRates()

	if whtRate != "" {
		d, err := money.FromString(whtRate)
		if err != nil {
			return rates, fmt.Errorf("invalid --wht-rate %q: %w", whtRate, err)
		}
		rates.Withholding = d
	}
	if vatRate != "" {
		d, err := money.FromString(vatRate)
		if err != nil {
			return rates, fmt.Errorf("invalid --vat-rate %q: %w", vatRate, err)
		}
		rates.StandardVAT = d
	}
	if tolerance != "" {
		d, err := money.FromString(tolerance)
		if err != nil {
			return rates, fmt.Errorf("invalid --tolerance %q: %w", tolerance, err)
		}
		rates.Tolerance = d
	}

	return rates, nil
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
