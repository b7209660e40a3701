package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/rentwht/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for processing invoices.

The API provides endpoints for:
  - POST /api/v1/process/text      - Process raw invoice text
  - POST /api/v1/process/record    - Process a structured record (manual entry, overrides)
  - POST /api/v1/process/document  - Auto-detect and process a document
  - POST /api/v1/calculate         - Compute a withholding split
  - GET  /health                   - Health check

Examples:
  # Start server on default port
  rentwht serve

  # Start on custom port with an API key for image transcription
  rentwht serve --address :8080 --api-key <key>

  # Start in debug mode
  rentwht serve --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	rates, err := ratesFromFlags()
	if err != nil {
		return err
	}

	config := &server.Config{
		Address:       serverAddr,
		APIKey:        apiKey,
		VisionBaseURL: visionBaseURL,
		VisionModel:   visionModel,
		Rates:         rates,
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
		Debug:         serverDebug,
	}

	srv := server.NewServer(config)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", serverAddr)
	if apiKey != "" {
		fmt.Println("Image transcription enabled")
	} else {
		fmt.Println("Image transcription disabled (no API key)")
	}

	return srv.Run()
}
