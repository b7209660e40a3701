// Package server exposes the invoice pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rezonia/rentwht/internal/logger"
	"github.com/rezonia/rentwht/internal/model"
	"github.com/rezonia/rentwht/internal/processor"
	"github.com/rezonia/rentwht/internal/tax"
	"github.com/rezonia/rentwht/internal/textextract"
)

// Config holds server configuration
type Config struct {
	Address       string
	APIKey        string
	VisionBaseURL string
	VisionModel   string
	Rates         tax.Rates
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	Debug         bool
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	log      zerolog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	// Vision transcription only when an API key is configured; PDFs with
	// a text layer work without one
	var vision textextract.Extractor
	if config.APIKey != "" {
		var visionOpts []textextract.VisionOption
		if config.VisionBaseURL != "" {
			visionOpts = append(visionOpts, textextract.WithVisionBaseURL(config.VisionBaseURL))
		}
		if config.VisionModel != "" {
			visionOpts = append(visionOpts, textextract.WithVisionModel(config.VisionModel))
		}
		vision = textextract.NewVisionExtractor(config.APIKey, visionOpts...)
	}
	chain := textextract.NewChain(textextract.NewPDFExtractor(), vision)

	rates := config.Rates
	if rates.Withholding.IsZero() {
		rates = tax.DefaultRates()
	}

	log := logger.WithComponent("server")
	pipeline := processor.NewPipeline(
		processor.WithRates(rates),
		processor.WithTextExtractor(chain),
		processor.WithLogger(logger.WithComponent("pipeline")),
	)

	s := &Server{
		config:   config,
		router:   router,
		pipeline: pipeline,
		log:      log,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/process/text", s.handleProcessText)
		v1.POST("/process/record", s.handleProcessRecord)
		v1.POST("/process/document", s.handleProcessDocument)
		v1.POST("/calculate", s.handleCalculate)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("address", s.config.Address).Msg("starting server")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleProcessText(c *gin.Context) {
	var req ProcessTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	s.respond(c, s.pipeline.ProcessText(ctx, req.Text))
}

func (s *Server) handleProcessRecord(c *gin.Context) {
	var req ProcessRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	s.respond(c, s.pipeline.ProcessRecord(ctx, req.Record, req.Overrides))
}

func (s *Server) handleProcessDocument(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return
	}

	// Vision transcription can be slow
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Minute)
	defer cancel()

	s.respond(c, s.pipeline.ProcessDocument(ctx, body))
}

func (s *Server) handleCalculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Details: err.Error()})
		return
	}

	rec := &model.InvoiceRecord{
		BaseRent: model.Extracted(req.BaseRent),
	}
	if req.VATAmount != nil {
		rec.VATAmount = model.Extracted(*req.VATAmount)
	}
	if req.TotalAmount != nil {
		rec.TotalAmount = model.Extracted(*req.TotalAmount)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	s.respond(c, s.pipeline.ProcessRecord(ctx, rec, nil))
}

// respond maps a pipeline result onto an HTTP response. Conflicts and
// incomplete records are 422 with field-level detail; extraction
// problems map to 400/503 depending on whether the client can fix them.
func (s *Server) respond(c *gin.Context, result *processor.Result) {
	if result.Error != nil {
		status := http.StatusUnprocessableEntity
		switch {
		case errors.Is(result.Error, textextract.ErrUnsupportedFormat):
			status = http.StatusBadRequest
		case errors.Is(result.Error, textextract.ErrExtractionUnavailable):
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, ErrorResponse{
			Error:    result.Error.Error(),
			Warnings: result.Warnings,
		})
		return
	}

	resp := ProcessResponse{
		Record:    result.Record,
		Breakdown: result.Breakdown,
		Outcome:   string(result.Outcome),
		Warnings:  result.Warnings,
		Missing:   result.Missing,
	}
	if result.Conflict != nil {
		resp.Conflict = &ConflictDetail{
			BaseRent:    result.Conflict.BaseRent,
			VATAmount:   result.Conflict.VATAmount,
			TotalAmount: result.Conflict.TotalAmount,
			Delta:       result.Conflict.Delta,
		}
	}

	switch result.Outcome {
	case processor.OutcomeConflict, processor.OutcomeNeedsInput:
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		c.JSON(http.StatusOK, resp)
	}
}
