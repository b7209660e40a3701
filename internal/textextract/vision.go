package textextract

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

const (
	DefaultBaseURL     = "https://openrouter.ai/api/v1"
	DefaultVisionModel = "openai/gpt-4o-mini"
	DefaultTimeout     = 120 * time.Second
)

const transcriptionPrompt = `You transcribe scanned invoices. Return the plain text of the document exactly as printed, preserving line breaks and label/value pairs. Do not summarize, translate, or add commentary.`

// VisionExtractor transcribes invoice images through a vision model
// behind an OpenAI-compatible API. Without an API key it reports
// ErrExtractionUnavailable on every call.
type VisionExtractor struct {
	client    openai.Client
	model     string
	available bool
}

// VisionOption configures the vision extractor
type VisionOption func(*visionConfig)

type visionConfig struct {
	baseURL string
	model   string
	timeout time.Duration
}

// WithVisionBaseURL sets a custom API base URL
func WithVisionBaseURL(url string) VisionOption {
	return func(cfg *visionConfig) { cfg.baseURL = url }
}

// WithVisionModel sets the transcription model
func WithVisionModel(model string) VisionOption {
	return func(cfg *visionConfig) { cfg.model = model }
}

// WithVisionTimeout sets the HTTP timeout
func WithVisionTimeout(timeout time.Duration) VisionOption {
	return func(cfg *visionConfig) { cfg.timeout = timeout }
}

// NewVisionExtractor creates a vision-backed extractor. An empty API key
// yields an extractor that is constructed but unavailable.
func NewVisionExtractor(apiKey string, opts ...VisionOption) *VisionExtractor {
	cfg := &visionConfig{
		baseURL: DefaultBaseURL,
		model:   DefaultVisionModel,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if apiKey == "" {
		return &VisionExtractor{model: cfg.model}
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	)

	return &VisionExtractor{
		client:    client,
		model:     cfg.model,
		available: true,
	}
}

// Available reports whether the extractor can make API calls
func (e *VisionExtractor) Available() bool {
	return e.available
}

func (e *VisionExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if !e.available {
		return "", NewExtractError("Transcribe", ErrExtractionUnavailable, "no API key configured")
	}

	mimeType := imageMimeType(data)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(transcriptionPrompt),
		openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart("Transcribe this invoice."),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: dataURL,
			}),
		}),
	}

	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       e.model,
		Messages:    messages,
		MaxTokens:   param.NewOpt[int64](4096),
		Temperature: param.NewOpt[float64](0.0),
	})
	if err != nil {
		return "", NewExtractError("Transcribe", err, "")
	}
	if len(resp.Choices) == 0 {
		return "", NewExtractError("Transcribe", ErrEmptyDocument, "no choices in response")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", NewExtractError("Transcribe", ErrEmptyDocument, "")
	}
	return text, nil
}
