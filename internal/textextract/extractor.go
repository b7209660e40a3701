// Package textextract recovers plain text from invoice documents. The
// rest of the engine only ever sees the text; extraction failures
// propagate unchanged and are never retried here.
package textextract

import (
	"bytes"
	"context"
)

// Extractor turns document bytes into plain text
type Extractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// Chain routes a document to the extractor for its format: PDFs to the
// text-layer extractor, images to the vision extractor. Either may be
// nil, in which case that format reports ErrExtractionUnavailable.
type Chain struct {
	pdf    Extractor
	vision Extractor
}

// NewChain creates a format-routing extractor
func NewChain(pdf, vision Extractor) *Chain {
	return &Chain{pdf: pdf, vision: vision}
}

func (c *Chain) ExtractText(ctx context.Context, data []byte) (string, error) {
	switch {
	case isPDF(data):
		if c.pdf == nil {
			return "", NewExtractError("ExtractText", ErrExtractionUnavailable, "no PDF extractor configured")
		}
		return c.pdf.ExtractText(ctx, data)

	case isImage(data):
		if c.vision == nil {
			return "", NewExtractError("ExtractText", ErrExtractionUnavailable, "no vision extractor configured")
		}
		return c.vision.ExtractText(ctx, data)

	default:
		return "", NewExtractError("ExtractText", ErrUnsupportedFormat, "")
	}
}

func isPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF"))
}

func isImage(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	// PNG
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return true
	}
	// JPEG
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return true
	}
	// TIFF
	if (data[0] == 0x49 && data[1] == 0x49) || (data[0] == 0x4D && data[1] == 0x4D) {
		return true
	}
	return false
}

func imageMimeType(data []byte) string {
	switch {
	case len(data) >= 4 && data[0] == 0x89 && data[1] == 0x50:
		return "image/png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	case len(data) >= 2 && ((data[0] == 0x49 && data[1] == 0x49) || (data[0] == 0x4D && data[1] == 0x4D)):
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}
