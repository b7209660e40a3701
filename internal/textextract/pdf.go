package textextract

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFExtractor recovers the text layer of a digital PDF. Scanned PDFs
// without a text layer come back as ErrEmptyDocument; callers can fall
// back to the vision extractor for those.
type PDFExtractor struct {
	conf *pdfmodel.Configuration
}

// NewPDFExtractor creates a PDF text extractor
func NewPDFExtractor() *PDFExtractor {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &PDFExtractor{conf: conf}
}

func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	rctx, err := api.ReadContext(bytes.NewReader(data), e.conf)
	if err != nil {
		return "", NewExtractError("ReadPDF", err, "")
	}

	var sb strings.Builder
	for page := 1; page <= rctx.PageCount; page++ {
		if err := ctx.Err(); err != nil {
			return "", NewExtractError("ExtractText", err, "")
		}

		r, err := pdfcpu.ExtractPageContent(rctx, page)
		if err != nil || r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			continue
		}

		pageText := decodeContentText(content)
		if pageText != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n\n")
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", NewExtractError("ExtractText", ErrEmptyDocument, "no text layer")
	}
	return text, nil
}

// decodeContentText pulls string literals out of a page content stream.
// Text show operators (Tj, TJ, ') carry their arguments as parenthesized
// literals; this walks them, honoring escape sequences and nested
// parentheses. Positioning operators are ignored, so layout is
// approximated with spaces and newlines between runs.
func decodeContentText(content []byte) string {
	var sb strings.Builder
	i := 0
	for i < len(content) {
		c := content[i]
		if c != '(' {
			// ET closes a text object; use it as a line break hint
			if c == 'E' && i+1 < len(content) && content[i+1] == 'T' {
				sb.WriteByte('\n')
			}
			i++
			continue
		}

		// Inside a literal string
		i++
		depth := 1
		for i < len(content) && depth > 0 {
			ch := content[i]
			switch ch {
			case '\\':
				if i+1 < len(content) {
					sb.WriteByte(unescape(content[i+1]))
					i += 2
					continue
				}
				i++
			case '(':
				depth++
				sb.WriteByte(ch)
				i++
			case ')':
				depth--
				if depth > 0 {
					sb.WriteByte(ch)
				}
				i++
			default:
				sb.WriteByte(ch)
				i++
			}
		}
		sb.WriteByte(' ')
	}

	return normalizeWhitespace(sb.String())
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	default:
		// \(, \), \\ and octal escapes degrade to the raw byte
		return c
	}
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
