package processor

import (
	"bytes"
	"unicode/utf8"
)

// Format represents the detected document format
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatPDF
	FormatImage
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatPDF:
		return "pdf"
	case FormatImage:
		return "image"
	default:
		return "unknown"
	}
}

// DetectFormat sniffs the document format from magic bytes. Anything
// that is not a known binary format but is valid UTF-8 is treated as
// plain text.
func DetectFormat(data []byte) Format {
	if len(data) == 0 {
		return FormatUnknown
	}

	if bytes.HasPrefix(data, []byte("%PDF")) {
		return FormatPDF
	}

	if len(data) >= 4 {
		// PNG
		if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
			return FormatImage
		}
		// JPEG
		if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
			return FormatImage
		}
		// TIFF, either endianness
		if (data[0] == 0x49 && data[1] == 0x49 && data[2] == 0x2A) ||
			(data[0] == 0x4D && data[1] == 0x4D && data[2] == 0x00) {
			return FormatImage
		}
	}

	if utf8.Valid(data) && !bytes.ContainsRune(data, 0) {
		return FormatText
	}

	return FormatUnknown
}
