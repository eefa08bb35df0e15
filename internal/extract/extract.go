package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultMaxSize is the largest attachment the extractor will even look at (25MB).
const DefaultMaxSize = 25 * 1024 * 1024

var (
	// ErrUnsupportedType is returned for file types the extractor cannot handle.
	// Callers log and skip; the batch continues.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrSizeLimit is returned before any extraction attempt when the content
	// exceeds the size limit.
	ErrSizeLimit = errors.New("size limit exceeded")
)

// OCRClient converts image bytes into text.
type OCRClient interface {
	ParseImage(ctx context.Context, filename string, content []byte) (string, error)
}

// Extractor dispatches attachment content to a type-specific text extraction
// routine.
type Extractor struct {
	ocr     OCRClient
	maxSize int64
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxSize overrides the size limit.
func WithMaxSize(n int64) Option {
	return func(e *Extractor) { e.maxSize = n }
}

// New creates an Extractor. The OCR client may be nil, in which case image
// attachments are reported as unsupported.
func New(ocr OCRClient, opts ...Option) *Extractor {
	e := &Extractor{ocr: ocr, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the plain text of an attachment. The declared content type
// decides the route; generic types fall back to the filename extension.
// An empty result is valid (e.g. a PDF without a text layer).
func (e *Extractor) Extract(ctx context.Context, filename, contentType string, content []byte) (string, error) {
	if int64(len(content)) > e.maxSize {
		return "", fmt.Errorf("%s is %d bytes: %w", filename, len(content), ErrSizeLimit)
	}

	switch normalizeType(filename, contentType) {
	case "application/pdf":
		return extractPDF(content)
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return extractDOCX(content)
	case "image/png", "image/jpeg":
		if e.ocr == nil {
			return "", fmt.Errorf("%s: no OCR client configured: %w", filename, ErrUnsupportedType)
		}
		return e.ocr.ParseImage(ctx, filename, content)
	case "text/plain":
		return string(content), nil
	default:
		return "", fmt.Errorf("%s (%s): %w", filename, contentType, ErrUnsupportedType)
	}
}

// normalizeType resolves the effective content type, falling back to the
// filename extension when the declared type is missing or generic.
func normalizeType(filename, contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}

	switch {
	case hasSuffix(filename, ".pdf"):
		return "application/pdf"
	case hasSuffix(filename, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case hasSuffix(filename, ".png"):
		return "image/png"
	case hasSuffix(filename, ".jpg"), hasSuffix(filename, ".jpeg"):
		return "image/jpeg"
	case hasSuffix(filename, ".txt"):
		return "text/plain"
	}
	return ct
}

func hasSuffix(filename, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(filename), suffix)
}
