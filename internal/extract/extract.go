package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// ErrNoOCR is returned for images when no OCR engine is configured.
var ErrNoOCR = errors.New("ocr engine not configured")

// OCR recognizes text in an image.
type OCR interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Engine turns stored bytes into text based on their MIME type.
type Engine struct {
	OCR OCR
}

// Source reports which extractor handles mimeType ("pdf" or "image").
func Source(mimeType string) string {
	if mimeType == mimePDF {
		return "pdf"
	}
	return "image"
}

// Extract returns the text of data. PDFs are read from their text layer;
// every other type goes through OCR.
func (e *Engine) Extract(ctx context.Context, mimeType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if mimeType == mimePDF {
		text, err := PDFText(data)
		if err != nil {
			return "", fmt.Errorf("extract pdf: %w", err)
		}
		return text, nil
	}
	if e.OCR == nil {
		return "", ErrNoOCR
	}
	text, err := e.OCR.Recognize(ctx, data)
	if err != nil {
		return "", fmt.Errorf("extract image mime=%s: %w", mimeType, err)
	}
	return text, nil
}

// PDFText walks the text layer of a PDF. Whitespace inside a page collapses
// to single spaces and pages are joined by newlines.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		plain, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, strings.Join(strings.Fields(plain), " "))
	}
	return strings.Join(pages, "\n"), nil
}
