// Package report renders the downloadable version of a document: the
// original bytes, or a PDF that combines the source with its transcription
// and AI completions.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"inreader-backend/internal/shared/util"
)

const (
	margin     = 50.0
	titleSize  = 16.0
	fontSize   = 12.0
	lineHeight = fontSize * 1.2
	fontFamily = "Helvetica"

	mimePDF  = "application/pdf"
	mimePNG  = "image/png"
	imageKey = "source"
)

// ErrUnsupported is returned for sources that are neither PDF nor PNG/JPEG.
var ErrUnsupported = errors.New("unsupported source type")

// Completion is one prompt/response pair rendered in the report.
type Completion struct {
	Prompt   string
	Response string
}

// Source is everything a report is built from.
type Source struct {
	Data          []byte
	MimeType      string
	Key           string
	Transcription string
	// Completions are rendered in the given order, oldest first.
	Completions []Completion
}

// Output is a ready-to-serve file.
type Output struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Options selects the report flavour.
type Options struct {
	Original bool
}

// Compose builds the download for src. With Original set the stored bytes
// are returned as-is; otherwise a PDF is produced.
func Compose(src Source, opts Options) (Output, error) {
	if opts.Original {
		return Output{Data: src.Data, ContentType: src.MimeType, FileName: src.Key}, nil
	}

	var (
		data []byte
		err  error
	)
	switch src.MimeType {
	case mimePDF:
		data, err = appendToPDF(src)
	case mimePNG, "image/jpeg", "image/jpg":
		data, err = renderImage(src)
	default:
		return Output{}, fmt.Errorf("%w: %s", ErrUnsupported, src.MimeType)
	}
	if err != nil {
		return Output{}, err
	}
	return Output{Data: data, ContentType: mimePDF, FileName: util.PDFName(src.Key)}, nil
}

func newDocument() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetCreator("inreader", false)
	return pdf
}

func renderImage(src Source) ([]byte, error) {
	pdf := newDocument()
	pdf.AddPage()

	imageType := "JPG"
	if src.MimeType == mimePNG {
		imageType = "PNG"
	}
	opts := fpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(imageKey, opts, bytes.NewReader(src.Data))
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("embed image: %w", err)
	}

	pageW, pageH := pdf.GetPageSize()
	w, h := scaleToFit(info.Width(), info.Height(), pageW-2*margin, pageH-2*margin)
	pdf.ImageOptions(imageKey, pageW/2-w/2, margin, w, h, false, opts, 0, "")

	writeText(pdf, src)
	return output(pdf)
}

func appendToPDF(src Source) ([]byte, error) {
	if src.Transcription == "" && len(src.Completions) == 0 {
		return src.Data, nil
	}
	pdf := newDocument()
	writeText(pdf, src)
	extra, err := output(pdf)
	if err != nil {
		return nil, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	var out bytes.Buffer
	readers := []io.ReadSeeker{bytes.NewReader(src.Data), bytes.NewReader(extra)}
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, fmt.Errorf("merge pdf: %w", err)
	}
	return out.Bytes(), nil
}

// writeText adds the transcription pages and, when there are completions,
// the completion pages.
func writeText(pdf *fpdf.Fpdf, src Source) {
	pageW, _ := pdf.GetPageSize()
	maxWidth := pageW - 2*margin

	if src.Transcription != "" {
		pdf.AddPage()
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		pdf.SetFont(fontFamily, "", titleSize)
		pdf.Text(margin, margin, tr("Transcrição:"))
		pdf.SetFont(fontFamily, "", fontSize)
		cursor := newCursor(pdf, margin+fontSize*2)
		for _, line := range Wrap(Sanitize(src.Transcription), maxWidth, pdf.GetStringWidth) {
			cursor.line(line)
		}
	}

	if len(src.Completions) == 0 {
		return
	}
	pdf.AddPage()
	pdf.SetFont(fontFamily, "", fontSize)
	cursor := newCursor(pdf, margin)
	for i, c := range src.Completions {
		prompt := Wrap(Sanitize(fmt.Sprintf("Pergunta %d: %s", i+1, c.Prompt)), maxWidth, pdf.GetStringWidth)
		response := Wrap(Sanitize("Resposta: "+c.Response), maxWidth, pdf.GetStringWidth)
		for _, line := range prompt {
			cursor.line(line)
		}
		for _, line := range response {
			cursor.line(line)
		}
		cursor.line("")
	}
}

// cursor tracks the baseline of the next line, measured from the top of the
// page, and starts a new page once it passes the bottom margin.
type cursor struct {
	pdf    *fpdf.Fpdf
	y      float64
	bottom float64
}

func newCursor(pdf *fpdf.Fpdf, y float64) *cursor {
	_, pageH := pdf.GetPageSize()
	return &cursor{pdf: pdf, y: y, bottom: pageH - margin}
}

func (c *cursor) line(text string) {
	if c.y > c.bottom {
		c.pdf.AddPage()
		c.pdf.SetFont(fontFamily, "", fontSize)
		c.y = margin
	}
	if text != "" {
		c.pdf.Text(margin, c.y, text)
	}
	c.y += lineHeight
}

func scaleToFit(w, h, maxW, maxH float64) (float64, float64) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := maxW / w
	if s := maxH / h; s < scale {
		scale = s
	}
	return w * scale, h * scale
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
