package report

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/extract"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func sourcePDF(t *testing.T, text string) []byte {
	t.Helper()
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", 12)
	doc.AddPage()
	doc.Text(50, 80, text)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

func pageCount(t *testing.T, data []byte) int {
	t.Helper()
	n, err := api.PageCount(bytes.NewReader(data), nil)
	require.NoError(t, err)
	return n
}

func TestComposeOriginalReturnsStoredBytes(t *testing.T) {
	src := Source{Data: []byte("raw-bytes"), MimeType: "image/png", Key: "abc.png"}

	out, err := Compose(src, Options{Original: true})
	require.NoError(t, err)
	assert.Equal(t, src.Data, out.Data)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, "abc.png", out.FileName)
}

func TestComposeImageReport(t *testing.T) {
	src := Source{
		Data:          pngBytes(t, 40, 20),
		MimeType:      "image/png",
		Key:           "scan.png",
		Transcription: "Nota fiscal\nnumero 42",
		Completions: []Completion{
			{Prompt: "Qual o numero?", Response: "42"},
			{Prompt: "Resuma", Response: "Uma nota."},
		},
	}

	out, err := Compose(src, Options{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.Equal(t, "scan.pdf", out.FileName)
	assert.Equal(t, 3, pageCount(t, out.Data))

	text, err := extract.PDFText(out.Data)
	require.NoError(t, err)
	assert.Contains(t, text, "Transcri")
	assert.Contains(t, text, "Nota fiscal numero 42")
	assert.Contains(t, text, "Pergunta 1: Qual o numero?")
	assert.Contains(t, text, "Resposta: 42")
	assert.Contains(t, text, "Pergunta 2: Resuma")
	assert.Less(t, strings.Index(text, "Pergunta 1"), strings.Index(text, "Pergunta 2"))
}

func TestComposeSkipsEmptySections(t *testing.T) {
	out, err := Compose(Source{Data: pngBytes(t, 10, 10), MimeType: "image/png", Key: "a.png"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, pageCount(t, out.Data))
}

func TestComposeAppendsToPDF(t *testing.T) {
	src := Source{
		Data:          sourcePDF(t, "original page"),
		MimeType:      "application/pdf",
		Key:           "contract.pdf",
		Transcription: "original page",
		Completions:   []Completion{{Prompt: "p", Response: "r"}},
	}

	out, err := Compose(src, Options{})
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", out.FileName)
	assert.Equal(t, 3, pageCount(t, out.Data))

	text, err := extract.PDFText(out.Data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "original page\n"), text)
	assert.Contains(t, text, "Pergunta 1: p")
}

func TestComposePDFWithoutTextIsUnchanged(t *testing.T) {
	data := sourcePDF(t, "only page")

	out, err := Compose(Source{Data: data, MimeType: "application/pdf", Key: "a.pdf"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, data, out.Data)
}

func TestComposeIsRepeatable(t *testing.T) {
	src := Source{
		Data:          pngBytes(t, 30, 30),
		MimeType:      "image/png",
		Key:           "a.png",
		Transcription: strings.Repeat("palavra ", 1200),
		Completions:   []Completion{{Prompt: "x", Response: "y"}},
	}

	first, err := Compose(src, Options{})
	require.NoError(t, err)
	second, err := Compose(src, Options{})
	require.NoError(t, err)

	t1, err := extract.PDFText(first.Data)
	require.NoError(t, err)
	t2, err := extract.PDFText(second.Data)
	require.NoError(t, err)
	assert.Equal(t, t1, t2)
	assert.Greater(t, pageCount(t, first.Data), 3, "long transcription spills onto extra pages")
}

func TestComposeRejectsUnknownType(t *testing.T) {
	_, err := Compose(Source{Data: []byte("x"), MimeType: "text/plain"}, Options{})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestScaleToFit(t *testing.T) {
	w, h := scaleToFit(1000, 500, 495, 741)
	assert.InDelta(t, 495, w, 0.001)
	assert.InDelta(t, 247.5, h, 0.001)

	w, h = scaleToFit(100, 400, 495, 741)
	assert.InDelta(t, 741, h, 0.001)
	assert.InDelta(t, 185.25, w, 0.001)
}
