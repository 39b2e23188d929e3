package pdfconv

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/iequus/iequus_backend/pkg/media"
)

const pageMargin = 10.0 // mm

func newDocument() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	return pdf
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// imageToPDF places the image on one A4 page, scaled to fit the margins.
func imageToPDF(maxDim int) Func {
	return func(_ context.Context, in []byte, _ string) ([]byte, error) {
		png, err := media.NormalizeImage(bytes.NewReader(in), maxDim)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}

		pdf := newDocument()
		pdf.AddPage()

		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		info := pdf.RegisterImageOptionsReader("upload", opts, png)
		if pdf.Err() {
			return nil, pdf.Error()
		}

		pageW, pageH := pdf.GetPageSize()
		maxW, maxH := pageW-2*pageMargin, pageH-2*pageMargin
		w, h := info.Width(), info.Height()
		scale := min(maxW/w, maxH/h, 1)
		w, h = w*scale, h*scale

		pdf.ImageOptions("upload", (pageW-w)/2, pageMargin, w, h, false, opts, 0, "")
		return output(pdf)
	}
}

// textToPDF lays plain text or CSV out in a fixed-width font.
func textToPDF(_ context.Context, in []byte, _ string) ([]byte, error) {
	pdf := newDocument()
	pdf.AddPage()
	pdf.SetFont("Courier", "", 9)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	text := strings.ReplaceAll(string(in), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	pdf.MultiCell(0, 4, tr(text), "", "L", false)

	return output(pdf)
}
