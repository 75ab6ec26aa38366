package render

import (
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/hyperifyio/gosnip/internal/extract"
)

// PDFFormatter writes the extracted text as a monospaced PDF with the same
// line-number column as the HTML output. There is no colorization.
type PDFFormatter struct {
	Extractor extract.Extractor
	Numbers   LineNumberFilter
	FontSize  float64
}

func (p *PDFFormatter) Write(w io.Writer) error {
	text, err := p.Extractor.Extract()
	if err != nil {
		return err
	}
	size := p.FontSize
	if size <= 0 {
		size = 10
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Courier", "", size)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lineHeight := size * 0.45
	for i, line := range splitLines(toUTF8(text)) {
		line = strings.TrimSuffix(line, "\r")
		line = strings.ReplaceAll(line, "\t", "    ")
		pdf.CellFormat(0, lineHeight, tr(p.Numbers.Prefix(i+1)+line), "", 1, "L", false, 0, "")
	}
	return pdf.Output(w)
}
