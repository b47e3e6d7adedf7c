package report

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

const (
	Title     = "Relatório de Análise Estatística"
	chartName = "graficos_analise"
	lineH     = 10.0
)

// cp1252 maps text into the encoding of the PDF core fonts. Runes outside
// Windows-1252 become the substitute byte 0x1a.
func cp1252(s string) string {
	enc := encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
	out, err := enc.String(s)
	if err != nil {
		return s
	}
	return out
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
}

func (p pdfWriter) font(style string, size float64) {
	p.pdf.SetFont("Arial", style, size)
}

func (p pdfWriter) line(text string) {
	p.pdf.CellFormat(0, lineH, cp1252(text), "", 1, "", false, 0, "")
}

func (p pdfWriter) para(text string) {
	p.pdf.MultiCell(0, lineH, cp1252(text), "", "", false)
}

func (p pdfWriter) heading(text string) {
	p.font("B", 14)
	p.line(text)
	p.pdf.Ln(5)
}

func (p pdfWriter) block(label string, lines []string) {
	p.font("B", 12)
	p.line(label + ":")
	p.font("", 12)
	for _, l := range lines {
		p.line(l)
	}
}

// WritePDF renders r as an A4 PDF. chartPNG, when not empty, is placed on a
// page of its own after the text.
func WritePDF(w io.Writer, r *Report, chartPNG []byte) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetCreator("queuelab", false)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetModificationDate(r.GeneratedAt)
	p := pdfWriter{pdf: pdf}

	pdf.AddPage()
	p.font("B", 16)
	pdf.CellFormat(0, lineH, cp1252(Title), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	p.font("", 12)
	p.line(r.DateLine())
	pdf.Ln(10)

	p.heading("Estatísticas Descritivas")
	p.block(r.Interarrival.Label, r.Interarrival.StatLines())
	pdf.Ln(5)
	p.block(r.Service.Label, r.Service.StatLines())
	pdf.Ln(10)

	p.heading("Intervalos de Confiança")
	p.block(r.Interarrival.Label, r.Interarrival.IntervalLines())
	pdf.Ln(5)
	p.block(r.Service.Label, r.Service.IntervalLines())
	pdf.Ln(10)

	p.heading("Interpretações e Sugestões")
	p.font("", 12)
	p.para("Interpretações:")
	for _, s := range r.Interpretations() {
		p.para(s)
	}
	pdf.Ln(5)
	p.para("Sugestões de Melhoria:")
	for _, s := range Suggestions {
		p.para(s)
	}

	if len(chartPNG) > 0 {
		pdf.AddPage()
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(chartName, opts, bytes.NewReader(chartPNG))
		pdf.ImageOptions(chartName, 10, 10, 190, 0, false, opts, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}
