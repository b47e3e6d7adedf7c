package viz

import (
	"fmt"
	"image/color"
	"io"

	"github.com/panyam/queuelab/core"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// HistogramBins is the bin count of the report histograms.
const HistogramBins = 30

// Report panel size, matching a 15x10 inch figure.
const (
	reportPanelWidth  = 15 * vg.Inch
	reportPanelHeight = 10 * vg.Inch
)

// ReportCharts writes a 2x2 PNG panel: histograms of interarrival and service
// times on top, their boxplots below.
func ReportCharts(w io.Writer, interarrival, service []float64) error {
	if len(interarrival) == 0 || len(service) == 0 {
		return fmt.Errorf("%w: no data to chart", core.ErrInsufficientSample)
	}

	iaHist, err := histogramPlot("Histograma - Tempo entre Chegadas", interarrival, ColorInterarrival)
	if err != nil {
		return err
	}
	svcHist, err := histogramPlot("Histograma - Tempo de Atendimento", service, ColorService)
	if err != nil {
		return err
	}
	iaBox, err := boxPlot("Boxplot - Tempo entre Chegadas", interarrival, ColorInterarrival)
	if err != nil {
		return err
	}
	svcBox, err := boxPlot("Boxplot - Tempo de Atendimento", service, ColorService)
	if err != nil {
		return err
	}

	plots := [][]*plot.Plot{
		{iaHist, svcHist},
		{iaBox, svcBox},
	}
	img := vgimg.New(reportPanelWidth, reportPanelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: vg.Centimeter, PadY: vg.Centimeter,
		PadTop: vg.Points(8), PadBottom: vg.Points(8), PadLeft: vg.Points(8), PadRight: vg.Points(8),
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col, p := range plots[row] {
			p.Draw(canvases[row][col])
		}
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("writing chart png: %w", err)
	}
	return nil
}

func histogramPlot(title string, values []float64, hex string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Tempo (minutos)"
	p.Y.Label.Text = "Frequência"
	p.Add(plotter.NewGrid())

	h, err := plotter.NewHist(plotter.Values(values), HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", title, err)
	}
	h.FillColor = mustHexColor(hex)
	h.LineStyle.Color = color.White
	p.Add(h)
	return p, nil
}

func boxPlot(title string, values []float64, hex string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Tempo (minutos)"
	p.Add(plotter.NewGrid())

	b, err := plotter.NewBoxPlot(vg.Points(80), 0, plotter.Values(values))
	if err != nil {
		return nil, fmt.Errorf("boxplot %q: %w", title, err)
	}
	b.FillColor = mustHexColor(hex)
	p.Add(b)
	p.HideX()
	return p, nil
}

// mustHexColor parses "#rrggbb". Only called with package constants.
func mustHexColor(hex string) color.RGBA {
	c := color.RGBA{A: 0xff}
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		panic(fmt.Sprintf("bad color %q: %v", hex, err))
	}
	return c
}
