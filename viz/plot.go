package viz

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
)

// PlotConfig holds styling and dimension configuration.
type PlotConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	GridColor    string
	TextColor    string
	FillOpacity  float64
	YAxisMode    YAxisMode
	Colors       []string // Palette for series without a color
}

// DefaultPlotConfig returns sensible defaults.
func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		Width: 900, Height: 420, MarginTop: 50, MarginRight: 30,
		MarginBottom: 55, MarginLeft: 70, GridColor: "#e5e7eb", TextColor: "#1f2937",
		FillOpacity: 0.2,
		YAxisMode:   YAxisZeroBased,
		Colors:      []string{ColorWait, ColorBusy, ColorQueue, "#f97316", "#8b5cf6"},
	}
}

// templateData contains all data needed for SVG template rendering.
type templateData struct {
	Config      PlotConfig
	Chart       Chart
	InnerWidth  int
	InnerHeight int
	XTicks      []tick
	YTicks      []tick
	GridLines   []gridLine
	Series      []seriesPath
	ShowLegend  bool
}

type tick struct {
	Pos   int
	Label string
}

type gridLine struct{ X1, Y1, X2, Y2 int }

type marker struct{ X, Y int }

type seriesPath struct {
	Name    string
	Color   string
	Line    string
	Area    string
	Markers []marker
	LegendY int
}

const svgTemplate = `<svg width="{{.Config.Width}}" height="{{.Config.Height}}" viewBox="0 0 {{.Config.Width}} {{.Config.Height}}" xmlns="http://www.w3.org/2000/svg">
  <style>
    .axis { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
    .axis line, .axis path { fill: none; stroke: {{.Config.TextColor}}; shape-rendering: crispEdges; }
    .grid-line { stroke: {{.Config.GridColor}}; stroke-width: 0.5px; }
    .title { font: bold 16px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
    .axis-label { font: 12px sans-serif; text-anchor: middle; fill: {{.Config.TextColor}}; }
    .legend { font: 12px sans-serif; fill: {{.Config.TextColor}}; }
  </style>
  {{if .Chart.Title}}<text class="title" x="{{div .Config.Width 2}}" y="24">{{.Chart.Title}}</text>{{end}}
  <g transform="translate({{.Config.MarginLeft}},{{.Config.MarginTop}})">
    {{range .GridLines}}<line class="grid-line" x1="{{.X1}}" x2="{{.X2}}" y1="{{.Y1}}" y2="{{.Y2}}"></line>
    {{end}}
    <g class="axis" transform="translate(0,{{.InnerHeight}})">
      {{range .XTicks}}<line x1="{{.Pos}}" x2="{{.Pos}}" y1="0" y2="6"></line><text x="{{.Pos}}" y="20" text-anchor="middle">{{.Label}}</text>
      {{end}}<path d="M0,0H{{.InnerWidth}}"></path>
      {{if .Chart.XLabel}}<text class="axis-label" x="{{div .InnerWidth 2}}" y="40">{{.Chart.XLabel}}</text>{{end}}
    </g>
    <g class="axis">
      {{range .YTicks}}<line x1="0" x2="-6" y1="{{.Pos}}" y2="{{.Pos}}"></line><text x="-10" y="{{add .Pos 4}}" text-anchor="end">{{.Label}}</text>
      {{end}}<path d="M0,0V{{.InnerHeight}}"></path>
      {{if .Chart.YLabel}}<text class="axis-label" transform="rotate(-90)" x="{{neg (div .InnerHeight 2)}}" y="-52">{{.Chart.YLabel}}</text>{{end}}
    </g>
    {{range .Series}}{{if .Area}}<path fill="{{.Color}}" fill-opacity="{{$.Config.FillOpacity}}" stroke="none" d="{{.Area}}"></path>{{end}}
    <path fill="none" stroke="{{.Color}}" stroke-width="1.5px" d="{{.Line}}"></path>
    {{$c := .Color}}{{range .Markers}}<circle cx="{{.X}}" cy="{{.Y}}" r="2.5" fill="{{$c}}"></circle>{{end}}
    {{end}}
  </g>
  {{if .ShowLegend}}<g class="legend" transform="translate({{add .Config.MarginLeft 10}},{{.Config.MarginTop}})">
    {{range .Series}}<rect x="0" y="{{.LegendY}}" width="12" height="12" fill="{{.Color}}"></rect><text x="18" y="{{add .LegendY 10}}">{{.Name}}</text>
    {{end}}
  </g>{{end}}
</svg>`

// SVGPlotter implements Plotter with an html/template SVG document.
type SVGPlotter struct {
	config   PlotConfig
	template *template.Template
}

func NewSVGPlotter(config PlotConfig) *SVGPlotter {
	tmpl := template.Must(template.New("svg").Funcs(template.FuncMap{
		"div": func(a, b int) int { return a / b },
		"add": func(a, b int) int { return a + b },
		"neg": func(a int) int { return -a },
	}).Parse(svgTemplate))
	return &SVGPlotter{config: config, template: tmpl}
}

// Generate returns a standalone SVG document for chart.
func (p *SVGPlotter) Generate(chart Chart) (string, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if err := p.Render(&b, chart); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Render writes the <svg> element for chart. An empty chart still renders
// its frame and labels.
func (p *SVGPlotter) Render(w io.Writer, chart Chart) error {
	innerWidth := p.config.Width - p.config.MarginLeft - p.config.MarginRight
	innerHeight := p.config.Height - p.config.MarginTop - p.config.MarginBottom
	data := templateData{Config: p.config, Chart: chart, InnerWidth: innerWidth, InnerHeight: innerHeight}

	xExtent, yExtent, ok := findExtents(chart.Series)
	if ok {
		if chart.YRange != nil {
			yExtent = [2]float64{chart.YRange.Min, chart.YRange.Max}
		} else {
			yExtent = adjustValueExtent(yExtent, p.config.YAxisMode)
		}
		xs := linearScale{domain: xExtent, span: [2]int{0, innerWidth}}
		ys := linearScale{domain: yExtent, span: [2]int{innerHeight, 0}}

		data.XTicks = valueTicks(xs, 8)
		data.YTicks = valueTicks(ys, 6)
		for _, t := range data.YTicks {
			data.GridLines = append(data.GridLines, gridLine{0, t.Pos, innerWidth, t.Pos})
		}
		for i, s := range chart.Series {
			color := s.Color
			if color == "" {
				color = p.config.Colors[i%len(p.config.Colors)]
			}
			sp := seriesPath{Name: s.Name, Color: color, Line: linePath(s.Points, xs, ys), LegendY: i * 18}
			if s.Fill {
				sp.Area = areaPath(s.Points, xs, ys)
			}
			if s.Markers {
				for _, pt := range s.Points {
					sp.Markers = append(sp.Markers, marker{xs.scale(pt.X), ys.scale(pt.Y)})
				}
			}
			data.Series = append(data.Series, sp)
		}
		data.ShowLegend = len(chart.Series) > 1
	}
	return p.template.Execute(w, data)
}

// --- Scales and paths ---

type linearScale struct {
	domain [2]float64
	span   [2]int
}

func (s linearScale) scale(v float64) int {
	d := s.domain[1] - s.domain[0]
	if d == 0 {
		return s.span[0]
	}
	v = math.Max(s.domain[0], math.Min(s.domain[1], v))
	r := (v - s.domain[0]) / d
	return s.span[0] + int(math.Round(r*float64(s.span[1]-s.span[0])))
}

func findExtents(series []DataSeries) (x, y [2]float64, ok bool) {
	x = [2]float64{math.Inf(1), math.Inf(-1)}
	y = x
	for _, s := range series {
		for _, pt := range s.Points {
			x[0], x[1] = math.Min(x[0], pt.X), math.Max(x[1], pt.X)
			y[0], y[1] = math.Min(y[0], pt.Y), math.Max(y[1], pt.Y)
			ok = true
		}
	}
	if ok && x[0] == x[1] {
		x[1] = x[0] + 1
	}
	return x, y, ok
}

func linePath(points []DataPoint, xs, ys linearScale) string {
	if len(points) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pt := range points {
		cmd := " L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%d,%d", cmd, xs.scale(pt.X), ys.scale(pt.Y))
	}
	return b.String()
}

// areaPath closes the line against y=0 (or the nearest edge of the domain).
func areaPath(points []DataPoint, xs, ys linearScale) string {
	if len(points) < 2 {
		return ""
	}
	base := ys.scale(0)
	first, last := points[0], points[len(points)-1]
	return fmt.Sprintf("M%d,%d %s L%d,%d Z",
		xs.scale(first.X), base,
		strings.Replace(linePath(points, xs, ys), "M", "L", 1),
		xs.scale(last.X), base)
}

// --- Value formatting and scaling helpers ---

type YAxisMode int

const (
	YAxisAuto YAxisMode = iota
	YAxisZeroBased
)

func adjustValueExtent(extent [2]float64, mode YAxisMode) [2]float64 {
	lo, hi := extent[0], extent[1]
	if mode == YAxisZeroBased {
		lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	}
	if lo == hi {
		if lo == 0 {
			return [2]float64{0, 1}
		}
		pad := math.Abs(lo) * 0.1
		return [2]float64{lo - pad, hi + pad}
	}
	pad := (hi - lo) * 0.05
	if mode == YAxisZeroBased && lo == 0 {
		return [2]float64{0, hi + pad}
	}
	return [2]float64{lo - pad, hi + pad}
}

func valueTicks(s linearScale, maxTicks int) []tick {
	values := generateValueTicks(s.domain[0], s.domain[1], maxTicks)
	prec := calculateOptimalPrecision(values)
	ticks := make([]tick, 0, len(values))
	for _, v := range values {
		ticks = append(ticks, tick{Pos: s.scale(v), Label: formatValue(v, prec)})
	}
	return ticks
}

// generateValueTicks picks 1/2/5 x 10^k steps covering [lo, hi].
func generateValueTicks(lo, hi float64, maxTicks int) []float64 {
	if lo >= hi {
		return []float64{lo}
	}
	rawStep := (hi - lo) / float64(maxTicks-1)
	magnitude := math.Pow(10, math.Floor(math.Log10(rawStep)))
	var step float64
	switch n := rawStep / magnitude; {
	case n <= 1:
		step = magnitude
	case n <= 2:
		step = 2 * magnitude
	case n <= 5:
		step = 5 * magnitude
	default:
		step = 10 * magnitude
	}
	var ticks []float64
	for i := math.Ceil(lo/step - 1e-9); i*step <= hi+step*1e-9; i++ {
		ticks = append(ticks, i*step)
	}
	return ticks
}

func calculateOptimalPrecision(values []float64) int {
	if len(values) <= 1 {
		return 1
	}
	minDiff := math.Inf(1)
	for i := 1; i < len(values); i++ {
		if diff := math.Abs(values[i] - values[i-1]); diff > 0 && diff < minDiff {
			minDiff = diff
		}
	}
	if math.IsInf(minDiff, 0) {
		return 2
	}
	return min(8, int(math.Max(0, -math.Floor(math.Log10(minDiff)))))
}

func formatValue(value float64, precision int) string {
	formatted := fmt.Sprintf("%.*f", precision, value)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(strings.TrimRight(formatted, "0"), ".")
	}
	if formatted == "" || formatted == "-" || formatted == "-0" {
		return "0"
	}
	return formatted
}
