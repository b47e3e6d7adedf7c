// Package viz renders queue charts: inline SVG line charts for the dashboard
// and the PNG distribution panel embedded in the batch report.
package viz

import "io"

// DataPoint is a single plot point.
type DataPoint struct {
	X float64
	Y float64
}

// DataSeries is one named line. Color overrides the plotter palette when set.
// Fill shades the area between the line and zero.
type DataSeries struct {
	Name    string
	Color   string
	Points  []DataPoint
	Fill    bool
	Markers bool
}

// YRange pins the Y axis instead of deriving it from the data.
type YRange struct {
	Min float64
	Max float64
}

// Chart is everything a plotter needs to draw one figure.
type Chart struct {
	Title  string
	XLabel string
	YLabel string
	Series []DataSeries
	YRange *YRange
}

// Plotter renders charts. Render writes a fragment suitable for embedding in
// HTML; Generate returns a standalone document.
type Plotter interface {
	Render(w io.Writer, chart Chart) error
	Generate(chart Chart) (string, error)
}
