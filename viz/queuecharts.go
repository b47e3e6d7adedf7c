package viz

import (
	"html/template"
	"strings"

	"github.com/panyam/queuelab/components"
)

// Series colors shared by the dashboard and the report panel.
const (
	ColorWait  = "#2ecc71"
	ColorBusy  = "#3498db"
	ColorQueue = "#e74c3c"

	ColorInterarrival = ColorWait
	ColorService      = ColorBusy
)

// WaitChart plots each customer's wait in queue against its index.
func WaitChart(tl *components.Timeline) Chart {
	points := make([]DataPoint, tl.Len())
	for i, e := range tl.Entries {
		points[i] = DataPoint{X: float64(e.Customer), Y: e.Wait}
	}
	return Chart{
		Title:  "Tempo de espera na fila por cliente",
		XLabel: "Cliente",
		YLabel: "Tempo de espera (minutos)",
		Series: []DataSeries{{Name: "Espera", Color: ColorWait, Points: points, Fill: true, Markers: true}},
	}
}

// QueueLengthChart plots the number of customers waiting at each sample instant.
func QueueLengthChart(samples []components.OccupancySample) Chart {
	points := make([]DataPoint, len(samples))
	for i, s := range samples {
		points[i] = DataPoint{X: s.Time, Y: float64(s.InQueue)}
	}
	return Chart{
		Title:  "Tamanho da fila ao longo do tempo",
		XLabel: "Tempo (minutos)",
		YLabel: "Número de clientes na fila",
		Series: []DataSeries{{Name: "Fila", Color: ColorQueue, Points: points, Fill: true}},
	}
}

// BusyServersChart plots busy servers over time with the Y axis pinned to [0, servers].
func BusyServersChart(samples []components.OccupancySample, servers int) Chart {
	points := make([]DataPoint, len(samples))
	for i, s := range samples {
		points[i] = DataPoint{X: s.Time, Y: float64(s.Busy)}
	}
	return Chart{
		Title:  "Ocupação dos servidores ao longo do tempo",
		XLabel: "Tempo (minutos)",
		YLabel: "Número de servidores ocupados",
		Series: []DataSeries{{Name: "Ocupados", Color: ColorBusy, Points: points, Fill: true}},
		YRange: &YRange{Min: 0, Max: float64(servers)},
	}
}

// QueueCharts holds the rendered dashboard charts as inline SVG markup.
type QueueCharts struct {
	Wait  template.HTML
	Queue template.HTML
	Busy  template.HTML
}

// RenderQueueCharts draws the three dashboard charts for an analysis.
func RenderQueueCharts(p Plotter, a *components.Analysis) (QueueCharts, error) {
	charts := []Chart{
		WaitChart(a.Timeline),
		QueueLengthChart(a.Occupancy),
		BusyServersChart(a.Occupancy, a.Servers),
	}
	out := make([]template.HTML, len(charts))
	for i, c := range charts {
		var b strings.Builder
		if err := p.Render(&b, c); err != nil {
			return QueueCharts{}, err
		}
		// Output of our own template; already escaped.
		out[i] = template.HTML(b.String())
	}
	return QueueCharts{Wait: out[0], Queue: out[1], Busy: out[2]}, nil
}
