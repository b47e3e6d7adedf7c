package console

import (
	"fmt"

	"github.com/panyam/queuelab/components"
	"github.com/panyam/queuelab/viz"
)

type pageData struct {
	Servers    int
	MaxServers int
	Error      string
	Result     *resultView
	Recent     []recentRun
}

// recentOnPage is how many history rows the index page lists.
const recentOnPage = 5

type recentRun struct {
	ID          string
	At          string
	File        string
	Servers     int
	Customers   int
	Stable      bool
	Wq          string
	Utilization string
}

func newRecentRuns(runs []RunSummary) []recentRun {
	out := make([]recentRun, len(runs))
	for i, run := range runs {
		out[i] = recentRun{
			ID:          run.ID,
			At:          run.At.Format("02/01/2006 15:04:05"),
			File:        run.File,
			Servers:     run.Servers,
			Customers:   run.Customers,
			Stable:      run.Stable,
			Wq:          fmtMetric(run.Wq),
			Utilization: fmtMetric(run.Utilization),
		}
	}
	return out
}

type metricCard struct {
	Label     string
	Theory    string
	Empirical string
}

type resultView struct {
	RunID      string
	FileName   string
	Customers  int
	Servers    int
	Makespan   string
	Stable     bool
	TheoryNote string
	Cards      []metricCard
	Charts     viz.QueueCharts
}

const unavailable = "n/d"

func fmtMetric(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

func newResultView(sim *simulation, charts viz.QueueCharts) *resultView {
	a := sim.Analysis
	emp := a.Empirical
	v := &resultView{
		RunID:     sim.RunID,
		FileName:  sim.FileName,
		Customers: a.Timeline.Len(),
		Servers:   a.Servers,
		Makespan:  fmtMetric(emp.Makespan),
		Stable:    a.Stable(),
		Charts:    charts,
	}

	theory := func(f func(m *components.QueueMetrics) float64) string {
		if a.Theory == nil {
			return unavailable
		}
		return fmtMetric(f(a.Theory))
	}
	v.Cards = []metricCard{
		{"P₀ (Sistema vazio)", theory(func(m *components.QueueMetrics) float64 { return m.P0 }), fmtMetric(emp.P0)},
		{"Probabilidade de espera", theory(func(m *components.QueueMetrics) float64 { return m.PWait }), fmtMetric(emp.PWait)},
		{"Número médio na fila (Lq)", theory(func(m *components.QueueMetrics) float64 { return m.Lq }), fmtMetric(emp.Lq)},
		{"Tempo médio de espera (Wq)", theory(func(m *components.QueueMetrics) float64 { return m.Wq }), fmtMetric(emp.Wq)},
		{"Tempo médio no sistema (W)", theory(func(m *components.QueueMetrics) float64 { return m.W }), fmtMetric(emp.W)},
		{"Número médio no sistema (L)", theory(func(m *components.QueueMetrics) float64 { return m.L }), fmtMetric(emp.L)},
		{"Utilização (ρ)", theory(func(m *components.QueueMetrics) float64 { return m.Rho }), fmtMetric(emp.Utilization)},
	}
	switch {
	case a.Diverges():
		v.TheoryNote = "Sistema instável (ρ ≥ 1): as métricas analíticas M/M/c não existem. Os valores empíricos vêm da simulação."
	case a.Theory == nil && a.TheoryError != "":
		v.TheoryNote = "Métricas analíticas indisponíveis: " + a.TheoryError
	}
	return v
}

const pageTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
  <meta charset="utf-8">
  <title>Simulação de Fila M/M/c</title>
  <style>
    body { font-family: sans-serif; margin: 2rem auto; max-width: 960px; color: #1f2937; }
    form { display: flex; gap: 1rem; align-items: end; flex-wrap: wrap; margin-bottom: 1.5rem; }
    .error { background: #fee2e2; border: 1px solid #e74c3c; padding: .75rem 1rem; border-radius: 6px; }
    .warning { background: #fef3c7; border: 1px solid #f59e0b; padding: .75rem 1rem; border-radius: 6px; }
    .cards { display: grid; grid-template-columns: repeat(3, 1fr); gap: 1rem; margin: 1.5rem 0; }
    .card { border: 1px solid #e5e7eb; border-radius: 8px; padding: .75rem 1rem; }
    .card h3 { font-size: .9rem; margin: 0 0 .5rem; }
    .card .value { font-size: 1.4rem; font-weight: bold; }
    .card .empirical { color: #6b7280; font-size: .85rem; }
    .chart { margin: 1.5rem 0; }
    .chart svg { max-width: 100%; height: auto; }
    table.runs { border-collapse: collapse; width: 100%; font-size: .85rem; }
    table.runs th, table.runs td { border-bottom: 1px solid #e5e7eb; padding: .35rem .5rem; text-align: left; }
  </style>
</head>
<body>
  <h1>Simulação de Fila M/M/c</h1>
  <form method="post" action="/simulate" enctype="multipart/form-data">
    <label>Arquivo CSV com colunas 'Tempo_Espera' e 'Tempo_Atendimento'<br>
      <input type="file" name="file" accept=".csv" required></label>
    <label>Número de servidores (c)<br>
      <input type="number" name="servers" min="1" max="{{.MaxServers}}" step="1" value="{{.Servers}}"></label>
    <button type="submit">Simular</button>
  </form>
  {{with .Error}}<div class="error">{{.}}</div>{{end}}
  {{with .Result}}
  <p>Execução <code>{{.RunID}}</code>: {{.Customers}} clientes de <em>{{.FileName}}</em> em {{.Servers}} servidores, duração {{.Makespan}} minutos.</p>
  {{with .TheoryNote}}<div class="warning">{{.}}</div>{{end}}
  <div class="cards">
    {{range .Cards}}<div class="card">
      <h3>{{.Label}}</h3>
      <div class="value">{{.Theory}}</div>
      <div class="empirical">simulação: {{.Empirical}}</div>
    </div>
    {{end}}
  </div>
  <h2>Visualizações</h2>
  <div class="chart">{{.Charts.Wait}}</div>
  <div class="chart">{{.Charts.Queue}}</div>
  <div class="chart">{{.Charts.Busy}}</div>
  <p><a href="/download">Download resultados da simulação (CSV)</a></p>
  {{end}}
  {{with .Recent}}
  <h2>Simulações recentes</h2>
  <table class="runs">
    <tr><th>Data</th><th>Arquivo</th><th>c</th><th>Clientes</th><th>Wq</th><th>Utilização</th><th></th></tr>
    {{range .}}<tr>
      <td>{{.At}}</td><td>{{.File}}</td><td>{{.Servers}}</td><td>{{.Customers}}</td>
      <td>{{.Wq}}</td><td>{{.Utilization}}{{if not .Stable}} (instável){{end}}</td>
      <td><a href="/download/{{.ID}}">CSV</a></td>
    </tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>`
