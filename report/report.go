// Package report builds the descriptive statistics report of a historical
// trace and renders it as a chart panel plus a PDF document.
package report

import (
	"fmt"
	"time"

	"github.com/panyam/queuelab/core"
)

// Field is the statistics of one column of the trace.
type Field struct {
	Label     string          `json:"label" yaml:"label"`
	Summary   core.Summary    `json:"summary" yaml:"summary"`
	Intervals []core.Interval `json:"intervals" yaml:"intervals"`
}

// Report is the full content of a statistics report.
type Report struct {
	GeneratedAt  time.Time `json:"generated_at" yaml:"generated_at"`
	Records      int       `json:"records" yaml:"records"`
	Interarrival Field     `json:"interarrival" yaml:"interarrival"`
	Service      Field     `json:"service" yaml:"service"`
}

const (
	InterarrivalLabel = "Tempo entre Chegadas"
	ServiceLabel      = "Tempo de Atendimento"
)

// Suggestions are the fixed improvement suggestions closing every report.
var Suggestions = []string{
	"1. Implementar sistema de agendamento para melhor distribuição das chegadas",
	"2. Padronizar o processo de atendimento para reduzir a variabilidade",
	"3. Considerar aumento do número de servidores em horários de pico",
}

// Build computes both fields of the report. levels defaults to
// core.DefaultConfidenceLevels when empty.
func Build(trace core.Trace, levels []float64, now time.Time) (*Report, error) {
	if len(levels) == 0 {
		levels = core.DefaultConfidenceLevels
	}
	ia, err := buildField(InterarrivalLabel, trace.Interarrivals(), levels)
	if err != nil {
		return nil, err
	}
	svc, err := buildField(ServiceLabel, trace.ServiceTimes(), levels)
	if err != nil {
		return nil, err
	}
	return &Report{GeneratedAt: now, Records: trace.Len(), Interarrival: ia, Service: svc}, nil
}

func buildField(label string, values []float64, levels []float64) (Field, error) {
	summary, err := core.Describe(values)
	if err != nil {
		return Field{}, fmt.Errorf("%s: %w", label, err)
	}
	intervals, err := core.ConfidenceIntervals(values, levels)
	if err != nil {
		return Field{}, fmt.Errorf("%s: %w", label, err)
	}
	return Field{Label: label, Summary: summary, Intervals: intervals}, nil
}

// StatLines formats the summary the way the report prints it.
func (f Field) StatLines() []string {
	s := f.Summary
	return []string{
		fmt.Sprintf("Média: %.2f", s.Mean),
		fmt.Sprintf("Mediana: %.2f", s.Median),
		fmt.Sprintf("Moda: %.2f", s.Mode),
		fmt.Sprintf("Variância: %.2f", s.Variance),
		fmt.Sprintf("Desvio Padrão: %.2f", s.StdDev),
	}
}

// IntervalLines formats each confidence interval as "IC 95.0%: [lo, hi]".
func (f Field) IntervalLines() []string {
	lines := make([]string, len(f.Intervals))
	for i, iv := range f.Intervals {
		lines[i] = IntervalLine(iv)
	}
	return lines
}

func IntervalLine(iv core.Interval) string {
	return fmt.Sprintf("IC %.1f%%: [%.2f, %.2f]", iv.Level*100, iv.Lo, iv.Hi)
}

// Interpretations are the data dependent sentences of the report.
func (r *Report) Interpretations() []string {
	return []string{
		fmt.Sprintf("- O tempo médio entre chegadas é de %.2f minutos", r.Interarrival.Summary.Mean),
		fmt.Sprintf("- O tempo médio de atendimento é de %.2f minutos", r.Service.Summary.Mean),
		fmt.Sprintf("- A variabilidade do tempo de atendimento (DP: %.2f) indica a necessidade de padronização do processo", r.Service.Summary.StdDev),
	}
}

// DateLine is the report date in dd/mm/yyyy.
func (r *Report) DateLine() string {
	return "Data: " + r.GeneratedAt.Format("02/01/2006")
}
