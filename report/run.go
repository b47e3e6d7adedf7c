package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/panyam/queuelab/core"
	"github.com/panyam/queuelab/loader"
	"github.com/panyam/queuelab/viz"
)

// Default file locations of the batch report.
const (
	DefaultInput = "estatistica/estatistica.csv"
	DefaultChart = "graficos_analise.png"
	DefaultPDF   = "relatorio_analise.pdf"
)

// Config tells Run where to read and write.
type Config struct {
	Input     string
	ChartPath string
	PDFPath   string
	Levels    []float64
	Now       time.Time
}

func (c Config) withDefaults() Config {
	if c.Input == "" {
		c.Input = DefaultInput
	}
	if c.ChartPath == "" {
		c.ChartPath = DefaultChart
	}
	if c.PDFPath == "" {
		c.PDFPath = DefaultPDF
	}
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	return c
}

var log = core.DefaultLog().Named("report")

// Run loads the input CSV and writes the chart panel and the PDF. Nothing is
// written unless every statistic and both documents were produced.
func Run(cfg Config) (*Report, error) {
	cfg = cfg.withDefaults()

	trace, err := loader.LoadTrace(cfg.Input, loader.ReportColumns)
	if err != nil {
		return nil, err
	}
	r, err := Build(trace, cfg.Levels, cfg.Now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Input, err)
	}

	var chart bytes.Buffer
	if err := viz.ReportCharts(&chart, trace.Interarrivals(), trace.ServiceTimes()); err != nil {
		return nil, err
	}
	var doc bytes.Buffer
	if err := WritePDF(&doc, r, chart.Bytes()); err != nil {
		return nil, err
	}

	if err := writeFile(cfg.ChartPath, chart.Bytes()); err != nil {
		return nil, err
	}
	log.Info("chart written to %s", cfg.ChartPath)
	if err := writeFile(cfg.PDFPath, doc.Bytes()); err != nil {
		return nil, err
	}
	log.Info("report written to %s (%d records)", cfg.PDFPath, r.Records)
	return r, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
