package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/panyam/queuelab/components"
	"github.com/panyam/queuelab/console"
	"github.com/panyam/queuelab/core"
	"github.com/panyam/queuelab/loader"
	"github.com/panyam/queuelab/viz"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// simulateOptions is everything one simulate run needs.
type simulateOptions struct {
	Input     string
	Servers   int
	Samples   int
	Columns   string
	Format    string
	Timeline  string
	ChartsDir string
}

var simOpts simulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a recorded trace through an M/M/c queue",
	Long: `Replays the interarrival and service times of a CSV through c parallel
servers (earliest free server first) and prints the empirical metrics next to
the Erlang-C closed form.

Example:
  queuelab simulate --input fila.csv --servers 3
  queuelab simulate --input estatistica.csv --columns report --format yaml
  queuelab simulate --input fila.csv --timeline resultados_simulacao.csv --charts graficos/`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := simOpts
		opts.Servers = viper.GetInt(keySimulateServers)
		opts.Samples = viper.GetInt(keySimulateSamples)
		return runSimulate(cmd.OutOrStdout(), opts)
	},
}

// simulateOutput is the structured (json/yaml) result of a run.
type simulateOutput struct {
	RunID    string               `json:"run_id" yaml:"run_id"`
	Input    string               `json:"input" yaml:"input"`
	Analysis *components.Analysis `json:"analysis" yaml:"analysis"`
}

func runSimulate(w io.Writer, opts simulateOptions) error {
	if opts.Input == "" {
		return fmt.Errorf("%w: --input is required", core.ErrInvalidParameter)
	}
	cols, err := loader.ColumnsByName(opts.Columns)
	if err != nil {
		return err
	}
	trace, err := loader.LoadTrace(opts.Input, cols)
	if err != nil {
		return err
	}
	a, err := components.Analyze(trace, opts.Servers, opts.Samples)
	if err != nil {
		return err
	}
	runID := uuid.NewString()
	console.Debug("run %s: %d customers from %s", runID, a.Timeline.Len(), opts.Input)

	if opts.Timeline != "" {
		if err := writeTimeline(opts.Timeline, a.Timeline); err != nil {
			return err
		}
		console.Success("timeline written to %s", opts.Timeline)
	}
	if opts.ChartsDir != "" {
		if err := writeCharts(opts.ChartsDir, a); err != nil {
			return err
		}
		console.Success("charts written to %s", opts.ChartsDir)
	}

	out := simulateOutput{RunID: runID, Input: opts.Input, Analysis: a}
	switch opts.Format {
	case "", "text":
		printAnalysis(w, out)
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		data, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("%w: unknown format %q (want text, json or yaml)", core.ErrInvalidParameter, opts.Format)
}

func writeTimeline(path string, tl *components.Timeline) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tl.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCharts(dir string, a *components.Analysis) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	plotter := viz.NewSVGPlotter(viz.DefaultPlotConfig())
	charts := map[string]viz.Chart{
		"espera.svg":     viz.WaitChart(a.Timeline),
		"fila.svg":       viz.QueueLengthChart(a.Occupancy),
		"servidores.svg": viz.BusyServersChart(a.Occupancy, a.Servers),
	}
	for name, chart := range charts {
		doc, err := plotter.Generate(chart)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
			return err
		}
	}
	return nil
}

var (
	headerColor = color.New(color.Bold)
	warnColor   = color.New(color.FgYellow)
)

func printAnalysis(w io.Writer, out simulateOutput) {
	a := out.Analysis
	emp := a.Empirical
	headerColor.Fprintf(w, "M/M/%d replay of %s (%d customers, makespan %.4f)\n", a.Servers, out.Input, a.Timeline.Len(), emp.Makespan)
	fmt.Fprintf(w, "run %s\n\n", out.RunID)

	if a.Theory == nil {
		warnColor.Fprintf(w, "closed form unavailable: %s\n\n", a.TheoryError)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tERLANG-C\tSIMULATED")
	row := func(name string, theory func(m *components.QueueMetrics) float64, simulated float64) {
		t := "n/a"
		if a.Theory != nil {
			t = fmt.Sprintf("%.4f", theory(a.Theory))
		}
		fmt.Fprintf(tw, "%s\t%s\t%.4f\n", name, t, simulated)
	}
	row("P0 (empty system)", func(m *components.QueueMetrics) float64 { return m.P0 }, emp.P0)
	row("P(wait)", func(m *components.QueueMetrics) float64 { return m.PWait }, emp.PWait)
	row("Lq", func(m *components.QueueMetrics) float64 { return m.Lq }, emp.Lq)
	row("L", func(m *components.QueueMetrics) float64 { return m.L }, emp.L)
	row("Wq", func(m *components.QueueMetrics) float64 { return m.Wq }, emp.Wq)
	row("W", func(m *components.QueueMetrics) float64 { return m.W }, emp.W)
	row("utilization", func(m *components.QueueMetrics) float64 { return m.Rho }, emp.Utilization)
	tw.Flush()

	fmt.Fprintf(w, "\nmax wait %.4f, max queue %d, throughput %.4f\n", emp.MaxWait, emp.MaxQueue, emp.Throughput)
}

func init() {
	f := simulateCmd.Flags()
	f.StringVarP(&simOpts.Input, "input", "i", "", "input CSV")
	f.Int("servers", 3, "number of parallel servers (c)")
	f.Int("samples", components.DefaultOccupancySamples, "occupancy sample instants")
	f.StringVar(&simOpts.Columns, "columns", "dashboard", "column layout: dashboard (Tempo_Espera, Tempo_Atendimento) or report (interarrival_time, service_time)")
	f.StringVarP(&simOpts.Format, "format", "o", "text", "output format: text, json or yaml")
	f.StringVar(&simOpts.Timeline, "timeline", "", "write the per customer timeline CSV to this path")
	f.StringVar(&simOpts.ChartsDir, "charts", "", "write the three SVG charts into this directory")
	viper.BindPFlag(keySimulateServers, f.Lookup("servers"))
	viper.BindPFlag(keySimulateSamples, f.Lookup("samples"))
	rootCmd.AddCommand(simulateCmd)
}
