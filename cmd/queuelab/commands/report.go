package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/panyam/queuelab/console"
	"github.com/panyam/queuelab/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the statistics report (chart PNG and PDF) from historical data",
	Long: `Reads a CSV with the columns interarrival_time and service_time, prints the
descriptive statistics and the 90/95/99% confidence intervals of both, and
writes a 2x2 chart panel and a PDF report.

Example:
  queuelab report --input estatistica/estatistica.csv --chart graficos_analise.png --pdf relatorio_analise.pdf`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := report.Config{
			Input:     viper.GetString(keyReportInput),
			ChartPath: viper.GetString(keyReportChart),
			PDFPath:   viper.GetString(keyReportPDF),
		}
		console.Start("building report from %s", cfg.Input)
		r, err := report.Run(cfg)
		if err != nil {
			console.Failure("report failed: %v", err)
			return err
		}
		printReport(cmd.OutOrStdout(), r)
		fmt.Fprintf(cmd.OutOrStdout(), "\nRelatório gerado com sucesso em '%s'\n", cfg.PDFPath)
		return nil
	},
}

var sectionColor = color.New(color.FgCyan, color.Bold)

// printReport writes the statistics and intervals to the terminal, service
// first, then interarrival.
func printReport(w io.Writer, r *report.Report) {
	fields := []report.Field{r.Service, r.Interarrival}
	for i, f := range fields {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sectionColor.Fprintf(w, "=== Estatísticas do %s ===\n", f.Label)
		for _, line := range f.StatLines() {
			fmt.Fprintln(w, line)
		}
	}
	for _, f := range fields {
		fmt.Fprintln(w)
		sectionColor.Fprintf(w, "=== Intervalos de Confiança para %s ===\n", f.Label)
		for _, line := range f.IntervalLines() {
			fmt.Fprintln(w, line)
		}
	}
}

func init() {
	reportCmd.Flags().String("input", "", "input CSV (default "+report.DefaultInput+")")
	reportCmd.Flags().String("chart", "", "chart PNG output (default "+report.DefaultChart+")")
	reportCmd.Flags().String("pdf", "", "PDF output (default "+report.DefaultPDF+")")
	viper.BindPFlag(keyReportInput, reportCmd.Flags().Lookup("input"))
	viper.BindPFlag(keyReportChart, reportCmd.Flags().Lookup("chart"))
	viper.BindPFlag(keyReportPDF, reportCmd.Flags().Lookup("pdf"))
	rootCmd.AddCommand(reportCmd)
}
