package commands

import (
	"fmt"

	"github.com/panyam/queuelab/components"
	"github.com/panyam/queuelab/console"
	"github.com/panyam/queuelab/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys. Each one can be set in queuelab.yaml, as a flag, or as
// QUEUELAB_<KEY> with dots turned into underscores.
const (
	keyLogLevel = "log_level"

	keyReportInput = "report.input"
	keyReportChart = "report.chart"
	keyReportPDF   = "report.pdf"

	keySimulateServers = "simulate.servers"
	keySimulateSamples = "simulate.samples"

	keyServeHost        = "serve.host"
	keyServePort        = "serve.port"
	keyServeMaxServers  = "serve.max_servers"
	keyServeMaxUploadMB = "serve.max_upload_mb"
	keyServeHistory     = "serve.history_size"
)

func setDefaults(v *viper.Viper) {
	dash := console.DefaultOptions()

	v.SetDefault(keyReportInput, report.DefaultInput)
	v.SetDefault(keyReportChart, report.DefaultChart)
	v.SetDefault(keyReportPDF, report.DefaultPDF)

	v.SetDefault(keySimulateServers, dash.DefaultServers)
	v.SetDefault(keySimulateSamples, components.DefaultOccupancySamples)

	v.SetDefault(keyServeHost, "localhost")
	v.SetDefault(keyServePort, 8501)
	v.SetDefault(keyServeMaxServers, dash.MaxServers)
	v.SetDefault(keyServeMaxUploadMB, dash.MaxUploadBytes>>20)
	v.SetDefault(keyServeHistory, dash.HistorySize)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(viper.AllSettings())
		if err != nil {
			return err
		}
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# from %s\n", used)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
