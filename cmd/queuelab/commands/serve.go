package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/panyam/queuelab/console"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the M/M/c simulation dashboard",
	Long: `Start the web dashboard. Upload a CSV with the columns Tempo_Espera and
Tempo_Atendimento, pick the number of servers, and get the Erlang-C and
simulated metrics, the three occupancy charts and a CSV download of the
per customer timeline.

Endpoints:
  GET  /              upload form
  POST /simulate      run a simulation (multipart: file, servers)
  GET  /download      timeline CSV of the last run in this session
  GET  /download/{id} timeline CSV of a recent run
  POST /api/simulate  same as /simulate, JSON response
  GET  /api/runs      recent runs, newest first (?limit=N)
  GET  /healthz       health check`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := dashboardOptions(viper.GetViper())
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", viper.GetString(keyServeHost), viper.GetInt(keyServePort))
		server := &http.Server{
			Addr:              addr,
			Handler:           console.NewDashboard(opts).Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		baseURL := fmt.Sprintf("http://%s", addr)
		fmt.Printf("🚀 queuelab dashboard %s\n", Version)
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
		fmt.Printf("📊 Dashboard:    %s\n", baseURL)
		fmt.Printf("🛠️  JSON API:     %s/api/simulate\n", baseURL)
		fmt.Printf("⚙️  Servers:      1..%d (default %d)\n", opts.MaxServers, opts.DefaultServers)
		fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

		select {
		case err := <-errChan:
			console.Failure("server failed to start: %v", err)
			return err
		case <-sigChan:
		}

		console.Stop("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			console.Warn("server shutdown error: %v", err)
			return err
		}
		console.Success("server stopped gracefully")
		return nil
	},
}

// dashboardOptions reads the dashboard limits from configuration.
func dashboardOptions(v *viper.Viper) (console.Options, error) {
	opts := console.DefaultOptions()
	opts.MaxServers = v.GetInt(keyServeMaxServers)
	opts.DefaultServers = min(v.GetInt(keySimulateServers), opts.MaxServers)
	opts.Samples = v.GetInt(keySimulateSamples)
	opts.MaxUploadBytes = v.GetInt64(keyServeMaxUploadMB) << 20
	opts.HistorySize = v.GetInt(keyServeHistory)
	return opts, opts.Validate()
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "localhost", "listen host")
	f.Int("port", 8501, "listen port")
	f.Int("max-servers", console.ServerLimit, "largest server count accepted from the form (at most 10)")
	f.Int("max-upload-mb", 32, "upload size limit in MiB")
	f.Int("history-size", 20, "number of recent runs kept for /api/runs")
	viper.BindPFlag(keyServeHost, f.Lookup("host"))
	viper.BindPFlag(keyServePort, f.Lookup("port"))
	viper.BindPFlag(keyServeMaxServers, f.Lookup("max-servers"))
	viper.BindPFlag(keyServeMaxUploadMB, f.Lookup("max-upload-mb"))
	viper.BindPFlag(keyServeHistory, f.Lookup("history-size"))
	rootCmd.AddCommand(serveCmd)
}
