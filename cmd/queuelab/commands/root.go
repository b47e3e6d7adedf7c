package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/panyam/queuelab/console"
	"github.com/panyam/queuelab/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "queuelab",
	Short: "Queue statistics reports and M/M/c simulation",
	Long: `queuelab analyses service line data.

It builds a statistics report (descriptive statistics, confidence intervals,
charts and a PDF) from historical interarrival and service times, and replays
recorded traces through an M/M/c queue, comparing the empirical metrics with
the Erlang-C closed form either from the command line or in a web dashboard.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./queuelab.yaml or $HOME/queuelab.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		console.Warn("could not load %s: %v", envFile, err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName("queuelab")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("QUEUELAB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		console.Debug("using config file %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		console.Error("reading config %s: %v", cfgFile, err)
		os.Exit(1)
	}

	if raw := viper.GetString(keyLogLevel); raw != "" {
		level, err := core.ParseLogLevel(raw)
		if err != nil {
			console.Warn("%v, keeping %s", err, core.GetLogLevel())
			return
		}
		core.SetLogLevel(level)
		console.SetLogLevel(level)
	}
}

// AddCommand allows adding subcommands from other files.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}
