package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"CityPulse/internal/app"
	"CityPulse/internal/config"
	"CityPulse/internal/logging"
)

const envPrefix = "CITYPULSE"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "citypulse",
	Short: "Live city conditions, travel advisories and civic issue reports",
	Long: `citypulse aggregates live traffic discussion, local news and weather for one city,
turns them into route advisories and predictive alerts with a structured-output LLM,
and classifies photographed civic issues for the responsible department.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default $CITYPULSE_CONFIG)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().String("city", "", "override the configured city name")

	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd, adviseCmd, describeCmd, conditionsCmd, watchCmd)
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig merges the YAML file and process environment with flag and CITYPULSE_* overrides.
func loadConfig() config.Config {
	cfg := config.Load(viper.GetString("config"))

	if v := viper.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("log-format"); v != "" {
		cfg.Logging.Format = v
	}
	if v := viper.GetString("city"); v != "" {
		cfg.City.Name = v
	}
	if v := viper.GetString("addr"); v != "" {
		cfg.Server.Addr = v
	}
	return cfg
}

// newApplication loads configuration and wires the application with a stderr logger.
func newApplication(ctx context.Context) (*app.Application, config.Config, *slog.Logger, error) {
	cfg := loadConfig()
	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, cfg, logger, err
	}
	return application, cfg, logger, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
