// Command cachesim runs a YAML-described cache-coherence scenario and
// reports each level's teardown statistics.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/marmos91/cachesim/internal/cli/output"
	"github.com/marmos91/cachesim/internal/logger"
	"github.com/marmos91/cachesim/pkg/config"
	"github.com/marmos91/cachesim/pkg/metrics"

	// Registers the Prometheus-backed coherence.Metrics constructor.
	_ "github.com/marmos91/cachesim/pkg/metrics/prometheus"
	"github.com/marmos91/cachesim/pkg/scenario"
)

var (
	version = "dev"

	outputFormat string
	logLevel     string
	logFormat    string
	enableStats  bool
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cachesim",
		Short:         "Discrete-event cache-coherence simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			viper.AutomaticEnv()
			viper.SetEnvPrefix("CACHESIM")
			if err := logger.Init(logger.Config{Level: logLevel, Format: logFormat}); err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			if enableStats {
				metrics.InitRegistry()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "log level: DEBUG, INFO, WARN, ERROR")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
	root.PersistentFlags().BoolVar(&enableStats, "metrics", false, "enable Prometheus statistics collection")
	root.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table, json, yaml")

	root.AddCommand(runCmd(), validateCmd(), schemaCmd(), versionCmd())
	return root
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print teardown statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()
			lc := logger.NewLogContext("cachesim")
			lc.TraceID = runID
			ctx := logger.WithContext(cmd.Context(), lc)

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading scenario file: %w", err)
			}
			sc, err := scenario.Load(data)
			if err != nil {
				return err
			}

			logger.InfoCtx(ctx, "scenario loaded", "path", args[0], "chains", len(sc.Chains))

			run, err := scenario.Build(sc)
			if err != nil {
				return err
			}
			if err := run.Execute(sc.Ops); err != nil {
				return err
			}

			format, err := output.ParseFormat(outputFormat)
			if err != nil {
				return err
			}
			printer := output.NewPrinter(os.Stdout, format, false)
			return printer.Print(run.Report())
		},
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading scenario file: %w", err)
			}
			if _, err := scenario.Load(data); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "scenario is valid")
			return nil
		},
	}
}

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for a cache level's config block",
		RunE: func(cmd *cobra.Command, args []string) error {
			reflector := &jsonschema.Reflector{DoNotReference: true}
			schema := reflector.Reflect(&config.Config{})
			return output.PrintJSON(cmd.OutOrStdout(), schema)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cachesim version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}
}
