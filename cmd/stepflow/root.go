package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/cli"
	"github.com/aretw0/stepflow/internal/config"
)

var opts cli.Options

var rootCmd = &cobra.Command{
	Use:   "stepflow",
	Short: "Stepflow checks and inspects workflow definitions",
	Long: `Stepflow validates workflow step trees against an operator catalog,
indexes the outputs each step can reference and renders flows as diagrams.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", "", "Configuration file (default ./stepflow.yaml when present)")
	flags.StringVar(&opts.Dir, "dir", "", "Directory of flow documents")
	flags.StringSliceVar(&opts.Catalogs, "catalog", nil, "Operator catalog file (repeatable)")
	flags.StringVar(&opts.Validators, "validators", "", "File listing external validator commands")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.LogFormat, "log-format", "", "Log format: text or json")
}

// setup loads the configuration and builds the logger and engine every
// command shares.
func setup(extra ...stepflow.Option) (config.Config, *slog.Logger, *stepflow.Engine, error) {
	cfg, err := cli.LoadConfig(opts)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	eng, err := cli.NewEngine(cfg, opts, logger, extra...)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, eng, nil
}
