package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/stepflow"
	"github.com/aretw0/stepflow/internal/config"
	"github.com/aretw0/stepflow/internal/logging"
	"github.com/aretw0/stepflow/pkg/observability"
	"github.com/aretw0/stepflow/pkg/validate"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	Dir        string
	Catalogs   []string
	Validators string
	LogLevel   string
	LogFormat  string
}

// catalogNames are tried, in order, when no catalog is configured.
var catalogNames = []string{"operators.yaml", "operators.yml", "operators.json", "catalog.yaml"}

// LoadConfig reads the configuration file and applies flag overrides.
// Without --config, stepflow.yaml in the working directory is optional.
func LoadConfig(opts Options) (config.Config, error) {
	path, required := opts.ConfigPath, true
	if path == "" {
		path, required = config.FileName, false
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return config.Config{}, err
	}

	if opts.Dir != "" {
		cfg.FlowsDir = opts.Dir
	}
	if opts.Validators != "" {
		cfg.Validators = opts.Validators
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if opts.LogFormat != "" {
		cfg.Log.Format = opts.LogFormat
	}
	return cfg, nil
}

// NewLogger builds the application logger. It writes to Stderr so that
// reports and JSON-RPC on Stdout stay clean.
func NewLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, cfg.Log.Format, level)
}

// NewEngine initializes a stepflow engine with standard CLI conventions.
func NewEngine(cfg config.Config, opts Options, logger *slog.Logger, extra ...stepflow.Option) (*stepflow.Engine, error) {
	engineOpts := []stepflow.Option{
		stepflow.WithLogger(logger),
		stepflow.WithHooks(observability.LogHooks(logger)),
	}

	catalogs := opts.Catalogs
	if len(catalogs) == 0 && cfg.Catalog != "" {
		catalogs = []string{cfg.Catalog}
	}
	if len(catalogs) == 0 {
		// Smart Convention: an operators file next to the flows is picked up.
		if found := discoverCatalog(cfg.FlowsDir); found != "" {
			logger.Debug("catalog discovered", "path", found)
			catalogs = []string{found}
		}
	}
	for _, path := range catalogs {
		engineOpts = append(engineOpts, stepflow.WithCatalog(path))
	}

	if cfg.Validators != "" {
		engineOpts = append(engineOpts, stepflow.WithProcessValidators(cfg.Validators))
	}
	if cfg.FlowsDir != "" {
		engineOpts = append(engineOpts, stepflow.WithFlowDir(cfg.FlowsDir))
	}

	var valOpts []validate.Option
	if cfg.MinSteps > 0 {
		valOpts = append(valOpts, validate.WithMinSteps(cfg.MinSteps))
	}
	if cfg.MaxConcurrency > 0 {
		valOpts = append(valOpts, validate.WithMaxConcurrency(cfg.MaxConcurrency))
	}
	if len(valOpts) > 0 {
		engineOpts = append(engineOpts, stepflow.WithValidatorOptions(valOpts...))
	}

	engine, err := stepflow.New(append(engineOpts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// discoverCatalog returns the first conventional catalog file found in dir,
// then in the working directory.
func discoverCatalog(dir string) string {
	dirs := []string{"."}
	if dir != "" && dir != "." {
		dirs = []string{dir, "."}
	}
	for _, d := range dirs {
		for _, name := range catalogNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}
