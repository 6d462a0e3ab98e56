package main

import (
	"os"

	"github.com/spf13/cobra"

	"patcheck/internal/binder"
	"patcheck/internal/config"
	"patcheck/internal/logging"
	"patcheck/internal/pattern"
	"patcheck/internal/verdict"
	"patcheck/internal/version"
)

var (
	// rootFlag is the directory holding .patcheck/config.json
	rootFlag string
	// formatFlag is the CLI --format flag value
	formatFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// templateFlags are extra YAML template files layered on the
	// builtin catalog
	templateFlags []string

	candidateCapFlag  int
	powerSetLimitFlag int
	maxBindingsFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "patcheck",
	Short: "patcheck - design pattern conformance checker",
	Long: `patcheck mechanically verifies whether code structure conforms to the
classic design patterns. It binds extracted structural facts to the roles of a
pattern template and checks the template's relationship rules against them.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("patcheck version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Directory holding the .patcheck configuration")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", "",
		"Output format: json or human (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (default from config)")
	rootCmd.PersistentFlags().StringSliceVar(&templateFlags, "templates", nil,
		"Additional YAML template files (repeatable)")
	rootCmd.PersistentFlags().IntVar(&candidateCapFlag, "candidate-cap", 0,
		"Per-role candidate cap before the search refuses to run (default from config)")
	rootCmd.PersistentFlags().IntVar(&powerSetLimitFlag, "power-set-limit", 0,
		"Largest candidate set enumerated as subsets (default from config)")
	rootCmd.PersistentFlags().IntVar(&maxBindingsFlag, "max-bindings", 0,
		"Bindings examined before a verdict is truncated (default from config)")
}

// setup resolves config, logger, and the pattern registry for a command
// invocation. Precedence: CLI flag > PATCHECK_* env > config file >
// default; env and file are handled by config.Load.
func setup() (*config.Config, *logging.Logger, *pattern.Registry, error) {
	cfg, err := config.Load(rootFlag)
	if err != nil {
		return nil, nil, nil, err
	}

	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if candidateCapFlag > 0 {
		cfg.Search.CandidateCap = candidateCapFlag
	}
	if powerSetLimitFlag > 0 {
		cfg.Search.PowerSetLimit = powerSetLimitFlag
	}
	if maxBindingsFlag > 0 {
		cfg.Search.MaxBindings = maxBindingsFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(cfg.Logging.Format),
		Level:  logging.ParseLevel(cfg.Logging.Level),
	})

	reg, err := pattern.Builtin()
	if err != nil {
		return nil, nil, nil, err
	}
	paths := append([]string{}, cfg.Templates.Paths...)
	paths = append(paths, templateFlags...)
	for _, path := range paths {
		if err := pattern.RegisterYAMLFile(reg, path); err != nil {
			return nil, nil, nil, err
		}
	}

	return cfg, logger, reg, nil
}

// checkOptions maps resolved search settings onto verdict options.
func checkOptions(cfg *config.Config) verdict.Options {
	return verdict.Options{
		Binder: binder.Options{
			CandidateCap:  cfg.Search.CandidateCap,
			PowerSetLimit: cfg.Search.PowerSetLimit,
		},
		MaxBindings: cfg.Search.MaxBindings,
	}
}

// fileExists reports whether a path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
