// Package main provides the vibe-ped command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitInvalid = 2 // input loaded but failed validation
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// errInvalidInput is returned by commands whose input failed validation
// after the violations have been reported.
var errInvalidInput = errors.New("input failed validation")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		if errors.Is(err, errInvalidInput) {
			return ExitInvalid
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	return ExitSuccess
}

// app carries state shared by every subcommand.
type app struct {
	cfgFile string
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "vibe-ped",
		Short: "Pedigree graph validation and queries",
		Long: `vibe-ped loads a pedigree (people with mother/father links) and the
single-nucleotide variants they carry, validates it, and answers
relationship queries.`,
		Example: `  vibe-ped validate family.tsv --variants variants.tsv
  vibe-ped ancestors family.tsv proband --min 2 --all
  vibe-ped relatives family.tsv proband
  vibe-ped export family.tsv --variants variants.tsv`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(a.cfgFile); err != nil {
				return err
			}
			logger, err := newLogger(viper.GetString("log.level"))
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default ~/.vibe-ped.yaml)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newAncestorsCmd(a))
	root.AddCommand(newDescendantsCmd(a))
	root.AddCommand(newRelativesCmd(a))
	root.AddCommand(newVariantsCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newDBCmd())
	root.AddCommand(newConfigCmd())

	return root
}

// initConfig reads the config file and environment. A missing config file
// is not an error.
func initConfig(cfgFile string) error {
	setDefaults()

	viper.SetEnvPrefix("VIBE_PED")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("cannot determine home directory: %w", err)
		}
		viper.SetConfigFile(filepath.Join(home, ".vibe-ped.yaml"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("log.level", "info")
	viper.SetDefault("people.header", true)
	viper.SetDefault("people.missing", []string{"", "0", "NA", "-"})
	viper.SetDefault("variants.header", true)
	viper.SetDefault("variants.missing", []string{"", "NA"})
	viper.SetDefault("db.path", defaultDBPath())
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".vibe-ped", "pedigree.duckdb")
	}
	return filepath.Join(home, ".vibe-ped", "pedigree.duckdb")
}

// newLogger builds a console logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Development = false
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
