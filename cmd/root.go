package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gnolang/pmconv/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger = zap.NewNop()
)

// errIssuesFound fails the run after the issues have been printed.
var errIssuesFound = errors.New("issues found")

var rootCmd = &cobra.Command{
	Use:              "pmconv [paths...]",
	Short:            "pmconv - convert Postman collections into mocha test suites",
	TraverseChildren: true, // Prioritize subcommands
	SilenceUsage:     true,
	SilenceErrors:    true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// no subcommand
		if len(args) == 0 {
			return cmd.Help()
		}
		// Format: pmconv [path1 path2 ...] => behaves like the check subcommand
		return checkCmd.RunE(checkCmd, args)
	},
}

// newLogger builds the run's logger. Every entry carries the run id.
func newLogger(verbose bool) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if verbose {
		l, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		l, err = cfg.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l.With(zap.String("run_id", uuid.NewString())), nil
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errIssuesFound) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "Path to the configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for a conversion or check run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every rewrite step")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(collectionCmd)
	rootCmd.AddCommand(environmentCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(rulesCmd)
}
