package cmd

import (
	"fmt"
	"io"

	"github.com/gnolang/pmconv/collection"
	"github.com/gnolang/pmconv/lint"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var envFile string

var collectionCmd = &cobra.Command{
	Use:   "collection <source> <dest>",
	Short: "Convert a single collection",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := lint.New(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		return convertCollection(cmd.OutOrStdout(), logger, engine, args[0], args[1], envFile, engine.Config().Strict)
	},
}

func init() {
	collectionCmd.Flags().StringVarP(&envFile, "env", "e", "", "Environment whose enabled values become the suite's defaults")
}

func convertCollection(w io.Writer, logger *zap.Logger, engine lint.Engine, src, dest, envPath string, strict bool) error {
	var defaults []collection.KeyValue
	if envPath != "" {
		env, err := collection.LoadEnvironment(envPath)
		if err != nil {
			return err
		}
		defaults = env.Enabled()
	}

	issues, err := engine.Convert(src, dest, defaults...)
	if err != nil {
		return fmt.Errorf("converting %s: %w", src, err)
	}

	if err := printIssues(w, logger, issues, false, ""); err != nil {
		return err
	}
	if lint.Fatal(issues, strict) {
		return errIssuesFound
	}
	return nil
}
