package cmd

import (
	"fmt"

	"github.com/gnolang/pmconv/lint"
	"github.com/spf13/cobra"
)

var environmentCmd = &cobra.Command{
	Use:   "environment <source> <dest>",
	Short: "Convert a single environment into a dotenv file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := lint.New(cfgFile, logger)
		if err != nil {
			return fmt.Errorf("initializing engine: %w", err)
		}
		if err := engine.ConvertEnvironment(args[0], args[1]); err != nil {
			return fmt.Errorf("converting %s: %w", args[0], err)
		}
		return nil
	},
}
