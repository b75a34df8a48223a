package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/gnolang/pmconv/config"
	"github.com/spf13/cobra"
)

var forceInit bool

// initCmd: pmconv init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initConfigurationFile(cfgFile, forceInit); err != nil {
			return fmt.Errorf("initializing config file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created: %s\n", cfgFile)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

func initConfigurationFile(configurationPath string, force bool) error {
	if configurationPath == "" {
		configurationPath = config.DefaultFile
	}
	if !force {
		if _, err := os.Stat(configurationPath); err == nil {
			return fmt.Errorf("%s: %w", configurationPath, os.ErrExist)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return config.Write(configurationPath, config.Default())
}
