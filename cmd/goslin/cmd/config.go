package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ChrisMcGann/goslin/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage goslin configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.config/goslin/config.yaml with the defaults",
	Long: `Write the default configuration to the user config file. An existing
file is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging the defaults, the user config, the
project goslin.yaml and --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	return config.NewLoader(logger).EnsureUserConfig()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
