/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ssargent/gdstxt/pkg/config"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file.

The file is written to --config, or to the OS-specific default location.
An existing file is left alone unless --force is given.

Examples:
  gdstxt init
  gdstxt init --config ./gdstxt.yaml --generate-api-key --print-key`,
		Args: cobra.NoArgs,
		// An invalid existing config must not prevent rewriting it
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			force, _ := cmd.Flags().GetBool("force")
			generateKey, _ := cmd.Flags().GetBool("generate-api-key")
			printKey, _ := cmd.Flags().GetBool("print-key")

			if configPath == "" {
				configPath = config.GetDefaultConfigPath()
			}

			if config.ConfigExists(configPath) && !force {
				cmd.Printf("Configuration already exists at %s. Use --force to overwrite.\n", configPath)
				return nil
			}

			cfg, err := config.BootstrapConfig(configPath, dataDir, generateKey)
			if err != nil {
				return err
			}

			cmd.Printf("Configuration written to %s\n", configPath)
			if printKey && cfg.Server.APIKey != "" {
				cmd.Printf("API key: %s\n", cfg.Server.APIKey)
			}
			return nil
		},
	}

	initCmd.Flags().String("data-dir", "", "Result store directory to record in the config")
	initCmd.Flags().Bool("force", false, "Overwrite an existing config file")
	initCmd.Flags().Bool("generate-api-key", false, "Generate a random server API key")
	initCmd.Flags().Bool("print-key", false, "Print the generated API key")
	return initCmd
}
