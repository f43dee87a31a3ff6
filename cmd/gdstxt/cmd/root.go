/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ssargent/gdstxt/pkg/config"
	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/di"
)

var container *di.Container

// SetContainer injects the dependency container used by all commands
func SetContainer(c *di.Container) {
	container = c
}

// newRootCmd builds the command tree. Each call returns fresh flag state.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gdstxt",
		Short: "Convert GDSII stream files to and from text",
		Long: `gdstxt converts GDSII stream files into a line-oriented text form,
one record per line, and converts such text back into a byte-identical
stream file.

Files ending in .gz are decompressed on input and compressed on output.

Examples:
  gdstxt -g -i chip.gds -o chip.txt
  gdstxt -t -i chip.txt -o chip.gds.gz
  gdstxt -g -i chip.gds -o chip.txt --workers 4 --continue-on-error`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: configure,
		RunE:              runConvert,
	}

	flags := rootCmd.Flags()
	flags.BoolP("gds2txt", "g", false, "Convert a GDSII stream file to text")
	flags.BoolP("txt2gds", "t", false, "Convert text to a GDSII stream file")
	flags.StringP("input", "i", "", "Input file")
	flags.StringP("output", "o", "", "Output file")
	rootCmd.MarkFlagsMutuallyExclusive("gds2txt", "txt2gds")
	rootCmd.MarkFlagsOneRequired("gds2txt", "txt2gds")
	_ = rootCmd.MarkFlagRequired("input")
	_ = rootCmd.MarkFlagRequired("output")

	persistent := rootCmd.PersistentFlags()
	persistent.String("config", "", "Path to config file (default: OS-specific location)")
	persistent.String("tag-table", "", "YAML tag table replacing or extending the built-in one")
	persistent.String("log-level", "", "Log level: debug, info, warn or error")
	persistent.Int("workers", 0, "Goroutines used to transcode each batch of records")
	persistent.Bool("continue-on-error", false, "Skip records that fail to convert")

	rootCmd.AddCommand(newTagsCmd(), newServeCmd(), newInitCmd())
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// configure loads the config file, applies flag overrides and hands the
// result to the container
func configure(cmd *cobra.Command, args []string) error {
	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return container.Configure(cfg, cmd.ErrOrStderr())
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	cfg := config.DefaultConfig()
	switch {
	case configPath != "":
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case config.ConfigExists(config.GetDefaultConfigPath()):
		loaded, err := config.LoadConfig(config.GetDefaultConfigPath())
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flags.Changed("tag-table") {
		cfg.Conversion.TagTable, _ = flags.GetString("tag-table")
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("workers") {
		cfg.Conversion.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("continue-on-error") {
		cfg.Conversion.ContinueOnError, _ = flags.GetBool("continue-on-error")
	}
	return cfg, nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	toText, _ := cmd.Flags().GetBool("gds2txt")
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")

	dir := convert.TextToGDS
	if toText {
		dir = convert.GDSToText
	}

	res, err := convertFile(cmd.Context(), container.Converter(), dir, input, output)
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d records skipped\n", res.Skipped)
	}
	return nil
}
