/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/ssargent/gdstxt/pkg/tags"
)

func newTagsCmd() *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tag table",
		Long: `List the tag table used for conversions: tag id, name and data type.

With --yaml the table is written in the format accepted by --tag-table,
which is a convenient starting point for a custom table.

Examples:
  gdstxt tags
  gdstxt tags --sort name
  gdstxt tags --yaml > tags.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asYAML, _ := cmd.Flags().GetBool("yaml")
			sortBy, _ := cmd.Flags().GetString("sort")

			table := container.TagTable()
			if asYAML {
				return table.WriteYAML(cmd.OutOrStdout())
			}

			var entries []tags.Entry
			switch sortBy {
			case "tag":
				entries = table.Entries()
			case "name":
				entries = table.EntriesByName()
			default:
				return fmt.Errorf("--sort must be tag or name, got %q", sortBy)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tNAME\tTYPE")
			for _, e := range entries {
				fmt.Fprintf(tw, "0x%02X\t%s\t%s\n", uint8(e.Tag), e.Name, e.DataType)
			}
			return tw.Flush()
		},
	}

	tagsCmd.Flags().Bool("yaml", false, "Write the table as YAML")
	tagsCmd.Flags().String("sort", "tag", "Order rows by tag or name")
	return tagsCmd
}
