package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List source files and their pipeline status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var previewCmd = &cobra.Command{
	Use:   "preview <file>",
	Short: "Print the latest report of a source file",
	Long:  `Print the final report of a source file, or its intermediate report when it has not been finalized yet.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

var importCmd = &cobra.Command{
	Use:   "import <paths...>",
	Short: "Copy export files into the input folder",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImport,
}

var removeCmd = &cobra.Command{
	Use:   "remove <file>",
	Short: "Delete a source file from the input folder",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	rootCmd.AddCommand(statusCmd, previewCmd, importCmd, removeCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	table, err := application.Files.Status()
	if err != nil {
		return err
	}
	if len(table) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No export files in %s\n", application.Paths.InputDir)
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tSIZE")
	for _, row := range table {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", row.Name, row.Status, row.Size)
	}
	return tw.Flush()
}

func runPreview(cmd *cobra.Command, args []string) error {
	content, err := application.Files.Preview(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), content)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	for _, src := range args {
		dst, err := application.Files.Import(src)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", dst)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	if err := application.Files.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}
