package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

var (
	fixReport string
	fixDiff   bool
	fixDryRun bool
)

var fixCmd = &cobra.Command{
	Use:   "fix <input.osm> <output.osm>",
	Short: "Tag stop and yield signs and write the patched extract",
	Args:  cobra.ExactArgs(2),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixReport, "report", "", "write unresolved nodes to a .csv or .json file")
	fixCmd.Flags().BoolVar(&fixDiff, "diff", false, "print a diff of every changed node")
	fixCmd.Flags().BoolVar(&fixDryRun, "dry-run", false, "resolve only, do not write the output file")
}

func runFix(cmd *cobra.Command, args []string) error {
	config, err := ReadConfig(configFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("report") {
		config.Report = fixReport
	}

	doc, err := LoadDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !doc.Writable() && !fixDryRun {
		return errors.Errorf("%s cannot be written back, use an osm xml extract or --dry-run", args[0])
	}

	run, err := RunPipeline(doc, config, !fixDryRun)
	if err != nil {
		return err
	}

	if fixDiff {
		fmt.Fprint(cmd.OutOrStdout(), ReviewDiff(doc))
	}
	if config.Report != "" {
		if err := WriteReport(run, config.Report); err != nil {
			return err
		}
		slog.Info("wrote report " + config.Report)
	}
	if !fixDryRun {
		if err := doc.SaveXMLFile(args[1]); err != nil {
			return err
		}
		slog.Info("wrote " + args[1])
	}
	slog.Info(run.Summary.String())
	return nil
}
