package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ttpr0/stopfix/resolve"
)

var scanCmd = &cobra.Command{
	Use:   "scan <input.osm|input.osm.pbf>",
	Short: "Report what fix would do without writing anything",
	Long: `Resolves every untagged stop and yield sign of an extract and prints the summary and the
nodes left for manual review. Accepts osm xml and pbf extracts.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	config, err := ReadConfig(configFile)
	if err != nil {
		return err
	}
	doc, err := LoadDocument(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	run, err := RunPipeline(doc, config, false)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d candidate signs: %s\n", run.Result.Candidates, run.Summary)
	for _, r := range run.Result.Resolved {
		fmt.Fprintln(out, r.String())
	}
	if len(run.Result.Unresolved) > 0 {
		fmt.Fprintln(out, resolve.FormatUnresolved(run.Result))
	}
	if config.Report != "" {
		return WriteReport(run, config.Report)
	}
	return nil
}
