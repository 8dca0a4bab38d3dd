package main

import (
	"context"
	"strings"

	"github.com/ttpr0/stopfix/graph"
	"github.com/ttpr0/stopfix/osmdoc"
	"github.com/ttpr0/stopfix/parser"
	"github.com/ttpr0/stopfix/patch"
	"github.com/ttpr0/stopfix/resolve"
	"golang.org/x/exp/slog"
)

// Run holds the outcome of one pass over a document.
type Run struct {
	Document *osmdoc.Document
	Topology *graph.Topology
	Result   *resolve.Result
	Summary  patch.Summary
}

// RunPipeline builds the topology, resolves every candidate sign and, if apply is set, writes the
// decisions into doc. A structural error aborts before any edit.
func RunPipeline(doc *osmdoc.Document, config Config, apply bool) (*Run, error) {
	decoder := parser.NewDrivingDecoder(config.RoadTypes())
	slog.Debug("road classes: " + strings.Join(decoder.RoadTypes(), ", "))
	topology, err := graph.BuildTopology(doc, decoder)
	if err != nil {
		return nil, err
	}
	slog.Info("built road topology", "road-ways", topology.RoadWayCount(), "junctions", topology.JunctionCount())

	result := resolve.Resolve(doc, topology, decoder, config.ResolveOptions())
	slog.Info("resolved signs", "candidates", result.Candidates)
	for _, u := range result.Unresolved {
		slog.Warn(u.String())
	}

	run := &Run{
		Document: doc,
		Topology: topology,
		Result:   result,
	}
	if !apply {
		run.Summary = patch.Summarize(result)
		return run, nil
	}
	run.Summary, err = patch.Apply(doc, result)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// LoadDocument picks the reader by file extension, pbf extracts are loaded read-only.
func LoadDocument(ctx context.Context, filename string) (*osmdoc.Document, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".pbf") {
		return osmdoc.LoadPBFFile(ctx, filename)
	}
	return osmdoc.LoadXMLFile(filename)
}
