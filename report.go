package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/ttpr0/stopfix/osmdoc"
	"github.com/ttpr0/stopfix/patch"
	"github.com/ttpr0/stopfix/resolve"
	. "github.com/ttpr0/stopfix/util"
)

//**********************************************************
// unresolved report
//**********************************************************

type ReportRow struct {
	Node   int64  `csv:"node"`
	Sign   string `csv:"sign"`
	Reason string `csv:"reason"`
	Detail string `csv:"detail"`
}

type JSONReport struct {
	Summary patch.Summary   `json:"summary"`
	Result  *resolve.Result `json:"result"`
}

func ReportRows(result *resolve.Result) []ReportRow {
	rows := NewList[ReportRow](len(result.Unresolved))
	for _, u := range result.Unresolved {
		rows.Add(ReportRow{
			Node:   int64(u.Node),
			Sign:   u.Sign.String(),
			Reason: string(u.Reason),
			Detail: u.Detail,
		})
	}
	return rows
}

// WriteReport writes the run as json when the file ends in .json, otherwise the unresolved nodes
// as csv.
func WriteReport(run *Run, file string) error {
	if strings.EqualFold(filepath.Ext(file), ".json") {
		return WriteJSONToFile(JSONReport{Summary: run.Summary, Result: run.Result}, file)
	}
	return WriteCSVToFile(ReportRows(run.Result), file, ',')
}

//**********************************************************
// review diff
//**********************************************************

// ReviewDiff shows, for every changed node, a line diff between its source and its output xml.
func ReviewDiff(doc *osmdoc.Document) string {
	dmp := diffmatchpatch.New()
	var b strings.Builder
	for _, id := range doc.ChangedNodes() {
		node, _ := doc.GetNode(id)
		source := doc.SourceXML(node)
		target := doc.RenderNode(node)

		a, c, lines := dmp.DiffLinesToChars(source+"\n", target+"\n")
		diffs := dmp.DiffMain(a, c, false)
		diffs = dmp.DiffCharsToLines(diffs, lines)

		fmt.Fprintf(&b, "@@ node %d @@\n", id)
		for _, diff := range diffs {
			prefix := "  "
			switch diff.Type {
			case diffmatchpatch.DiffDelete:
				prefix = "- "
			case diffmatchpatch.DiffInsert:
				prefix = "+ "
			}
			for _, line := range strings.SplitAfter(diff.Text, "\n") {
				if line == "" {
					continue
				}
				b.WriteString(prefix + line)
			}
		}
	}
	return b.String()
}
