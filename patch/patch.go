package patch

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/ttpr0/stopfix/attr"
	"github.com/ttpr0/stopfix/osmdoc"
	"github.com/ttpr0/stopfix/resolve"
	"golang.org/x/exp/slog"
)

var ErrAlreadyTagged = errors.New("node already carries a stop or direction tag")

type Summary struct {
	AllWay     int `json:"all-way"`
	Minor      int `json:"minor"`
	Yield      int `json:"yield"`
	Unresolved int `json:"unresolved"`
}

func (self Summary) Resolved() int {
	return self.AllWay + self.Minor + self.Yield
}

func (self Summary) String() string {
	return fmt.Sprintf("resolved %d (all-way %d, minor %d, yield %d), left %d for manual review",
		self.Resolved(), self.AllWay, self.Minor, self.Yield, self.Unresolved)
}

// Summarize counts the outcomes of a result without editing anything.
func Summarize(result *resolve.Result) Summary {
	summary := Summary{Unresolved: len(result.Unresolved)}
	for _, r := range result.Resolved {
		summary._Count(r)
	}
	return summary
}

func (self *Summary) _Count(r resolve.Resolved) {
	switch {
	case r.Subtype == attr.ALL_WAY:
		self.AllWay += 1
	case r.Sign == attr.YIELD:
		self.Yield += 1
	default:
		self.Minor += 1
	}
}

// Apply writes the stop and direction tags of every resolved node and marks it changed. Nothing
// else in the document is touched. The result must have been computed from doc: a node that is
// missing or already tagged aborts with an error before any edit is made.
func Apply(doc *osmdoc.Document, result *resolve.Result) (Summary, error) {
	for _, r := range result.Resolved {
		node, ok := doc.GetNode(r.Node)
		if !ok {
			return Summary{}, errors.Errorf("resolved node %d not in document", r.Node)
		}
		if node.Tags.HasTag(attr.KEY_STOP) || node.Tags.HasTag(attr.KEY_DIRECTION) {
			return Summary{}, errors.Wrapf(ErrAlreadyTagged, "node %d", r.Node)
		}
		if r.Subtype == attr.NO_SUBTYPE && r.Direction == attr.NO_DIRECTION {
			return Summary{}, errors.Errorf("resolved node %d carries no tag value", r.Node)
		}
	}

	summary := Summary{Unresolved: len(result.Unresolved)}
	for _, r := range result.Resolved {
		if r.Subtype != attr.NO_SUBTYPE {
			if err := doc.SetTag(r.Node, attr.KEY_STOP, r.Subtype.String()); err != nil {
				return summary, err
			}
		}
		if r.Direction != attr.NO_DIRECTION {
			if err := doc.SetTag(r.Node, attr.KEY_DIRECTION, r.Direction.String()); err != nil {
				return summary, err
			}
		}
		summary._Count(r)
		slog.Info(fmt.Sprintf("tagged %v", r))
	}
	return summary, nil
}
