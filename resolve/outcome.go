package resolve

import (
	"fmt"

	"github.com/paulmach/osm"
	"github.com/ttpr0/stopfix/attr"
)

//*******************************************
// outcome
//*******************************************

type Reason string

const (
	NOT_ON_ROAD        Reason = "not on a road-bearing way"
	AMBIGUOUS_JUNCTION Reason = "ambiguous junction"
	NO_JUNCTION        Reason = "no junction found"
	DEGENERATE_WAY     Reason = "degenerate way"
	JUNCTION_TOO_FAR   Reason = "junction too far"
	ONEWAY_CONFLICT    Reason = "direction conflicts with oneway"
)

// Outcome is either Resolved or Unresolved.
type Outcome interface {
	NodeID() osm.NodeID
	outcome()
}

// Resolved carries every tag value to write. Subtype is unset for yield signs, Direction is unset
// for all-way stops. Junction is the node the direction was derived from.
type Resolved struct {
	Node      osm.NodeID     `json:"node"`
	Sign      attr.SignType  `json:"sign"`
	Subtype   attr.Subtype   `json:"subtype,omitempty"`
	Direction attr.Direction `json:"direction,omitempty"`
	Junction  osm.NodeID     `json:"junction,omitempty"`
}

func (self Resolved) NodeID() osm.NodeID {
	return self.Node
}

func (self Resolved) outcome() {}

func (self Resolved) String() string {
	s := fmt.Sprintf("node %d (%s):", self.Node, self.Sign)
	if self.Subtype != attr.NO_SUBTYPE {
		s += " stop=" + self.Subtype.String()
	}
	if self.Direction != attr.NO_DIRECTION {
		s += " direction=" + self.Direction.String()
	}
	return s
}

// Unresolved nodes are left untouched and reported for manual review.
type Unresolved struct {
	Node   osm.NodeID    `json:"node"`
	Sign   attr.SignType `json:"sign"`
	Reason Reason        `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

func (self Unresolved) NodeID() osm.NodeID {
	return self.Node
}

func (self Unresolved) outcome() {}

func (self Unresolved) String() string {
	if self.Detail == "" {
		return fmt.Sprintf("node %d (%s): %s", self.Node, self.Sign, self.Reason)
	}
	return fmt.Sprintf("node %d (%s): %s (%s)", self.Node, self.Sign, self.Reason, self.Detail)
}

//*******************************************
// result
//*******************************************

type Result struct {
	Candidates int          `json:"candidates"`
	Resolved   []Resolved   `json:"resolved"`
	Unresolved []Unresolved `json:"unresolved"`
}

func (self *Result) add(outcome Outcome) {
	self.Candidates += 1
	switch o := outcome.(type) {
	case Resolved:
		self.Resolved = append(self.Resolved, o)
	case Unresolved:
		self.Unresolved = append(self.Unresolved, o)
	}
}
