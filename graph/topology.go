package graph

import (
	"fmt"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"github.com/ttpr0/stopfix/osmdoc"
	"github.com/ttpr0/stopfix/parser"
	. "github.com/ttpr0/stopfix/util"
	"golang.org/x/exp/slog"
)

var ErrDanglingReference = errors.New("way references a node missing from the document")

// StructuralError reports an input document that cannot be processed at all.
type StructuralError struct {
	Way  osm.WayID
	Node osm.NodeID
	Err  error
}

func (self *StructuralError) Error() string {
	return fmt.Sprintf("structural error: way %d references node %d: %v", self.Way, self.Node, self.Err)
}

func (self *StructuralError) Unwrap() error {
	return self.Err
}

func (self *StructuralError) Cause() error {
	return self.Err
}

//*******************************************
// topology
//*******************************************

// Membership of a node in one road way. A node appears more than once in closed ways.
type Membership struct {
	Way       *osmdoc.Way
	Positions []int
}

// Topology is the read-only road network of a document. It is built once and never updated.
type Topology struct {
	members   Dict[osm.NodeID, List[Membership]]
	road_ways int
}

// BuildTopology makes a single pass over all ways. Every node reference must resolve, otherwise
// a *StructuralError is returned. Only ways accepted by decoder.IsValidHighway are indexed.
func BuildTopology(doc *osmdoc.Document, decoder parser.IOSMDecoder) (*Topology, error) {
	topology := &Topology{
		members: NewDict[osm.NodeID, List[Membership]](doc.NodeCount() / 4),
	}
	for i := 0; i < doc.WayCount(); i++ {
		way := doc.WayAt(i)
		for _, ref := range way.Nodes {
			if !doc.HasNode(ref) {
				return nil, &StructuralError{Way: way.ID, Node: ref, Err: ErrDanglingReference}
			}
		}
		if !decoder.IsValidHighway(way.Tags) {
			continue
		}
		topology.road_ways += 1
		for pos, ref := range way.Nodes {
			members := topology.members[ref]
			l := members.Length()
			if l > 0 && members[l-1].Way == way {
				members[l-1].Positions = append(members[l-1].Positions, pos)
			} else {
				members.Add(Membership{Way: way, Positions: []int{pos}})
			}
			topology.members[ref] = members
		}
	}
	slog.Debug("built topology", "road-ways", topology.road_ways, "junctions", topology.JunctionCount())
	return topology, nil
}

// WaysContaining returns the road ways the node belongs to, in document order.
func (self *Topology) WaysContaining(id osm.NodeID) []Membership {
	return self.members[id]
}

// IsJunction reports whether at least two distinct road ways share the node.
func (self *Topology) IsJunction(id osm.NodeID) bool {
	return self.members[id].Length() >= 2
}

func (self *Topology) RoadWayCount() int {
	return self.road_ways
}

func (self *Topology) JunctionCount() int {
	count := 0
	for _, members := range self.members {
		if members.Length() >= 2 {
			count += 1
		}
	}
	return count
}
