package resolve

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/ttpr0/stopfix/attr"
	"github.com/ttpr0/stopfix/graph"
	"github.com/ttpr0/stopfix/osmdoc"
	"github.com/ttpr0/stopfix/parser"
	"golang.org/x/exp/slog"
)

type Options struct {
	// Maximum great-circle distance in metres between a sign and the junction its direction is
	// derived from, 0 disables the check.
	MaxJunctionDistance float64
	// Reject directions that oppose the travel direction of a oneway road.
	CheckOneway bool
}

func DefaultOptions() Options {
	return Options{
		MaxJunctionDistance: 0,
		CheckOneway:         true,
	}
}

type Resolver struct {
	doc      *osmdoc.Document
	topology *graph.Topology
	decoder  parser.IOSMDecoder
	options  Options
}

func NewResolver(doc *osmdoc.Document, topology *graph.Topology, decoder parser.IOSMDecoder, options Options) *Resolver {
	return &Resolver{
		doc:      doc,
		topology: topology,
		decoder:  decoder,
		options:  options,
	}
}

// Resolve decides every candidate sign of the document, in document order. Deleted nodes are
// never candidates.
func Resolve(doc *osmdoc.Document, topology *graph.Topology, decoder parser.IOSMDecoder, options Options) *Result {
	resolver := NewResolver(doc, topology, decoder, options)
	result := &Result{Resolved: []Resolved{}, Unresolved: []Unresolved{}}
	for i := 0; i < doc.NodeCount(); i++ {
		node := doc.NodeAt(i)
		if node.Deleted || !parser.IsCandidate(decoder, node.Tags) {
			continue
		}
		outcome := resolver.ResolveNode(node)
		slog.Debug(fmt.Sprintf("%v", outcome))
		result.add(outcome)
	}
	return result
}

// ResolveNode decides the stop subtype and direction of a single sign node.
func (self *Resolver) ResolveNode(node *osmdoc.Node) Outcome {
	sign := self.decoder.DecodeSign(node.Tags)
	members := self.topology.WaysContaining(node.ID)
	if len(members) == 0 {
		return Unresolved{Node: node.ID, Sign: sign, Reason: NOT_ON_ROAD}
	}

	if sign == attr.STOP && self.topology.IsJunction(node.ID) && self._IsAllWay(node, members) {
		return Resolved{Node: node.ID, Sign: sign, Subtype: attr.ALL_WAY}
	}

	var direction attr.Direction
	var junction osm.NodeID
	var first_way osm.WayID
	for _, member := range members {
		for _, pos := range member.Positions {
			dir, jn, reason, detail := self._ScanWay(node, member.Way, pos)
			if reason != "" {
				return Unresolved{Node: node.ID, Sign: sign, Reason: reason, Detail: detail}
			}
			if direction == attr.NO_DIRECTION {
				direction = dir
				junction = jn
				first_way = member.Way.ID
				continue
			}
			if dir != direction {
				detail := fmt.Sprintf("way %d gives %s, way %d at position %d gives %s", first_way, direction, member.Way.ID, pos, dir)
				return Unresolved{Node: node.ID, Sign: sign, Reason: AMBIGUOUS_JUNCTION, Detail: detail}
			}
		}
	}

	subtype := attr.NO_SUBTYPE
	if sign == attr.STOP {
		subtype = attr.MINOR
	}
	return Resolved{Node: node.ID, Sign: sign, Subtype: subtype, Direction: direction, Junction: junction}
}

// A stop on a junction is all-way when every road way meeting there is a stop-controlled
// approach: two ways with the same name are one road split in two, and a oneway leaving the
// junction brings no traffic to stop.
func (self *Resolver) _IsAllWay(node *osmdoc.Node, members []graph.Membership) bool {
	if len(members) < 2 {
		return false
	}
	if len(members) == 2 {
		name_a := members[0].Way.Tags.Find(attr.KEY_NAME)
		name_b := members[1].Way.Tags.Find(attr.KEY_NAME)
		if name_a != "" && name_a == name_b {
			slog.Debug(fmt.Sprintf("node %d: ways %d and %d are the same road", node.ID, members[0].Way.ID, members[1].Way.ID))
			return false
		}
	}
	for _, member := range members {
		if !self._IsApproach(member) {
			slog.Debug(fmt.Sprintf("node %d: way %d only leaves the junction", node.ID, member.Way.ID))
			return false
		}
	}
	return true
}

// whether traffic can arrive at the node along the way
func (self *Resolver) _IsApproach(member graph.Membership) bool {
	last := len(member.Way.Nodes) - 1
	switch self.decoder.DecodeOneway(member.Way.Tags) {
	case attr.ONEWAY:
		for _, pos := range member.Positions {
			if pos > 0 {
				return true
			}
		}
		return false
	case attr.ONEWAY_AGAINST:
		for _, pos := range member.Positions {
			if pos < last {
				return true
			}
		}
		return false
	}
	return true
}

// _ScanWay searches the nearest junction on both sides of position pos. The sign faces traffic
// travelling toward the strictly nearer one.
func (self *Resolver) _ScanWay(node *osmdoc.Node, way *osmdoc.Way, pos int) (attr.Direction, osm.NodeID, Reason, string) {
	nodes := way.Nodes
	if len(nodes) < 2 {
		return attr.NO_DIRECTION, 0, DEGENERATE_WAY, fmt.Sprintf("way %d has fewer than 2 nodes", way.ID)
	}

	d_forward, j_forward := -1, osm.NodeID(0)
	for j := pos + 1; j < len(nodes); j++ {
		if nodes[j] != node.ID && self.topology.IsJunction(nodes[j]) {
			d_forward, j_forward = j-pos, nodes[j]
			break
		}
	}
	d_backward, j_backward := -1, osm.NodeID(0)
	for j := pos - 1; j >= 0; j-- {
		if nodes[j] != node.ID && self.topology.IsJunction(nodes[j]) {
			d_backward, j_backward = pos-j, nodes[j]
			break
		}
	}

	var direction attr.Direction
	var junction osm.NodeID
	switch {
	case d_forward < 0 && d_backward < 0:
		return attr.NO_DIRECTION, 0, NO_JUNCTION, fmt.Sprintf("way %d", way.ID)
	case d_forward == d_backward:
		detail := fmt.Sprintf("way %d: junctions %d and %d at distance %d", way.ID, j_backward, j_forward, d_forward)
		return attr.NO_DIRECTION, 0, AMBIGUOUS_JUNCTION, detail
	case d_backward < 0 || (d_forward >= 0 && d_forward < d_backward):
		direction, junction = attr.FORWARD, j_forward
	default:
		direction, junction = attr.BACKWARD, j_backward
	}

	if self.options.MaxJunctionDistance > 0 {
		jn, _ := self.doc.GetNode(junction)
		dist := geo.Distance(orb.Point{node.Lon, node.Lat}, orb.Point{jn.Lon, jn.Lat})
		if dist > self.options.MaxJunctionDistance {
			detail := fmt.Sprintf("way %d: junction %d is %.0f m away", way.ID, junction, dist)
			return attr.NO_DIRECTION, 0, JUNCTION_TOO_FAR, detail
		}
	}
	if self.options.CheckOneway {
		travel := self.decoder.DecodeOneway(way.Tags).Direction()
		if travel != attr.NO_DIRECTION && travel != direction {
			detail := fmt.Sprintf("way %d: junction %d lies %s, traffic travels %s", way.ID, junction, direction, travel)
			return attr.NO_DIRECTION, 0, ONEWAY_CONFLICT, detail
		}
	}
	return direction, junction, "", ""
}

// FormatUnresolved lists the unresolved nodes one per line.
func FormatUnresolved(result *Result) string {
	lines := make([]string, 0, len(result.Unresolved))
	for _, u := range result.Unresolved {
		lines = append(lines, u.String())
	}
	return strings.Join(lines, "\n")
}
