package osmdoc

import (
	"encoding/xml"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	. "github.com/ttpr0/stopfix/util"
)

var ErrReadOnly = errors.New("document has no xml source and cannot be written")

//*******************************************
// document structs
//*******************************************

// Meta is the revision payload of an element (id, version, changeset, user, timestamp and anything
// else found on the element). It is threaded through unchanged.
type Meta struct {
	attrs []xml.Attr
}

func (self Meta) get(name string) (string, bool) {
	for _, a := range self.attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// with returns a copy of the payload with the attribute set, appended if not present.
func (self Meta) with(name, value string) Meta {
	attrs := make([]xml.Attr, 0, len(self.attrs)+1)
	found := false
	for _, a := range self.attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			a.Value = value
			found = true
		}
		attrs = append(attrs, a)
	}
	if !found {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	}
	return Meta{attrs: attrs}
}

type Node struct {
	ID      osm.NodeID
	Lat     float64
	Lon     float64
	Tags    osm.Tags
	Meta    Meta
	Deleted bool
	Changed bool
	span    _Span
}

type Way struct {
	ID    osm.WayID
	Nodes []osm.NodeID
	Tags  osm.Tags
	Meta  Meta
}

// byte range of an element inside the source document
type _Span struct {
	Start       int64
	TagEnd      int64
	End         int64
	Indent      string
	ChildIndent string
}

//*******************************************
// document
//*******************************************

// Document owns every node and way of one map-data extract. It is loaded once, edited only
// through SetTag and written once.
type Document struct {
	nodes      List[Node]
	ways       List[Way]
	node_index Dict[osm.NodeID, int]
	way_index  Dict[osm.WayID, int]

	source []byte
	style  _Style
}

func New() *Document {
	return &Document{
		nodes:      NewList[Node](100),
		ways:       NewList[Way](100),
		node_index: NewDict[osm.NodeID, int](100),
		way_index:  NewDict[osm.WayID, int](100),
		style:      DEFAULT_STYLE,
	}
}

// AddNode appends a node; a node with an already known id is rejected.
func (self *Document) AddNode(node Node) error {
	if self.node_index.ContainsKey(node.ID) {
		return errors.Errorf("duplicate node %d", node.ID)
	}
	self.node_index.Set(node.ID, self.nodes.Length())
	self.nodes.Add(node)
	return nil
}

// AddWay appends a way; a way with an already known id is rejected.
func (self *Document) AddWay(way Way) error {
	if self.way_index.ContainsKey(way.ID) {
		return errors.Errorf("duplicate way %d", way.ID)
	}
	self.way_index.Set(way.ID, self.ways.Length())
	self.ways.Add(way)
	return nil
}

func (self *Document) NodeCount() int {
	return self.nodes.Length()
}

func (self *Document) WayCount() int {
	return self.ways.Length()
}

// Nodes are returned in document order.
func (self *Document) NodeAt(index int) *Node {
	return &self.nodes[index]
}

// Ways are returned in document order.
func (self *Document) WayAt(index int) *Way {
	return &self.ways[index]
}

func (self *Document) GetNode(id osm.NodeID) (*Node, bool) {
	index, ok := self.node_index[id]
	if !ok {
		return nil, false
	}
	return &self.nodes[index], true
}

func (self *Document) HasNode(id osm.NodeID) bool {
	return self.node_index.ContainsKey(id)
}

// SetTag adds or replaces a tag on a node and marks the node as changed. Setting a tag to the
// value it already has is a no-op.
func (self *Document) SetTag(id osm.NodeID, key, value string) error {
	node, ok := self.GetNode(id)
	if !ok {
		return errors.Errorf("node %d not found", id)
	}
	for i, tag := range node.Tags {
		if tag.Key != key {
			continue
		}
		if tag.Value == value {
			return nil
		}
		node.Tags[i].Value = value
		node.Changed = true
		return nil
	}
	node.Tags = append(node.Tags, osm.Tag{Key: key, Value: value})
	node.Changed = true
	return nil
}

// ChangedNodes returns the ids of all nodes edited since loading, in document order.
func (self *Document) ChangedNodes() []osm.NodeID {
	ids := NewList[osm.NodeID](10)
	for i := range self.nodes {
		if self.nodes[i].Changed {
			ids.Add(self.nodes[i].ID)
		}
	}
	return ids
}

// Writable reports whether the document was loaded from xml and can be written back.
func (self *Document) Writable() bool {
	return self.source != nil
}
