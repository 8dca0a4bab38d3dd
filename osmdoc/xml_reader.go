package osmdoc

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// ErrMalformed is the cause of every error returned for an unreadable document.
var ErrMalformed = errors.New("malformed osm document")

func LoadXMLFile(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "read osm file")
	}
	return ParseXML(data)
}

// ParseXML reads an OSM XML document. The source bytes are kept so that WriteTo can reproduce
// everything except the edited nodes verbatim.
func ParseXML(data []byte) (*Document, error) {
	doc := New()
	doc.source = data
	style_found := false

	decoder := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	var curr_node *Node
	var curr_way *Way
	for {
		start := decoder.InputOffset()
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(ErrMalformed, "offset %d: %v", start, err)
		}
		switch elem := token.(type) {
		case xml.StartElement:
			depth += 1
			if depth == 1 {
				if elem.Name.Local != "osm" {
					return nil, errors.Wrapf(ErrMalformed, "unexpected root element <%s>", elem.Name.Local)
				}
				continue
			}
			if !style_found && depth >= 2 {
				doc.style = _DetectStyle(data, start)
				style_found = true
			}
			switch {
			case depth == 2 && elem.Name.Local == "node":
				node, err := _DecodeNode(elem)
				if err != nil {
					return nil, err
				}
				node.span.Start = start
				node.span.TagEnd = decoder.InputOffset()
				node.span.Indent = _LineIndent(data, start)
				curr_node = &node
			case depth == 2 && elem.Name.Local == "way":
				way, err := _DecodeWay(elem)
				if err != nil {
					return nil, err
				}
				curr_way = &way
			case depth == 3 && elem.Name.Local == "tag":
				tag := osm.Tag{Key: _Attr(elem, "k"), Value: _Attr(elem, "v")}
				if curr_node != nil {
					if len(curr_node.Tags) == 0 {
						curr_node.span.ChildIndent = _LineIndent(data, start)
					}
					curr_node.Tags = append(curr_node.Tags, tag)
				} else if curr_way != nil {
					curr_way.Tags = append(curr_way.Tags, tag)
				}
			case depth == 3 && elem.Name.Local == "nd" && curr_way != nil:
				ref, err := strconv.ParseInt(_Attr(elem, "ref"), 10, 64)
				if err != nil {
					return nil, errors.Wrapf(ErrMalformed, "way %d: invalid node reference %q", curr_way.ID, _Attr(elem, "ref"))
				}
				curr_way.Nodes = append(curr_way.Nodes, osm.NodeID(ref))
			}
		case xml.EndElement:
			depth -= 1
			if depth != 1 {
				continue
			}
			if curr_node != nil {
				curr_node.span.End = decoder.InputOffset()
				if curr_node.span.ChildIndent == "" {
					curr_node.span.ChildIndent = curr_node.span.Indent + doc.style.Step
				}
				if err := doc.AddNode(*curr_node); err != nil {
					return nil, errors.Wrap(ErrMalformed, err.Error())
				}
				curr_node = nil
			}
			if curr_way != nil {
				if err := doc.AddWay(*curr_way); err != nil {
					return nil, errors.Wrap(ErrMalformed, err.Error())
				}
				curr_way = nil
			}
		}
	}
	if depth != 0 {
		return nil, errors.Wrap(ErrMalformed, "unexpected end of document")
	}
	slog.Debug("loaded osm document", "nodes", doc.NodeCount(), "ways", doc.WayCount())
	return doc, nil
}

func _DecodeNode(elem xml.StartElement) (Node, error) {
	node := Node{Meta: Meta{attrs: elem.Attr}}
	id, err := strconv.ParseInt(_Attr(elem, "id"), 10, 64)
	if err != nil {
		return node, errors.Wrapf(ErrMalformed, "node with invalid id %q", _Attr(elem, "id"))
	}
	node.ID = osm.NodeID(id)
	if v, ok := node.Meta.get("lat"); ok {
		node.Lat, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return node, errors.Wrapf(ErrMalformed, "node %d: invalid lat %q", id, v)
		}
	}
	if v, ok := node.Meta.get("lon"); ok {
		node.Lon, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return node, errors.Wrapf(ErrMalformed, "node %d: invalid lon %q", id, v)
		}
	}
	action, _ := node.Meta.get("action")
	visible, _ := node.Meta.get("visible")
	node.Deleted = action == "delete" || visible == "false"
	return node, nil
}

func _DecodeWay(elem xml.StartElement) (Way, error) {
	way := Way{Meta: Meta{attrs: elem.Attr}}
	id, err := strconv.ParseInt(_Attr(elem, "id"), 10, 64)
	if err != nil {
		return way, errors.Wrapf(ErrMalformed, "way with invalid id %q", _Attr(elem, "id"))
	}
	way.ID = osm.WayID(id)
	return way, nil
}

func _Attr(elem xml.StartElement, name string) string {
	for _, a := range elem.Attr {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// whitespace between the start of the line and offset, empty if anything else precedes it
func _LineIndent(data []byte, offset int64) string {
	i := offset
	for i > 0 {
		c := data[i-1]
		if c == '\n' {
			break
		}
		if c != ' ' && c != '\t' {
			return ""
		}
		i -= 1
	}
	return string(data[i:offset])
}
