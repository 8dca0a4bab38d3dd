package osmdoc

import (
	"context"
	"encoding/xml"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

func LoadPBFFile(ctx context.Context, filename string) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open pbf file")
	}
	defer file.Close()
	return LoadPBF(ctx, file)
}

// LoadPBF reads nodes and ways of a pbf extract. The resulting document keeps no source and is
// read-only: WriteTo returns ErrReadOnly.
func LoadPBF(ctx context.Context, r io.Reader) (*Document, error) {
	doc := New()

	scanner := osmpbf.New(ctx, r, runtime.GOMAXPROCS(-1))
	defer scanner.Close()
	scanner.SkipRelations = true
	c := 0
	for scanner.Scan() {
		switch object := scanner.Object().(type) {
		case *osm.Node:
			if err := doc.AddNode(NodeFromOSM(object)); err != nil {
				return nil, errors.Wrap(ErrMalformed, err.Error())
			}
		case *osm.Way:
			if err := doc.AddWay(WayFromOSM(object)); err != nil {
				return nil, errors.Wrap(ErrMalformed, err.Error())
			}
		default:
			continue
		}
		c += 1
		if c%100000 == 0 {
			slog.Debug("reading pbf", "objects", c)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan pbf")
	}
	slog.Debug("loaded pbf document", "nodes", doc.NodeCount(), "ways", doc.WayCount())
	return doc, nil
}

// NodeFromOSM converts a decoded osm node, its revision fields become the opaque payload.
// Extracts only carry current data, so visibility is not taken over.
func NodeFromOSM(object *osm.Node) Node {
	return Node{
		ID:   object.ID,
		Lat:  object.Lat,
		Lon:  object.Lon,
		Tags: append(osm.Tags(nil), object.Tags...),
		Meta: _MetaFromOSM(int64(object.ID), object.Version, int64(object.ChangesetID), object.User, int64(object.UserID), object.Timestamp),
	}
}

func WayFromOSM(object *osm.Way) Way {
	return Way{
		ID:    object.ID,
		Nodes: object.Nodes.NodeIDs(),
		Tags:  append(osm.Tags(nil), object.Tags...),
		Meta:  _MetaFromOSM(int64(object.ID), object.Version, int64(object.ChangesetID), object.User, int64(object.UserID), object.Timestamp),
	}
}

func _MetaFromOSM(id int64, version int, changeset int64, user string, uid int64, timestamp time.Time) Meta {
	attrs := []xml.Attr{
		{Name: xml.Name{Local: "id"}, Value: strconv.FormatInt(id, 10)},
	}
	if version != 0 {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "version"}, Value: strconv.Itoa(version)})
	}
	if changeset != 0 {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "changeset"}, Value: strconv.FormatInt(changeset, 10)})
	}
	if !timestamp.IsZero() {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "timestamp"}, Value: timestamp.UTC().Format(time.RFC3339)})
	}
	if user != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "user"}, Value: user})
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "uid"}, Value: strconv.FormatInt(uid, 10)})
	}
	return Meta{attrs: attrs}
}
