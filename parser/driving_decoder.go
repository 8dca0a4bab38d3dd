package parser

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/paulmach/osm"
	"github.com/ttpr0/stopfix/attr"
	"golang.org/x/exp/slices"
)

type DrivingDecoder struct {
	road_types mapset.Set[string]
}

// NewDrivingDecoder accepts ways whose highway tag is one of road_types. An empty list selects
// attr.DEFAULT_ROAD_TYPES.
func NewDrivingDecoder(road_types []attr.RoadType) *DrivingDecoder {
	if len(road_types) == 0 {
		road_types = attr.DEFAULT_ROAD_TYPES
	}
	types := mapset.NewThreadUnsafeSet[string]()
	for _, typ := range road_types {
		types.Add(typ.String())
	}
	return &DrivingDecoder{road_types: types}
}

func (self *DrivingDecoder) IsValidHighway(tags osm.Tags) bool {
	value := tags.Find(attr.KEY_HIGHWAY)
	if value == "" {
		return false
	}
	return self.road_types.Contains(value)
}

func (self *DrivingDecoder) DecodeSign(tags osm.Tags) attr.SignType {
	return attr.SignTypeFromTag(tags.Find(attr.KEY_HIGHWAY))
}

func (self *DrivingDecoder) DecodeOneway(tags osm.Tags) attr.Oneway {
	return _DecodeOneway(tags.Find(attr.KEY_ONEWAY), attr.RoadTypeFromString(tags.Find(attr.KEY_HIGHWAY)))
}

// RoadTypes returns the accepted highway values, sorted.
func (self *DrivingDecoder) RoadTypes() []string {
	types := self.road_types.ToSlice()
	slices.Sort(types)
	return types
}
