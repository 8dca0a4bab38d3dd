package attr

import (
	"encoding/json"

	"github.com/pkg/errors"
)

//*******************************************
// enums
//*******************************************

type RoadType int8

const (
	MOTORWAY       RoadType = 1
	MOTORWAY_LINK  RoadType = 2
	TRUNK          RoadType = 3
	TRUNK_LINK     RoadType = 4
	PRIMARY        RoadType = 5
	PRIMARY_LINK   RoadType = 6
	SECONDARY      RoadType = 7
	SECONDARY_LINK RoadType = 8
	TERTIARY       RoadType = 9
	TERTIARY_LINK  RoadType = 10
	RESIDENTIAL    RoadType = 11
	LIVING_STREET  RoadType = 12
	UNCLASSIFIED   RoadType = 13
	ROAD           RoadType = 14
	TRACK          RoadType = 15
	SERVICE        RoadType = 16
)

func (self RoadType) String() string {
	switch self {
	case MOTORWAY:
		return "motorway"
	case MOTORWAY_LINK:
		return "motorway_link"
	case TRUNK:
		return "trunk"
	case TRUNK_LINK:
		return "trunk_link"
	case PRIMARY:
		return "primary"
	case PRIMARY_LINK:
		return "primary_link"
	case SECONDARY:
		return "secondary"
	case SECONDARY_LINK:
		return "secondary_link"
	case TERTIARY:
		return "tertiary"
	case TERTIARY_LINK:
		return "tertiary_link"
	case RESIDENTIAL:
		return "residential"
	case LIVING_STREET:
		return "living_street"
	case UNCLASSIFIED:
		return "unclassified"
	case ROAD:
		return "road"
	case TRACK:
		return "track"
	case SERVICE:
		return "service"
	}
	return ""
}

func RoadTypeFromString(typ string) RoadType {
	switch typ {
	case "motorway":
		return MOTORWAY
	case "motorway_link":
		return MOTORWAY_LINK
	case "trunk":
		return TRUNK
	case "trunk_link":
		return TRUNK_LINK
	case "primary":
		return PRIMARY
	case "primary_link":
		return PRIMARY_LINK
	case "secondary":
		return SECONDARY
	case "secondary_link":
		return SECONDARY_LINK
	case "tertiary":
		return TERTIARY
	case "tertiary_link":
		return TERTIARY_LINK
	case "residential":
		return RESIDENTIAL
	case "living_street":
		return LIVING_STREET
	case "unclassified":
		return UNCLASSIFIED
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "service":
		return SERVICE
	}
	return 0
}

func (self RoadType) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self *RoadType) UnmarshalJSON(data []byte) error {
	var typ string
	if err := json.Unmarshal(data, &typ); err != nil {
		return err
	}
	road_typ := RoadTypeFromString(typ)
	if road_typ == 0 {
		return errors.New("invalid road type")
	}
	*self = road_typ
	return nil
}

// Kind of traffic sign a node carries in its highway tag.
type SignType int8

const (
	NO_SIGN SignType = 0
	STOP    SignType = 1
	YIELD   SignType = 2
)

func (self SignType) String() string {
	switch self {
	case STOP:
		return "stop"
	case YIELD:
		return "yield"
	}
	return "none"
}

func SignTypeFromTag(value string) SignType {
	switch value {
	case "stop":
		return STOP
	case "give_way":
		return YIELD
	}
	return NO_SIGN
}

func (self SignType) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}

// Stop subtype, written to the stop tag.
type Subtype int8

const (
	NO_SUBTYPE Subtype = 0
	ALL_WAY    Subtype = 1
	MINOR      Subtype = 2
)

func (self Subtype) String() string {
	switch self {
	case ALL_WAY:
		return "all"
	case MINOR:
		return "minor"
	}
	return ""
}

func SubtypeFromString(value string) (Subtype, error) {
	switch value {
	case "all":
		return ALL_WAY, nil
	case "minor":
		return MINOR, nil
	case "":
		return NO_SUBTYPE, nil
	}
	return NO_SUBTYPE, errors.New("invalid stop subtype: " + value)
}

func (self Subtype) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self *Subtype) UnmarshalJSON(data []byte) error {
	var typ string
	if err := json.Unmarshal(data, &typ); err != nil {
		return err
	}
	sub, err := SubtypeFromString(typ)
	*self = sub
	return err
}

// Direction a driver travels along a way when facing the sign.
type Direction int8

const (
	NO_DIRECTION Direction = 0
	FORWARD      Direction = 1
	BACKWARD     Direction = 2
)

func (self Direction) String() string {
	switch self {
	case FORWARD:
		return "forward"
	case BACKWARD:
		return "backward"
	}
	return ""
}

func DirectionFromString(value string) (Direction, error) {
	switch value {
	case "forward":
		return FORWARD, nil
	case "backward":
		return BACKWARD, nil
	case "":
		return NO_DIRECTION, nil
	}
	return NO_DIRECTION, errors.New("invalid direction: " + value)
}

func (self Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(self.String())
}
func (self *Direction) UnmarshalJSON(data []byte) error {
	var typ string
	if err := json.Unmarshal(data, &typ); err != nil {
		return err
	}
	dir, err := DirectionFromString(typ)
	*self = dir
	return err
}

// Allowed travel direction of a way, derived from its oneway tag.
type Oneway int8

const (
	BOTH_WAYS      Oneway = 0
	ONEWAY         Oneway = 1
	ONEWAY_AGAINST Oneway = 2
)

func OnewayFromTag(value string) Oneway {
	switch value {
	case "yes", "true", "1":
		return ONEWAY
	case "-1", "reverse":
		return ONEWAY_AGAINST
	}
	return BOTH_WAYS
}

// Returns the only direction traffic may travel along the way, NO_DIRECTION if both are allowed.
func (self Oneway) Direction() Direction {
	switch self {
	case ONEWAY:
		return FORWARD
	case ONEWAY_AGAINST:
		return BACKWARD
	}
	return NO_DIRECTION
}
