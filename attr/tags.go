package attr

//*******************************************
// tag keys
//*******************************************

const (
	KEY_HIGHWAY   = "highway"
	KEY_STOP      = "stop"
	KEY_DIRECTION = "direction"
	KEY_ONEWAY    = "oneway"
	KEY_NAME      = "name"
)

// Road classes a stop or yield sign may sit on.
var DEFAULT_ROAD_TYPES = []RoadType{
	MOTORWAY, MOTORWAY_LINK, TRUNK, TRUNK_LINK, PRIMARY, PRIMARY_LINK,
	SECONDARY, SECONDARY_LINK, TERTIARY, TERTIARY_LINK, UNCLASSIFIED,
	RESIDENTIAL, LIVING_STREET, SERVICE,
}
