package parser

import (
	"github.com/ttpr0/stopfix/attr"
)

//*******************************************
// utility methods
//*******************************************

// motorways are oneway unless tagged otherwise
func _DecodeOneway(oneway string, str_type attr.RoadType) attr.Oneway {
	if oneway == "no" || oneway == "false" || oneway == "0" {
		return attr.BOTH_WAYS
	}
	typ := attr.OnewayFromTag(oneway)
	if typ != attr.BOTH_WAYS {
		return typ
	}
	if str_type == attr.MOTORWAY || str_type == attr.MOTORWAY_LINK {
		return attr.ONEWAY
	}
	return attr.BOTH_WAYS
}
