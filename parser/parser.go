package parser

import (
	"github.com/paulmach/osm"
	"github.com/ttpr0/stopfix/attr"
)

//*******************************************
// osm decoder
//*******************************************

type IOSMDecoder interface {
	// road-bearing ways
	IsValidHighway(tags osm.Tags) bool
	DecodeSign(tags osm.Tags) attr.SignType
	DecodeOneway(tags osm.Tags) attr.Oneway
}

// IsCandidate reports whether the tags describe a stop or yield sign still missing its stop
// subtype and direction.
func IsCandidate(decoder IOSMDecoder, tags osm.Tags) bool {
	if decoder.DecodeSign(tags) == attr.NO_SIGN {
		return false
	}
	if tags.HasTag(attr.KEY_STOP) || tags.HasTag(attr.KEY_DIRECTION) {
		return false
	}
	return true
}
