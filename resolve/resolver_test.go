package resolve

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ttpr0/stopfix/attr"
	"github.com/ttpr0/stopfix/graph"
	"github.com/ttpr0/stopfix/osmdoc"
	"github.com/ttpr0/stopfix/parser"
)

//*******************************************
// fixtures
//*******************************************

func _Tags(tags []string) string {
	var b strings.Builder
	for _, tag := range tags {
		kv := strings.SplitN(tag, "=", 2)
		fmt.Fprintf(&b, `<tag k="%s" v="%s"/>`, kv[0], kv[1])
	}
	return b.String()
}

// node on a straight east-west line, roughly 11 m apart
func _N(id int, tags ...string) string {
	return fmt.Sprintf(`<node id="%d" lat="48.0" lon="%.4f">%s</node>`+"\n", id, 11.0+float64(id)*0.00015, _Tags(tags))
}

func _W(id int, refs []int, tags ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<way id="%d">`, id)
	for _, ref := range refs {
		fmt.Fprintf(&b, `<nd ref="%d"/>`, ref)
	}
	b.WriteString(_Tags(tags))
	b.WriteString("</way>\n")
	return b.String()
}

func _Doc(elems ...string) string {
	return "<osm version=\"0.6\">\n" + strings.Join(elems, "") + "</osm>\n"
}

func _Resolve(t *testing.T, src string, options Options) *Result {
	doc, err := osmdoc.ParseXML([]byte(src))
	require.NoError(t, err)
	decoder := parser.NewDrivingDecoder(nil)
	topology, err := graph.BuildTopology(doc, decoder)
	require.NoError(t, err)
	return Resolve(doc, topology, decoder, options)
}

func _Outcome(t *testing.T, result *Result, id osm.NodeID) Outcome {
	for _, r := range result.Resolved {
		if r.Node == id {
			return r
		}
	}
	for _, u := range result.Unresolved {
		if u.Node == id {
			return u
		}
	}
	t.Fatalf("node %d is not a candidate", id)
	return nil
}

//*******************************************
// scenarios
//*******************************************

func TestJunctionAhead(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3), _N(4), _N(5),
		_W(10, []int{1, 2, 3, 4}, "highway=residential"),
		_W(11, []int{3, 5}, "highway=primary"),
	)
	result := _Resolve(t, src, DefaultOptions())

	want := Resolved{Node: 2, Sign: attr.STOP, Subtype: attr.MINOR, Direction: attr.FORWARD, Junction: 3}
	if diff := cmp.Diff(Outcome(want), _Outcome(t, result, 2)); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, result.Candidates)
	assert.Empty(t, result.Unresolved)
}

func TestJunctionBehind(t *testing.T) {
	src := _Doc(
		_N(1), _N(2), _N(3), _N(4, "highway=give_way"), _N(5), _N(6),
		_W(10, []int{1, 2, 3, 4, 5}, "highway=tertiary"),
		_W(11, []int{6, 2}, "highway=secondary"),
		_W(12, []int{6, 5, 1}, "highway=footway"),
	)
	result := _Resolve(t, src, DefaultOptions())

	want := Resolved{Node: 4, Sign: attr.YIELD, Direction: attr.BACKWARD, Junction: 2}
	assert.Equal(t, Outcome(want), _Outcome(t, result, 4))
}

func TestTiedJunctions(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3), _N(4), _N(5),
		_W(10, []int{1, 2, 3}, "highway=residential"),
		_W(11, []int{4, 1}, "highway=residential"),
		_W(12, []int{3, 5}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	outcome, ok := _Outcome(t, result, 2).(Unresolved)
	require.True(t, ok)
	assert.Equal(t, AMBIGUOUS_JUNCTION, outcome.Reason)
	assert.Empty(t, result.Resolved)
}

func TestSignNotOnRoad(t *testing.T) {
	src := _Doc(
		_N(1), _N(2), _N(5, "highway=give_way"), _N(6, "highway=stop"), _N(7),
		_W(10, []int{1, 2}, "highway=residential"),
		_W(11, []int{6, 7}, "highway=cycleway"),
	)
	result := _Resolve(t, src, DefaultOptions())

	assert.Equal(t, Outcome(Unresolved{Node: 5, Sign: attr.YIELD, Reason: NOT_ON_ROAD}), _Outcome(t, result, 5))
	assert.Equal(t, Outcome(Unresolved{Node: 6, Sign: attr.STOP, Reason: NOT_ON_ROAD}), _Outcome(t, result, 6))
}

func TestTaggedSignsAreNotCandidates(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop", "direction=forward"), _N(3, "highway=stop", "stop=all"), _N(4), _N(5),
		_W(10, []int{1, 2, 3, 4}, "highway=residential"),
		_W(11, []int{4, 5}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	assert.Equal(t, 0, result.Candidates)
	assert.Empty(t, result.Resolved)
	assert.Empty(t, result.Unresolved)
}

func TestNoJunction(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3),
		_W(10, []int{1, 2, 3}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	outcome := _Outcome(t, result, 2).(Unresolved)
	assert.Equal(t, NO_JUNCTION, outcome.Reason)
}

func TestSignAtEndpoint(t *testing.T) {
	src := _Doc(
		_N(1, "highway=stop"), _N(2), _N(3), _N(4),
		_W(10, []int{1, 2, 3}, "highway=residential"),
		_W(11, []int{3, 4}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	outcome := _Outcome(t, result, 1).(Resolved)
	assert.Equal(t, attr.FORWARD, outcome.Direction)
	assert.Equal(t, attr.MINOR, outcome.Subtype)
}

func TestDegenerateWay(t *testing.T) {
	src := _Doc(
		_N(1, "highway=give_way"),
		_W(10, []int{1}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	assert.Equal(t, DEGENERATE_WAY, _Outcome(t, result, 1).(Unresolved).Reason)
}

func TestDeletedSignIsSkipped(t *testing.T) {
	src := "<osm>\n" + `<node id="2" action="delete" lat="1" lon="1"><tag k="highway" v="stop"/></node>` + "\n</osm>"
	result := _Resolve(t, src, DefaultOptions())
	assert.Equal(t, 0, result.Candidates)
}

//*******************************************
// multiple ways
//*******************************************

func TestAllWayStop(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3), _N(4), _N(5),
		_W(10, []int{1, 2, 3}, "highway=residential", "name=Elm Street"),
		_W(11, []int{4, 2, 5}, "highway=residential", "name=Oak Street"),
	)
	result := _Resolve(t, src, DefaultOptions())

	want := Resolved{Node: 2, Sign: attr.STOP, Subtype: attr.ALL_WAY}
	assert.Equal(t, Outcome(want), _Outcome(t, result, 2))
}

func TestYieldOnJunctionIsNotAllWay(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=give_way"), _N(3), _N(4), _N(5),
		_W(10, []int{1, 2, 3}, "highway=residential"),
		_W(11, []int{4, 2, 5}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	// node 2 is its own junction and the only one, so no direction can be derived
	assert.Equal(t, NO_JUNCTION, _Outcome(t, result, 2).(Unresolved).Reason)
}

func TestSplitRoadIsNotAllWay(t *testing.T) {
	src := _Doc(
		_N(1), _N(2), _N(3, "highway=stop"), _N(4), _N(5), _N(6),
		_W(10, []int{1, 2, 3}, "highway=residential", "name=Elm Street"),
		_W(11, []int{3, 4, 5}, "highway=residential", "name=Elm Street"),
		_W(12, []int{2, 6}, "highway=service"),
	)
	result := _Resolve(t, src, DefaultOptions())

	outcome, ok := _Outcome(t, result, 3).(Unresolved)
	require.True(t, ok, "split road must not become an all-way stop")
	assert.Equal(t, NO_JUNCTION, outcome.Reason)
}

func TestOnewayLeavingIsNotAllWay(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3), _N(4), _N(5),
		_W(10, []int{1, 2, 3}, "highway=residential"),
		_W(11, []int{2, 4}, "highway=residential", "oneway=yes"),
		_W(12, []int{3, 5}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	_, ok := _Outcome(t, result, 2).(Unresolved)
	assert.True(t, ok)
}

func TestWaysDisagree(t *testing.T) {
	src := _Doc(
		_N(1), _N(2), _N(3, "highway=give_way"), _N(4), _N(5), _N(6), _N(7),
		_W(10, []int{1, 2, 3}, "highway=residential", "name=A"),
		_W(11, []int{3, 4, 5}, "highway=residential", "name=B"),
		_W(12, []int{2, 6}, "highway=residential"),
		_W(13, []int{4, 7}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	outcome := _Outcome(t, result, 3).(Unresolved)
	assert.Equal(t, AMBIGUOUS_JUNCTION, outcome.Reason)
	assert.Contains(t, outcome.Detail, "way 10 gives backward")
}

func TestWaysAgree(t *testing.T) {
	src := _Doc(
		_N(1), _N(2), _N(3, "highway=give_way"), _N(4), _N(5), _N(6),
		_W(10, []int{1, 2, 3}, "highway=residential"),
		_W(11, []int{5, 4, 3}, "highway=residential"),
		_W(12, []int{2, 6}, "highway=residential"),
		_W(13, []int{6, 4}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())

	// both ways end at node 3 with the nearest junction behind it
	want := Resolved{Node: 3, Sign: attr.YIELD, Direction: attr.BACKWARD, Junction: 2}
	assert.Equal(t, Outcome(want), _Outcome(t, result, 3))
}

//*******************************************
// options
//*******************************************

func TestOnewayConflict(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3), _N(4), _N(5),
		_W(10, []int{1, 2, 3, 4}, "highway=residential", "oneway=-1"),
		_W(11, []int{3, 5}, "highway=residential"),
	)
	result := _Resolve(t, src, DefaultOptions())
	assert.Equal(t, ONEWAY_CONFLICT, _Outcome(t, result, 2).(Unresolved).Reason)

	options := DefaultOptions()
	options.CheckOneway = false
	result = _Resolve(t, src, options)
	assert.Equal(t, attr.FORWARD, _Outcome(t, result, 2).(Resolved).Direction)
}

func TestMaxJunctionDistance(t *testing.T) {
	src := _Doc(
		_N(1), _N(2, "highway=stop"), _N(3), _N(4), _N(5), _N(6),
		_W(10, []int{1, 2, 3, 4, 5}, "highway=residential"),
		_W(11, []int{5, 6}, "highway=residential"),
	)
	options := DefaultOptions()
	options.MaxJunctionDistance = 50
	result := _Resolve(t, src, options)
	// junction 5 is about 33 m away
	assert.Equal(t, attr.FORWARD, _Outcome(t, result, 2).(Resolved).Direction)

	options.MaxJunctionDistance = 20
	result = _Resolve(t, src, options)
	assert.Equal(t, JUNCTION_TOO_FAR, _Outcome(t, result, 2).(Unresolved).Reason)
}

func TestEmptyResultListsEncodeAsArrays(t *testing.T) {
	src := _Doc(_N(1), _N(2, "highway=crossing"), _N(3), _W(10, []int{1, 2, 3}, "highway=residential"))
	result := _Resolve(t, src, DefaultOptions())
	assert.Equal(t, 0, result.Candidates)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.Equal(t, `{"candidates":0,"resolved":[],"unresolved":[]}`, string(data))
}

//*******************************************
// properties
//*******************************************

func _RandomNetwork(rng *rand.Rand) string {
	elems := []string{}
	node_count := 30
	for i := 1; i <= node_count; i++ {
		if rng.Intn(3) == 0 {
			if rng.Intn(2) == 0 {
				elems = append(elems, _N(i, "highway=stop"))
			} else {
				elems = append(elems, _N(i, "highway=give_way"))
			}
		} else {
			elems = append(elems, _N(i))
		}
	}
	for w := 0; w < 8; w++ {
		l := 2 + rng.Intn(6)
		refs := make([]int, l)
		for i := range refs {
			refs[i] = 1 + rng.Intn(node_count)
		}
		class := "residential"
		if rng.Intn(4) == 0 {
			class = "footway"
		}
		elems = append(elems, _W(100+w, refs, "highway="+class))
	}
	return _Doc(elems...)
}

func TestJunctionProximityLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	decoder := parser.NewDrivingDecoder(nil)
	for round := 0; round < 50; round++ {
		src := _RandomNetwork(rng)
		doc, err := osmdoc.ParseXML([]byte(src))
		require.NoError(t, err)
		topology, err := graph.BuildTopology(doc, decoder)
		require.NoError(t, err)

		result := Resolve(doc, topology, decoder, DefaultOptions())
		again := Resolve(doc, topology, decoder, DefaultOptions())
		if diff := cmp.Diff(result, again); diff != "" {
			t.Fatalf("resolution is not deterministic:\n%s", diff)
		}

		for _, r := range result.Resolved {
			if r.Direction == attr.NO_DIRECTION {
				assert.Equal(t, attr.ALL_WAY, r.Subtype)
				continue
			}
			for _, member := range topology.WaysContaining(r.Node) {
				for _, pos := range member.Positions {
					ahead, behind := -1, -1
					for j := pos + 1; j < len(member.Way.Nodes) && ahead < 0; j++ {
						if member.Way.Nodes[j] != r.Node && topology.IsJunction(member.Way.Nodes[j]) {
							ahead = j - pos
						}
					}
					for j := pos - 1; j >= 0 && behind < 0; j-- {
						if member.Way.Nodes[j] != r.Node && topology.IsJunction(member.Way.Nodes[j]) {
							behind = pos - j
						}
					}
					require.False(t, ahead < 0 && behind < 0, "node %d resolved without junction", r.Node)
					require.NotEqual(t, ahead, behind, "node %d resolved on a tie", r.Node)
					if r.Direction == attr.FORWARD {
						assert.True(t, behind < 0 || (ahead >= 0 && ahead < behind), "node %d", r.Node)
					} else {
						assert.True(t, ahead < 0 || (behind >= 0 && behind < ahead), "node %d", r.Node)
					}
				}
			}
		}
	}
}
