package profiles

import (
	"testing"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/matryer/is"
)

func TestCountNetworkTalliesReferences(t *testing.T) {
	is := is.New(t)

	columns := map[string][]string{"rushes": {"bc"}}
	frames := map[string][]exhibit.Row{"rushes": {{"X"}, {"X"}, {"Y"}}}
	links := map[string]map[string]EntityType{"rushes": {"bc": "player"}}

	network := CountNetwork(columns, frames, links, nil, "Z", []EntityType{"player"})

	is.Equal(network["player"], []Tally{{ID: "X", Count: 2}, {ID: "Y", Count: 1}})
}

func TestCountNetworkNeverCountsSelf(t *testing.T) {
	is := is.New(t)

	columns := map[string][]string{"passes": {"gid", "qb", "rc"}}
	frames := map[string][]exhibit.Row{"passes": {
		{1.0, "brady", "gronk"},
		{1.0, "brady", "brady"},
		{2.0, "brady", nil},
		{2.0, "brady", "edelman"},
	}}
	links := map[string]map[string]EntityType{"passes": {"qb": "player", "rc": "player"}}

	network := CountNetwork(columns, frames, links, nil, "brady", []EntityType{"player"})

	for _, tally := range network["player"] {
		is.True(tally.ID != "brady") // own id must never be tallied
	}
	is.Equal(network["player"], []Tally{{ID: "gronk", Count: 1}, {ID: "edelman", Count: 1}})
}

func TestCountNetworkIncludesEveryConfiguredType(t *testing.T) {
	is := is.New(t)

	columns := map[string][]string{"rushes": {"bc"}}
	frames := map[string][]exhibit.Row{"rushes": {{"X"}}}
	links := map[string]map[string]EntityType{"rushes": {"bc": "player"}}

	network := CountNetwork(columns, frames, links, nil, "Z", []EntityType{"player", "team", "game"})

	is.Equal(len(network), 3)

	teams, ok := network["team"]
	is.True(ok)             // team should be present
	is.Equal(len(teams), 0) // without any tallies
}

func TestCountNetworkKeepsEncounterOrderForEqualCounts(t *testing.T) {
	is := is.New(t)

	columns := map[string][]string{
		"calls":  {"to", "from"},
		"visits": {"who"},
	}
	frames := map[string][]exhibit.Row{
		"calls":  {{"c", "b"}, {"a", "d"}, {"d", "a"}},
		"visits": {{"b"}, {"c"}},
	}
	links := map[string]map[string]EntityType{
		"visits": {"who": "person"},
		"calls":  {"to": "person", "from": "person"},
	}

	network := CountNetwork(columns, frames, links, []string{"calls", "visits"}, "self", []EntityType{"person"})

	// encounter order: c, b, a, d. Counts: c=2, b=2, a=2, d=2
	is.Equal(network["person"], []Tally{
		{ID: "c", Count: 2}, {ID: "b", Count: 2}, {ID: "a", Count: 2}, {ID: "d", Count: 2},
	})
}

func TestCountNetworkSkipsMissingFramesAndColumns(t *testing.T) {
	is := is.New(t)

	columns := map[string][]string{"rushes": {"bc"}}
	frames := map[string][]exhibit.Row{"rushes": {{"X"}}}
	links := map[string]map[string]EntityType{
		"rushes":  {"bc": "player", "tackler": "player"},
		"catches": {"qb": "player"},
	}

	network := CountNetwork(columns, frames, links, nil, "Z", []EntityType{"player"})

	is.Equal(network["player"], []Tally{{ID: "X", Count: 1}})
}

func TestCountNetworkNormalizesNumericIDs(t *testing.T) {
	is := is.New(t)

	columns := map[string][]string{"txns": {"acct"}}
	frames := map[string][]exhibit.Row{"txns": {{17.0}, {"17"}, {1729.0}}}
	links := map[string]map[string]EntityType{"txns": {"acct": "account"}}

	network := CountNetwork(columns, frames, links, nil, "1729", []EntityType{"account"})

	is.Equal(network["account"], []Tally{{ID: "17", Count: 2}})
}
