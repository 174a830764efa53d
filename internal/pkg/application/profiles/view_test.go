package profiles

import (
	"encoding/json"
	"testing"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/matryer/is"
)

func TestProfileViewUsesConfiguredFramesAndAttrs(t *testing.T) {
	is, registry := setupConfigTest(t)
	cfg, _ := registry.Get("player")

	view := NewProfileView(testPlayerID(), testPlayer(is), cfg, registry.Types())

	is.Equal(view.Title, "Tom Brady")
	is.Equal(view.FrameNames, []string{"passes", "rushes"})
	is.Equal(view.AttrKeys, []string{"team", "position"})
	is.Equal(len(view.Attrs), 2)

	_, ok := view.Tables["fumbles"]
	is.True(!ok) // frames that are not configured should not be displayed

	_, ok = view.Tables["rushes"]
	is.True(!ok) // configured frames missing from the exhibit are skipped

	passes := view.Tables["passes"]
	is.Equal(passes.Links["rc"], EntityType("player"))
}

func TestProfileViewCountsNetworkAndMergesFeed(t *testing.T) {
	is, registry := setupConfigTest(t)
	cfg, _ := registry.Get("player")

	view := NewProfileView(testPlayerID(), testPlayer(is), cfg, registry.Types())

	is.Equal(view.Network["player"], []Tally{{ID: "gronk", Count: 2}, {ID: "edelman", Count: 1}})
	is.Equal(len(view.Network["team"]), 0)

	is.Equal(len(view.Feed), 3)
	is.Equal(view.Feed[0].SortOn, 3.0)
}

func TestProfileViewInBlockMode(t *testing.T) {
	is := is.New(t)

	cfg := EntityDisplayConfig{
		Type:        "person",
		Title:       "fname",
		Frames:      []string{"txns"},
		AttrMode:    AttrModeBlock,
		HiddenAttrs: []string{"fname", "lname"},
	}
	e := exhibit.Exhibit{
		Attrs: map[string]any{"fname": "Josh", "lname": "Wills", "zip": "94110", "age": 38.0},
	}

	view := NewProfileView(exhibit.ID{EntityType: "person", ID: "1"}, e, cfg, []EntityType{"person"})

	is.Equal(view.AttrKeys, []string{"age", "zip"})
	is.Equal(view.Network, nil) // no links configured
	is.Equal(len(view.Feed), 0)
}

func TestViewStateStartsWithFirstFrameActive(t *testing.T) {
	is := is.New(t)

	vs := NewViewState([]string{"txns", "calls", "visits"})

	is.Equal(vs.Active(), "txns")
	is.Equal(vs.ActiveFrames(), []string{"txns"})
}

func TestSetActiveIsIdempotent(t *testing.T) {
	is := is.New(t)

	vs := NewViewState([]string{"txns", "calls", "visits"})

	is.NoErr(vs.SetActive("calls"))
	is.NoErr(vs.SetActive("calls"))

	is.Equal(vs.ActiveFrames(), []string{"calls"})
	is.True(!vs.IsActive("txns"))
}

func TestSetActiveRejectsUnknownFrame(t *testing.T) {
	is := is.New(t)

	vs := NewViewState([]string{"txns"})

	is.True(vs.SetActive("rushes") != nil)
	is.Equal(vs.Active(), "txns")
}

func testPlayerID() exhibit.ID {
	return exhibit.ID{EntityType: "player", ID: "brady"}
}

func testPlayer(is *is.I) exhibit.Exhibit {
	e := exhibit.Exhibit{}
	err := json.Unmarshal([]byte(playerJSON), &e)
	is.NoErr(err)
	return e
}

const playerJSON string = `{
	"attrs": {"name": "Tom Brady", "team": "NE", "position": "QB", "college": "Michigan"},
	"columns": {
		"passes": ["gid", "yds", "rc"],
		"fumbles": ["gid"]
	},
	"frames": {
		"passes": [[1, 12, "gronk"], [2, 30, "edelman"], [3, 8, "gronk"]],
		"fumbles": [[2]]
	}
}`
