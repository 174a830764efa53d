package exhibit

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestUnmarshalExhibitWithPositionalRows(t *testing.T) {
	is := is.New(t)

	e := Exhibit{}
	err := json.Unmarshal([]byte(exhibitJSON), &e)
	is.NoErr(err)

	is.Equal(e.Attrs["fname"], "Josh")
	is.Equal(len(e.Frames["t1"]), 3)
	is.Equal(len(e.Frames["e"]), 0)

	f, ok := e.Frame("t1")
	is.True(ok)
	is.Equal(f.Value(f.Rows[0], "c"), "foo")
	is.Equal(f.Value(f.Rows[1], "b"), 3.0)
	is.Equal(f.Value(f.Rows[2], "a"), nil)
	is.Equal(f.Value(f.Rows[0], "nosuchcolumn"), nil)
}

func TestUnmarshalExhibitWithKeyedRows(t *testing.T) {
	is := is.New(t)

	e := Exhibit{}
	err := json.Unmarshal([]byte(`{"attrs":{},"columns":{"passes":["gid","bc","yds"]},"frames":{"passes":[{"bc":"X","gid":1,"yds":12}]}}`), &e)
	is.NoErr(err)

	is.Equal(e.Frames["passes"][0], Row{1.0, "X", 12.0})
}

func TestFrameIsMissingWhenColumnsAreMissing(t *testing.T) {
	is := is.New(t)

	e := Exhibit{
		Frames: map[string][]Row{"calls": {{1.0}}},
	}

	_, ok := e.Frame("calls")
	is.True(!ok) // a frame without a column list is not usable
}

func TestUnmarshalExhibitFailsOnBadRow(t *testing.T) {
	is := is.New(t)

	e := Exhibit{}
	err := json.Unmarshal([]byte(`{"columns":{"t":["a"]},"frames":{"t":[17]}}`), &e)
	is.True(err != nil)
}

func TestUnmarshalQueryResult(t *testing.T) {
	is := is.New(t)

	qr := QueryResult{}
	err := json.Unmarshal([]byte(`{"columns":["a"],"data":[{"a":1}]}`), &qr)
	is.NoErr(err)

	is.Equal(qr.Columns, []string{"a"})
	is.Equal(len(qr.Data), 1)
	is.Equal(qr.Data[0][0], 1.0)

	b, err := json.Marshal(qr)
	is.NoErr(err)
	is.Equal(string(b), `{"columns":["a"],"data":[[1]]}`)
}

const exhibitJSON string = `{
	"attrs": {"fname": "Josh", "age": 38},
	"columns": {"t1": ["a", "b", "c"], "e": ["a", "b", "c"]},
	"frames": {"e": [], "t1": [[1729, null, "foo"], [1729, 3.0, null], [null, 17.0, null]]}
}`
