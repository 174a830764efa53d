package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	exhibiterrors "github.com/diwise/exhibit-profiles/pkg/exhibit/errors"
	testutils "github.com/diwise/service-chassis/pkg/test/http"
	"github.com/diwise/service-chassis/pkg/test/http/expects"
	"github.com/diwise/service-chassis/pkg/test/http/response"

	"github.com/matryer/is"
)

var Expects = testutils.Expects
var Returns = testutils.Returns
var anyInput = expects.AnyInput
var method = expects.RequestMethod
var path = expects.RequestPath
var body = expects.RequestBody

func TestRetrieveExhibit(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
			path("/api/exhibit/player/brady"),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(exhibitResponse)),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL())

	e, err := c.RetrieveExhibit(context.Background(), exhibit.ID{EntityType: "player", ID: "brady"})

	is.NoErr(err)
	is.Equal(e.Attrs["name"], "Tom Brady")
	is.Equal(len(e.Frames["passes"]), 2)
	is.Equal(e.Metrics["pass_ypg"].Value, 251.5)
}

func TestRetrieveExhibitUsingVersionOneAPI(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
			path("/api/exhibit"),
			expects.QueryParamEquals("id", "1729"),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"attrs":{"fname":"Josh"},"columns":{"txns":["tstamp"]},"frames":{"txns":[[1]]}}`)),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL(), APIVersion(1))

	e, err := c.RetrieveExhibit(context.Background(), exhibit.ID{EntityType: "person", ID: "1729"})

	is.NoErr(err)
	is.Equal(e.Attrs["fname"], "Josh")
}

func TestRetrieveExhibitWithEmptyBodyIsNotFound(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL(), APIVersion(1))

	_, err := c.RetrieveExhibit(context.Background(), exhibit.ID{ID: "nobody"})

	is.True(errors.Is(err, exhibiterrors.ErrNotFound))
}

func TestRetrieveExhibitHandlesNotFound(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("application/problem+json"),
			response.Code(http.StatusNotFound),
			response.Body([]byte(`{"type":"","title":"Not Found","detail":"no such player"}`)),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL())

	_, err := c.RetrieveExhibit(context.Background(), exhibit.ID{EntityType: "player", ID: "nobody"})

	is.True(errors.Is(err, exhibiterrors.ErrNotFound))
}

func TestCompute(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			path("/api/compute"),
			body(`{"id":{"entity":"player","id":"brady"},"code":"select count(*) from passes"}`),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"columns":["c"],"data":[[2]]}`)),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL())

	result, err := c.Compute(context.Background(), exhibit.ID{EntityType: "player", ID: "brady"}, "select count(*) from passes")

	is.NoErr(err)
	is.Equal(result.Columns, []string{"c"})
	is.Equal(result.Data[0][0], 2.0)
}

func TestComputeUsingVersionOneAPISendsBareID(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			path("/api/compute"),
			body(`{"id":"1729","code":"select 1"}`),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"columns":[],"data":[]}`)),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL(), APIVersion(1))

	_, err := c.Compute(context.Background(), exhibit.ID{ID: "1729"}, "select 1")
	is.NoErr(err)
}

func TestComputeHandlesBadRequest(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("text/plain"),
			response.Code(http.StatusBadRequest),
			response.Body([]byte("no such table: pases")),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL())

	_, err := c.Compute(context.Background(), exhibit.ID{EntityType: "player", ID: "brady"}, "select * from pases")

	is.True(errors.Is(err, exhibiterrors.ErrBadRequest))
	is.Equal(err.Error(), "no such table: pases")
}

func TestComputeHandlesTransportFailure(t *testing.T) {
	is := is.New(t)

	c := NewExhibitServerClient("http://127.0.0.1:1")

	_, err := c.Compute(context.Background(), exhibit.ID{EntityType: "player", ID: "brady"}, "select 1")

	is.True(errors.Is(err, exhibiterrors.ErrRequest))
}

func TestRetrieveCalculation(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodGet),
			path("/api/calculation"),
			expects.QueryParamEquals("id", "1"),
		),
		Returns(
			response.ContentType("application/json"),
			response.Code(http.StatusOK),
			response.Body([]byte(`{"code":"select (sum(yds)/count(distinct gid)) rush_ypg from rushes"}`)),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL())

	code, err := c.RetrieveCalculation(context.Background(), 1)

	is.NoErr(err)
	is.Equal(code, "select (sum(yds)/count(distinct gid)) rush_ypg from rushes")
}

func TestSaveCalculation(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(
			is,
			method(http.MethodPost),
			path("/api/calculation"),
			body(`{"code":"select 1"}`),
		),
		Returns(response.Code(http.StatusOK)),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL())

	err := c.SaveCalculation(context.Background(), "select 1")

	is.NoErr(err)
	is.Equal(s.RequestCount(), 1)
}

func TestCircuitBreakerOpensAfterConsecutiveServerFailures(t *testing.T) {
	is := is.New(t)

	s := testutils.NewMockServiceThat(
		Expects(is, anyInput()),
		Returns(
			response.ContentType("text/plain"),
			response.Code(http.StatusInternalServerError),
			response.Body([]byte("database on fire")),
		),
	)
	defer s.Close()

	c := NewExhibitServerClient(s.URL(), WithCircuitBreaker(2, time.Minute))
	id := exhibit.ID{EntityType: "player", ID: "brady"}

	_, err := c.Compute(context.Background(), id, "select 1")
	is.True(errors.Is(err, exhibiterrors.ErrInternal))

	_, err = c.Compute(context.Background(), id, "select 1")
	is.True(errors.Is(err, exhibiterrors.ErrInternal))

	_, err = c.Compute(context.Background(), id, "select 1")
	is.True(errors.Is(err, exhibiterrors.ErrUnavailable)) // circuit should be open

	is.Equal(s.RequestCount(), 2)
}

const exhibitResponse string = `{
	"id": {"entity": "player", "id": "brady"},
	"exhibit": {
		"attrs": {"name": "Tom Brady", "team": "NE"},
		"columns": {"passes": ["gid", "yds", "rc"]},
		"frames": {"passes": [[1, 12, "gronk"], [1, 30, "edelman"]]}
	},
	"metrics": {"pass_ypg": {"id": 0, "value": 251.5}}
}`
