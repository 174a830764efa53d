package profiles

import (
	"context"
	"errors"
	"testing"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	exhibiterrors "github.com/diwise/exhibit-profiles/pkg/exhibit/errors"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/test"
)

func TestRetrieveProfile(t *testing.T) {
	is, registry := setupConfigTest(t)

	server := &test.ExhibitServerClientMock{
		RetrieveExhibitFunc: func(ctx context.Context, id exhibit.ID) (*exhibit.Exhibit, error) {
			e := testPlayer(is)
			return &e, nil
		},
	}

	app := New(server, registry)

	view, err := app.RetrieveProfile(context.Background(), "player", "brady")
	is.NoErr(err)

	is.Equal(view.ID, exhibit.ID{EntityType: "player", ID: "brady"})
	is.Equal(view.Title, "Tom Brady")
	is.Equal(len(server.RetrieveExhibitCalls()), 1)
	is.Equal(server.RetrieveExhibitCalls()[0].ID.EntityType, "player")
}

func TestRetrieveProfileOfUnknownEntityTypeFails(t *testing.T) {
	is, registry := setupConfigTest(t)

	server := &test.ExhibitServerClientMock{}
	app := New(server, registry)

	_, err := app.RetrieveProfile(context.Background(), "stadium", "gillette")

	is.True(errors.Is(err, exhibiterrors.ErrNotFound))
	is.Equal(len(server.RetrieveExhibitCalls()), 0) // should not call the server
}

func TestRetrieveProfilePropagatesServerErrors(t *testing.T) {
	is, registry := setupConfigTest(t)

	server := &test.ExhibitServerClientMock{
		RetrieveExhibitFunc: func(ctx context.Context, id exhibit.ID) (*exhibit.Exhibit, error) {
			return nil, exhibiterrors.NewNotFoundError("no such player")
		},
	}

	app := New(server, registry)

	_, err := app.RetrieveProfile(context.Background(), "player", "nobody")

	is.True(errors.Is(err, exhibiterrors.ErrNotFound))
}
