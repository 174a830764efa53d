package profiles

import (
	"context"
	"fmt"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/client"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate moq -rm -out profileexplorer_mock.go . ProfileExplorer

type ProfileExplorer interface {
	RetrieveProfile(ctx context.Context, entityType EntityType, entityID string) (*ProfileView, error)
	DisplayConfig(entityType EntityType) (EntityDisplayConfig, bool)
}

var tracer = otel.Tracer("exhibit-profiles/profiles")

type profileExplorer struct {
	server   client.ExhibitServerClient
	registry *Registry
}

func New(server client.ExhibitServerClient, registry *Registry) ProfileExplorer {
	return &profileExplorer{
		server:   server,
		registry: registry,
	}
}

func (app *profileExplorer) RetrieveProfile(ctx context.Context, entityType EntityType, entityID string) (*ProfileView, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-profile",
		trace.WithAttributes(attribute.String("entity-type", string(entityType))),
		trace.WithAttributes(attribute.String("exhibit-id", entityID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	cfg, ok := app.registry.Get(entityType)
	if !ok {
		err = errors.NewNotFoundError(fmt.Sprintf("no display configuration for entity type %s", entityType))
		return nil, err
	}

	id := exhibit.ID{EntityType: string(entityType), ID: entityID}

	e, err := app.server.RetrieveExhibit(ctx, id)
	if err != nil {
		return nil, err
	}

	view := NewProfileView(id, *e, cfg, app.registry.Types())

	logging.GetFromContext(ctx).Debug("profile view assembled",
		"entity_type", entityType, "exhibit_id", entityID,
		"frames", len(view.Tables), "feed_items", len(view.Feed))

	return view, nil
}

func (app *profileExplorer) DisplayConfig(entityType EntityType) (EntityDisplayConfig, bool) {
	return app.registry.Get(entityType)
}
