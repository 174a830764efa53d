package main

import (
	"io"

	"github.com/diwise/exhibit-profiles/internal/pkg/application/profiles"
	"github.com/diwise/exhibit-profiles/internal/pkg/application/queries"
	"github.com/diwise/exhibit-profiles/internal/pkg/presentation/api"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/client"
	"golang.org/x/time/rate"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	listenAddress FlagType = iota
	servicePort

	exhibitServerURL
	exhibitAPIVersion
	exhibitDebug
	breakerMaxFailures
	breakerTimeout

	configPath
	allowedOrigins

	keepStaleResults
	sessionIdleTimeout
	computeRateLimit
	computeBurst
)

type AppConfig struct {
	entityConfig io.ReadCloser

	publicPort string

	server      client.ExhibitServerClient
	explorer    profiles.ProfileExplorer
	sessions    *queries.SessionStore
	queryRunner queries.Runner
	hub         *api.EventHub
	limiter     *rate.Limiter
}
