package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/diwise/exhibit-profiles/internal/pkg/application/profiles"
	"github.com/diwise/exhibit-profiles/internal/pkg/application/queries"
	"github.com/diwise/exhibit-profiles/internal/pkg/infrastructure/router"
	"github.com/diwise/exhibit-profiles/internal/pkg/presentation/api"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/servicerunner"
	"golang.org/x/time/rate"
)

const serviceName string = "exhibit-profiles"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	flags := parseExternalConfig(ctx, DefaultFlags())

	entityConfig, err := os.Open(flags[configPath])
	if err != nil {
		log.Error("failed to open entity display configuration", "path", flags[configPath], "err", err.Error())
		os.Exit(1)
	}

	app, err := initialize(ctx, flags, &AppConfig{entityConfig: entityConfig})
	if err != nil {
		log.Error("initialization failed", "err", err.Error())
		os.Exit(1)
	}

	err = app.Run(ctx)
	if err != nil {
		log.Error("service runner failed", "err", err.Error())
		os.Exit(1)
	}
}

func DefaultFlags() FlagMap {
	return FlagMap{
		listenAddress: "",
		servicePort:   "8080",

		exhibitAPIVersion:  "2",
		exhibitDebug:       "false",
		breakerMaxFailures: "5",
		breakerTimeout:     "30s",

		configPath: "/opt/diwise/config/entities.yaml",

		keepStaleResults:   "false",
		sessionIdleTimeout: "2h",
		computeRateLimit:   "5",
		computeBurst:       "10",
	}
}

func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {
	apply := func(f FlagType, key string) {
		flags[f] = env.GetVariableOrDefault(ctx, key, flags[f])
	}

	apply(listenAddress, "LISTEN_ADDRESS")
	apply(servicePort, "SERVICE_PORT")
	apply(exhibitServerURL, "EXHIBIT_SERVER_URL")
	apply(exhibitAPIVersion, "EXHIBIT_API_VERSION")
	apply(exhibitDebug, "EXHIBIT_CLIENT_DEBUG")
	apply(breakerMaxFailures, "EXHIBIT_BREAKER_MAX_FAILURES")
	apply(breakerTimeout, "EXHIBIT_BREAKER_TIMEOUT")
	apply(configPath, "ENTITY_CONFIG_PATH")
	apply(allowedOrigins, "CORS_ALLOWED_ORIGINS")
	apply(keepStaleResults, "KEEP_STALE_RESULTS")
	apply(sessionIdleTimeout, "SESSION_IDLE_TIMEOUT")
	apply(computeRateLimit, "COMPUTE_RATE_LIMIT")
	apply(computeBurst, "COMPUTE_BURST")

	return flags
}

func initialize(ctx context.Context, flags FlagMap, cfg *AppConfig) (servicerunner.Runner[AppConfig], error) {
	log := logging.GetFromContext(ctx)

	defer cfg.entityConfig.Close()

	if flags[exhibitServerURL] == "" {
		return nil, fmt.Errorf("no exhibit server url configured")
	}

	registry, err := profiles.LoadConfiguration(cfg.entityConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load entity display configuration: %w", err)
	}

	clientOptions, err := newClientOptions(flags)
	if err != nil {
		return nil, err
	}

	idleTimeout, err := time.ParseDuration(flags[sessionIdleTimeout])
	if err != nil {
		return nil, fmt.Errorf("invalid session idle timeout %q: %w", flags[sessionIdleTimeout], err)
	}

	cfg.limiter, err = newLimiter(flags)
	if err != nil {
		return nil, err
	}

	cfg.server = client.NewExhibitServerClient(flags[exhibitServerURL], clientOptions...)
	cfg.explorer = profiles.New(cfg.server, registry)
	cfg.hub = api.NewEventHub(log)
	cfg.sessions = queries.NewSessionStore(
		queries.WithIdleTimeout(idleTimeout),
		queries.OnExpired(cfg.hub.CloseSession),
	)
	cfg.queryRunner = queries.NewRunner(cfg.server, queries.KeepStaleResults(flags[keepStaleResults] == "true"))

	var origins []string
	if flags[allowedOrigins] != "" {
		origins = strings.Split(flags[allowedOrigins], ",")
	}

	_, app := servicerunner.New(ctx, *cfg,
		servicerunner.WithHTTPServeMux[AppConfig](serviceName,
			servicerunner.WithListenAddr[AppConfig](flags[listenAddress]),
			servicerunner.WithPort[AppConfig](flags[servicePort]),
			servicerunner.WithK8SLivenessProbe[AppConfig](func() error { return nil }),
			servicerunner.OnMuxInit[AppConfig](func(ctx context.Context, identifier, port string, appCfg *AppConfig, mux *http.ServeMux) error {
				appCfg.publicPort = port

				r := router.New(serviceName, origins)
				api.RegisterHandlers(ctx, r, appCfg.explorer, appCfg.sessions, appCfg.queryRunner, appCfg.hub, appCfg.limiter)

				mux.Handle("/", r)

				log.Info("listening for connections", "port", port)

				return nil
			}),
		),
		servicerunner.OnStarting[AppConfig](func(ctx context.Context, appCfg *AppConfig) error {
			if err := appCfg.queryRunner.Start(); err != nil {
				return fmt.Errorf("failed to start query runner: %w", err)
			}

			appCfg.sessions.StartSweeping(ctx, time.Minute)

			return nil
		}),
		servicerunner.OnShutdown[AppConfig](func(ctx context.Context, appCfg *AppConfig) error {
			appCfg.sessions.StopSweeping()
			appCfg.hub.Stop()
			return appCfg.queryRunner.Stop()
		}),
	)

	log.Info("initialized", "entity_types", len(registry.Types()), "exhibit_server", flags[exhibitServerURL])

	return app, nil
}

func newClientOptions(flags FlagMap) ([]client.Option, error) {
	version, err := strconv.Atoi(flags[exhibitAPIVersion])
	if err != nil || (version != 1 && version != 2) {
		return nil, fmt.Errorf("unsupported exhibit api version %q", flags[exhibitAPIVersion])
	}

	options := []client.Option{
		client.APIVersion(version),
		client.Debug(flags[exhibitDebug]),
	}

	maxFailures, err := strconv.ParseUint(flags[breakerMaxFailures], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid circuit breaker failure count %q: %w", flags[breakerMaxFailures], err)
	}

	if maxFailures > 0 {
		timeout, err := time.ParseDuration(flags[breakerTimeout])
		if err != nil {
			return nil, fmt.Errorf("invalid circuit breaker timeout %q: %w", flags[breakerTimeout], err)
		}

		options = append(options, client.WithCircuitBreaker(uint32(maxFailures), timeout))
	}

	return options, nil
}

func newLimiter(flags FlagMap) (*rate.Limiter, error) {
	perSecond, err := strconv.ParseFloat(flags[computeRateLimit], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid compute rate limit %q: %w", flags[computeRateLimit], err)
	}

	if perSecond <= 0 {
		return nil, nil
	}

	burst, err := strconv.Atoi(flags[computeBurst])
	if err != nil {
		return nil, fmt.Errorf("invalid compute burst %q: %w", flags[computeBurst], err)
	}

	return rate.NewLimiter(rate.Limit(perSecond), burst), nil
}
