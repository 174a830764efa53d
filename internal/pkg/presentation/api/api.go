package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/diwise/exhibit-profiles/internal/pkg/application/profiles"
	"github.com/diwise/exhibit-profiles/internal/pkg/application/queries"
	problems "github.com/diwise/exhibit-profiles/internal/pkg/presentation/api/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

func RegisterHandlers(ctx context.Context, r chi.Router, explorer profiles.ProfileExplorer, sessions *queries.SessionStore, runner queries.Runner, hub *EventHub, limiter *rate.Limiter) {
	logger := logging.GetFromContext(ctx)

	r.Route("/api", func(r chi.Router) {
		r.Use(Logger(logger))

		r.Get("/exhibit/{entityType}/{id}", NewRetrieveProfileHandler(explorer))
		r.Get("/config/{entityType}", NewRetrieveDisplayConfigHandler(explorer))

		r.Route("/sessions", func(r chi.Router) {
			r.With(RequiredContentTypes([]string{"application/json"})).
				Post("/", NewCreateSessionHandler(explorer, sessions, hub))

			r.Route("/{sessionId}", func(r chi.Router) {
				r.Get("/", NewRetrieveSessionHandler(sessions))
				r.Delete("/", NewDeleteSessionHandler(sessions, hub))
				r.Put("/active/{frame}", NewSetActiveFrameHandler(sessions))
				r.Get("/results", NewRetrieveResultsHandler(sessions))
				r.Get("/events", NewEventsHandler(sessions, hub))

				r.Group(func(r chi.Router) {
					r.Use(RateLimit(limiter), RequiredContentTypes([]string{"application/json"}))

					r.Post("/compute", NewRunQueryHandler(sessions, runner.Run))
					r.Post("/cluster", NewRunQueryHandler(sessions, runner.RunRemote))
					r.Post("/calculation/{calculationId}", NewLoadCalculationHandler(sessions, runner))
				})
			})
		})

		r.With(RateLimit(limiter), RequiredContentTypes([]string{"application/json"})).
			Post("/calculation", NewSaveCalculationHandler(runner))
	})
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequiredContentTypes(validTypes []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			contentType := r.Header.Get("Content-Type")
			isValidContentType := true

			if len(contentType) > 0 {
				isValidContentType = false

				for _, t := range validTypes {
					if strings.HasPrefix(contentType, t) {
						isValidContentType = true
						break
					}
				}
			}

			if isValidContentType {
				next.ServeHTTP(w, r)
			} else {
				http.Error(w, "unsupported media type", http.StatusUnsupportedMediaType)
			}
		})
	}
}

// RateLimit rejects requests with 429 Too Many Requests when limiter is
// exhausted. A nil limiter allows every request.
func RateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter != nil && !limiter.Allow() {
				logging.GetFromContext(r.Context()).Warn("query rate limit exceeded", "path", r.URL.Path)
				problems.ReportTooManyRequests(w, "too many queries, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
