package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/diwise/exhibit-profiles/internal/pkg/application/profiles"
	"github.com/diwise/exhibit-profiles/internal/pkg/application/queries"
	problems "github.com/diwise/exhibit-profiles/internal/pkg/presentation/api/errors"
	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("exhibit-profiles/api")

func NewRetrieveProfileHandler(explorer profiles.ProfileExplorer) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		entityType := chi.URLParam(r, "entityType")
		entityID := chi.URLParam(r, "id")

		ctx, span := tracer.Start(r.Context(), "retrieve-profile",
			trace.WithAttributes(attribute.String("entity-type", entityType)),
			trace.WithAttributes(attribute.String("entity-id", entityID)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		view, err := explorer.RetrieveProfile(ctx, profiles.EntityType(entityType), entityID)
		if err != nil {
			logging.GetFromContext(ctx).Error("failed to retrieve profile", "entity_type", entityType, "entity_id", entityID, "err", err.Error())
			problems.ReportError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, view)
	})
}

func NewRetrieveDisplayConfigHandler(explorer profiles.ProfileExplorer) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entityType := chi.URLParam(r, "entityType")

		cfg, ok := explorer.DisplayConfig(profiles.EntityType(entityType))
		if !ok {
			problems.ReportNotFoundError(w, fmt.Sprintf("entity type %s is not configured", entityType))
			return
		}

		writeJSON(w, http.StatusOK, cfg)
	})
}

type createSessionRequest struct {
	EntityType string `json:"entityType"`
	ID         string `json:"id"`
}

type sessionCreatedResponse struct {
	SessionID string                `json:"sessionId"`
	Profile   *profiles.ProfileView `json:"profile"`
}

func NewCreateSessionHandler(explorer profiles.ProfileExplorer, sessions *queries.SessionStore, hub *EventHub) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		ctx, span := tracer.Start(r.Context(), "create-session")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		req := createSessionRequest{}
		err = json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			problems.ReportNewInvalidRequest(w, fmt.Sprintf("unable to decode request payload: %s", err.Error()))
			return
		}

		if req.EntityType == "" || req.ID == "" {
			err = fmt.Errorf("both entityType and id are required")
			problems.ReportNewBadRequestData(w, err.Error())
			return
		}

		view, err := explorer.RetrieveProfile(ctx, profiles.EntityType(req.EntityType), req.ID)
		if err != nil {
			problems.ReportError(w, err)
			return
		}

		s := sessions.Create(view.ID, view.FrameNames)
		s.OnResultsUpdated(hub.ResultsUpdated)

		logging.GetFromContext(ctx).Info("session created", "session_id", s.ID, "exhibit", view.ID.String())

		w.Header().Add("Location", "/api/sessions/"+s.ID)
		writeJSON(w, http.StatusCreated, sessionCreatedResponse{SessionID: s.ID, Profile: view})
	})
}

type sessionResponse struct {
	ID           string           `json:"id"`
	Exhibit      exhibit.ID       `json:"exhibit"`
	ActiveFrame  string           `json:"activeFrame"`
	ActiveFrames []string         `json:"activeFrames"`
	Code         string           `json:"code"`
	Results      *resultsResponse `json:"results,omitempty"`
}

type resultsResponse struct {
	exhibit.QueryResult
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewRetrieveSessionHandler(sessions *queries.SessionStore) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFromRequest(w, r, sessions)
		if !ok {
			return
		}

		response := sessionResponse{
			ID:           s.ID,
			Exhibit:      s.Exhibit,
			ActiveFrame:  s.View.Active(),
			ActiveFrames: s.View.ActiveFrames(),
			Code:         s.Code(),
		}

		if result, updatedAt, ok := s.Results(); ok {
			response.Results = &resultsResponse{QueryResult: result, UpdatedAt: updatedAt}
		}

		writeJSON(w, http.StatusOK, response)
	})
}

func NewDeleteSessionHandler(sessions *queries.SessionStore, hub *EventHub) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")

		if err := sessions.Delete(sessionID); err != nil {
			problems.ReportError(w, err)
			return
		}

		hub.CloseSession(sessionID)

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewSetActiveFrameHandler(sessions *queries.SessionStore) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFromRequest(w, r, sessions)
		if !ok {
			return
		}

		frame := chi.URLParam(r, "frame")

		if err := s.View.SetActive(frame); err != nil {
			problems.ReportNotFoundError(w, err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	})
}

func NewRetrieveResultsHandler(sessions *queries.SessionStore) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFromRequest(w, r, sessions)
		if !ok {
			return
		}

		result, updatedAt, ok := s.Results()
		if !ok {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		writeJSON(w, http.StatusOK, resultsResponse{QueryResult: result, UpdatedAt: updatedAt})
	})
}

type codeRequest struct {
	Code string `json:"code"`
}

type queryFunc func(ctx context.Context, s *queries.Session, code string)

// NewRunQueryHandler accepts query code and hands it to run in the
// background. Outcomes are delivered as events, never in the response.
func NewRunQueryHandler(sessions *queries.SessionStore, run queryFunc) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFromRequest(w, r, sessions)
		if !ok {
			return
		}

		code, ok := codeFromRequest(w, r)
		if !ok {
			return
		}

		go run(context.WithoutCancel(r.Context()), s, code)

		w.WriteHeader(http.StatusAccepted)
	})
}

func NewSaveCalculationHandler(runner queries.Runner) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		code, ok := codeFromRequest(w, r)
		if !ok {
			return
		}

		go runner.Save(context.WithoutCancel(r.Context()), code)

		w.WriteHeader(http.StatusAccepted)
	})
}

func NewLoadCalculationHandler(sessions *queries.SessionStore, runner queries.Runner) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := sessionFromRequest(w, r, sessions)
		if !ok {
			return
		}

		calculationID, err := strconv.Atoi(chi.URLParam(r, "calculationId"))
		if err != nil {
			problems.ReportNewBadRequestData(w, "calculation id must be an integer")
			return
		}

		go runner.Load(context.WithoutCancel(r.Context()), s, calculationID)

		w.WriteHeader(http.StatusAccepted)
	})
}

func sessionFromRequest(w http.ResponseWriter, r *http.Request, sessions *queries.SessionStore) (*queries.Session, bool) {
	s, err := sessions.Get(chi.URLParam(r, "sessionId"))
	if err != nil {
		problems.ReportError(w, err)
		return nil, false
	}

	return s, true
}

func codeFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	req := codeRequest{}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problems.ReportNewInvalidRequest(w, fmt.Sprintf("unable to decode request payload: %s", err.Error()))
		return "", false
	}

	return req.Code, true
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		problems.ReportNewInternalError(w, err.Error())
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}
