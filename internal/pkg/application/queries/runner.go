package queries

import (
	"context"
	"fmt"
	"sync"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/client"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Runner submits query code for an exhibit to the compute server. None of
// its operations return errors: failures are logged and leave the session
// untouched.
type Runner interface {
	Start() error
	Stop() error

	Run(ctx context.Context, s *Session, code string)
	RunRemote(ctx context.Context, s *Session, code string)
	Save(ctx context.Context, code string)
	Load(ctx context.Context, s *Session, calculationID int)
}

// KeepStaleResults lets the last arriving response win, even when it
// belongs to a request that was issued before the one already delivered
func KeepStaleResults(enabled bool) func(*runner) {
	return func(r *runner) {
		r.keepStale = enabled
	}
}

func NewRunner(server client.ExhibitServerClient, options ...func(*runner)) Runner {
	r := &runner{
		server: server,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

var tracer = otel.Tracer("exhibit-profiles/queries")

type action func()

type runner struct {
	server    client.ExhibitServerClient
	keepStale bool

	mu      sync.Mutex
	started bool
	queue   chan action
}

func (r *runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("already started")
	}

	r.started = true
	r.queue = make(chan action, 32)

	go r.run(r.queue)

	return nil
}

func (r *runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		r.started = false

		queue := r.queue
		resultChan := make(chan bool)

		queue <- func() {
			close(queue)
			resultChan <- true
		}

		// wait until every queued signal has been dispatched
		<-resultChan
	}

	return nil
}

func (r *runner) Run(ctx context.Context, s *Session, code string) {
	var err error

	ctx, span := tracer.Start(ctx, "run-query", sessionAttributes(s)...)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With("session_id", s.ID, "exhibit", s.Exhibit.String())

	seq := s.begin(code)

	result, err := r.server.Compute(ctx, s.Exhibit, code)
	if err != nil {
		logger.Error("query failed", "seq", seq, "err", err.Error())
		return
	}

	handler, version, ok := s.deliver(seq, *result, r.keepStale)
	if !ok {
		logger.Info("discarding result of superseded query", "seq", seq)
		return
	}

	logger.Debug("query results updated", "seq", seq, "rows", len(result.Data))

	if handler != nil {
		r.signal(r.resultsUpdated(ctx, s, handler, version, *result))
	}
}

// resultsUpdated returns the action that signals handler, unless another
// result has been stored in the session by the time the action runs
func (r *runner) resultsUpdated(ctx context.Context, s *Session, handler ResultsHandler, version uint64, result exhibit.QueryResult) action {
	return func() {
		if !s.isCurrent(version) {
			logging.GetFromContext(ctx).Debug("skipping signal for replaced result", "session_id", s.ID, "version", version)
			return
		}

		handler(ctx, s, result)
	}
}

func (r *runner) RunRemote(ctx context.Context, s *Session, code string) {
	var err error

	ctx, span := tracer.Start(ctx, "run-remote-query", sessionAttributes(s)...)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With("session_id", s.ID, "exhibit", s.Exhibit.String())

	result, err := r.server.Compute(ctx, s.Exhibit, code)
	if err != nil {
		logger.Error("remote query failed", "err", err.Error())
		return
	}

	logger.Info("remote query completed", "columns", result.Columns, "rows", len(result.Data))
}

func (r *runner) Save(ctx context.Context, code string) {
	var err error

	ctx, span := tracer.Start(ctx, "save-calculation")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx)

	err = r.server.SaveCalculation(ctx, code)
	if err != nil {
		logger.Error("failed to save calculation", "err", err.Error())
		return
	}

	logger.Info("calculation saved")
}

func (r *runner) Load(ctx context.Context, s *Session, calculationID int) {
	var err error

	ctx, span := tracer.Start(ctx, "load-calculation",
		append(sessionAttributes(s), trace.WithAttributes(attribute.Int("calculation-id", calculationID)))...,
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	logger := logging.GetFromContext(ctx).With("session_id", s.ID)

	code, err := r.server.RetrieveCalculation(ctx, calculationID)
	if err != nil {
		logger.Error("failed to load calculation", "calculation_id", calculationID, "err", err.Error())
		return
	}

	s.SetCode(code)

	r.Run(ctx, s, code)
}

// signal dispatches fn on the queue so that handlers run one at a time.
// Without a started queue fn runs immediately.
func (r *runner) signal(fn action) {
	r.mu.Lock()
	started := r.started
	if started {
		r.queue <- fn
	}
	r.mu.Unlock()

	if !started {
		fn()
	}
}

func (r *runner) run(queue chan action) {
	// repeat until the queue is closed
	for action := range queue {
		if action == nil {
			return
		}

		action()
	}
}

func sessionAttributes(s *Session) []trace.SpanStartOption {
	return []trace.SpanStartOption{
		trace.WithAttributes(attribute.String("session-id", s.ID)),
		trace.WithAttributes(attribute.String("exhibit-id", s.Exhibit.String())),
	}
}
