package queries

import (
	"context"
	"sync"
	"time"

	"github.com/diwise/exhibit-profiles/internal/pkg/application/profiles"
	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/google/uuid"
)

// ResultsHandler is called when a session receives a new query result
type ResultsHandler func(ctx context.Context, s *Session, result exhibit.QueryResult)

// Session is the state of a single profile view: the exhibit being explored,
// the display state, the query code and the latest query result.
type Session struct {
	ID      string
	Exhibit exhibit.ID
	View    *profiles.ViewState

	mu        sync.Mutex
	code      string
	latest    *exhibit.QueryResult
	updatedAt time.Time
	handler   ResultsHandler
	issued    uint64
	delivered uint64
	version   uint64
	lastSeen  time.Time
}

func NewSession(id exhibit.ID, frameNames []string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		Exhibit:  id,
		View:     profiles.NewViewState(frameNames),
		lastSeen: time.Now(),
	}
}

// Touch marks the session as in use
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSeen
}

// OnResultsUpdated registers the handler for result updates. Only the most
// recently registered handler is called.
func (s *Session) OnResultsUpdated(handler ResultsHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handler = handler
}

func (s *Session) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.code
}

func (s *Session) SetCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.code = code
}

// Results returns the latest query result, if any
func (s *Session) Results() (exhibit.QueryResult, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return exhibit.QueryResult{}, time.Time{}, false
	}

	return *s.latest, s.updatedAt, true
}

func (s *Session) begin(code string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.code = code
	s.issued++

	return s.issued
}

// deliver stores result as the latest result of the session and returns the
// handler to notify together with the version of the stored result. Results
// of requests older than the latest delivered one are refused unless
// keepStale is set.
func (s *Session) deliver(seq uint64, result exhibit.QueryResult, keepStale bool) (ResultsHandler, uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq < s.delivered && !keepStale {
		return nil, 0, false
	}

	if seq > s.delivered {
		s.delivered = seq
	}

	s.version++
	s.latest = &result
	s.updatedAt = time.Now().UTC()
	s.lastSeen = time.Now()

	return s.handler, s.version, true
}

// isCurrent reports whether version is still the stored result
func (s *Session) isCurrent(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version == version
}
