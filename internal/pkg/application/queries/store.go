package queries

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/diwise/exhibit-profiles/pkg/exhibit"
	"github.com/diwise/exhibit-profiles/pkg/exhibit/errors"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
)

// SessionStore keeps the sessions of all connected profile views in memory.
// Sessions that have not been used for longer than the idle timeout are
// removed by Sweep.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	idleTimeout time.Duration
	onExpired   func(sessionID string)

	stop chan struct{}
	done chan struct{}
}

func WithIdleTimeout(timeout time.Duration) func(*SessionStore) {
	return func(ss *SessionStore) {
		ss.idleTimeout = timeout
	}
}

// OnExpired registers a callback that is called for every session removed by Sweep
func OnExpired(callback func(sessionID string)) func(*SessionStore) {
	return func(ss *SessionStore) {
		ss.onExpired = callback
	}
}

func NewSessionStore(options ...func(*SessionStore)) *SessionStore {
	ss := &SessionStore{
		sessions:  make(map[string]*Session),
		onExpired: func(string) {},
	}

	for _, option := range options {
		option(ss)
	}

	return ss
}

func (ss *SessionStore) Create(id exhibit.ID, frameNames []string) *Session {
	s := NewSession(id, frameNames)

	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.sessions[s.ID] = s

	return s
}

func (ss *SessionStore) Get(sessionID string) (*Session, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	s, ok := ss.sessions[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no session with id %s", sessionID))
	}

	s.Touch()

	return s, nil
}

func (ss *SessionStore) Delete(sessionID string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, ok := ss.sessions[sessionID]; !ok {
		return errors.NewNotFoundError(fmt.Sprintf("no session with id %s", sessionID))
	}

	delete(ss.sessions, sessionID)

	return nil
}

// Sweep removes the sessions that have been idle since before now minus the
// idle timeout and returns their ids. A zero idle timeout keeps every session.
func (ss *SessionStore) Sweep(now time.Time) []string {
	if ss.idleTimeout <= 0 {
		return nil
	}

	expired := []string{}
	cutoff := now.Add(-ss.idleTimeout)

	ss.mu.Lock()
	for id, s := range ss.sessions {
		if s.idleSince().Before(cutoff) {
			delete(ss.sessions, id)
			expired = append(expired, id)
		}
	}
	ss.mu.Unlock()

	for _, id := range expired {
		ss.onExpired(id)
	}

	return expired
}

// StartSweeping runs Sweep every interval until StopSweeping is called or
// ctx is cancelled
func (ss *SessionStore) StartSweeping(ctx context.Context, interval time.Duration) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.stop != nil || ss.idleTimeout <= 0 {
		return
	}

	ss.stop = make(chan struct{})
	ss.done = make(chan struct{})

	go func(stop, done chan struct{}) {
		defer close(done)

		logger := logging.GetFromContext(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if expired := ss.Sweep(now); len(expired) > 0 {
					logger.Info("removed idle sessions", "count", len(expired))
				}
			}
		}
	}(ss.stop, ss.done)
}

func (ss *SessionStore) StopSweeping() {
	ss.mu.Lock()
	stop, done := ss.stop, ss.done
	ss.stop, ss.done = nil, nil
	ss.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done
}
