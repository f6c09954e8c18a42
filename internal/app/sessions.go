package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"minihotel/internal/domain"
)

// Session is one storefront page session. It owns a Flow and serializes
// every operation on it.
type Session struct {
	ID string

	mu       sync.Mutex
	flow     *Flow
	lastSeen time.Time
	settled  chan struct{} // closed when the running settlement ends
}

// Do runs fn with exclusive access to the session's flow.
func (s *Session) Do(fn func(f *Flow) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.flow.now()
	return fn(s.flow)
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Snapshot()
}

// Settled returns a channel closed once the current settlement, if any,
// has ended. Without a settlement it is already closed.
func (s *Session) Settled() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return s.settled
}

// Pay submits the session's card to settler and feeds the resulting events
// back into the flow in the background.
func (s *Session) Pay(ctx context.Context, settler domain.Settler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.flow.now()

	req, err := s.flow.BeginSettlement()
	if err != nil {
		return err
	}
	events, err := settler.Submit(ctx, req)
	if err != nil {
		s.flow.AbortSettlement(err)
		return err
	}
	done := make(chan struct{})
	s.settled = done
	go s.follow(events, done)
	return nil
}

func (s *Session) follow(events <-chan domain.SettlementEvent, done chan struct{}) {
	defer close(done)
	for ev := range events {
		s.mu.Lock()
		err := s.flow.ApplySettlement(ev)
		s.lastSeen = s.flow.now()
		s.mu.Unlock()
		if err != nil {
			log.Error().Err(err).Str("session", s.ID).Str("status", ev.Status.String()).
				Msg("settlement event rejected")
		}
	}
}

// SessionStore keeps every live session in memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	hooks    func(id string) FlowHooks
	now      func() time.Time
	onSize   func(n int)
}

// NewSessionStore evicts sessions idle for longer than ttl on Sweep.
// hooks, when non-nil, builds the flow hooks of each new session.
func NewSessionStore(ttl time.Duration, hooks func(id string) FlowHooks) *SessionStore {
	return &SessionStore{
		sessions: map[string]*Session{},
		ttl:      ttl,
		hooks:    hooks,
		now:      time.Now,
	}
}

// OnSize registers fn to receive the session count after every Create and
// every Sweep. Call it before the store is shared.
func (st *SessionStore) OnSize(fn func(n int)) { st.onSize = fn }

func (st *SessionStore) Create() *Session {
	id := uuid.NewString()
	var h FlowHooks
	if st.hooks != nil {
		h = st.hooks(id)
	}
	f := NewFlow(h)
	f.now = st.now
	s := &Session{ID: id, flow: f, lastSeen: st.now()}

	st.mu.Lock()
	st.sessions[id] = s
	n := len(st.sessions)
	st.mu.Unlock()
	if st.onSize != nil {
		st.onSize(n)
	}
	return s
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle since before now−ttl. Sessions with a
// settlement in flight are kept. It returns the number evicted.
func (st *SessionStore) Sweep(now time.Time) int {
	n, left := st.sweep(now)
	if st.onSize != nil {
		st.onSize(left)
	}
	return n
}

func (st *SessionStore) sweep(now time.Time) (int, int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		s.mu.Lock()
		idle := now.Sub(s.lastSeen) > st.ttl
		busy := s.flow.Settling()
		s.mu.Unlock()
		if idle && !busy {
			delete(st.sessions, id)
			n++
		}
	}
	return n, len(st.sessions)
}

// RunSweeper sweeps every interval until ctx is done.
func (st *SessionStore) RunSweeper(ctx context.Context, interval time.Duration, evicted func(n, left int)) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			n := st.Sweep(now)
			if evicted != nil {
				evicted(n, st.Len())
			}
		}
	}
}
