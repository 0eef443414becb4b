// Package repository keeps open contact form sessions in memory.
package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

const (
	defaultMaxSessions   = 10_000
	defaultIdleTimeout   = 30 * time.Minute
	defaultSweepInterval = time.Minute
)

// Store provides access to open form sessions.
type Store interface {
	// Create registers c and returns its new session id.
	Create(ctx context.Context, c *contact.Controller) (string, error)
	// Get returns the session and marks it as used.
	// Returns ErrNotFound if the id is unknown or expired.
	Get(ctx context.Context, id string) (*contact.Controller, error)
	// Delete closes and removes the session.
	Delete(ctx context.Context, id string) error
	// Count returns the number of open sessions.
	Count(ctx context.Context) int
}

type entry struct {
	id       string
	ctrl     *contact.Controller
	lastUsed time.Time
}

// SessionStore is an in-memory Store. Entries are kept in a list ordered by
// last use, most recent at the front, so both LRU eviction and the idle
// sweep only look at the back.
type SessionStore struct {
	mu     sync.Mutex
	byID   map[string]*list.Element
	order  *list.List
	closed bool

	maxSessions   int
	idleTimeout   time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        logger.Logger

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSessionStore constructs a store with configuration options.
func NewSessionStore(opts ...Option) *SessionStore {
	s := &SessionStore{
		byID:          make(map[string]*list.Element),
		order:         list.New(),
		maxSessions:   defaultMaxSessions,
		idleTimeout:   defaultIdleTimeout,
		sweepInterval: defaultSweepInterval,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("sessions")
	}
	metrics.UpdateContactSessions(0)
	return s
}

// Start runs the idle sweeper until ctx is done or Close is called.
func (s *SessionStore) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					s.logger.Debug(ctx, "expired idle sessions", logger.Int("count", n))
				}
			}
		}
	}()
}

// Create registers c under a fresh id.
func (s *SessionStore) Create(ctx context.Context, c *contact.Controller) (string, error) {
	var evicted *contact.Controller

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if s.order.Len() >= s.maxSessions {
		evicted = s.removeLocked(s.order.Back())
	}
	id := uuid.NewString()
	s.byID[id] = s.order.PushFront(&entry{id: id, ctrl: c, lastUsed: s.now()})
	n := s.order.Len()
	s.mu.Unlock()

	if evicted != nil {
		evicted.Close()
		s.logger.Warn(ctx, "session limit reached, evicted least recently used")
	}
	metrics.UpdateContactSessions(n)
	return id, nil
}

// Get returns the session and refreshes its idle clock.
func (s *SessionStore) Get(_ context.Context, id string) (*contact.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	e := el.Value.(*entry)
	e.lastUsed = s.now()
	s.order.MoveToFront(el)
	return e.ctrl, nil
}

// Delete closes and removes the session.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	el, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	c := s.removeLocked(el)
	n := s.order.Len()
	s.mu.Unlock()

	c.Close()
	metrics.UpdateContactSessions(n)
	return nil
}

// Count returns the number of open sessions.
func (s *SessionStore) Count(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Sweep closes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (s *SessionStore) Sweep() int {
	cutoff := s.now().Add(-s.idleTimeout)
	var expired []*contact.Controller

	s.mu.Lock()
	for el := s.order.Back(); el != nil; el = s.order.Back() {
		if el.Value.(*entry).lastUsed.After(cutoff) {
			break
		}
		expired = append(expired, s.removeLocked(el))
	}
	n := s.order.Len()
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		metrics.UpdateContactSessions(n)
	}
	return len(expired)
}

// Close stops the sweeper and closes every session. It is idempotent.
func (s *SessionStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()

	s.mu.Lock()
	s.closed = true
	open := make([]*contact.Controller, 0, s.order.Len())
	for el := s.order.Front(); el != nil; el = el.Next() {
		open = append(open, el.Value.(*entry).ctrl)
	}
	s.byID = make(map[string]*list.Element)
	s.order.Init()
	s.mu.Unlock()

	for _, c := range open {
		c.Close()
	}
	metrics.UpdateContactSessions(0)
	return nil
}

// removeLocked must be called with s.mu held.
func (s *SessionStore) removeLocked(el *list.Element) *contact.Controller {
	e := s.order.Remove(el).(*entry)
	delete(s.byID, e.id)
	return e.ctrl
}
