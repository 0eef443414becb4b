// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/folio/internal/adapters/mq/queue"
	"github.com/okian/folio/internal/adapters/mq/worker"
	"github.com/okian/folio/internal/adapters/repository"
	"github.com/okian/folio/internal/adapters/upstream"
	"github.com/okian/folio/internal/content"
	"github.com/okian/folio/internal/domain/contact"
	"github.com/okian/folio/internal/domain/dashboard"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/types"
	"github.com/okian/folio/pkg/logger"
	"github.com/okian/folio/pkg/metrics"
)

// Service owns the contact sessions, the delivery pipeline and the
// dashboard cache.
type Service struct {
	mu sync.RWMutex

	// Upstreams
	relay         contact.Relay
	contributions dashboard.ContributionSource
	github        dashboard.GitHubSource
	portfolio     *content.Portfolio

	// Core components
	sessions  *repository.SessionStore
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	cache     *dashboard.Cache
	refresher *dashboard.Refresher

	// Configuration
	workerCount  int
	queueSize    int
	maxSessions  int
	sessionIdle  time.Duration
	successReset time.Duration
	fetchTimeout time.Duration
	statsTTL     time.Duration
	statsRefresh time.Duration
	githubUser   string

	// State
	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU(),
		queueSize:    256,
		maxSessions:  10_000,
		sessionIdle:  30 * time.Minute,
		successReset: contact.DefaultResetAfter,
		fetchTimeout: 8 * time.Second,
		statsTTL:     10 * time.Minute,
		statsRefresh: 5 * time.Minute,
		githubUser:   "AnshitSharma",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if err := s.defaults(); err != nil {
		return err
	}

	s.logger.Info(ctx, "starting portfolio service...")

	s.sessions = repository.NewSessionStore(
		repository.WithMaxSessions(s.maxSessions),
		repository.WithIdleTimeout(s.sessionIdle),
		repository.WithLogger(s.logger.Named("sessions")),
	)
	s.sessions.Start(ctx)

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, worker.WithTimeout(s.fetchTimeout))
	s.pool.Start(ctx)

	loader := dashboard.NewLoader(s.githubUser, s.contributions, s.github,
		dashboard.WithFetchTimeout(s.fetchTimeout),
		dashboard.WithLoaderLogger(s.logger.Named("dashboard")),
	)
	s.cache = dashboard.NewCache(loader, dashboard.WithTTL(s.statsTTL))
	if s.statsRefresh > 0 {
		s.refresher = dashboard.NewRefresher(loader, s.cache, s.statsRefresh, s.logger.Named("refresher"))
		s.refresher.Start(ctx)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "portfolio service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxSessions", s.maxSessions),
		logger.String("githubUser", s.githubUser),
	)
	return nil
}

// defaults fills any upstream not supplied through options.
func (s *Service) defaults() error {
	if s.relay == nil {
		s.relay = upstream.NewRelay(upstream.DefaultRelayURL, "", "", s.fetchTimeout)
	}
	if s.contributions == nil {
		s.contributions = upstream.NewContributions(upstream.DefaultContributionsURL, s.fetchTimeout)
	}
	if s.github == nil {
		gh, err := upstream.NewGitHub(upstream.WithTimeout(s.fetchTimeout))
		if err != nil {
			return fmt.Errorf("github client: %w", err)
		}
		s.github = gh
	}
	if s.portfolio == nil {
		p, err := content.Default()
		if err != nil {
			return fmt.Errorf("portfolio content: %w", err)
		}
		s.portfolio = p
	}
	return nil
}

// Stop gracefully shuts down the service. Queued deliveries are drained
// until ctx expires; open sessions are closed afterwards.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	// new requests fail from here on; workers still reach the sessions
	// while the queue drains
	s.started = false
	refresher, pool, sessions := s.refresher, s.pool, s.sessions
	s.mu.Unlock()

	s.logger.Info(ctx, "stopping portfolio service...")

	var errs []error
	if refresher != nil {
		if err := refresher.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("refresher: %w", err))
		}
	}
	if err := pool.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("worker pool: %w", err))
	}
	if err := sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	s.logger.Info(ctx, "portfolio service stopped")
	return errors.Join(errs...)
}

// Portfolio returns the site content.
func (s *Service) Portfolio(_ context.Context) (*content.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.portfolio == nil {
		return nil, types.ErrUnavailable
	}
	return s.portfolio, nil
}

// Dashboard returns the cached open source dashboard, loading it on a miss.
func (s *Service) Dashboard(ctx context.Context) (model.Dashboard, error) {
	cache, err := running(s, func() *dashboard.Cache { return s.cache })
	if err != nil {
		return model.Dashboard{}, err
	}
	return cache.Get(ctx)
}

// OpenContact starts a new form session.
func (s *Service) OpenContact(ctx context.Context) (types.ContactSession, error) {
	store, err := running(s, func() *repository.SessionStore { return s.sessions })
	if err != nil {
		return types.ContactSession{}, err
	}
	ctrl := contact.New(s.relay,
		contact.WithResetAfter(s.successReset),
		contact.WithLogger(s.logger.Named("contact")),
	)
	id, err := store.Create(ctx, ctrl)
	if err != nil {
		ctrl.Close()
		return types.ContactSession{}, fmt.Errorf("%w: %w", types.ErrUnavailable, err)
	}
	return types.ContactSession{ID: id, State: ctrl.State()}, nil
}

// ContactState returns the current state of a session.
func (s *Service) ContactState(ctx context.Context, id string) (types.ContactSession, error) {
	ctrl, err := s.controller(ctx, id)
	if err != nil {
		return types.ContactSession{}, err
	}
	return types.ContactSession{ID: id, State: ctrl.State()}, nil
}

// UpdateContact replaces the form fields of a session.
func (s *Service) UpdateContact(ctx context.Context, id string, f contact.Form) (types.ContactSession, error) {
	ctrl, err := s.controller(ctx, id)
	if err != nil {
		return types.ContactSession{}, err
	}
	st, err := ctrl.Update(f)
	return types.ContactSession{ID: id, State: st}, err
}

// SubmitContact validates the form, moves it to submitting and queues the
// relay call. A full queue fails the submission with a busy message.
func (s *Service) SubmitContact(ctx context.Context, id string) (types.ContactSession, error) {
	ctrl, err := s.controller(ctx, id)
	if err != nil {
		return types.ContactSession{}, err
	}
	st, err := ctrl.Begin()
	if err != nil {
		return types.ContactSession{ID: id, State: st}, err
	}

	job := model.DeliveryJob{SessionID: id, EnqueuedAt: time.Now()}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Warn(ctx, "delivery not queued", logger.String("session", id), logger.Error(err))
		metrics.RecordContactSubmission("rejected")
		if errors.Is(err, queue.ErrFull) {
			st, _ = ctrl.Fail(contact.MessageBusy)
			return types.ContactSession{ID: id, State: st}, fmt.Errorf("%w: %w", types.ErrBackpressure, err)
		}
		// shutting down or the caller left; neither is backpressure
		st, _ = ctrl.Fail(contact.MessageFallback)
		if errors.Is(err, queue.ErrClosed) {
			err = fmt.Errorf("%w: %w", types.ErrUnavailable, err)
		}
		return types.ContactSession{ID: id, State: st}, err
	}
	return types.ContactSession{ID: id, State: ctrl.State()}, nil
}

// DismissContact returns a successful session to idle.
func (s *Service) DismissContact(ctx context.Context, id string) (types.ContactSession, error) {
	ctrl, err := s.controller(ctx, id)
	if err != nil {
		return types.ContactSession{}, err
	}
	st, err := ctrl.Dismiss()
	return types.ContactSession{ID: id, State: st}, err
}

// CloseContact closes and forgets a session.
func (s *Service) CloseContact(ctx context.Context, id string) error {
	store, err := running(s, func() *repository.SessionStore { return s.sessions })
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Deliver runs the queued relay call for a session. Workers call it.
func (s *Service) Deliver(ctx context.Context, sessionID string) (contact.Outcome, error) {
	s.mu.RLock()
	store := s.sessions
	s.mu.RUnlock()
	if store == nil {
		return contact.OutcomeDiscarded, contact.ErrClosed
	}
	ctrl, err := store.Get(ctx, sessionID)
	if err != nil {
		// the session expired or was closed while queued
		return contact.OutcomeDiscarded, fmt.Errorf("%w: %w", contact.ErrClosed, err)
	}
	return ctrl.Deliver(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"githubUser":  s.githubUser,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxSessions": s.maxSessions,
	}

	if s.started {
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
		stats["queueLength"] = s.queue.Len()
		stats["openSessions"] = s.sessions.Count(ctx)
		stats["refresherAlive"] = s.refresher != nil && s.refresher.Alive()
		if d, ok := s.cache.Peek(); ok {
			stats["dashboardFetchedAt"] = d.FetchedAt
			stats["dashboardComplete"] = d.Sources.Complete()
		}
	}
	if n, err := metrics.Gather(); err == nil {
		stats["metricFamilies"] = n
	}
	return stats
}

// Uptime reports how long the service has been running.
func (s *Service) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return time.Since(s.startedAt)
}

func (s *Service) controller(ctx context.Context, id string) (*contact.Controller, error) {
	store, err := running(s, func() *repository.SessionStore { return s.sessions })
	if err != nil {
		return nil, err
	}
	ctrl, err := store.Get(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return ctrl, nil
}

// running reads a component under the lock, failing when stopped.
func running[T any](s *Service, get func() T) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var zero T
	if !s.started {
		return zero, types.ErrUnavailable
	}
	return get(), nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", types.ErrNotFound, err)
	case errors.Is(err, repository.ErrClosed):
		return fmt.Errorf("%w: %w", types.ErrUnavailable, err)
	}
	return err
}
