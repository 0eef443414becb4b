package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/logger"
)

// Refresher keeps a Cache warm by loading on a fixed interval. Stop flips
// its liveness flag and cancels the load in flight; a load that still
// returns afterwards is dropped instead of stored.
type Refresher struct {
	src      Source
	cache    *Cache
	interval time.Duration
	logger   logger.Logger

	alive  atomic.Bool
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewRefresher builds a refresher that loads from src into cache.
func NewRefresher(src Source, cache *Cache, interval time.Duration, lg logger.Logger) *Refresher {
	if lg == nil {
		lg = logger.Get().Named("refresher")
	}
	return &Refresher{
		src:      src,
		cache:    cache,
		interval: interval,
		logger:   lg,
		done:     make(chan struct{}),
	}
}

// Start loads once right away and then every interval until Stop or ctx
// is done. A non-positive interval only does the initial load.
func (r *Refresher) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.alive.Store(true)

	go func() {
		defer close(r.done)
		r.RunOnce(ctx)
		if r.interval <= 0 {
			return
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single load and stores it if the refresher is still
// alive when the load returns.
func (r *Refresher) RunOnce(ctx context.Context) (model.Dashboard, error) {
	if !r.alive.Load() {
		return model.Dashboard{}, ErrStopped
	}
	d, err := r.src.Load(ctx)
	if !r.alive.Load() {
		r.logger.Debug(ctx, "discarding dashboard load finished after stop")
		return model.Dashboard{}, ErrStopped
	}
	if err != nil {
		r.logger.Warn(ctx, "dashboard refresh failed", logger.Error(err))
		return model.Dashboard{}, err
	}
	if kept := r.cache.Offer(d); !d.Sources.Any() && kept.Sources.Any() {
		r.logger.Warn(ctx, "every dashboard source failed, keeping the previous load",
			logger.String("previous", kept.FetchedAt.Format(time.RFC3339)))
		return kept, nil
	}
	if !d.Sources.Complete() {
		r.logger.Info(ctx, "dashboard refreshed with missing sources",
			logger.Bool("contributions", d.Sources.Contributions),
			logger.Bool("profile", d.Sources.Profile),
			logger.Bool("repositories", d.Sources.Repositories),
		)
	}
	return d, nil
}

// Alive reports whether the refresher is running.
func (r *Refresher) Alive() bool { return r.alive.Load() }

// Stop marks the refresher dead, cancels the current load and waits for
// the loop to exit or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) error {
	started := r.cancel != nil
	r.once.Do(func() {
		r.alive.Store(false)
		if started {
			r.cancel()
		}
	})
	if !started {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
