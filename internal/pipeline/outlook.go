package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/store"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
)

// ErrNoOutlook is returned by Current before any outlook has been stored.
var ErrNoOutlook = errors.New("no outlook recorded yet")

// OutlookSettings tunes the outlook checker.
type OutlookSettings struct {
	Interval   time.Duration
	Location   *time.Location
	CutoffHour int
	MinRisk    string
}

// OutlookChecker keeps the stored risk snapshot in step with the day 1
// outlook and announces notable days.
type OutlookChecker struct {
	source     OutlookSource
	store      Store
	dispatcher *Dispatcher
	clock      clockwork.Clock
	settings   OutlookSettings
	logger     *slog.Logger
	metrics    *observability.Metrics

	mu sync.Mutex
}

// NewOutlookChecker wires the checker.
func NewOutlookChecker(source OutlookSource, st Store, dispatcher *Dispatcher, clock clockwork.Clock,
	settings OutlookSettings, logger *slog.Logger, metrics *observability.Metrics,
) *OutlookChecker {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	return &OutlookChecker{
		source:     source,
		store:      st,
		dispatcher: dispatcher,
		clock:      clock,
		settings:   settings,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run checks once immediately, then every interval until ctx is cancelled.
func (c *OutlookChecker) Run(ctx context.Context) error {
	c.logger.Info("outlook checker started", "interval", c.settings.Interval, "min_risk", c.settings.MinRisk)

	c.runCheck(ctx)

	ticker := c.clock.NewTicker(c.settings.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("outlook checker stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			c.runCheck(ctx)
		}
	}
}

func (c *OutlookChecker) runCheck(ctx context.Context) {
	if _, _, err := c.Check(ctx); err != nil && ctx.Err() == nil {
		c.logger.Error("outlook check failed", "error", err)
	}
}

// Check fetches the outlook and replaces the stored snapshot when the
// category changed or a new local day has started past the cutoff hour.
// It reports the current snapshot and whether it was replaced.
func (c *OutlookChecker) Check(ctx context.Context) (domain.RiskSnapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	o, err := c.source.Outlook(ctx)
	if err != nil {
		c.metrics.OutlookChecks.WithLabelValues("error").Inc()
		return domain.RiskSnapshot{}, false, fmt.Errorf("fetch outlook: %w", err)
	}

	if err := ctx.Err(); err != nil {
		c.metrics.OutlookChecks.WithLabelValues("error").Inc()
		return domain.RiskSnapshot{}, false, fmt.Errorf("outlook check cancelled: %w", err)
	}
	ctx = context.WithoutCancel(ctx)

	prev, err := c.load(ctx)
	if err != nil && !errors.Is(err, ErrNoOutlook) {
		c.logger.Error("load risk snapshot failed, treating as empty", "error", err)
		c.metrics.StoreErrors.WithLabelValues("load").Inc()
	}

	now := c.clock.Now()
	if !domain.ShouldReplaceRisk(prev, o, now, c.settings.Location, c.settings.CutoffHour) {
		c.metrics.OutlookChecks.WithLabelValues("unchanged").Inc()
		return prev, false, nil
	}

	snap := domain.NewRiskSnapshot(o, now)
	if err := c.store.Save(ctx, KeyRisk, snap); err != nil {
		c.logger.Error("save risk snapshot failed", "error", err)
		c.metrics.StoreErrors.WithLabelValues("save").Inc()
	}
	c.metrics.OutlookChecks.WithLabelValues("replaced").Inc()
	c.logger.Info("risk outlook updated", "previous", prev.Risk, "risk", snap.Risk)

	if domain.RiskRank(snap.Risk) >= domain.RiskRank(c.settings.MinRisk) {
		n, err := domain.RenderRiskOutlook(snap, now)
		if err != nil {
			c.logger.Error("render notification failed", "error", err)
		} else {
			c.dispatcher.Dispatch(ctx, n)
		}
	}
	return snap, true, nil
}

// Current returns the stored snapshot, or ErrNoOutlook.
func (c *OutlookChecker) Current(ctx context.Context) (domain.RiskSnapshot, error) {
	return c.load(ctx)
}

func (c *OutlookChecker) load(ctx context.Context) (domain.RiskSnapshot, error) {
	var snap domain.RiskSnapshot
	err := c.store.Load(ctx, KeyRisk, &snap)
	if errors.Is(err, store.ErrNotFound) {
		return domain.RiskSnapshot{}, ErrNoOutlook
	}
	if err != nil {
		return domain.RiskSnapshot{}, fmt.Errorf("load risk snapshot: %w", err)
	}
	return snap, nil
}
