package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/store"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
)

// Settings tunes the aggregator.
type Settings struct {
	Interval      time.Duration
	Location      *time.Location
	BreakoutAlert int
	BreakoutReset int
	OutbreakAlert int
	OutbreakReset int
}

// Aggregator turns each feed batch into a composite score, drives the
// episode trackers and publishes the resulting snapshot.
type Aggregator struct {
	feed       AlertFeed
	store      Store
	dispatcher *Dispatcher
	clock      clockwork.Clock
	logger     *slog.Logger
	metrics    *observability.Metrics
	interval   time.Duration
	loc        *time.Location

	mu        sync.Mutex
	history   domain.ScoreHistory
	breakout  *domain.EpisodeTracker
	outbreak  *domain.EpisodeTracker
	emergency *domain.EpisodeTracker

	snapshot atomic.Pointer[Snapshot]
	ready    atomic.Bool
}

// NewAggregator wires the aggregator. Tracker thresholds are validated here.
func NewAggregator(feed AlertFeed, st Store, dispatcher *Dispatcher, clock clockwork.Clock,
	settings Settings, logger *slog.Logger, metrics *observability.Metrics,
) (*Aggregator, error) {
	breakout, err := domain.NewEpisodeTracker("breakout", settings.BreakoutAlert, settings.BreakoutReset)
	if err != nil {
		return nil, err
	}
	outbreak, err := domain.NewEpisodeTracker("outbreak", settings.OutbreakAlert, settings.OutbreakReset)
	if err != nil {
		return nil, err
	}
	// Fires when the first emergency appears, re-arms once none remain.
	emergency, err := domain.NewEpisodeTracker("tornado_emergency", 1, 0)
	if err != nil {
		return nil, err
	}
	if settings.Interval <= 0 {
		return nil, errors.New("aggregator interval must be positive")
	}
	loc := settings.Location
	if loc == nil {
		loc = time.UTC
	}

	a := &Aggregator{
		feed:       feed,
		store:      st,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
		metrics:    metrics,
		interval:   settings.Interval,
		loc:        loc,
		breakout:   breakout,
		outbreak:   outbreak,
		emergency:  emergency,
	}
	a.snapshot.Store(emptySnapshot())
	return a, nil
}

// Snapshot returns the result of the last successful tick.
func (a *Aggregator) Snapshot() Snapshot {
	return *a.snapshot.Load()
}

// CheckReadiness returns nil once a tick has completed.
func (a *Aggregator) CheckReadiness(_ context.Context) error {
	if !a.ready.Load() {
		return errors.New("no aggregation tick has completed yet")
	}
	return nil
}

// Wait blocks until in-flight notifications have been delivered or failed.
func (a *Aggregator) Wait() {
	a.dispatcher.Wait()
}

// Run ticks once immediately, then every interval until ctx is cancelled.
// Tick errors are logged; the loop keeps going.
func (a *Aggregator) Run(ctx context.Context) error {
	a.logger.Info("aggregator started", "interval", a.interval, "timezone", a.loc.String())
	a.metrics.PipelineRunning.Set(1)
	defer a.metrics.PipelineRunning.Set(0)

	a.runTick(ctx)

	ticker := a.clock.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("aggregator stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			a.runTick(ctx)
		}
	}
}

func (a *Aggregator) runTick(ctx context.Context) {
	if _, err := a.Tick(ctx); err != nil && ctx.Err() == nil {
		a.logger.Error("tick failed", "error", err)
	}
}

// Tick runs one complete cycle. A feed error aborts the tick before any
// state changes. Concurrent calls are serialized.
func (a *Aggregator) Tick(ctx context.Context) (Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := a.clock.Now()
	a.metrics.Ticks.Inc()

	batch, err := a.feed.ActiveAlerts(ctx)
	if err != nil {
		a.metrics.TickErrors.Inc()
		return Snapshot{}, fmt.Errorf("fetch active alerts: %w", err)
	}

	// Cancelled after the fetch: abort before any state changes.
	if err := ctx.Err(); err != nil {
		a.metrics.TickErrors.Inc()
		return Snapshot{}, fmt.Errorf("tick cancelled: %w", err)
	}
	// From here the tick runs to completion, so a shutdown mid-tick cannot
	// make the store calls fail and reset the statistics.
	ctx = context.WithoutCancel(ctx)

	now := a.clock.Now()
	c := domain.Classify(batch)

	scored := make([]domain.ScoredAlert, 0, len(c.Scoring))
	total := 0
	for _, alert := range c.Scoring {
		contribution := domain.Score(alert, now, a.loc)
		scored = append(scored, domain.ScoredAlert{Alert: alert, Contribution: contribution})
		total += contribution
	}

	a.history.Add(now, total)
	history := a.history.Points()

	var pending []domain.Notification
	queue := func(n domain.Notification, err error) {
		if err != nil {
			a.logger.Error("render notification failed", "error", err)
			return
		}
		pending = append(pending, n)
	}

	emergencies := domain.ActiveEmergencies(c.Scoring, now)
	if a.emergency.Observe(len(emergencies)) {
		queue(domain.RenderTornadoEmergency(total, emergencies, now))
	}

	// Outbreak outranks breakout: when both would fire, only the outbreak is
	// sent and the breakout tracker stays armed for a later tick.
	if a.outbreak.Observe(len(c.Tornado)) {
		queue(domain.RenderOutbreak(total, tornadoWarnings(scored), now))
		a.breakout.Settle(total)
	} else if a.breakout.Observe(total) {
		queue(domain.RenderBreakout(total, scored, now))
	}

	stats := a.loadStats(ctx)
	if added := stats.RecordEpisodeEvents(scored); added > 0 {
		a.logger.Info("episode events recorded", "added", added)
	}
	if stats.RecordScore(total, now) {
		queue(domain.RenderHighScore(stats.HighestScoreEver, now))
	}
	a.saveStats(ctx, stats)

	for _, n := range pending {
		a.dispatcher.Dispatch(ctx, n)
	}

	snap := &Snapshot{
		Score:            total,
		Alerts:           scored,
		TornadoWarnings:  len(c.Tornado),
		Stats:            stats,
		History:          history,
		MaxScoreLastHour: domain.MaxScore(history),
		UpdatedAt:        now,
	}
	a.snapshot.Store(snap)
	a.ready.Store(true)

	a.metrics.CurrentScore.Set(float64(total))
	a.metrics.AlertsScored.Set(float64(len(scored)))
	a.metrics.TornadoWarningsActive.Set(float64(len(c.Tornado)))
	a.metrics.TickDuration.Observe(a.clock.Since(start).Seconds())
	a.logger.Debug("tick complete",
		"score", total,
		"alerts", len(batch),
		"scored", len(scored),
		"tornado_warnings", len(c.Tornado),
		"notifications", len(pending),
	)
	return *snap, nil
}

// loadStats returns the stored record or, when missing or unreadable, the
// empty default.
func (a *Aggregator) loadStats(ctx context.Context) domain.StatsRecord {
	stats := domain.NewStatsRecord()
	err := a.store.Load(ctx, KeyStats, &stats)
	switch {
	case err == nil:
		return stats
	case errors.Is(err, store.ErrNotFound):
		a.logger.Info("no stored statistics, starting fresh")
	default:
		a.logger.Error("load statistics failed, using defaults", "error", err)
		a.metrics.StoreErrors.WithLabelValues("load").Inc()
	}
	return domain.NewStatsRecord()
}

func (a *Aggregator) saveStats(ctx context.Context, stats domain.StatsRecord) {
	if err := a.store.Save(ctx, KeyStats, stats); err != nil {
		a.logger.Error("save statistics failed", "error", err)
		a.metrics.StoreErrors.WithLabelValues("save").Inc()
	}
}

func tornadoWarnings(scored []domain.ScoredAlert) []domain.ScoredAlert {
	out := make([]domain.ScoredAlert, 0, len(scored))
	for _, s := range scored {
		if s.Alert.EventType() == domain.EventTornadoWarning {
			out = append(out, s)
		}
	}
	return out
}
