package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/observability"
)

const dispatchTimeout = 30 * time.Second

// Dispatcher sends notifications in the background. Deliveries are
// best-effort: failures are logged and counted, never retried.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	metrics  *observability.Metrics
	wg       sync.WaitGroup
}

// NewDispatcher wraps notifier.
func NewDispatcher(notifier Notifier, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{notifier: notifier, logger: logger, metrics: metrics}
}

// Dispatch starts delivery of n and returns immediately. The delivery
// outlives ctx cancellation so shutdown can drain it with Wait.
func (d *Dispatcher) Dispatch(ctx context.Context, n domain.Notification) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()

		if err := d.notifier.Send(sendCtx, n); err != nil {
			d.logger.Error("notification delivery failed", "kind", n.Kind, "id", n.ID, "error", err)
			d.metrics.Notifications.WithLabelValues(string(n.Kind), "error").Inc()
			return
		}
		d.logger.Info("notification delivered", "kind", n.Kind, "id", n.ID, "subject", n.Subject)
		d.metrics.Notifications.WithLabelValues(string(n.Kind), "sent").Inc()
	}()
}

// Wait blocks until every dispatched notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// MultiNotifier fans a notification out to several channels. Every channel
// is attempted; the errors are joined.
type MultiNotifier []Notifier

// Send delivers n to every channel.
func (m MultiNotifier) Send(ctx context.Context, n domain.Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Send(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogNotifier writes notifications to the log instead of delivering them.
// Used when no channel is configured and by the one-shot CLI commands.
type LogNotifier struct {
	Logger *slog.Logger
}

// Send logs n.
func (l LogNotifier) Send(_ context.Context, n domain.Notification) error {
	l.Logger.Warn("notification (no delivery channel)", "kind", n.Kind, "subject", n.Subject, "score", n.Score)
	return nil
}
