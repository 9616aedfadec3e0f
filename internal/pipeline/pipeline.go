// Package pipeline runs the periodic fetch-score-notify cycle and the
// outlook check, and owns all mutable service state.
package pipeline

import (
	"context"
	"time"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

// Durable store keys.
const (
	KeyStats = "stats"
	KeyRisk  = "risk"
)

// AlertFeed returns the current batch of active alerts.
type AlertFeed interface {
	ActiveAlerts(ctx context.Context) ([]domain.Alert, error)
}

// OutlookSource returns the current day 1 outlook.
type OutlookSource interface {
	Outlook(ctx context.Context) (domain.Outlook, error)
}

// Store persists JSON documents by key. Load returns store.ErrNotFound when
// the key has never been saved.
type Store interface {
	Load(ctx context.Context, key string, dst any) error
	Save(ctx context.Context, key string, v any) error
}

// Notifier delivers one rendered notification.
type Notifier interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Snapshot is the read model served by the HTTP API. It is replaced as a
// whole at the end of every successful tick.
type Snapshot struct {
	Score            int                   `json:"score"`
	Alerts           []domain.ScoredAlert  `json:"alerts"`
	TornadoWarnings  int                   `json:"tornadoWarnings"`
	Stats            domain.StatsRecord    `json:"stats"`
	History          []domain.HistoryPoint `json:"history"`
	MaxScoreLastHour int                   `json:"maxScoreLastHour"`
	UpdatedAt        time.Time             `json:"updatedAt"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Alerts:  []domain.ScoredAlert{},
		Stats:   domain.NewStatsRecord(),
		History: []domain.HistoryPoint{},
	}
}
