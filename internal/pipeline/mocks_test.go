package pipeline_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/store"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
	"github.com/couchcryptid/storm-alert-service/internal/pipeline"
)

// --- mocks ---

// mockFeed returns batches in order and repeats the last one.
type mockFeed struct {
	mu      sync.Mutex
	batches [][]domain.Alert
	errs    []error
	calls   atomic.Int64
}

func (m *mockFeed) ActiveAlerts(_ context.Context) ([]domain.Alert, error) {
	i := int(m.calls.Add(1) - 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if len(m.batches) == 0 {
		return []domain.Alert{}, nil
	}
	if i >= len(m.batches) {
		i = len(m.batches) - 1
	}
	return m.batches[i], nil
}

type memStore struct {
	mu      sync.Mutex
	docs    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Load(ctx context.Context, key string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return m.loadErr
	}
	data, ok := m.docs[key]
	if !ok {
		return store.ErrNotFound
	}
	return json.Unmarshal(data, dst)
}

func (m *memStore) Save(ctx context.Context, key string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.docs[key] = data
	m.saves++
	return nil
}

// cancellingFeed cancels the caller's context as it hands back its batch,
// the way a shutdown signal arriving during the fetch does.
type cancellingFeed struct {
	alerts []domain.Alert
	cancel context.CancelFunc
}

func (f *cancellingFeed) ActiveAlerts(_ context.Context) ([]domain.Alert, error) {
	f.cancel()
	return f.alerts, nil
}

// cancelOnLoadStore cancels the caller's context on the first Load, so the
// rest of the tick runs after shutdown has begun.
type cancelOnLoadStore struct {
	*memStore
	cancel context.CancelFunc
}

func (s *cancelOnLoadStore) Load(ctx context.Context, key string, dst any) error {
	s.cancel()
	return s.memStore.Load(ctx, key, dst)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (r *recordingNotifier) Send(_ context.Context, n domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.err
}

func (r *recordingNotifier) count(kind domain.NotificationKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sent {
		if s.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recordingNotifier) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

// --- helpers ---

var testNow = time.Date(2025, time.April, 27, 17, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() pipeline.Settings {
	return pipeline.Settings{
		Interval:      time.Minute,
		Location:      time.UTC,
		BreakoutAlert: 250,
		BreakoutReset: 200,
		OutbreakAlert: 7,
		OutbreakReset: 5,
	}
}

// alertsOf returns n bare alerts of one event type. Without text or
// timestamps each contributes exactly its base score.
func alertsOf(n int, event string) []domain.Alert {
	out := make([]domain.Alert, n)
	for i := range out {
		out[i] = domain.Alert{ID: fmt.Sprintf("%s-%d", event, i), Event: event, AreaDesc: "Somewhere, OK"}
	}
	return out
}

// thunderstorms returns a batch scoring exactly score points (a multiple of 10).
func thunderstorms(score int) []domain.Alert {
	return alertsOf(score/10, "Severe Thunderstorm Warning")
}
