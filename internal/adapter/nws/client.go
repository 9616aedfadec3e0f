// Package nws fetches active alerts from the National Weather Service API.
package nws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

// Client implements pipeline.AlertFeed against /alerts/active.
type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a feed client. The NWS API rejects requests without a
// User-Agent identifying the caller.
func NewClient(url, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:        url,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// ActiveAlerts fetches and decodes the current active-alerts collection.
// An empty collection is valid and returns an empty slice.
func (c *Client) ActiveAlerts(ctx context.Context) ([]domain.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create alerts request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/geo+json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch alerts: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	alerts, err := DecodeAlerts(resp.Body)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("alerts fetched", "count", len(alerts), "duration", time.Since(start))
	return alerts, nil
}

// DecodeAlerts parses a GeoJSON active-alerts document. A problem document
// or a body without a features array is an error.
func DecodeAlerts(r io.Reader) ([]domain.Alert, error) {
	var doc alertCollection
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode alerts: %w", err)
	}
	if doc.Features == nil {
		if doc.Title != "" || doc.Detail != "" {
			return nil, fmt.Errorf("upstream problem: %s: %s", doc.Title, doc.Detail)
		}
		return nil, errors.New("decode alerts: response has no features array")
	}

	alerts := make([]domain.Alert, 0, len(*doc.Features))
	for _, f := range *doc.Features {
		p := f.Properties
		id := p.ID
		if id == "" {
			id = f.ID
		}
		alerts = append(alerts, domain.Alert{
			ID:          id,
			Event:       p.Event,
			Headline:    p.Headline,
			Description: p.Description,
			AreaDesc:    p.AreaDesc,
			Sent:        parseTime(p.Sent),
			Effective:   parseTime(p.Effective),
			Onset:       parseTime(p.Onset),
			Expires:     parseTime(p.Expires),
		})
	}
	return alerts, nil
}

func statusError(resp *http.Response) error {
	var problem alertCollection
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(body, &problem) == nil && problem.Detail != "" {
		return fmt.Errorf("alerts API returned status %d: %s", resp.StatusCode, problem.Detail)
	}
	return fmt.Errorf("alerts API returned status %d", resp.StatusCode)
}

// parseTime returns the zero time for absent or malformed timestamps.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// alertCollection covers both the FeatureCollection and the RFC 7807
// problem document the API returns on failure.
type alertCollection struct {
	Features *[]struct {
		ID         string `json:"id"`
		Properties struct {
			ID          string `json:"id"`
			Event       string `json:"event"`
			Headline    string `json:"headline"`
			Description string `json:"description"`
			AreaDesc    string `json:"areaDesc"`
			Sent        string `json:"sent"`
			Effective   string `json:"effective"`
			Onset       string `json:"onset"`
			Expires     string `json:"expires"`
		} `json:"properties"`
	} `json:"features"`

	Title  string `json:"title"`
	Detail string `json:"detail"`
}
