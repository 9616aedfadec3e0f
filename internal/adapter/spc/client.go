// Package spc scrapes the Storm Prediction Center day 1 convective outlook.
package spc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

const maxSummaryLen = 200

var (
	riskExpr    = regexp.MustCompile(`THERE IS AN?\s+(MARGINAL|SLIGHT|ENHANCED|MODERATE|HIGH)\s+RISK`)
	summaryExpr = regexp.MustCompile(`(?s)\.\.\.SUMMARY\.\.\.\s*(.+?)(?:\n\s*\n|\.\.\.|$)`)
	spaceExpr   = regexp.MustCompile(`\s+`)
)

// Client implements pipeline.OutlookSource.
type Client struct {
	outlookURL string
	tornadoURL string
	userAgent  string
	client     *http.Client
	logger     *slog.Logger
}

// NewClient wires the outlook page URL and the tornado probability GeoJSON
// URL. An empty tornadoURL disables the probability lookup.
func NewClient(outlookURL, tornadoURL, userAgent string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		outlookURL: outlookURL,
		tornadoURL: tornadoURL,
		userAgent:  userAgent,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Outlook fetches the day 1 categorical risk, summary and the highest
// tornado probability. A failed probability lookup is logged and leaves the
// probability at zero.
func (c *Client) Outlook(ctx context.Context) (domain.Outlook, error) {
	doc, err := c.fetchDocument(ctx)
	if err != nil {
		return domain.Outlook{}, err
	}

	text := productText(doc)
	category, err := parseCategory(text)
	if err != nil {
		return domain.Outlook{}, err
	}

	o := domain.Outlook{
		Category: category,
		Summary:  parseSummary(text),
	}

	if c.tornadoURL != "" {
		prob, err := c.maxTornadoProbability(ctx)
		if err != nil {
			c.logger.Warn("tornado probability lookup failed", "error", err)
		} else {
			o.MaxTornadoProbability = prob
		}
	}
	return o, nil
}

func (c *Client) fetchDocument(ctx context.Context) (*goquery.Document, error) {
	resp, err := c.get(ctx, c.outlookURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse outlook document: %w", err)
	}
	return doc, nil
}

func (c *Client) maxTornadoProbability(ctx context.Context) (float64, error) {
	resp, err := c.get(ctx, c.tornadoURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	var fc struct {
		Features []struct {
			Properties struct {
				Label string `json:"LABEL"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		return 0, fmt.Errorf("decode tornado probabilities: %w", err)
	}

	highest := 0.0
	for _, f := range fc.Features {
		p, err := strconv.ParseFloat(strings.TrimSpace(f.Properties.Label), 64)
		if err != nil {
			// SIGN (significant hatching) and similar labels are not probabilities.
			continue
		}
		if p > highest {
			highest = p
		}
	}
	return highest, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck,gosec // discarding failed response
		return nil, fmt.Errorf("spc returned %s for %s", resp.Status, url)
	}
	return resp, nil
}

// productText returns the preformatted text product, falling back to the
// whole page body when the page layout has no <pre> block.
func productText(doc *goquery.Document) string {
	if pre := doc.Find("pre").First(); pre.Length() > 0 {
		return pre.Text()
	}
	return doc.Find("body").Text()
}

func parseCategory(text string) (string, error) {
	upper := strings.ToUpper(text)
	if m := riskExpr.FindStringSubmatch(upper); m != nil {
		risk, _ := domain.NormalizeRisk(m[1])
		return risk, nil
	}
	switch {
	case strings.Contains(upper, "NO SEVERE THUNDERSTORM AREAS FORECAST"):
		return domain.RiskNone, nil
	case strings.Contains(upper, "GENERAL THUNDERSTORM"):
		return domain.RiskThunderstorm, nil
	}
	return "", errors.New("outlook text has no categorical risk statement")
}

func parseSummary(text string) string {
	m := summaryExpr.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	summary := strings.TrimSpace(spaceExpr.ReplaceAllString(m[1], " "))
	if utf8.RuneCountInString(summary) <= maxSummaryLen {
		return summary
	}
	return string([]rune(summary)[:maxSummaryLen])
}
