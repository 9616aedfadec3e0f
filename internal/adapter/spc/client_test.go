package spc

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

const enhancedPage = `<html><body>
<table><tr><td>navigation</td></tr></table>
<pre>
   SPC AC 271630

   Day 1 Convective Outlook
   NWS Storm Prediction Center Norman OK
   1130 AM CDT Sun Apr 27 2025

   Valid 271630Z - 281200Z

   ...THERE IS AN ENHANCED RISK OF SEVERE THUNDERSTORMS ACROSS PARTS OF
   EASTERN OKLAHOMA AND WESTERN ARKANSAS...

   ...SUMMARY...
   Scattered severe thunderstorms are expected this afternoon and
   evening, with a few tornadoes, large hail, and damaging winds.

   ...Eastern Oklahoma...
   A warm front will lift north through the day.
</pre>
</body></html>`

const tornadoGeoJSON = `{"type":"FeatureCollection","features":[
  {"properties":{"LABEL":"0.02"}},
  {"properties":{"LABEL":"0.10"}},
  {"properties":{"LABEL":"SIGN"}},
  {"properties":{"LABEL":"0.05"}}
]}`

func newOutlookServer(t *testing.T, page, geojson string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/day1otlk.html", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	})
	mux.HandleFunc("/torn.geojson", func(w http.ResponseWriter, _ *http.Request) {
		if geojson == "" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(geojson))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(srv.URL+"/day1otlk.html", srv.URL+"/torn.geojson", "test-agent",
		5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestClient_Outlook(t *testing.T) {
	srv := newOutlookServer(t, enhancedPage, tornadoGeoJSON)

	o, err := newTestClient(srv).Outlook(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.RiskEnhanced, o.Category)
	assert.Equal(t, "Scattered severe thunderstorms are expected this afternoon and evening, with a few tornadoes, large hail, and damaging winds.", o.Summary)
	assert.InDelta(t, 0.10, o.MaxTornadoProbability, 1e-9)
}

func TestClient_Outlook_ProbabilityFailureIsNotFatal(t *testing.T) {
	srv := newOutlookServer(t, enhancedPage, "")

	o, err := newTestClient(srv).Outlook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RiskEnhanced, o.Category)
	assert.Zero(t, o.MaxTornadoProbability)
}

func TestClient_Outlook_PageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "test-agent", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Outlook(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"...THERE IS A SLIGHT RISK OF SEVERE THUNDERSTORMS...", domain.RiskSlight},
		{"...There is a Marginal Risk of severe thunderstorms...", domain.RiskMarginal},
		{"...THERE IS A MODERATE RISK OF SEVERE THUNDERSTORMS...", domain.RiskModerate},
		{"...THERE IS A HIGH RISK OF SEVERE THUNDERSTORMS...", domain.RiskHigh},
		{"...NO SEVERE THUNDERSTORM AREAS FORECAST...", domain.RiskNone},
		{"General thunderstorms are possible across Florida.", domain.RiskThunderstorm},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			got, err := parseCategory(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := parseCategory("maintenance page")
	require.Error(t, err)
}

func TestParseSummary_Truncates(t *testing.T) {
	long := "...SUMMARY...\n" + strings.Repeat("word ", 100)
	got := parseSummary(long)
	assert.Equal(t, maxSummaryLen, len([]rune(got)))
	assert.Empty(t, parseSummary("no summary here"))
}

func TestProductText_FallsBackToBody(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<html><body><p>THERE IS A SLIGHT RISK</p></body></html>"))
	require.NoError(t, err)
	assert.Contains(t, productText(doc), "SLIGHT RISK")
}
