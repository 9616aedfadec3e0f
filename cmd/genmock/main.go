// Command genmock writes a deterministic NWS active-alerts GeoJSON fixture
// for local runs and tests, then scores it with the real domain package so
// the expected composite score can be pasted into assertions.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/active_alerts.json \
//	  -tornado-warnings 8 -severe 12 -emergency
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/storm-alert-service/internal/adapter/nws"
	"github.com/couchcryptid/storm-alert-service/internal/domain"
)

// Counties cycled through when building area descriptions.
var counties = []string{
	"Tulsa, OK", "Creek, OK", "Wagoner, OK", "Rogers, OK", "Osage, OK",
	"Okmulgee, OK", "Cleveland, OK", "McClain, OK", "Grady, OK", "Canadian, OK",
	"Sedgwick, KS", "Butler, KS", "Harvey, KS", "Reno, KS",
}

var descriptions = []string{
	"At 5:02 PM CDT, a confirmed tornado was located near Sapulpa, moving northeast at 45 mph.\n\nHAZARD...Damaging tornado and golf ball size hail.\n\nSOURCE...Radar confirmed tornado.",
	"At 5:10 PM CDT, a severe thunderstorm capable of producing a tornado was located near Bixby, moving east at 35 mph.\n\nHAZARD...Tornado and quarter size hail.\n\nSOURCE...Radar indicated rotation.",
	"At 5:15 PM CDT, a tornado producing a debris signature was observed near Moore, moving northeast at 55 mph.\n\nHAZARD...Damaging tornado.\n\nSOURCE...Radar confirmed tornado.",
}

type geoJSON struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Properties properties `json:"properties"`
}

type properties struct {
	ID          string `json:"id"`
	Event       string `json:"event"`
	Headline    string `json:"headline"`
	Description string `json:"description"`
	AreaDesc    string `json:"areaDesc"`
	Sent        string `json:"sent"`
	Effective   string `json:"effective"`
	Onset       string `json:"onset"`
	Expires     string `json:"expires"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the GeoJSON fixture")
	at := flag.String("at", "2025-04-27T22:00:00Z", "fixture reference time (RFC3339)")
	tornadoWarnings := flag.Int("tornado-warnings", 8, "number of tornado warnings")
	severe := flag.Int("severe", 12, "number of severe thunderstorm warnings")
	watches := flag.Int("watches", 2, "number of tornado watches")
	emergency := flag.Bool("emergency", false, "escalate the first tornado warning to a tornado emergency")
	tz := flag.String("timezone", "America/Chicago", "timezone used for night-time scoring")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	ref, err := time.Parse(time.RFC3339, *at)
	if err != nil {
		return fmt.Errorf("invalid -at: %w", err)
	}
	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("invalid -timezone: %w", err)
	}

	// Fixed clock so issuance times are reproducible.
	clock := clockwork.NewFakeClockAt(ref)

	doc := geoJSON{Type: "FeatureCollection", Features: []feature{}}
	for i := range *tornadoWarnings {
		doc.Features = append(doc.Features, tornadoWarning(clock, i, *emergency && i == 0))
	}
	for i := range *severe {
		doc.Features = append(doc.Features, severeThunderstorm(clock, i))
	}
	for i := range *watches {
		doc.Features = append(doc.Features, tornadoWatch(clock, i))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Decode through the real feed parser so the printed score matches what
	// the service computes for this file.
	alerts, err := nws.DecodeAlerts(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode generated fixture: %w", err)
	}

	if err := writeFile(*out, data); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d alerts to %s", len(alerts), *out)

	printStats(alerts, ref, loc)
	return nil
}

func tornadoWarning(clock clockwork.Clock, i int, emergency bool) feature {
	sent := clock.Now().Add(-time.Duration(3+i*4) * time.Minute)
	headline := fmt.Sprintf("Tornado Warning issued %s until %s by NWS Tulsa OK",
		sent.Format("Jan 2 at 3:04PM MST"), sent.Add(45*time.Minute).Format("3:04PM MST"))
	desc := descriptions[i%len(descriptions)]
	if emergency {
		headline = "TORNADO EMERGENCY for Moore and south Oklahoma City"
		desc = "THIS IS A PARTICULARLY DANGEROUS SITUATION. TORNADO EMERGENCY FOR MOORE.\n\n" + desc
	}
	return newFeature(i, "Tornado Warning", headline, desc, areaDesc(i, 2+i%4), sent, 45*time.Minute)
}

func severeThunderstorm(clock clockwork.Clock, i int) feature {
	sent := clock.Now().Add(-time.Duration(5+i*3) * time.Minute)
	desc := fmt.Sprintf("At 4:%02d PM CDT, a severe thunderstorm was located near Stillwater, moving east at 40 mph.\n\n"+
		"HAZARD...%d mph wind gusts and %s inch hail.", 10+i, 60+(i%3)*10, []string{"1.00", "1.75", "0.75"}[i%3])
	return newFeature(100+i, "Severe Thunderstorm Warning", "Severe Thunderstorm Warning issued by NWS Norman OK",
		desc, areaDesc(i+3, 1+i%3), sent, time.Hour)
}

func tornadoWatch(clock clockwork.Clock, i int) feature {
	sent := clock.Now().Add(-time.Duration(90+i*30) * time.Minute)
	return newFeature(200+i, "Tornado Watch", fmt.Sprintf("Tornado Watch %d issued", 150+i),
		"Tornado Watch remains valid until 11 PM CDT.", areaDesc(i, 11), sent, 6*time.Hour)
}

func newFeature(n int, event, headline, desc, areas string, sent time.Time, lifetime time.Duration) feature {
	id := fmt.Sprintf("urn:oid:2.49.0.1.840.0.mock.%03d", n)
	ts := sent.UTC().Format(time.RFC3339)
	return feature{
		ID:   "https://api.weather.gov/alerts/" + id,
		Type: "Feature",
		Properties: properties{
			ID:          id,
			Event:       event,
			Headline:    headline,
			Description: desc,
			AreaDesc:    areas,
			Sent:        ts,
			Effective:   ts,
			Onset:       ts,
			Expires:     sent.Add(lifetime).UTC().Format(time.RFC3339),
		},
	}
}

func areaDesc(start, n int) string {
	parts := make([]string, 0, n)
	for j := range n {
		parts = append(parts, counties[(start+j)%len(counties)])
	}
	return strings.Join(parts, "; ")
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(alerts []domain.Alert, now time.Time, loc *time.Location) {
	c := domain.Classify(alerts)

	total := 0
	byCategory := map[domain.Category]int{}
	for _, a := range c.Scoring {
		b := domain.Explain(a, now, loc)
		total += b.Total
		byCategory[b.Category] += b.Total
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Reference time: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Printf("Alerts: %d (scoring %d, tornado warnings %d)\n", len(alerts), len(c.Scoring), len(c.Tornado))
	fmt.Printf("Active tornado emergencies: %d\n", len(domain.ActiveEmergencies(c.Scoring, now)))
	categories := make([]domain.Category, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	for _, category := range categories {
		fmt.Printf("  %-28s %d\n", category, byCategory[category])
	}
	fmt.Printf("Expected composite score: %d\n", total)
}
