package domain

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/google/uuid"
)

// NotificationKind identifies the trigger class that produced a notification.
type NotificationKind string

const (
	KindSevereWeatherBreakout NotificationKind = "severe_weather_breakout"
	KindTornadoOutbreak       NotificationKind = "tornado_outbreak"
	KindTornadoEmergency      NotificationKind = "tornado_emergency"
	KindRiskOutlook           NotificationKind = "risk_outlook"
	KindNewHighScore          NotificationKind = "new_high_score"
)

// Notification is a rendered payload ready for delivery.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Subject   string           `json:"subject"`
	HTMLBody  string           `json:"htmlBody"`
	Score     int              `json:"score"`
	CreatedAt time.Time        `json:"createdAt"`
}

type alertRow struct {
	Event        string
	Headline     string
	Areas        string
	Contribution int
}

type notificationView struct {
	Title string
	Lead  string
	Score int
	Lines []string
	Rows  []alertRow
	Time  string
}

var notificationTmpl = template.Must(template.New("notification").Parse(`
<h1 style="font-family: Arial, sans-serif; color: #333;">{{.Title}}</h1>
<div style="background: #fff; padding: 1.5rem; border-radius: 8px; box-shadow: 0 2px 5px rgba(0, 0, 0, 0.1);">
  <h2>Current Score: {{.Score}}</h2>
  {{- if .Lead}}
  <p>{{.Lead}}</p>
  {{- end}}
  {{- range .Lines}}
  <p>{{.}}</p>
  {{- end}}
  {{- if .Rows}}
  <table style="border-collapse: collapse; width: 100%;">
    <tr><th align="left">Event</th><th align="left">Areas</th><th align="right">Points</th></tr>
    {{- range .Rows}}
    <tr>
      <td>{{.Event}}{{if .Headline}}<br><small>{{.Headline}}</small>{{end}}</td>
      <td>{{.Areas}}</td>
      <td align="right">{{.Contribution}}</td>
    </tr>
    {{- end}}
  </table>
  {{- end}}
  <p style="color: #888; font-size: 0.8rem;">Generated {{.Time}}</p>
</div>
`))

// RenderBreakout builds the severe-weather-breakout notification. Alerts are
// listed highest contribution first.
func RenderBreakout(score int, scored []ScoredAlert, now time.Time) (Notification, error) {
	view := notificationView{
		Title: "🚨 Severe Weather Alert",
		Lead:  fmt.Sprintf("The composite severe weather score reached %d.", score),
		Score: score,
		Rows:  rowsByContribution(scored),
	}
	return render(KindSevereWeatherBreakout, fmt.Sprintf("Severe Weather Alert: score %d", score), score, view, now)
}

// RenderOutbreak builds the tornado-outbreak notification.
func RenderOutbreak(score int, tornadoWarnings []ScoredAlert, now time.Time) (Notification, error) {
	areas := make([]Alert, 0, len(tornadoWarnings))
	for _, s := range tornadoWarnings {
		areas = append(areas, s.Alert)
	}
	view := notificationView{
		Title: "🌪️ Tornado Outbreak",
		Lead:  fmt.Sprintf("%d tornado warnings are in effect.", len(tornadoWarnings)),
		Score: score,
		Lines: []string{"Affected areas: " + MergeAreas(areas).String()},
		Rows:  rowsByContribution(tornadoWarnings),
	}
	subject := fmt.Sprintf("Tornado Outbreak: %d active tornado warnings", len(tornadoWarnings))
	return render(KindTornadoOutbreak, subject, score, view, now)
}

// RenderTornadoEmergency builds the tornado-emergency onset notification.
func RenderTornadoEmergency(score int, emergencies []Alert, now time.Time) (Notification, error) {
	rows := make([]alertRow, 0, len(emergencies))
	for _, a := range emergencies {
		rows = append(rows, alertRow{Event: a.Event, Headline: a.Headline, Areas: a.Areas().String()})
	}
	view := notificationView{
		Title: "‼️ Tornado Emergency",
		Lead:  "A tornado emergency has been issued. Life-threatening conditions are in progress.",
		Score: score,
		Lines: []string{"Locations: " + MergeAreas(emergencies).String()},
		Rows:  rows,
	}
	subject := "TORNADO EMERGENCY: " + MergeAreas(emergencies).String()
	return render(KindTornadoEmergency, subject, score, view, now)
}

// RenderHighScore builds the "new high score" notification.
func RenderHighScore(record HighScore, now time.Time) (Notification, error) {
	view := notificationView{
		Title: "📈 New High Score",
		Lead:  fmt.Sprintf("A new all-time high composite score of %d was recorded.", record.Score),
		Score: record.Score,
	}
	return render(KindNewHighScore, fmt.Sprintf("New High Score: %d", record.Score), record.Score, view, now)
}

// RenderRiskOutlook builds the daily risk-outlook notification.
func RenderRiskOutlook(snap RiskSnapshot, now time.Time) (Notification, error) {
	lines := []string{fmt.Sprintf("Categorical risk: %s", snap.Risk)}
	if snap.MaxTornadoProbability > 0 {
		lines = append(lines, fmt.Sprintf("Max tornado probability: %.0f%%", snap.MaxTornadoProbability*100))
	}
	view := notificationView{
		Title: "📋 SPC Day 1 Outlook",
		Lead:  snap.Summary,
		Lines: lines,
	}
	return render(KindRiskOutlook, "Day 1 Outlook: "+snap.Risk+" risk", 0, view, now)
}

func render(kind NotificationKind, subject string, score int, view notificationView, now time.Time) (Notification, error) {
	view.Time = now.UTC().Format(time.RFC1123)

	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, view); err != nil {
		return Notification{}, fmt.Errorf("render %s notification: %w", kind, err)
	}
	return Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Subject:   subject,
		HTMLBody:  buf.String(),
		Score:     score,
		CreatedAt: now,
	}, nil
}

func rowsByContribution(scored []ScoredAlert) []alertRow {
	sorted := make([]ScoredAlert, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Contribution > sorted[j].Contribution
	})
	rows := make([]alertRow, 0, len(sorted))
	for _, s := range sorted {
		rows = append(rows, alertRow{
			Event:        s.Alert.Event,
			Headline:     s.Alert.Headline,
			Areas:        s.Alert.Areas().String(),
			Contribution: s.Contribution,
		})
	}
	return rows
}
