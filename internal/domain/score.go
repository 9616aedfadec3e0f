package domain

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Category is the first-matching severity class of an alert.
type Category string

const (
	CategoryNone               Category = ""
	CategoryTornadoEmergency   Category = "tornado_emergency"
	CategoryPDS                Category = "pds"
	CategoryTornadoWarning     Category = "tornado_warning"
	CategorySevereThunderstorm Category = "severe_thunderstorm_warning"
	CategoryTornadoWatch       Category = "tornado_watch"
)

var baseScores = map[Category]int{
	CategoryTornadoEmergency:   150,
	CategoryPDS:                100,
	CategoryTornadoWarning:     25,
	CategorySevereThunderstorm: 10,
	CategoryTornadoWatch:       5,
}

const (
	recencyWindow = 5 * time.Minute
	decaySteps    = 10
)

var (
	// windRe matches "winds up to 110 mph", "wind gusts near 80 mph", "winds 75 mph".
	windRe = regexp.MustCompile(`winds?(?:\s+gusts)?\s+(?:up\s+to\s+|near\s+)?(\d{2,3})\s*mph`)

	// hailRe matches "hail up to 2.75 inches", "hail up to 1 in".
	hailRe = regexp.MustCompile(`hail\s+up\s+to\s+(\d+(?:\.\d+)?)\s*(?:inch(?:es)?|in)\b`)

	// widthRe matches "path width of 0.75 miles", "damage width 1 mi". The
	// gap stops at a sentence break so a later distance is never read.
	widthRe = regexp.MustCompile(`\bwidth\b[^.\d]{0,40}?(\d+(?:\.\d+)?)\s*(?:miles?|mi)\b`)

	// wideRe matches "1.5 miles wide", "a 1 mile wide tornado".
	wideRe = regexp.MustCompile(`(?:^|[^.\d])(\d+(?:\.\d+)?)\s*(?:miles?|mi)\s+wide\b`)

	// motionRe matches "moving east at 55 mph", "moving at 70 mph", "moving 50 mph".
	motionRe = regexp.MustCompile(`moving\s+(?:[a-z]+\s+)?(?:at\s+)?(\d{1,3})\s*mph`)
)

// Bonus is one named additive component of a score.
type Bonus struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Breakdown explains how a contribution was computed.
type Breakdown struct {
	Category Category `json:"category"`
	Base     int      `json:"base"`
	Bonuses  []Bonus  `json:"bonuses,omitempty"`
	Decay    int      `json:"decay"`
	Total    int      `json:"total"`
}

// Score returns the non-negative contribution of one alert at now. Local
// hours (night bonus) are evaluated in loc.
func Score(a Alert, now time.Time, loc *time.Location) int {
	return Explain(a, now, loc).Total
}

// Explain runs the scoring rules and returns every component.
func Explain(a Alert, now time.Time, loc *time.Location) Breakdown {
	if loc == nil {
		loc = time.UTC
	}

	b := Breakdown{Category: Categorize(a)}
	if b.Category == CategoryNone {
		return b
	}
	b.Base = baseScores[b.Category]

	desc := strings.ToLower(a.Description)
	b.Bonuses = append(b.Bonuses, corroborationBonuses(desc)...)
	if a.EventType() == EventTornadoWarning {
		b.Bonuses = append(b.Bonuses, tornadoWarningBonuses(a, desc, now, loc)...)
	}
	if pts := areaBonus(a.AreaDesc); pts > 0 {
		b.Bonuses = append(b.Bonuses, Bonus{Name: "area", Points: pts})
	}

	total := b.Base
	for _, bonus := range b.Bonuses {
		total += bonus.Points
	}

	if b.Category != CategoryTornadoWatch {
		b.Decay = decayPoints(a.Sent, a.Expires, now)
	}
	total -= b.Decay
	if total < 0 {
		total = 0
	}
	b.Total = total
	return b
}

// Categorize returns the highest-priority category that matches, or
// CategoryNone when the alert does not score.
func Categorize(a Alert) Category {
	switch {
	case a.IsTornadoEmergency():
		return CategoryTornadoEmergency
	case a.IsPDS():
		return CategoryPDS
	}
	switch a.EventType() {
	case EventTornadoWarning:
		return CategoryTornadoWarning
	case EventSevereThunderstorm:
		return CategorySevereThunderstorm
	case EventTornadoWatch:
		return CategoryTornadoWatch
	default:
		return CategoryNone
	}
}

func corroborationBonuses(desc string) []Bonus {
	phrases := currentPhrases()
	var out []Bonus
	if containsAny(desc, phrases.Corroboration.Confirmed) {
		out = append(out, Bonus{Name: "confirmed", Points: 30})
	}
	if containsAny(desc, phrases.Corroboration.Debris) {
		out = append(out, Bonus{Name: "debris", Points: 50})
	}
	if mph, ok := matchNumber(windRe, desc); ok {
		if pts := tier(mph, []tierStep{{130, 50}, {100, 25}, {70, 10}}); pts > 0 {
			out = append(out, Bonus{Name: "wind", Points: pts})
		}
	}
	if inches, ok := matchNumber(hailRe, desc); ok {
		if pts := tier(inches, []tierStep{{2.0, 25}, {1.0, 10}}); pts > 0 {
			out = append(out, Bonus{Name: "hail", Points: pts})
		}
	}
	if containsAny(desc, phrases.Corroboration.Wedge) {
		out = append(out, Bonus{Name: "wedge", Points: 40})
	}
	if miles, ok := pathWidth(desc); ok {
		if pts := tier(miles, []tierStep{{1.0, 30}, {0.5, 15}}); pts > 0 {
			out = append(out, Bonus{Name: "width", Points: pts})
		}
	}
	return out
}

func tornadoWarningBonuses(a Alert, desc string, now time.Time, loc *time.Location) []Bonus {
	var out []Bonus
	if mph, ok := matchNumber(motionRe, desc); ok {
		if pts := tier(mph, []tierStep{{70, 20}, {50, 10}}); pts > 0 {
			out = append(out, Bonus{Name: "motion", Points: pts})
		}
	}
	if isNight(a, loc) {
		out = append(out, Bonus{Name: "night", Points: 25})
	}
	if currentPhrases().mentionsCity(desc) {
		out = append(out, Bonus{Name: "city", Points: 20})
	}
	if !a.Sent.IsZero() {
		// Strictly after sent: an alert sent at now, or stamped ahead of the
		// local clock, earns no recency bonus.
		if age := now.Sub(a.Sent); age > 0 && age <= recencyWindow {
			out = append(out, Bonus{Name: "recent", Points: 10})
		}
	}
	return out
}

// isNight reports whether the onset (or effective time when onset is absent)
// falls in [20:00, 06:00) local time.
func isNight(a Alert, loc *time.Location) bool {
	t := a.Onset
	if t.IsZero() {
		t = a.Effective
	}
	if t.IsZero() {
		return false
	}
	h := t.In(loc).Hour()
	return h >= 20 || h < 6
}

func areaBonus(areaDesc string) int {
	n := areaSegmentCount(areaDesc)
	switch {
	case n >= 10:
		return 20
	case n >= 5:
		return 10
	default:
		return 0
	}
}

// decayPoints subtracts one point per elapsed tenth of the validity window,
// capped at decaySteps. Returns 0 when either timestamp is missing.
func decayPoints(sent, expires, now time.Time) int {
	if sent.IsZero() || expires.IsZero() {
		return 0
	}
	duration := expires.Sub(sent)
	if duration <= 0 {
		return 0
	}
	elapsed := now.Sub(sent)
	if elapsed <= 0 {
		return 0
	}
	if elapsed > duration {
		elapsed = duration
	}
	return int(int64(decaySteps) * int64(elapsed) / int64(duration))
}

type tierStep struct {
	min    float64
	points int
}

// tier returns the points of the first step whose minimum v reaches. Steps
// are ordered highest first.
func tier(v float64, steps []tierStep) int {
	for _, s := range steps {
		if v >= s.min {
			return s.points
		}
	}
	return 0
}

func pathWidth(desc string) (float64, bool) {
	if miles, ok := matchNumber(widthRe, desc); ok {
		return miles, true
	}
	return matchNumber(wideRe, desc)
}

func matchNumber(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) != 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
