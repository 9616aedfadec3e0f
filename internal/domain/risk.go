package domain

import (
	"strings"
	"time"
)

// SPC categorical risk levels, lowest to highest.
const (
	RiskNone         = "NONE"
	RiskThunderstorm = "TSTM"
	RiskMarginal     = "MRGL"
	RiskSlight       = "SLGT"
	RiskEnhanced     = "ENH"
	RiskModerate     = "MDT"
	RiskHigh         = "HIGH"
)

var riskRanks = map[string]int{
	RiskNone:         0,
	RiskThunderstorm: 1,
	RiskMarginal:     2,
	RiskSlight:       3,
	RiskEnhanced:     4,
	RiskModerate:     5,
	RiskHigh:         6,
}

var riskAliases = map[string]string{
	"GENERAL THUNDERSTORMS": RiskThunderstorm,
	"THUNDERSTORM":          RiskThunderstorm,
	"MARGINAL":              RiskMarginal,
	"SLIGHT":                RiskSlight,
	"ENHANCED":              RiskEnhanced,
	"MODERATE":              RiskModerate,
}

// NormalizeRisk maps a long or abbreviated category name to its SPC code.
// Unknown input yields RiskNone and false.
func NormalizeRisk(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if _, ok := riskRanks[s]; ok {
		return s, true
	}
	if code, ok := riskAliases[s]; ok {
		return code, true
	}
	return RiskNone, false
}

// RiskRank orders categories; unknown categories rank as RiskNone.
func RiskRank(risk string) int {
	code, _ := NormalizeRisk(risk)
	return riskRanks[code]
}

// Outlook is what the outlook source extracts from the day-1 products.
type Outlook struct {
	Category              string  `json:"category"`
	Summary               string  `json:"summary"`
	MaxTornadoProbability float64 `json:"maxTornadoProbability"`
}

// RiskSnapshot is the durable record of the last published outlook.
type RiskSnapshot struct {
	Risk                  string    `json:"risk"`
	Timestamp             time.Time `json:"timestamp"`
	Summary               string    `json:"summary,omitempty"`
	MaxTornadoProbability float64   `json:"maxTornadoProbability,omitempty"`
}

// ShouldReplaceRisk reports whether the stored snapshot must be overwritten:
// nothing stored yet, the category changed, or a new local calendar day has
// begun and the local hour is at or after cutoffHour.
func ShouldReplaceRisk(prev RiskSnapshot, o Outlook, now time.Time, loc *time.Location, cutoffHour int) bool {
	if prev.Timestamp.IsZero() {
		return true
	}
	if o.Category != prev.Risk {
		return true
	}
	if loc == nil {
		loc = time.UTC
	}
	localNow := now.In(loc)
	py, pm, pd := prev.Timestamp.In(loc).Date()
	ny, nm, nd := localNow.Date()
	newDay := ny != py || nm != pm || nd != pd
	return newDay && localNow.Hour() >= cutoffHour
}

// NewRiskSnapshot builds the record to persist for o at now.
func NewRiskSnapshot(o Outlook, now time.Time) RiskSnapshot {
	return RiskSnapshot{
		Risk:                  o.Category,
		Timestamp:             now,
		Summary:               o.Summary,
		MaxTornadoProbability: o.MaxTornadoProbability,
	}
}
