package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRisk(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ENH", RiskEnhanced, true},
		{" enhanced ", RiskEnhanced, true},
		{"Slight", RiskSlight, true},
		{"MDT", RiskModerate, true},
		{"general thunderstorms", RiskThunderstorm, true},
		{"high", RiskHigh, true},
		{"", RiskNone, false},
		{"EXTREME", RiskNone, false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := NormalizeRisk(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestRiskRank_Ordering(t *testing.T) {
	order := []string{RiskNone, RiskThunderstorm, RiskMarginal, RiskSlight, RiskEnhanced, RiskModerate, RiskHigh}
	for i := 1; i < len(order); i++ {
		assert.Less(t, RiskRank(order[i-1]), RiskRank(order[i]))
	}
	assert.Equal(t, 0, RiskRank("bogus"))
}

func TestShouldReplaceRisk(t *testing.T) {
	// 08:00 local on April 27.
	morning := time.Date(2025, time.April, 27, 13, 0, 0, 0, time.UTC)
	prevDay := RiskSnapshot{Risk: RiskSlight, Timestamp: morning.Add(-24 * time.Hour)}
	sameDay := RiskSnapshot{Risk: RiskSlight, Timestamp: morning.Add(-time.Hour)}

	tests := []struct {
		name string
		prev RiskSnapshot
		cat  string
		now  time.Time
		want bool
	}{
		{"nothing stored", RiskSnapshot{}, RiskSlight, morning, true},
		{"category changed", sameDay, RiskEnhanced, morning, true},
		{"same category same day", sameDay, RiskSlight, morning, false},
		{"new day after cutoff", prevDay, RiskSlight, morning, true},
		{"new day before cutoff", prevDay, RiskSlight, morning.Add(-2 * time.Hour), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ShouldReplaceRisk(tc.prev, Outlook{Category: tc.cat}, tc.now, testLoc, 7)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewRiskSnapshot(t *testing.T) {
	o := Outlook{Category: RiskModerate, Summary: "Tornadoes likely", MaxTornadoProbability: 0.15}
	assert.Equal(t, RiskSnapshot{
		Risk:                  RiskModerate,
		Timestamp:             testNow,
		Summary:               "Tornadoes likely",
		MaxTornadoProbability: 0.15,
	}, NewRiskSnapshot(o, testNow))
}
