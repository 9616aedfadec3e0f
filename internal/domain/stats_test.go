package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRecord_RecordEpisodeEventsDeduplicates(t *testing.T) {
	s := NewStatsRecord()
	sent := testNow.Add(-3 * time.Minute)
	scored := []ScoredAlert{
		{Alert: Alert{ID: "pds-1", Event: "Tornado Warning", Description: "PARTICULARLY DANGEROUS SITUATION", AreaDesc: "Tulsa, OK", Sent: sent}},
		{Alert: Alert{ID: "tore-1", Event: "Tornado Warning", Headline: "TORNADO EMERGENCY", Description: "particularly dangerous situation", AreaDesc: "Moore, OK"}},
		{Alert: Alert{ID: "plain", Event: "Tornado Warning"}},
	}

	assert.Equal(t, 3, s.RecordEpisodeEvents(scored))
	assert.Equal(t, 0, s.RecordEpisodeEvents(scored))

	require.Len(t, s.PDSTornadoes, 2)
	require.Len(t, s.TorETornadoes, 1)
	assert.Equal(t, EpisodeEvent{
		ID:       "pds-1",
		Date:     sent,
		Location: "Tulsa, OK",
		Details:  "PARTICULARLY DANGEROUS SITUATION",
	}, s.PDSTornadoes[0])
	assert.Equal(t, "tore-1", s.TorETornadoes[0].ID)
}

func TestStatsRecord_RecordScore(t *testing.T) {
	s := NewStatsRecord()

	assert.True(t, s.RecordScore(500, testNow), "first record notifies")
	assert.False(t, s.RecordScore(600, testNow.Add(10*time.Minute)), "within an hour of the previous record")
	assert.Equal(t, HighScore{Date: testNow.Add(10 * time.Minute), Score: 600}, s.HighestScoreEver)

	assert.False(t, s.RecordScore(600, testNow.Add(3*time.Hour)), "equal score is not a record")
	assert.False(t, s.RecordScore(100, testNow.Add(3*time.Hour)))
	assert.Equal(t, 600, s.HighestScoreEver.Score)

	assert.True(t, s.RecordScore(700, testNow.Add(3*time.Hour)))
	assert.Equal(t, 700, s.HighestScoreEver.Score)
}

func TestStatsRecord_HighScoreExactlyOneHourDoesNotNotify(t *testing.T) {
	s := NewStatsRecord()
	s.HighestScoreEver = HighScore{Date: testNow, Score: 100}

	assert.False(t, s.RecordScore(200, testNow.Add(time.Hour)))
	assert.Equal(t, 200, s.HighestScoreEver.Score)
}
