package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreHistory_PrunesOlderThanWindow(t *testing.T) {
	t0 := testNow
	var h ScoreHistory

	h.Add(t0, 10)
	h.Add(t0.Add(30*time.Minute), 20)
	h.Add(t0.Add(90*time.Minute), 30)

	points := h.Points()
	require.Len(t, points, 2)
	assert.Equal(t, 20, points[0].Score)
	assert.Equal(t, 30, points[1].Score)
	assert.Equal(t, 30, MaxScore(points))
}

func TestScoreHistory_KeepsSampleExactlyAtCutoff(t *testing.T) {
	var h ScoreHistory
	h.Add(testNow, 50)
	h.Add(testNow.Add(time.Hour), 5)

	points := h.Points()
	require.Len(t, points, 2)
	assert.Equal(t, 50, MaxScore(points))
}

func TestScoreHistory_PointsIsACopy(t *testing.T) {
	var h ScoreHistory
	assert.NotNil(t, h.Points())
	assert.Empty(t, h.Points())

	h.Add(testNow, 1)
	p := h.Points()
	p[0].Score = 999
	assert.Equal(t, 1, h.Points()[0].Score)
}

func TestMaxScore_Empty(t *testing.T) {
	assert.Equal(t, 0, MaxScore(nil))
}
