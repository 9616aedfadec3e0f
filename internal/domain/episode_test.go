package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fireIndexes(t *testing.T, tr *EpisodeTracker, samples []int) []int {
	t.Helper()
	fired := []int{}
	for i, s := range samples {
		if tr.Observe(s) {
			fired = append(fired, i)
		}
	}
	return fired
}

func TestEpisodeTracker_Hysteresis(t *testing.T) {
	tests := []struct {
		name    string
		alert   int
		reset   int
		samples []int
		want    []int
	}{
		{"fires then re-arms below reset", 250, 200, []int{260, 260, 190, 260}, []int{0, 3}},
		{"between thresholds does not re-arm", 250, 200, []int{260, 230, 260}, []int{0}},
		{"reset threshold itself re-arms", 250, 200, []int{250, 200, 250}, []int{0, 2}},
		{"never reaches alert", 250, 200, []int{100, 249, 0}, []int{}},
		{"outbreak counts", 7, 5, []int{3, 7, 8, 6, 5, 7}, []int{1, 5}},
		{"tornado emergency presence", 1, 0, []int{0, 1, 2, 0, 1}, []int{1, 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tr, err := NewEpisodeTracker(tc.name, tc.alert, tc.reset)
			require.NoError(t, err)
			assert.Equal(t, tc.want, fireIndexes(t, tr, tc.samples))
		})
	}
}

func TestNewEpisodeTracker_RejectsInvertedThresholds(t *testing.T) {
	_, err := NewEpisodeTracker("bad", 200, 200)
	require.Error(t, err)

	_, err = NewEpisodeTracker("bad", 200, 250)
	require.Error(t, err)
}

func TestEpisodeTracker_SettleKeepsArmed(t *testing.T) {
	tr, err := NewEpisodeTracker("breakout", 250, 200)
	require.NoError(t, err)

	tr.Settle(300)
	assert.True(t, tr.Armed())
	assert.True(t, tr.Observe(300))
	assert.False(t, tr.Armed())

	tr.Settle(150)
	assert.True(t, tr.Armed())
}

func TestEpisodeTracker_EligibleDoesNotCommit(t *testing.T) {
	tr, err := NewEpisodeTracker("breakout", 250, 200)
	require.NoError(t, err)

	assert.True(t, tr.Eligible(300))
	assert.True(t, tr.Eligible(300))
	assert.True(t, tr.Armed())
}
