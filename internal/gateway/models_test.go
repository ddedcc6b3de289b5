package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlertKey_FallbackChain(t *testing.T) {
	assert.Equal(t, "A", Alert{ID: "A"}.Key())
	assert.Equal(t, "B", Alert{AlertID: "B"}.Key())
	assert.Equal(t, "A", Alert{ID: "A", AlertID: "B"}.Key())
	assert.Equal(t, "unknown", Alert{}.Key())
}

func TestLiveStats_LatestResultsOptional(t *testing.T) {
	var s LiveStats
	assert.Equal(t, 0.0, s.Threat())
	assert.Equal(t, 0.0, s.Confidence())

	s.LatestResults = &LatestResults{SmoothedScore: 0.8, Confidence: 0.9}
	assert.Equal(t, 0.8, s.Threat())
	assert.Equal(t, 0.9, s.Confidence())
}
