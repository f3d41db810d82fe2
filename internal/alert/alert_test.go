package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PatternSentinel/internal/model"
)

func TestFilterActive(t *testing.T) {
	now := time.Date(2025, 7, 10, 15, 30, 0, 0, time.UTC)
	end := func(daysAgo int) time.Time {
		return now.AddDate(0, 0, -daysAgo)
	}

	results := map[string][]model.Match{
		"AAPL": {
			{Pattern: "VCP", End: end(0), Confidence: 0.8},
			{Pattern: "Pennant", End: end(3), Confidence: 0.6},
			{Pattern: "Falling Wedge", End: end(4), Confidence: 0.7},
		},
		"MSFT": {
			{Pattern: "Cup and Handle", End: end(10), Confidence: 0.9},
		},
	}

	active := FilterActive(results, now)
	require.Contains(t, active, "AAPL")
	assert.Len(t, active["AAPL"], 2)
	assert.Equal(t, "VCP", active["AAPL"][0].Pattern)
	assert.Equal(t, "Pennant", active["AAPL"][1].Pattern)

	// symbols whose matches all expired are dropped entirely
	assert.NotContains(t, active, "MSFT")
}

func TestFilterActiveEmpty(t *testing.T) {
	active := FilterActive(map[string][]model.Match{}, time.Now())
	assert.Empty(t, active)
}

func TestMessagesFormat(t *testing.T) {
	active := map[string][]model.Match{
		"AAPL": {
			{Pattern: "Ascending Triangle", Confidence: 0.68, Description: "flat top near 195.20, rising lows"},
		},
	}

	msgs := Messages(active)
	require.Len(t, msgs, 1)
	assert.Equal(t,
		"🚨 <b>Ascending Triangle</b> on <b>AAPL</b> | Confidence 68% | flat top near 195.20, rising lows",
		msgs[0])
}

func TestMessagesSortedBySymbol(t *testing.T) {
	active := map[string][]model.Match{
		"MSFT": {{Pattern: "VCP", Confidence: 0.9, Description: "three contractions"}},
		"AAPL": {
			{Pattern: "Pennant", Confidence: 0.76, Description: "tight flag after pole"},
			{Pattern: "Falling Wedge", Confidence: 0.64, Description: "converging downtrend lines"},
		},
	}

	msgs := Messages(active)
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0], "<b>AAPL</b>")
	assert.Contains(t, msgs[0], "Pennant")
	assert.Contains(t, msgs[1], "<b>AAPL</b>")
	assert.Contains(t, msgs[1], "Falling Wedge")
	assert.Contains(t, msgs[2], "<b>MSFT</b>")
}

func TestMessagesEmpty(t *testing.T) {
	assert.Empty(t, Messages(nil))
	assert.Empty(t, Messages(map[string][]model.Match{}))
}
