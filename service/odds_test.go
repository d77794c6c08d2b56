package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"derby/models"
)

func TestCalculateOdds_FlatMultiplier(t *testing.T) {
	odds := CalculateOdds([]int64{1, 2, 3, 4}, 0.1)

	require.Len(t, odds, 4)
	for id, multiplier := range odds {
		assert.InDelta(t, 3.6, multiplier, 1e-9, "racer %d", id)
	}
}

func TestCalculateOdds_ScalesWithFieldSize(t *testing.T) {
	two := CalculateOdds([]int64{1, 2}, 0.1)
	eight := CalculateOdds([]int64{1, 2, 3, 4, 5, 6, 7, 8}, 0.1)

	assert.InDelta(t, 1.8, two[1], 1e-9)
	assert.InDelta(t, 7.2, eight[1], 1e-9)
}

func TestCalculateOdds_ZeroHouseEdgeIsFair(t *testing.T) {
	odds := CalculateOdds([]int64{1, 2, 3}, 0)
	assert.InDelta(t, 3.0, odds[2], 1e-9)
}

func TestCalculateOdds_NoRacers(t *testing.T) {
	odds := CalculateOdds(nil, 0.1)
	assert.Empty(t, odds)
}

func TestApplyTemperament(t *testing.T) {
	base := RacerStats{Speed: 10, Cornering: 10, Stamina: 10}

	tests := []struct {
		temperament string
		want        RacerStats
	}{
		{"Agile", RacerStats{Speed: 11, Cornering: 10, Stamina: 9}},
		{"Reckless", RacerStats{Speed: 11, Cornering: 9, Stamina: 10}},
		{"Tactical", RacerStats{Speed: 9, Cornering: 11, Stamina: 10}},
		{"Burly", RacerStats{Speed: 10, Cornering: 9, Stamina: 11}},
		{"Steady", RacerStats{Speed: 9, Cornering: 10, Stamina: 11}},
		{"Sharpshift", RacerStats{Speed: 10, Cornering: 11, Stamina: 9}},
		{"Quirky", base},
	}

	for _, tt := range tests {
		t.Run(tt.temperament, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyTemperament(base, tt.temperament))
		})
	}
}

func TestApplyTemperament_UnknownIsNeutral(t *testing.T) {
	base := RacerStats{Speed: 7, Cornering: 4, Stamina: 6}
	assert.Equal(t, base, ApplyTemperament(base, "Mystery"))
}

func TestApplyTemperament_RoundsToNearest(t *testing.T) {
	// 5 * 1.1 = 5.5 rounds up, 5 * 0.9 = 4.5 rounds up as well
	got := ApplyTemperament(RacerStats{Speed: 5, Cornering: 5, Stamina: 5}, "Agile")
	assert.Equal(t, RacerStats{Speed: 6, Cornering: 5, Stamina: 5}, got)
}

func TestEffectiveStats(t *testing.T) {
	racer := &models.Racer{
		Speed:       10,
		Cornering:   8,
		Stamina:     6,
		Temperament: "Reckless",
	}

	stats := EffectiveStats(racer)
	assert.Equal(t, RacerStats{Speed: 11, Cornering: 7, Stamina: 6}, stats)
}
