package service

import (
	"math"

	"derby/models"
)

// statAdjustment names the stats a temperament boosts and dampens
type statAdjustment struct {
	up   string
	down string
}

// Temperaments maps each temperament category to its stat adjustment.
// "Quirky" is deliberately neutral.
var Temperaments = map[string]statAdjustment{
	"Agile":      {up: "speed", down: "stamina"},
	"Reckless":   {up: "speed", down: "cornering"},
	"Tactical":   {up: "cornering", down: "speed"},
	"Burly":      {up: "stamina", down: "cornering"},
	"Steady":     {up: "stamina", down: "speed"},
	"Sharpshift": {up: "cornering", down: "stamina"},
	"Quirky":     {},
}

// TemperamentModifier is the fractional bonus/penalty a temperament applies
const TemperamentModifier = 0.1

// RacerStats is a racer's raw stat block prior to temperament adjustment
type RacerStats struct {
	Speed     int
	Cornering int
	Stamina   int
}

// ApplyTemperament returns stats adjusted for the given temperament. Unknown
// temperaments return the stats unchanged.
func ApplyTemperament(stats RacerStats, temperament string) RacerStats {
	adj, ok := Temperaments[temperament]
	if !ok {
		return stats
	}

	result := stats
	apply := func(name string, factor float64) {
		switch name {
		case "speed":
			result.Speed = int(math.Round(float64(result.Speed) * factor))
		case "cornering":
			result.Cornering = int(math.Round(float64(result.Cornering) * factor))
		case "stamina":
			result.Stamina = int(math.Round(float64(result.Stamina) * factor))
		}
	}
	if adj.up != "" {
		apply(adj.up, 1+TemperamentModifier)
	}
	if adj.down != "" {
		apply(adj.down, 1-TemperamentModifier)
	}
	return result
}

// EffectiveStats returns a racer's stats with its temperament applied
func EffectiveStats(racer *models.Racer) RacerStats {
	return ApplyTemperament(RacerStats{
		Speed:     racer.Speed,
		Cornering: racer.Cornering,
		Stamina:   racer.Stamina,
	}, racer.Temperament)
}

// CalculateOdds returns a payout multiplier for each racer. Odds assume
// every racer has an equal chance of winning; the multiplier is reduced by
// houseEdge. With N racers each multiplier is (1-houseEdge) * N.
func CalculateOdds(racerIDs []int64, houseEdge float64) map[int64]float64 {
	if len(racerIDs) == 0 {
		return map[int64]float64{}
	}

	payout := (1.0 - houseEdge) * float64(len(racerIDs))

	result := make(map[int64]float64, len(racerIDs))
	for _, id := range racerIDs {
		result[id] = payout
	}
	return result
}
