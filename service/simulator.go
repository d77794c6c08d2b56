package service

import (
	"fmt"
	"math/rand"
)

// Simulate runs a race deterministically from the given seed and returns the
// final placements together with a per-segment event log.
//
// Placements are the participant IDs shuffled by a generator seeded only with
// seed, so the same seed, participants and segment count always reproduce
// byte-identical output. The function performs no I/O and does not mutate its
// input. With no participants the placements and log are both empty
// regardless of segmentCount.
func Simulate(participantIDs []int64, segmentCount int, seed int64) ([]int64, []string) {
	rng := rand.New(rand.NewSource(seed))

	placements := make([]int64, len(participantIDs))
	copy(placements, participantIDs)
	rng.Shuffle(len(placements), func(i, j int) {
		placements[i], placements[j] = placements[j], placements[i]
	})

	if len(placements) == 0 {
		return placements, nil
	}

	log := make([]string, 0, segmentCount)
	for i := 1; i <= segmentCount; i++ {
		leader := placements[rng.Intn(len(placements))]
		log = append(log, fmt.Sprintf("Segment %d: Racer %d takes the lead", i, leader))
	}

	return placements, log
}
