package scheduler

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"derby/service"
)

// CommentaryStreamer emits a race's event log to a sink one entry per tick.
//
// Cancellation is polled, not pushed: before each emission the streamer
// re-checks that the race row still exists, so deleting the race (admin
// cancellation) stops the stream within one tick interval. The stream also
// stops on sink delivery failure (logged, not retried) and on normal
// exhaustion, releasing the timer on every path. Total wall clock is bounded
// by len(eventLog) * tickInterval.
type CommentaryStreamer struct {
	uowFactory service.UnitOfWorkFactory
}

// NewCommentaryStreamer creates a new commentary streamer
func NewCommentaryStreamer(uowFactory service.UnitOfWorkFactory) *CommentaryStreamer {
	return &CommentaryStreamer{uowFactory: uowFactory}
}

// Stream emits eventLog entries in order, waiting tickInterval between
// emissions. It returns the number of events actually delivered.
func (s *CommentaryStreamer) Stream(ctx context.Context, raceID int64, eventLog []string, sink EventSink, tickInterval time.Duration) int {
	if len(eventLog) == 0 {
		return 0
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	emitted := 0
	for _, event := range eventLog {
		exists, err := s.raceExists(ctx, raceID)
		if err != nil {
			log.WithFields(log.Fields{
				"race_id": raceID,
				"error":   err,
			}).Error("Commentary stream aborted: race lookup failed")
			return emitted
		}
		if !exists {
			log.WithFields(log.Fields{
				"race_id": raceID,
				"emitted": emitted,
			}).Info("Commentary stream stopped: race deleted")
			return emitted
		}

		if err := sink.Emit(ctx, event); err != nil {
			log.WithFields(log.Fields{
				"race_id": raceID,
				"emitted": emitted,
				"error":   err,
			}).Warn("Commentary stream stopped: delivery failed")
			return emitted
		}
		emitted++

		if emitted == len(eventLog) {
			break
		}

		select {
		case <-ctx.Done():
			log.WithFields(log.Fields{
				"race_id": raceID,
				"emitted": emitted,
			}).Info("Commentary stream stopped: context cancelled")
			return emitted
		case <-ticker.C:
		}
	}

	return emitted
}

func (s *CommentaryStreamer) raceExists(ctx context.Context, raceID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	race, err := uow.RaceRepository().GetByID(ctx, raceID)
	if err != nil {
		return false, err
	}
	return race != nil, nil
}
