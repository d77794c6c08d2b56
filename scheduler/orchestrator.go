package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"derby/config"
	"derby/events"
	"derby/models"
	"derby/service"
)

// Orchestrator drives the race lifecycle. Each tick tops up the day's race
// quota per guild, then runs every open race through announcement, betting
// window, countdown, simulation, settlement, retirement, commentary and
// bettor notification, strictly in that order, one race at a time.
type Orchestrator struct {
	uowFactory service.UnitOfWorkFactory
	payouts    service.PayoutResolver
	retirement service.RetirementEngine
	streamer   *CommentaryStreamer
	notifier   Notifier
	guilds     GuildLister
	cfg        *config.Config
	rng        *rand.Rand

	// tickMu serializes ticks; running two at once would double-process
	// the same unfinished races
	tickMu   sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a race orchestrator. The generator seeds participant
// sampling; race simulation itself is seeded per race by race ID.
func New(
	uowFactory service.UnitOfWorkFactory,
	payouts service.PayoutResolver,
	retirement service.RetirementEngine,
	streamer *CommentaryStreamer,
	notifier Notifier,
	guilds GuildLister,
	cfg *config.Config,
	rng *rand.Rand,
) *Orchestrator {
	return &Orchestrator{
		uowFactory: uowFactory,
		payouts:    payouts,
		retirement: retirement,
		streamer:   streamer,
		notifier:   notifier,
		guilds:     guilds,
		cfg:        cfg,
		rng:        rng,
		stopCh:     make(chan struct{}),
	}
}

// Start launches the periodic tick loop, ticking once immediately.
// It returns after spawning the worker; use Stop or cancel ctx to end it.
func (o *Orchestrator) Start(ctx context.Context) {
	ticker := time.NewTicker(o.cfg.TickInterval)

	go func() {
		defer ticker.Stop()
		log.WithField("interval", o.cfg.TickInterval).Info("Race orchestrator started")

		if err := o.TickNow(ctx); err != nil {
			log.Errorf("Race tick failed: %v", err)
		}

		for {
			select {
			case <-ctx.Done():
				log.Info("Race orchestrator shutting down (context cancelled)")
				return
			case <-o.stopCh:
				log.Info("Race orchestrator shutting down (stop requested)")
				return
			case <-ticker.C:
				if err := o.TickNow(ctx); err != nil {
					log.Errorf("Race tick failed: %v", err)
				}
			}
		}
	}()
}

// Stop ends the periodic loop. A tick already in progress runs to
// completion.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() { close(o.stopCh) })
}

// TickNow runs a single tick synchronously. A tick that would overlap an
// in-progress one is skipped rather than queued: the next scheduled tick
// retries any race the current one does not finish.
func (o *Orchestrator) TickNow(ctx context.Context) error {
	if !o.tickMu.TryLock() {
		log.Warn("Race tick skipped: previous tick still running")
		return nil
	}
	defer o.tickMu.Unlock()

	tickID := uuid.NewString()
	logger := log.WithField("tick_id", tickID)

	if err := o.ensureDailyRaces(ctx, logger); err != nil {
		return err
	}

	races, racers, err := o.loadOpenRaces(ctx)
	if err != nil {
		return err
	}
	if len(races) == 0 {
		return nil
	}
	if len(racers) == 0 {
		// Races stay open until racers exist; a later tick picks them up.
		logger.Info("No active racers; leaving races open")
		return nil
	}

	for _, race := range races {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := o.runRace(ctx, logger, race, racers); err != nil {
			logger.WithFields(log.Fields{
				"race_id": race.ID,
				"error":   err,
			}).Error("Race lifecycle aborted")
		}
	}

	return nil
}

// ensureDailyRaces tops each guild up to its configured daily race quota
func (o *Orchestrator) ensureDailyRaces(ctx context.Context, logger *log.Entry) error {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, guildID := range o.guilds.GuildIDs() {
		uow := o.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		err := func() error {
			settings, err := uow.GuildSettingsRepository().GetOrCreate(ctx, guildID, o.cfg.DefaultGuildSettings(guildID))
			if err != nil {
				return fmt.Errorf("failed to get guild settings: %w", err)
			}

			existing, err := uow.RaceRepository().CountSince(ctx, guildID, startOfDay)
			if err != nil {
				return fmt.Errorf("failed to count today's races: %w", err)
			}

			for i := existing; i < settings.RaceFrequency; i++ {
				race, err := uow.RaceRepository().Create(ctx, guildID)
				if err != nil {
					return fmt.Errorf("failed to create race: %w", err)
				}

				for pos := 1; pos <= o.cfg.CourseLength; pos++ {
					segment := &models.CourseSegment{
						RaceID:      race.ID,
						Position:    pos,
						Description: fmt.Sprintf("Leg %d", pos),
					}
					if err := uow.CourseSegmentRepository().Create(ctx, segment); err != nil {
						return fmt.Errorf("failed to create course segment: %w", err)
					}
				}

				uow.EventBus().Publish(events.RaceScheduledEvent{
					RaceID:  race.ID,
					GuildID: guildID,
				})

				logger.WithFields(log.Fields{
					"guild_id": guildID,
					"race_id":  race.ID,
				}).Info("Race scheduled")
			}

			return uow.Commit()
		}()

		uow.Rollback()
		if err != nil {
			return fmt.Errorf("guild %d: %w", guildID, err)
		}
	}

	return nil
}

// loadOpenRaces reads the unfinished races and the active racer pool
func (o *Orchestrator) loadOpenRaces(ctx context.Context) ([]*models.Race, []*models.Racer, error) {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	races, err := uow.RaceRepository().GetUnfinished(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get unfinished races: %w", err)
	}

	racers, err := uow.RacerRepository().GetActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get active racers: %w", err)
	}

	return races, racers, nil
}

// runRace drives one race through its full lifecycle. A persistence failure
// aborts the remaining steps for this race only; notification failures are
// logged and skipped.
func (o *Orchestrator) runRace(ctx context.Context, logger *log.Entry, race *models.Race, racers []*models.Racer) error {
	participants := o.sampleRacers(racers)
	logger = logger.WithFields(log.Fields{
		"guild_id":     race.GuildID,
		"race_id":      race.ID,
		"participants": len(participants),
	})

	o.announceOdds(ctx, race, participants, logger)

	if err := o.wait(ctx, o.cfg.BetWindow); err != nil {
		return err
	}

	o.countdown(ctx, race.GuildID, logger)

	logger.Info("Race starting")

	segmentCount, err := o.segmentCount(ctx, race.ID)
	if err != nil {
		return err
	}

	participantIDs := make([]int64, len(participants))
	for i, racer := range participants {
		participantIDs[i] = racer.ID
	}

	// Seeding with the race ID keeps reruns reproducible for audits.
	placements, eventLog := service.Simulate(participantIDs, segmentCount, race.ID)

	if err := o.markFinished(ctx, race.ID); err != nil {
		return err
	}

	settlement, err := o.payouts.Settle(ctx, race.ID)
	if err != nil {
		return fmt.Errorf("settlement failed: %w", err)
	}

	if err := o.retirement.Process(ctx, race.GuildID, participants); err != nil {
		return fmt.Errorf("retirement processing failed: %w", err)
	}

	sink := EventSinkFunc(func(ctx context.Context, event string) error {
		return o.notifier.Announce(ctx, race.GuildID, event)
	})
	o.streamer.Stream(ctx, race.ID, eventLog, sink, o.cfg.CommentaryDelay)

	o.announceResults(ctx, race.GuildID, placements, participants, logger)
	o.notifyBettors(ctx, race.ID, settlement, logger)

	logger.Info("Race finished")
	return nil
}

// sampleRacers draws the configured number of racers without replacement
func (o *Orchestrator) sampleRacers(racers []*models.Racer) []*models.Racer {
	n := o.cfg.ParticipantSample
	if n > len(racers) {
		n = len(racers)
	}

	pool := make([]*models.Racer, len(racers))
	copy(pool, racers)
	o.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	sample := pool[:n]
	sort.Slice(sample, func(i, j int) bool { return sample[i].ID < sample[j].ID })
	return sample
}

func (o *Orchestrator) announceOdds(ctx context.Context, race *models.Race, participants []*models.Racer, logger *log.Entry) {
	ids := make([]int64, len(participants))
	for i, racer := range participants {
		ids[i] = racer.ID
	}
	odds := service.CalculateOdds(ids, o.cfg.HouseEdge)

	fields := make([]*discordgo.MessageEmbedField, 0, len(participants))
	for _, racer := range participants {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   racer.Name,
			Value:  fmt.Sprintf("%.1fx (%s)", odds[racer.ID], racer.Temperament),
			Inline: true,
		})
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏁 Race %d", race.ID),
		Description: fmt.Sprintf("Betting closes in %d minutes. Place your bets with `/race bet`!", int(o.cfg.BetWindow.Minutes())),
		Color:       0x2ECC71,
		Fields:      fields,
	}

	if err := o.notifier.AnnounceEmbed(ctx, race.GuildID, embed); err != nil {
		logger.WithField("error", err).Warn("Failed to announce race start")
	}
}

// countdown posts 3, 2, 1 over the configured total duration
func (o *Orchestrator) countdown(ctx context.Context, guildID int64, logger *log.Entry) {
	step := o.cfg.CountdownTotal / 3
	for _, num := range []string{"3", "2", "1"} {
		if err := o.notifier.Announce(ctx, guildID, num); err != nil {
			logger.WithField("error", err).Warn("Failed to announce countdown")
			return
		}
		if err := o.wait(ctx, step); err != nil {
			return
		}
	}
}

func (o *Orchestrator) segmentCount(ctx context.Context, raceID int64) (int, error) {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	segments, err := uow.CourseSegmentRepository().GetByRace(ctx, raceID)
	if err != nil {
		return 0, fmt.Errorf("failed to get course segments: %w", err)
	}
	return len(segments), nil
}

func (o *Orchestrator) markFinished(ctx context.Context, raceID int64) error {
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RaceRepository().MarkFinished(ctx, raceID, nil, 0); err != nil {
		return fmt.Errorf("failed to mark race finished: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (o *Orchestrator) announceResults(ctx context.Context, guildID int64, placements []int64, participants []*models.Racer, logger *log.Entry) {
	names := make(map[int64]string, len(participants))
	for _, racer := range participants {
		names[racer.ID] = racer.Name
	}

	var b strings.Builder
	medals := []string{"🥇", "🥈", "🥉"}
	for i, id := range placements {
		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("Racer %d", id)
		}
		if i < len(medals) {
			fmt.Fprintf(&b, "%s %s\n", medals[i], name)
		} else {
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏁 Race Results",
		Description: b.String(),
		Color:       0xF1C40F,
	}

	if err := o.notifier.AnnounceEmbed(ctx, guildID, embed); err != nil {
		logger.WithField("error", err).Warn("Failed to announce results")
	}
}

// notifyBettors DMs each bettor their outcome. Delivery failures are
// swallowed; settlement has already committed.
func (o *Orchestrator) notifyBettors(ctx context.Context, raceID int64, settlement *models.SettlementResult, logger *log.Entry) {
	for _, outcome := range settlement.Outcomes {
		var msg string
		if outcome.Won {
			msg = fmt.Sprintf("You won %d coins on race %d!", outcome.Payout, raceID)
		} else {
			msg = fmt.Sprintf("You lost your bet of %d coins on race %d.", outcome.Amount, raceID)
		}

		if err := o.notifier.DirectMessage(ctx, outcome.UserID, msg); err != nil {
			logger.WithFields(log.Fields{
				"user_id": outcome.UserID,
				"error":   err,
			}).Warn("Failed to notify bettor")
		}
	}
}

// wait blocks for d or until ctx is cancelled
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
