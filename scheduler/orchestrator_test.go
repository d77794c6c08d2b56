package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"derby/config"
	"derby/models"
)

const (
	testGuildID int64 = 900001
	testRaceID  int64 = 42
)

func newOrchestratorConfig() *config.Config {
	return &config.Config{
		RaceFrequency:       1,
		DefaultWallet:       100,
		RetirementThreshold: 65,
		TickInterval:        time.Hour,
		BetWindow:           time.Millisecond,
		CountdownTotal:      3 * time.Millisecond,
		CommentaryDelay:     time.Millisecond,
		HouseEdge:           0.1,
		ParticipantSample:   8,
		CourseLength:        3,
		Environment:         "test",
	}
}

func newOrchestrator(mocks *testMocks, cfg *config.Config) (*Orchestrator, *mockPayoutResolver, *mockRetirementEngine, *mockNotifier) {
	factory := &stubUowFactory{mocks: mocks}
	payouts := new(mockPayoutResolver)
	retirement := new(mockRetirementEngine)
	notifier := new(mockNotifier)
	streamer := NewCommentaryStreamer(factory)
	rng := rand.New(rand.NewSource(1))

	orch := New(factory, payouts, retirement, streamer, notifier, staticGuilds{testGuildID}, cfg, rng)
	return orch, payouts, retirement, notifier
}

func testSettings(frequency int) *models.GuildSettings {
	return &models.GuildSettings{
		GuildID:             testGuildID,
		RaceFrequency:       frequency,
		DefaultWallet:       100,
		RetirementThreshold: 65,
	}
}

func TestTickSchedulesDailyRaceQuota(t *testing.T) {
	mocks := newTestMocks()
	cfg := newOrchestratorConfig()
	orch, _, _, _ := newOrchestrator(mocks, cfg)

	mocks.SettingsRepo.On("GetOrCreate", mock.Anything, testGuildID, mock.Anything).Return(testSettings(2), nil)
	mocks.RaceRepo.On("CountSince", mock.Anything, testGuildID, mock.Anything).Return(0, nil)
	mocks.RaceRepo.On("Create", mock.Anything, testGuildID).Return(&models.Race{ID: 1, GuildID: testGuildID}, nil).Once()
	mocks.RaceRepo.On("Create", mock.Anything, testGuildID).Return(&models.Race{ID: 2, GuildID: testGuildID}, nil).Once()

	var segments []*models.CourseSegment
	mocks.CourseSegmentRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.CourseSegment")).
		Run(func(args mock.Arguments) {
			segments = append(segments, args.Get(1).(*models.CourseSegment))
		}).Return(nil)
	mocks.EventPublisher.On("Publish", mock.Anything).Return()

	// No open races, so the tick ends after scheduling.
	mocks.RaceRepo.On("GetUnfinished", mock.Anything).Return([]*models.Race{}, nil)
	mocks.RacerRepo.On("GetActive", mock.Anything).Return([]*models.Racer{}, nil)

	err := orch.TickNow(context.Background())
	require.NoError(t, err)

	mocks.RaceRepo.AssertNumberOfCalls(t, "Create", 2)
	mocks.EventPublisher.AssertNumberOfCalls(t, "Publish", 2)

	require.Len(t, segments, 2*cfg.CourseLength)
	assert.Equal(t, int64(1), segments[0].RaceID)
	assert.Equal(t, 1, segments[0].Position)
	assert.Equal(t, "Leg 1", segments[0].Description)
	assert.Equal(t, int64(2), segments[len(segments)-1].RaceID)
	assert.Equal(t, cfg.CourseLength, segments[len(segments)-1].Position)
}

func TestTickSkipsSchedulingWhenQuotaMet(t *testing.T) {
	mocks := newTestMocks()
	orch, _, _, _ := newOrchestrator(mocks, newOrchestratorConfig())

	mocks.SettingsRepo.On("GetOrCreate", mock.Anything, testGuildID, mock.Anything).Return(testSettings(1), nil)
	mocks.RaceRepo.On("CountSince", mock.Anything, testGuildID, mock.Anything).Return(1, nil)
	mocks.RaceRepo.On("GetUnfinished", mock.Anything).Return([]*models.Race{}, nil)
	mocks.RacerRepo.On("GetActive", mock.Anything).Return([]*models.Racer{}, nil)

	err := orch.TickNow(context.Background())
	require.NoError(t, err)

	mocks.RaceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestTickSkipsWhenPreviousStillRunning(t *testing.T) {
	mocks := newTestMocks()
	orch, _, _, _ := newOrchestrator(mocks, newOrchestratorConfig())

	orch.tickMu.Lock()
	defer orch.tickMu.Unlock()

	err := orch.TickNow(context.Background())
	require.NoError(t, err)

	mocks.SettingsRepo.AssertNotCalled(t, "GetOrCreate", mock.Anything, mock.Anything, mock.Anything)
	mocks.RaceRepo.AssertNotCalled(t, "GetUnfinished", mock.Anything)
}

func TestTickLeavesRacesOpenWithoutRacers(t *testing.T) {
	mocks := newTestMocks()
	orch, payouts, _, _ := newOrchestrator(mocks, newOrchestratorConfig())

	mocks.SettingsRepo.On("GetOrCreate", mock.Anything, testGuildID, mock.Anything).Return(testSettings(1), nil)
	mocks.RaceRepo.On("CountSince", mock.Anything, testGuildID, mock.Anything).Return(1, nil)
	mocks.RaceRepo.On("GetUnfinished", mock.Anything).Return([]*models.Race{
		{ID: testRaceID, GuildID: testGuildID},
	}, nil)
	mocks.RacerRepo.On("GetActive", mock.Anything).Return([]*models.Racer{}, nil)

	err := orch.TickNow(context.Background())
	require.NoError(t, err)

	mocks.RaceRepo.AssertNotCalled(t, "MarkFinished", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	payouts.AssertNotCalled(t, "Settle", mock.Anything, mock.Anything)
}

func TestTickRunsFullRaceLifecycle(t *testing.T) {
	mocks := newTestMocks()
	cfg := newOrchestratorConfig()
	orch, payouts, retirement, notifier := newOrchestrator(mocks, cfg)

	racers := []*models.Racer{
		{ID: 1, Name: "Bolt", Temperament: "Agile", Speed: 6, Cornering: 5, Stamina: 5},
		{ID: 2, Name: "Comet", Temperament: "Reckless", Speed: 7, Cornering: 4, Stamina: 5},
	}
	race := &models.Race{ID: testRaceID, GuildID: testGuildID}

	mocks.SettingsRepo.On("GetOrCreate", mock.Anything, testGuildID, mock.Anything).Return(testSettings(1), nil)
	mocks.RaceRepo.On("CountSince", mock.Anything, testGuildID, mock.Anything).Return(1, nil)
	mocks.RaceRepo.On("GetUnfinished", mock.Anything).Return([]*models.Race{race}, nil)
	mocks.RacerRepo.On("GetActive", mock.Anything).Return(racers, nil)

	mocks.CourseSegmentRepo.On("GetByRace", mock.Anything, testRaceID).Return([]*models.CourseSegment{
		{ID: 1, RaceID: testRaceID, Position: 1, Description: "Leg 1"},
		{ID: 2, RaceID: testRaceID, Position: 2, Description: "Leg 2"},
	}, nil)

	mocks.RaceRepo.On("MarkFinished", mock.Anything, testRaceID, (*int64)(nil), int64(0)).Return(nil)

	winner := int64(1)
	settlement := &models.SettlementResult{
		RaceID:        testRaceID,
		WinnerRacerID: &winner,
		TotalPayout:   50,
		Outcomes: []models.BetOutcome{
			{UserID: 111111, RacerID: 1, Amount: 25, Won: true, Payout: 50},
			{UserID: 222222, RacerID: 2, Amount: 30, Won: false},
		},
	}
	payouts.On("Settle", mock.Anything, testRaceID).Return(settlement, nil)

	retirement.On("Process", mock.Anything, testGuildID, mock.Anything).Return(nil)

	// Commentary polls the race row before each emission.
	mocks.RaceRepo.On("GetByID", mock.Anything, testRaceID).Return(race, nil)

	var embeds []*discordgo.MessageEmbed
	notifier.On("AnnounceEmbed", mock.Anything, testGuildID, mock.Anything).
		Run(func(args mock.Arguments) {
			embeds = append(embeds, args.Get(2).(*discordgo.MessageEmbed))
		}).Return(nil)
	notifier.On("Announce", mock.Anything, testGuildID, mock.AnythingOfType("string")).Return(nil)
	notifier.On("DirectMessage", mock.Anything, int64(111111), "You won 50 coins on race 42!").Return(nil)
	notifier.On("DirectMessage", mock.Anything, int64(222222), "You lost your bet of 30 coins on race 42.").Return(nil)

	err := orch.TickNow(context.Background())
	require.NoError(t, err)

	// Odds announcement first, results last.
	require.Len(t, embeds, 2)
	assert.Equal(t, "🏁 Race 42", embeds[0].Title)
	require.Len(t, embeds[0].Fields, 2)
	assert.Equal(t, "Bolt", embeds[0].Fields[0].Name)
	assert.Contains(t, embeds[0].Fields[0].Value, "1.8x")
	assert.Equal(t, "🏁 Race Results", embeds[1].Title)
	assert.Contains(t, embeds[1].Description, "🥇")

	notifier.AssertCalled(t, "Announce", mock.Anything, testGuildID, "3")
	notifier.AssertCalled(t, "Announce", mock.Anything, testGuildID, "2")
	notifier.AssertCalled(t, "Announce", mock.Anything, testGuildID, "1")
	// Countdown plus one commentary line per course segment.
	notifier.AssertNumberOfCalls(t, "Announce", 5)
	notifier.AssertExpectations(t)
	payouts.AssertExpectations(t)
	retirement.AssertExpectations(t)
	mocks.assertAll(t)
}

func TestTickSettlesDespiteAnnouncementFailures(t *testing.T) {
	mocks := newTestMocks()
	orch, payouts, retirement, notifier := newOrchestrator(mocks, newOrchestratorConfig())

	racers := []*models.Racer{{ID: 1, Name: "Bolt", Temperament: "Agile"}}
	race := &models.Race{ID: testRaceID, GuildID: testGuildID}

	mocks.SettingsRepo.On("GetOrCreate", mock.Anything, testGuildID, mock.Anything).Return(testSettings(1), nil)
	mocks.RaceRepo.On("CountSince", mock.Anything, testGuildID, mock.Anything).Return(1, nil)
	mocks.RaceRepo.On("GetUnfinished", mock.Anything).Return([]*models.Race{race}, nil)
	mocks.RacerRepo.On("GetActive", mock.Anything).Return(racers, nil)
	mocks.CourseSegmentRepo.On("GetByRace", mock.Anything, testRaceID).Return([]*models.CourseSegment{
		{ID: 1, RaceID: testRaceID, Position: 1, Description: "Leg 1"},
	}, nil)
	mocks.RaceRepo.On("MarkFinished", mock.Anything, testRaceID, (*int64)(nil), int64(0)).Return(nil)
	mocks.RaceRepo.On("GetByID", mock.Anything, testRaceID).Return(race, nil)

	payouts.On("Settle", mock.Anything, testRaceID).Return(&models.SettlementResult{RaceID: testRaceID}, nil)
	retirement.On("Process", mock.Anything, testGuildID, mock.Anything).Return(nil)

	// Every delivery to the guild fails; the race must still settle.
	notifier.On("AnnounceEmbed", mock.Anything, testGuildID, mock.Anything).Return(errors.New("channel gone"))
	notifier.On("Announce", mock.Anything, testGuildID, mock.AnythingOfType("string")).Return(errors.New("channel gone"))

	err := orch.TickNow(context.Background())
	require.NoError(t, err)

	payouts.AssertExpectations(t)
	retirement.AssertExpectations(t)
	mocks.RaceRepo.AssertCalled(t, "MarkFinished", mock.Anything, testRaceID, (*int64)(nil), int64(0))
}

func TestSampleRacersCapsAtConfiguredSize(t *testing.T) {
	mocks := newTestMocks()
	cfg := newOrchestratorConfig()
	cfg.ParticipantSample = 3
	orch, _, _, _ := newOrchestrator(mocks, cfg)

	pool := []*models.Racer{
		{ID: 5}, {ID: 1}, {ID: 9}, {ID: 3}, {ID: 7},
	}

	sample := orch.sampleRacers(pool)

	require.Len(t, sample, 3)
	for i := 1; i < len(sample); i++ {
		assert.Less(t, sample[i-1].ID, sample[i].ID)
	}

	seen := make(map[int64]bool)
	for _, racer := range pool {
		seen[racer.ID] = true
	}
	for _, racer := range sample {
		assert.True(t, seen[racer.ID], "sample drew an unknown racer")
	}

	// The input order must survive sampling.
	assert.Equal(t, int64(5), pool[0].ID)
}

func TestSampleRacersTakesAllWhenPoolIsSmall(t *testing.T) {
	mocks := newTestMocks()
	orch, _, _, _ := newOrchestrator(mocks, newOrchestratorConfig())

	pool := []*models.Racer{{ID: 2}, {ID: 1}}

	sample := orch.sampleRacers(pool)

	require.Len(t, sample, 2)
	assert.Equal(t, int64(1), sample[0].ID)
	assert.Equal(t, int64(2), sample[1].ID)
}
