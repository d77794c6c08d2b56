package scheduler

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/mock"

	"derby/models"
	"derby/service"
)

// testMocks bundles the repository mocks behind a unit of work stub
type testMocks struct {
	RacerRepo         *service.MockRacerRepository
	RaceRepo          *service.MockRaceRepository
	BetRepo           *service.MockBetRepository
	WalletRepo        *service.MockWalletRepository
	CourseSegmentRepo *service.MockCourseSegmentRepository
	SettingsRepo      *service.MockGuildSettingsRepository
	EventPublisher    *service.MockEventPublisher
}

func newTestMocks() *testMocks {
	return &testMocks{
		RacerRepo:         new(service.MockRacerRepository),
		RaceRepo:          new(service.MockRaceRepository),
		BetRepo:           new(service.MockBetRepository),
		WalletRepo:        new(service.MockWalletRepository),
		CourseSegmentRepo: new(service.MockCourseSegmentRepository),
		SettingsRepo:      new(service.MockGuildSettingsRepository),
		EventPublisher:    new(service.MockEventPublisher),
	}
}

func (m *testMocks) assertAll(t *testing.T) {
	m.RacerRepo.AssertExpectations(t)
	m.RaceRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.WalletRepo.AssertExpectations(t)
	m.CourseSegmentRepo.AssertExpectations(t)
	m.SettingsRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// stubUow satisfies service.UnitOfWork over the mocks with no real
// transaction underneath
type stubUow struct {
	mocks *testMocks
}

func (u *stubUow) Begin(ctx context.Context) error { return nil }
func (u *stubUow) Commit() error                   { return nil }
func (u *stubUow) Rollback() error                 { return nil }

func (u *stubUow) RacerRepository() service.RacerRepository { return u.mocks.RacerRepo }
func (u *stubUow) RaceRepository() service.RaceRepository   { return u.mocks.RaceRepo }
func (u *stubUow) BetRepository() service.BetRepository     { return u.mocks.BetRepo }
func (u *stubUow) WalletRepository() service.WalletRepository {
	return u.mocks.WalletRepo
}
func (u *stubUow) CourseSegmentRepository() service.CourseSegmentRepository {
	return u.mocks.CourseSegmentRepo
}
func (u *stubUow) GuildSettingsRepository() service.GuildSettingsRepository {
	return u.mocks.SettingsRepo
}
func (u *stubUow) EventBus() service.EventPublisher { return u.mocks.EventPublisher }

type stubUowFactory struct {
	mocks *testMocks
}

func (f *stubUowFactory) Create() service.UnitOfWork {
	return &stubUow{mocks: f.mocks}
}

// mockNotifier records announcements and direct messages
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Announce(ctx context.Context, guildID int64, message string) error {
	args := m.Called(ctx, guildID, message)
	return args.Error(0)
}

func (m *mockNotifier) AnnounceEmbed(ctx context.Context, guildID int64, embed *discordgo.MessageEmbed) error {
	args := m.Called(ctx, guildID, embed)
	return args.Error(0)
}

func (m *mockNotifier) DirectMessage(ctx context.Context, userID int64, message string) error {
	args := m.Called(ctx, userID, message)
	return args.Error(0)
}

// staticGuilds is a fixed guild list
type staticGuilds []int64

func (g staticGuilds) GuildIDs() []int64 { return g }

// mockPayoutResolver is a mock implementation of service.PayoutResolver
type mockPayoutResolver struct {
	mock.Mock
}

func (m *mockPayoutResolver) Settle(ctx context.Context, raceID int64) (*models.SettlementResult, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementResult), args.Error(1)
}

// mockRetirementEngine is a mock implementation of service.RetirementEngine
type mockRetirementEngine struct {
	mock.Mock
}

func (m *mockRetirementEngine) Process(ctx context.Context, guildID int64, participants []*models.Racer) error {
	args := m.Called(ctx, guildID, participants)
	return args.Error(0)
}
