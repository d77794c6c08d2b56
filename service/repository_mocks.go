package service

import (
	"context"
	"time"

	"derby/events"
	"derby/models"

	"github.com/stretchr/testify/mock"
)

// MockRacerRepository is a mock implementation of RacerRepository
type MockRacerRepository struct {
	mock.Mock
}

func (m *MockRacerRepository) Create(ctx context.Context, racer *models.Racer) error {
	args := m.Called(ctx, racer)
	return args.Error(0)
}

func (m *MockRacerRepository) GetByID(ctx context.Context, id int64) (*models.Racer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Racer), args.Error(1)
}

func (m *MockRacerRepository) Update(ctx context.Context, id int64, update *models.RacerUpdate) (*models.Racer, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Racer), args.Error(1)
}

func (m *MockRacerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRacerRepository) GetActive(ctx context.Context) ([]*models.Racer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Racer), args.Error(1)
}

// MockRaceRepository is a mock implementation of RaceRepository
type MockRaceRepository struct {
	mock.Mock
}

func (m *MockRaceRepository) Create(ctx context.Context, guildID int64) (*models.Race, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Race), args.Error(1)
}

func (m *MockRaceRepository) GetByID(ctx context.Context, id int64) (*models.Race, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Race), args.Error(1)
}

func (m *MockRaceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRaceRepository) GetUnfinished(ctx context.Context) ([]*models.Race, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Race), args.Error(1)
}

func (m *MockRaceRepository) CountSince(ctx context.Context, guildID int64, since time.Time) (int, error) {
	args := m.Called(ctx, guildID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockRaceRepository) MarkFinished(ctx context.Context, id int64, winnerRacerID *int64, totalPayout int64) error {
	args := m.Called(ctx, id, winnerRacerID, totalPayout)
	return args.Error(0)
}

func (m *MockRaceRepository) GetHistory(ctx context.Context, guildID int64, limit int) ([]*models.RaceHistoryEntry, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RaceHistoryEntry), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByRace(ctx context.Context, raceID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByRaceAndUser(ctx context.Context, raceID, userID int64) (*models.Bet, error) {
	args := m.Called(ctx, raceID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBetRepository) DeleteByRace(ctx context.Context, raceID int64) error {
	args := m.Called(ctx, raceID)
	return args.Error(0)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Get(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetForUpdate(ctx context.Context, userID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64, balance int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, balance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, userID int64, amount int64) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

// MockCourseSegmentRepository is a mock implementation of CourseSegmentRepository
type MockCourseSegmentRepository struct {
	mock.Mock
}

func (m *MockCourseSegmentRepository) Create(ctx context.Context, segment *models.CourseSegment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockCourseSegmentRepository) GetByRace(ctx context.Context, raceID int64) ([]*models.CourseSegment, error) {
	args := m.Called(ctx, raceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.CourseSegment), args.Error(1)
}

func (m *MockCourseSegmentRepository) DeleteByRace(ctx context.Context, raceID int64) error {
	args := m.Called(ctx, raceID)
	return args.Error(0)
}

// MockGuildSettingsRepository is a mock implementation of GuildSettingsRepository
type MockGuildSettingsRepository struct {
	mock.Mock
}

func (m *MockGuildSettingsRepository) GetOrCreate(ctx context.Context, guildID int64, defaults *models.GuildSettings) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID, defaults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildSettingsRepository) Update(ctx context.Context, settings *models.GuildSettings) error {
	args := m.Called(ctx, settings)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}
