package service

import (
	"context"
	"testing"
	"time"

	"derby/config"
)

// Test IDs used across service tests
const (
	TestGuildID  = int64(900001)
	TestUser1ID  = int64(111111)
	TestUser2ID  = int64(222222)
	TestRacer1ID = int64(1)
	TestRacer2ID = int64(2)
	TestRacer3ID = int64(3)
	TestRaceID   = int64(42)
)

// TestMocks holds all mock repositories for easy access
type TestMocks struct {
	RacerRepo         *MockRacerRepository
	RaceRepo          *MockRaceRepository
	BetRepo           *MockBetRepository
	WalletRepo        *MockWalletRepository
	CourseSegmentRepo *MockCourseSegmentRepository
	SettingsRepo      *MockGuildSettingsRepository
	EventPublisher    *MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		RacerRepo:         new(MockRacerRepository),
		RaceRepo:          new(MockRaceRepository),
		BetRepo:           new(MockBetRepository),
		WalletRepo:        new(MockWalletRepository),
		CourseSegmentRepo: new(MockCourseSegmentRepository),
		SettingsRepo:      new(MockGuildSettingsRepository),
		EventPublisher:    new(MockEventPublisher),
	}
}

// AssertAllExpectations asserts all mock expectations
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.RacerRepo.AssertExpectations(t)
	m.RaceRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.WalletRepo.AssertExpectations(t)
	m.CourseSegmentRepo.AssertExpectations(t)
	m.SettingsRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

// fakeUnitOfWork satisfies UnitOfWork over the mock repositories. Begin,
// Commit and Rollback are tracked so tests can assert transaction outcomes.
type fakeUnitOfWork struct {
	mocks      *TestMocks
	began      bool
	committed  bool
	rolledBack bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUnitOfWork) RacerRepository() RacerRepository                 { return u.mocks.RacerRepo }
func (u *fakeUnitOfWork) RaceRepository() RaceRepository                   { return u.mocks.RaceRepo }
func (u *fakeUnitOfWork) BetRepository() BetRepository                     { return u.mocks.BetRepo }
func (u *fakeUnitOfWork) WalletRepository() WalletRepository               { return u.mocks.WalletRepo }
func (u *fakeUnitOfWork) CourseSegmentRepository() CourseSegmentRepository { return u.mocks.CourseSegmentRepo }
func (u *fakeUnitOfWork) GuildSettingsRepository() GuildSettingsRepository { return u.mocks.SettingsRepo }
func (u *fakeUnitOfWork) EventBus() EventPublisher                         { return u.mocks.EventPublisher }

// fakeUowFactory hands out fake units of work sharing one mock set
type fakeUowFactory struct {
	mocks *TestMocks
	uows  []*fakeUnitOfWork
}

func newFakeUowFactory(mocks *TestMocks) *fakeUowFactory {
	return &fakeUowFactory{mocks: mocks}
}

func (f *fakeUowFactory) Create() UnitOfWork {
	uow := &fakeUnitOfWork{mocks: f.mocks}
	f.uows = append(f.uows, uow)
	return uow
}

// lastUow returns the most recently created unit of work
func (f *fakeUowFactory) lastUow() *fakeUnitOfWork {
	if len(f.uows) == 0 {
		return nil
	}
	return f.uows[len(f.uows)-1]
}

// newTestConfig returns a config with production defaults and test timings
func newTestConfig() *config.Config {
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
		CourseLength:        6,
		Environment:         "test",
	}
}
