package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"derby/models"
)

func TestGetOrCreateSettings_UsesConfiguredDefaults(t *testing.T) {
	mocks := NewTestMocks()
	factory := newFakeUowFactory(mocks)
	cfg := newTestConfig()
	svc := NewGuildSettingsService(factory, cfg)

	mocks.SettingsRepo.On("GetOrCreate", mock.Anything, TestGuildID, mock.MatchedBy(func(defaults *models.GuildSettings) bool {
		return defaults.GuildID == TestGuildID &&
			defaults.RaceFrequency == cfg.RaceFrequency &&
			defaults.DefaultWallet == cfg.DefaultWallet &&
			defaults.RetirementThreshold == cfg.RetirementThreshold
	})).Return(&models.GuildSettings{GuildID: TestGuildID, RaceFrequency: 1, DefaultWallet: 100, RetirementThreshold: 65}, nil)

	settings, err := svc.GetOrCreateSettings(context.Background(), TestGuildID)
	require.NoError(t, err)
	assert.Equal(t, TestGuildID, settings.GuildID)
	assert.True(t, factory.lastUow().committed)
	mocks.AssertAllExpectations(t)
}

func TestUpdateSettings_Validation(t *testing.T) {
	tests := []struct {
		name     string
		settings models.GuildSettings
	}{
		{"negative frequency", models.GuildSettings{GuildID: TestGuildID, RaceFrequency: -1, DefaultWallet: 100, RetirementThreshold: 65}},
		{"negative wallet", models.GuildSettings{GuildID: TestGuildID, RaceFrequency: 1, DefaultWallet: -5, RetirementThreshold: 65}},
		{"threshold too low", models.GuildSettings{GuildID: TestGuildID, RaceFrequency: 1, DefaultWallet: 100, RetirementThreshold: 0}},
		{"threshold too high", models.GuildSettings{GuildID: TestGuildID, RaceFrequency: 1, DefaultWallet: 100, RetirementThreshold: 101}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := NewTestMocks()
			factory := newFakeUowFactory(mocks)
			svc := NewGuildSettingsService(factory, newTestConfig())

			err := svc.UpdateSettings(context.Background(), &tt.settings)
			assert.ErrorIs(t, err, ErrInvalidSettings)
			assert.Empty(t, factory.uows)
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestUpdateSettings_Valid(t *testing.T) {
	mocks := NewTestMocks()
	factory := newFakeUowFactory(mocks)
	svc := NewGuildSettingsService(factory, newTestConfig())

	settings := &models.GuildSettings{GuildID: TestGuildID, RaceFrequency: 3, DefaultWallet: 500, RetirementThreshold: 80}
	mocks.SettingsRepo.On("Update", mock.Anything, settings).Return(nil)

	err := svc.UpdateSettings(context.Background(), settings)
	require.NoError(t, err)
	assert.True(t, factory.lastUow().committed)
	mocks.AssertAllExpectations(t)
}
