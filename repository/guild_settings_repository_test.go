package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"derby/repository/testutil"
)

func TestGuildSettingsRepository_GetOrCreate(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("creates with the given defaults", func(t *testing.T) {
		defaults := testutil.CreateTestGuildSettings(testGuildID)
		defaults.RaceFrequency = 3
		defaults.DefaultWallet = 500

		settings, err := repo.GetOrCreate(ctx, testGuildID, defaults)
		require.NoError(t, err)

		assert.Equal(t, testGuildID, settings.GuildID)
		assert.Equal(t, 3, settings.RaceFrequency)
		assert.Equal(t, int64(500), settings.DefaultWallet)
		assert.Equal(t, 65, settings.RetirementThreshold)
	})

	t.Run("returns the stored row, not fresh defaults", func(t *testing.T) {
		defaults := testutil.CreateTestGuildSettings(testGuildID)
		defaults.RaceFrequency = 9

		settings, err := repo.GetOrCreate(ctx, testGuildID, defaults)
		require.NoError(t, err)
		assert.Equal(t, 3, settings.RaceFrequency)
	})

	t.Run("threshold outside 1-100 rejected by the schema", func(t *testing.T) {
		defaults := testutil.CreateTestGuildSettings(900002)
		defaults.RetirementThreshold = 0

		_, err := repo.GetOrCreate(ctx, 900002, defaults)
		assert.Error(t, err)
	})
}

func TestGuildSettingsRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildSettingsRepository(testDB.DB)
	ctx := context.Background()

	t.Run("persists changes", func(t *testing.T) {
		settings, err := repo.GetOrCreate(ctx, testGuildID, testutil.CreateTestGuildSettings(testGuildID))
		require.NoError(t, err)

		settings.RaceFrequency = 2
		settings.DefaultWallet = 1000
		settings.RetirementThreshold = 80
		require.NoError(t, repo.Update(ctx, settings))

		stored, err := repo.GetOrCreate(ctx, testGuildID, testutil.CreateTestGuildSettings(testGuildID))
		require.NoError(t, err)
		assert.Equal(t, 2, stored.RaceFrequency)
		assert.Equal(t, int64(1000), stored.DefaultWallet)
		assert.Equal(t, 80, stored.RetirementThreshold)
	})

	t.Run("unknown guild errors", func(t *testing.T) {
		settings := testutil.CreateTestGuildSettings(999999)
		err := repo.Update(ctx, settings)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}
