package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"derby/models"
	"derby/repository/testutil"
)

func TestRacerRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRacerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("assigns id and timestamp", func(t *testing.T) {
		racer := testutil.CreateTestRacer("Bolt", 123456)
		err := repo.Create(ctx, racer)
		require.NoError(t, err)

		assert.NotZero(t, racer.ID)
		assert.False(t, racer.CreatedAt.IsZero())
	})

	t.Run("round trips all fields", func(t *testing.T) {
		racer := testutil.CreateTestRacerWithStats("Comet", 789012, 8, 3, 6)
		racer.Temperament = "Reckless"
		err := repo.Create(ctx, racer)
		require.NoError(t, err)

		found, err := repo.GetByID(ctx, racer.ID)
		require.NoError(t, err)
		require.NotNil(t, found)

		assert.Equal(t, "Comet", found.Name)
		assert.Equal(t, int64(789012), found.OwnerID)
		assert.False(t, found.Retired)
		assert.Equal(t, 8, found.Speed)
		assert.Equal(t, 3, found.Cornering)
		assert.Equal(t, 6, found.Stamina)
		assert.Equal(t, "Reckless", found.Temperament)
		assert.Equal(t, models.DefaultMood, found.Mood)
	})
}

func TestRacerRepository_GetByID(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRacerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("not found returns nil", func(t *testing.T) {
		found, err := repo.GetByID(ctx, 99999)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRacerRepository_Update(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRacerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("partial update keeps other columns", func(t *testing.T) {
		racer := testutil.CreateTestRacerWithStats("Dash", 123456, 7, 7, 7)
		require.NoError(t, repo.Create(ctx, racer))

		newName := "Dash Jr"
		updated, err := repo.Update(ctx, racer.ID, &models.RacerUpdate{Name: &newName})
		require.NoError(t, err)
		require.NotNil(t, updated)

		assert.Equal(t, "Dash Jr", updated.Name)
		assert.Equal(t, 7, updated.Speed)
		assert.Equal(t, racer.Temperament, updated.Temperament)
		assert.False(t, updated.Retired)
	})

	t.Run("retirement flag", func(t *testing.T) {
		racer := testutil.CreateTestRacer("Old Timer", 123456)
		require.NoError(t, repo.Create(ctx, racer))

		retired := true
		updated, err := repo.Update(ctx, racer.ID, &models.RacerUpdate{Retired: &retired})
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.True(t, updated.Retired)
	})

	t.Run("not found returns nil", func(t *testing.T) {
		newName := "Ghost"
		updated, err := repo.Update(ctx, 99999, &models.RacerUpdate{Name: &newName})
		require.NoError(t, err)
		assert.Nil(t, updated)
	})
}

func TestRacerRepository_GetActive(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRacerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("empty roster", func(t *testing.T) {
		racers, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Empty(t, racers)
	})

	t.Run("excludes retired, ordered by id", func(t *testing.T) {
		first := testutil.CreateTestRacer("First", 123456)
		require.NoError(t, repo.Create(ctx, first))

		benched := testutil.CreateTestRacer("Benched", 123456)
		require.NoError(t, repo.Create(ctx, benched))
		retired := true
		_, err := repo.Update(ctx, benched.ID, &models.RacerUpdate{Retired: &retired})
		require.NoError(t, err)

		second := testutil.CreateTestRacer("Second", 789012)
		require.NoError(t, repo.Create(ctx, second))

		racers, err := repo.GetActive(ctx)
		require.NoError(t, err)
		require.Len(t, racers, 2)
		assert.Equal(t, first.ID, racers[0].ID)
		assert.Equal(t, second.ID, racers[1].ID)
	})
}

func TestRacerRepository_Delete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRacerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("removes the row", func(t *testing.T) {
		racer := testutil.CreateTestRacer("Fleeting", 123456)
		require.NoError(t, repo.Create(ctx, racer))

		require.NoError(t, repo.Delete(ctx, racer.ID))

		found, err := repo.GetByID(ctx, racer.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("not found errors", func(t *testing.T) {
		err := repo.Delete(ctx, 99999)
		assert.Error(t, err)
	})
}
