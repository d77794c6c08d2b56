package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"derby/models"
	"derby/repository/testutil"
)

// seedRaceAndRacer creates the rows a bet's foreign keys need
func seedRaceAndRacer(t *testing.T, testDB *testutil.TestDatabase) (*models.Race, *models.Racer) {
	t.Helper()
	ctx := context.Background()

	racer := testutil.CreateTestRacer("Bolt", 123456)
	require.NoError(t, NewRacerRepository(testDB.DB).Create(ctx, racer))

	race, err := NewRaceRepository(testDB.DB).Create(ctx, testGuildID)
	require.NoError(t, err)

	return race, racer
}

func TestBetRepository_Create(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	race, racer := seedRaceAndRacer(t, testDB)

	t.Run("assigns id and timestamp", func(t *testing.T) {
		bet := testutil.CreateTestBet(race.ID, 111111, racer.ID, 25)
		err := repo.Create(ctx, bet)
		require.NoError(t, err)

		assert.NotZero(t, bet.ID)
		assert.False(t, bet.CreatedAt.IsZero())
	})

	t.Run("second bet per user and race violates uniqueness", func(t *testing.T) {
		bet := testutil.CreateTestBet(race.ID, 111111, racer.ID, 40)
		err := repo.Create(ctx, bet)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unique")
	})

	t.Run("non-positive amount violates check constraint", func(t *testing.T) {
		bet := testutil.CreateTestBet(race.ID, 222222, racer.ID, 0)
		err := repo.Create(ctx, bet)
		assert.Error(t, err)
	})
}

func TestBetRepository_GetByRaceAndUser(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	race, racer := seedRaceAndRacer(t, testDB)

	t.Run("no bet returns nil", func(t *testing.T) {
		bet, err := repo.GetByRaceAndUser(ctx, race.ID, 111111)
		require.NoError(t, err)
		assert.Nil(t, bet)
	})

	t.Run("finds the user's bet", func(t *testing.T) {
		created := testutil.CreateTestBet(race.ID, 111111, racer.ID, 25)
		require.NoError(t, repo.Create(ctx, created))

		bet, err := repo.GetByRaceAndUser(ctx, race.ID, 111111)
		require.NoError(t, err)
		require.NotNil(t, bet)
		assert.Equal(t, created.ID, bet.ID)
		assert.Equal(t, racer.ID, bet.RacerID)
		assert.Equal(t, int64(25), bet.Amount)
	})
}

func TestBetRepository_GetByRace(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	race, racer := seedRaceAndRacer(t, testDB)

	users := []int64{300001, 300002, 300003}
	for _, userID := range users {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(race.ID, userID, racer.ID, 10)))
	}

	bets, err := repo.GetByRace(ctx, race.ID)
	require.NoError(t, err)
	require.Len(t, bets, 3)
	for i, bet := range bets {
		assert.Equal(t, users[i], bet.UserID)
	}
}

func TestBetRepository_DeleteByRace(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	race, racer := seedRaceAndRacer(t, testDB)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(race.ID, 111111, racer.ID, 25)))
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(race.ID, 222222, racer.ID, 30)))

	// Another race's bets must survive.
	otherRace, err := NewRaceRepository(testDB.DB).Create(ctx, testGuildID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(otherRace.ID, 111111, racer.ID, 15)))

	require.NoError(t, repo.DeleteByRace(ctx, race.ID))

	bets, err := repo.GetByRace(ctx, race.ID)
	require.NoError(t, err)
	assert.Empty(t, bets)

	remaining, err := repo.GetByRace(ctx, otherRace.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	// Deleting when nothing is left stays a no-op.
	assert.NoError(t, repo.DeleteByRace(ctx, race.ID))
}

func TestBetRepository_CascadeOnRaceDelete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	race, racer := seedRaceAndRacer(t, testDB)

	require.NoError(t, repo.Create(ctx, testutil.CreateTestBet(race.ID, 111111, racer.ID, 25)))

	require.NoError(t, NewRaceRepository(testDB.DB).Delete(ctx, race.ID))

	bets, err := repo.GetByRace(ctx, race.ID)
	require.NoError(t, err)
	assert.Empty(t, bets)
}
