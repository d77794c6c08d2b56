package testutil

import (
	"derby/models"
)

// CreateTestRacer creates an active racer with default stats
func CreateTestRacer(name string, ownerID int64) *models.Racer {
	return &models.Racer{
		Name:        name,
		OwnerID:     ownerID,
		Speed:       5,
		Cornering:   5,
		Stamina:     5,
		Temperament: models.DefaultTemperament,
		Mood:        models.DefaultMood,
	}
}

// CreateTestRacerWithStats creates a racer with specific stats
func CreateTestRacerWithStats(name string, ownerID int64, speed, cornering, stamina int) *models.Racer {
	racer := CreateTestRacer(name, ownerID)
	racer.Speed = speed
	racer.Cornering = cornering
	racer.Stamina = stamina
	return racer
}

// CreateTestBet creates a bet for the given race and user
func CreateTestBet(raceID, userID, racerID, amount int64) *models.Bet {
	return &models.Bet{
		RaceID:  raceID,
		UserID:  userID,
		RacerID: racerID,
		Amount:  amount,
	}
}

// CreateTestGuildSettings creates guild settings with sensible defaults
func CreateTestGuildSettings(guildID int64) *models.GuildSettings {
	return &models.GuildSettings{
		GuildID:             guildID,
		RaceFrequency:       1,
		DefaultWallet:       100,
		RetirementThreshold: 65,
	}
}

// CreateTestCourseSegment creates one course segment at the given position
func CreateTestCourseSegment(raceID int64, position int, description string) *models.CourseSegment {
	return &models.CourseSegment{
		RaceID:      raceID,
		Position:    position,
		Description: description,
	}
}
