package testutil

import (
	"funbank/models"
)

// CreateTestGame builds an active game with default values
func CreateTestGame(gameType models.GameType, entryFee int64, participants int) *models.Game {
	return &models.Game{
		GameType:    gameType,
		EntryFee:    entryFee,
		PotAmount:   entryFee * int64(participants),
		Status:      models.GameStatusActive,
		RoundNumber: 1,
	}
}

// CreateTestParticipant builds a round-1 participant row
func CreateTestParticipant(gameID, userID int64, choice models.Choice) *models.GameParticipant {
	return &models.GameParticipant{
		GameID:      gameID,
		UserID:      userID,
		Choice:      choice,
		RoundNumber: 1,
	}
}
