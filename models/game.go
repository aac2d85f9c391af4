package models

import (
	"time"
)

// GameType identifies which settlement rules apply to a game
type GameType string

const (
	GameTypeSevenUpDown GameType = "7up7down"
	GameTypeRoulette    GameType = "roulette"
	GameTypeRollTheBall GameType = "rolltheball"
	GameTypePoker       GameType = "poker"
	GameTypeDealNoDeal  GameType = "dealnodeal"
)

// Valid reports whether the game type is one of the known types
func (gt GameType) Valid() bool {
	switch gt {
	case GameTypeSevenUpDown, GameTypeRoulette, GameTypeRollTheBall,
		GameTypePoker, GameTypeDealNoDeal:
		return true
	}
	return false
}

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
)

// Game represents one mini-game from fee collection to payout
type Game struct {
	ID          int64      `db:"id" json:"id"`
	GameType    GameType   `db:"game_type" json:"gameType"`
	EntryFee    int64      `db:"entry_fee" json:"entryFee"`
	PotAmount   int64      `db:"pot_amount" json:"potAmount"`
	Status      GameStatus `db:"status" json:"status"`
	Winner      *string    `db:"winner" json:"winner,omitempty"`
	SpinResult  *int       `db:"spin_result" json:"spinResult,omitempty"`
	RoundNumber int        `db:"round_number" json:"roundNumber"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	CompletedAt *time.Time `db:"completed_at" json:"completedAt,omitempty"`
}

// IsActive checks if the game can still be played and settled
func (g *Game) IsActive() bool {
	return g.Status == GameStatusActive
}

// IsCompleted checks if the game has been settled
func (g *Game) IsCompleted() bool {
	return g.Status == GameStatusCompleted
}

// Tag returns the transaction tag linking ledger entries to this game
func (g *Game) Tag() *GameTag {
	return &GameTag{GameID: g.ID, GameType: g.GameType}
}

// SplitEvenly divides the game pot across n winners using floor division.
// The remainder is not redistributed; it stays in the shared pot.
func (g *Game) SplitEvenly(n int) int64 {
	if n <= 0 {
		return 0
	}
	return g.PotAmount / int64(n)
}

// GameDetail combines a game with its current-round participants
type GameDetail struct {
	Game         *Game              `json:"game"`
	Participants []*GameParticipant `json:"participants"`
}

// ParticipantByUser returns the current-round row for a user, or nil
func (gd *GameDetail) ParticipantByUser(userID int64) *GameParticipant {
	for _, p := range gd.Participants {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
