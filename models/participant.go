package models

import (
	"time"
)

// Choice is a participant's side pick for 7up7down
type Choice string

const (
	ChoiceUp   Choice = "up"
	ChoiceDown Choice = "down"
	ChoiceNone Choice = ""
)

// Valid reports whether the choice is a known side or empty
func (c Choice) Valid() bool {
	return c == ChoiceUp || c == ChoiceDown || c == ChoiceNone
}

// GameParticipant is one user's entry in one round of a game.
// Rows are unique per (game, user, round); roulette inserts a fresh row
// set each round so earlier picks stay on record.
type GameParticipant struct {
	ID          int64     `db:"id" json:"id"`
	GameID      int64     `db:"game_id" json:"gameId"`
	UserID      int64     `db:"user_id" json:"userId"`
	Choice      Choice    `db:"choice" json:"choice,omitempty"`
	Number      *int      `db:"number" json:"number,omitempty"`
	RoundNumber int       `db:"round_number" json:"roundNumber"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
