package models

// PotID is the id of the singleton pot row
const PotID = 1

// Pot is the shared account holding funds in transit between games and users
type Pot struct {
	ID      int64 `db:"id" json:"id"`
	Balance int64 `db:"balance" json:"balance"`
}
