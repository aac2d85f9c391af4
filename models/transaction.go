package models

import (
	"fmt"
	"time"
)

// Account identifies one endpoint of a transfer: a user or the shared pot.
type Account struct {
	UserID int64
	Pot    bool
}

// UserAccount returns the account of a single user
func UserAccount(userID int64) Account {
	return Account{UserID: userID}
}

// PotAccount returns the shared pot account
func PotAccount() Account {
	return Account{Pot: true}
}

// IsPot reports whether the account is the shared pot
func (a Account) IsPot() bool {
	return a.Pot
}

// String renders the account for error messages and logs
func (a Account) String() string {
	if a.Pot {
		return "pot"
	}
	return fmt.Sprintf("user %d", a.UserID)
}

// Transaction is an immutable ledger entry. Exactly one source and one
// destination are set for transfers; direct adjustments (deal-no-deal)
// carry a single user endpoint.
type Transaction struct {
	ID         int64     `db:"id" json:"id"`
	FromUserID *int64    `db:"from_user_id" json:"fromUserId,omitempty"`
	ToUserID   *int64    `db:"to_user_id" json:"toUserId,omitempty"`
	FromPot    bool      `db:"from_pot" json:"fromPot,omitempty"`
	ToPot      bool      `db:"to_pot" json:"toPot,omitempty"`
	Amount     int64     `db:"amount" json:"amount"`
	GameID     *int64    `db:"game_id" json:"gameId,omitempty"`
	GameType   *GameType `db:"game_type" json:"gameType,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// GameTag links a transaction to the game that caused it
type GameTag struct {
	GameID   int64
	GameType GameType
}

// NewTransfer builds the ledger entry for a movement between two accounts
func NewTransfer(from, to Account, amount int64, tag *GameTag) *Transaction {
	txn := &Transaction{Amount: amount}
	if from.IsPot() {
		txn.FromPot = true
	} else {
		id := from.UserID
		txn.FromUserID = &id
	}
	if to.IsPot() {
		txn.ToPot = true
	} else {
		id := to.UserID
		txn.ToUserID = &id
	}
	txn.applyTag(tag)
	return txn
}

// NewAdjustment builds the ledger entry for a direct credit or debit against
// a single user. A positive amount credits the user, a negative amount
// debits them; the stored amount is always positive.
func NewAdjustment(userID int64, amount int64, tag *GameTag) *Transaction {
	txn := &Transaction{}
	id := userID
	if amount >= 0 {
		txn.ToUserID = &id
		txn.Amount = amount
	} else {
		txn.FromUserID = &id
		txn.Amount = -amount
	}
	txn.applyTag(tag)
	return txn
}

func (t *Transaction) applyTag(tag *GameTag) {
	if tag == nil {
		return
	}
	gameID := tag.GameID
	gameType := tag.GameType
	t.GameID = &gameID
	t.GameType = &gameType
}

// SignedAmountFor returns the balance effect of this transaction on the
// given user: positive for credits, negative for debits, zero otherwise.
func (t *Transaction) SignedAmountFor(userID int64) int64 {
	var delta int64
	if t.ToUserID != nil && *t.ToUserID == userID {
		delta += t.Amount
	}
	if t.FromUserID != nil && *t.FromUserID == userID {
		delta -= t.Amount
	}
	return delta
}
