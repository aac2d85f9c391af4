package service

import (
	"errors"
	"fmt"
)

// Domain errors. Every one of these is detected before any mutation, so
// a failed operation always leaves balances and the ledger untouched.
// Store failures surface as wrapped infrastructure errors instead.
var (
	ErrInvalidAmount           = errors.New("amount must be a positive integer")
	ErrInvalidTransfer         = errors.New("transfer endpoints must be two distinct accounts and not both the pot")
	ErrUserNotFound            = errors.New("user not found")
	ErrNameTaken               = errors.New("user name already taken")
	ErrUserIsCaptain           = errors.New("user is a captain and still has members")
	ErrGameNotFound            = errors.New("game not found")
	ErrWrongGameType           = errors.New("operation does not apply to this game type")
	ErrGameAlreadyCompleted    = errors.New("game already completed")
	ErrNoParticipantsForChoice = errors.New("no participants picked the winning choice")
	ErrDistributionMismatch    = errors.New("distribution amounts do not sum to the game pot")
	ErrDuplicateParticipant    = errors.New("duplicate participant in list")
	ErrNotAParticipant         = errors.New("user is not a participant of this game")
	ErrInvalidNumber           = errors.New("roulette number must be between 0 and 36")
	ErrMissingNumbers          = errors.New("every participant must pick a number before the spin")
)

// InsufficientFundsError names the account that could not cover a debit
type InsufficientFundsError struct {
	Account   string
	Requested int64
	Available int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: have %d, need %d", e.Account, e.Available, e.Requested)
}
