package service

import (
	"context"
	"fmt"
	"strconv"

	"funbank/models"
)

// PayoutShare is one user's portion of a poker settlement
type PayoutShare struct {
	UserID int64
	Amount int64
}

type pokerService struct {
	uowFactory UnitOfWorkFactory
}

// NewPokerService creates the poker settlement service
func NewPokerService(uowFactory UnitOfWorkFactory) PokerService {
	return &pokerService{
		uowFactory: uowFactory,
	}
}

// Distribute settles the game with caller-supplied shares. The shares
// must cover every chip in the game pot exactly; anything else is a
// bookkeeping error on the caller's side and is rejected whole.
func (s *pokerService) Distribute(ctx context.Context, gameID int64, shares []PayoutShare) (*SettlementResult, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("share list must not be empty")
	}

	seen := make(map[int64]bool, len(shares))
	var total int64
	for _, share := range shares {
		if share.Amount < 0 {
			return nil, ErrInvalidAmount
		}
		if seen[share.UserID] {
			return nil, fmt.Errorf("user %d: %w", share.UserID, ErrDuplicateParticipant)
		}
		seen[share.UserID] = true
		total += share.Amount
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypePoker)
	if err != nil {
		return nil, err
	}
	for _, share := range shares {
		if detail.ParticipantByUser(share.UserID) == nil {
			return nil, fmt.Errorf("user %d: %w", share.UserID, ErrNotAParticipant)
		}
	}
	if total != detail.Game.PotAmount {
		return nil, fmt.Errorf("shares sum to %d, game pot holds %d: %w", total, detail.Game.PotAmount, ErrDistributionMismatch)
	}

	// The winner field records the largest share; first occurrence wins
	// ties so the caller's ordering is preserved.
	best := shares[0]
	for _, share := range shares[1:] {
		if share.Amount > best.Amount {
			best = share
		}
	}

	payouts := make([]Payout, 0, len(shares))
	for _, share := range shares {
		payouts = append(payouts, Payout{UserID: share.UserID, Amount: share.Amount})
	}

	result, err := settleGame(ctx, uow, detail.Game, payouts, strconv.FormatInt(best.UserID, 10))
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
