package service

import (
	"context"
	"fmt"

	"funbank/models"
)

type dealNoDealService struct {
	uowFactory UnitOfWorkFactory
}

// NewDealNoDealService creates the deal-no-deal service
func NewDealNoDealService(uowFactory UnitOfWorkFactory) DealNoDealService {
	return &dealNoDealService{
		uowFactory: uowFactory,
	}
}

// ApplyResult records one episode outcome as a direct adjustment on the
// participant. Winnings come from nowhere and losses go nowhere; the
// shared pot stays untouched, so the game pot bookkeeping does not
// balance against the ledger for this game type.
func (s *dealNoDealService) ApplyResult(ctx context.Context, gameID int64, userID int64, amount int64) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeDealNoDeal)
	if err != nil {
		return nil, err
	}
	if detail.ParticipantByUser(userID) == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotAParticipant)
	}

	txn, err := ExecuteAdjustment(ctx, uow, userID, amount, detail.Game.Tag())
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// Finish closes the game once the episode is over. No payout moves;
// the results were already applied per contestant.
func (s *dealNoDealService) Finish(ctx context.Context, gameID int64, winner string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := loadGameDetail(ctx, uow, gameID, models.GameTypeDealNoDeal); err != nil {
		return err
	}
	if err := uow.GameRepository().MarkCompleted(ctx, gameID, winner); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
