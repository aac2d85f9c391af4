package service

import (
	"context"
	"fmt"
	"strconv"

	"funbank/models"
)

type rollTheBallService struct {
	uowFactory UnitOfWorkFactory
}

// NewRollTheBallService creates the roll-the-ball settlement service
func NewRollTheBallService(uowFactory UnitOfWorkFactory) RollTheBallService {
	return &rollTheBallService{
		uowFactory: uowFactory,
	}
}

// SelectWinner pays the entire game pot to one recorded participant
func (s *rollTheBallService) SelectWinner(ctx context.Context, gameID int64, winnerUserID int64) (*SettlementResult, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeRollTheBall)
	if err != nil {
		return nil, err
	}
	if detail.ParticipantByUser(winnerUserID) == nil {
		return nil, fmt.Errorf("user %d: %w", winnerUserID, ErrNotAParticipant)
	}

	payouts := []Payout{{UserID: winnerUserID, Amount: detail.Game.PotAmount}}
	result, err := settleGame(ctx, uow, detail.Game, payouts, strconv.FormatInt(winnerUserID, 10))
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
