package service

import (
	"context"
	"fmt"

	"funbank/models"
)

type sevenUpDownService struct {
	uowFactory UnitOfWorkFactory
}

// NewSevenUpDownService creates the 7up7down settlement service
func NewSevenUpDownService(uowFactory UnitOfWorkFactory) SevenUpDownService {
	return &sevenUpDownService{
		uowFactory: uowFactory,
	}
}

// SelectWinner settles the game for the given side. Each participant who
// picked that side receives an even floor share of the game pot; the
// division remainder stays in the shared pot.
func (s *sevenUpDownService) SelectWinner(ctx context.Context, gameID int64, side models.Choice) (*SettlementResult, error) {
	if side != models.ChoiceUp && side != models.ChoiceDown {
		return nil, fmt.Errorf("winning side must be %q or %q", models.ChoiceUp, models.ChoiceDown)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := loadGameDetail(ctx, uow, gameID, models.GameTypeSevenUpDown)
	if err != nil {
		return nil, err
	}

	var winnerIDs []int64
	for _, p := range detail.Participants {
		if p.Choice == side {
			winnerIDs = append(winnerIDs, p.UserID)
		}
	}
	if len(winnerIDs) == 0 {
		return nil, ErrNoParticipantsForChoice
	}

	share := detail.Game.SplitEvenly(len(winnerIDs))
	payouts := make([]Payout, 0, len(winnerIDs))
	for _, id := range winnerIDs {
		payouts = append(payouts, Payout{UserID: id, Amount: share})
	}

	result, err := settleGame(ctx, uow, detail.Game, payouts, string(side))
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
