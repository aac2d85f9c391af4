package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"funbank/events"
	"funbank/models"
)

// Payout is one winner's share of a settlement
type Payout struct {
	UserID int64 `json:"userId"`
	Amount int64 `json:"amount"`
}

// SettlementResult reports what a completed settlement paid out
type SettlementResult struct {
	Game      *models.Game `json:"game"`
	Winner    string       `json:"winner"`
	Payouts   []Payout     `json:"payouts"`
	TotalPaid int64        `json:"totalPaid"`
}

// loadGameDetail fetches a game with its current-round participants and
// verifies it exists, is of the expected type and is still active.
func loadGameDetail(ctx context.Context, uow UnitOfWork, gameID int64, gameType models.GameType) (*models.GameDetail, error) {
	detail, err := uow.GameRepository().GetDetailByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrGameNotFound
	}
	if detail.Game.GameType != gameType {
		return nil, fmt.Errorf("game %d is %s: %w", gameID, detail.Game.GameType, ErrWrongGameType)
	}
	if detail.Game.IsCompleted() {
		return nil, ErrGameAlreadyCompleted
	}
	return detail, nil
}

// settleGame realizes the payouts and completes the game inside the
// caller's unit of work. The completion update is conditional on the
// game still being active, so a concurrent second settlement of the
// same game aborts before any money moves.
func settleGame(ctx context.Context, uow UnitOfWork, game *models.Game, payouts []Payout, winner string) (*SettlementResult, error) {
	if err := uow.GameRepository().MarkCompleted(ctx, game.ID, winner); err != nil {
		return nil, err
	}

	var totalPaid int64
	for _, payout := range payouts {
		if payout.Amount == 0 {
			continue
		}
		req := TransferRequest{
			From:   models.PotAccount(),
			To:     models.UserAccount(payout.UserID),
			Amount: payout.Amount,
			Tag:    game.Tag(),
		}
		if _, err := ExecuteTransfer(ctx, uow, req); err != nil {
			return nil, err
		}
		totalPaid += payout.Amount
	}

	uow.EventBus().Publish(events.GameSettledEvent{
		GameID:    game.ID,
		GameType:  game.GameType,
		Winner:    winner,
		TotalPaid: totalPaid,
	})

	game.Status = models.GameStatusCompleted
	game.Winner = &winner

	return &SettlementResult{
		Game:      game,
		Winner:    winner,
		Payouts:   payouts,
		TotalPaid: totalPaid,
	}, nil
}

// joinUserIDs renders a winner list for the game's free-form winner field
func joinUserIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}
