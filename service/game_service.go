package service

import (
	"context"
	"fmt"

	"funbank/events"
	"funbank/models"
)

// ParticipantEntry is one user joining a game at start
type ParticipantEntry struct {
	UserID int64
	Choice models.Choice // up/down for 7up7down, empty otherwise
}

type gameService struct {
	uowFactory UnitOfWorkFactory
}

// NewGameService creates a new game lifecycle service
func NewGameService(uowFactory UnitOfWorkFactory) GameService {
	return &gameService{
		uowFactory: uowFactory,
	}
}

// StartGame creates the game row, collects one entry fee per participant
// into the pot and writes the round-1 participant rows, all in one
// atomic unit. Any failure rolls the whole start back.
func (s *gameService) StartGame(ctx context.Context, gameType models.GameType, entryFee int64, entries []ParticipantEntry) (*models.Game, error) {
	if !gameType.Valid() {
		return nil, fmt.Errorf("unknown game type %q", gameType)
	}
	if entryFee <= 0 {
		return nil, ErrInvalidAmount
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("participant list must not be empty")
	}

	seen := make(map[int64]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.UserID] {
			return nil, fmt.Errorf("user %d: %w", entry.UserID, ErrDuplicateParticipant)
		}
		seen[entry.UserID] = true
		if !entry.Choice.Valid() {
			return nil, fmt.Errorf("invalid choice %q for user %d", entry.Choice, entry.UserID)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.UserID)
	}
	users, err := uow.UserRepository().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	if len(users) != len(entries) {
		found := make(map[int64]bool, len(users))
		for _, user := range users {
			found[user.ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, fmt.Errorf("user %d: %w", id, ErrUserNotFound)
			}
		}
	}

	game := &models.Game{
		GameType:    gameType,
		EntryFee:    entryFee,
		PotAmount:   entryFee * int64(len(entries)),
		Status:      models.GameStatusActive,
		RoundNumber: 1,
	}
	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return nil, err
	}

	// One fee transfer and one participant row per entry. The conditional
	// debit inside ExecuteTransfer rejects any participant who cannot
	// cover the fee, aborting the whole start.
	for _, entry := range entries {
		req := TransferRequest{
			From:   models.UserAccount(entry.UserID),
			To:     models.PotAccount(),
			Amount: entryFee,
			Tag:    game.Tag(),
		}
		if _, err := ExecuteTransfer(ctx, uow, req); err != nil {
			return nil, err
		}

		participant := &models.GameParticipant{
			GameID:      game.ID,
			UserID:      entry.UserID,
			Choice:      entry.Choice,
			RoundNumber: 1,
		}
		if err := uow.GameRepository().UpsertParticipant(ctx, participant); err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.GameStartedEvent{
		GameID:       game.ID,
		GameType:     game.GameType,
		EntryFee:     game.EntryFee,
		PotAmount:    game.PotAmount,
		Participants: len(entries),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return game, nil
}

// GetGame retrieves a game with its current-round participants
func (s *gameService) GetGame(ctx context.Context, gameID int64) (*models.GameDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	detail, err := uow.GameRepository().GetDetailByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, ErrGameNotFound
	}

	return detail, nil
}
