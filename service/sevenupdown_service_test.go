package service

import (
	"context"
	"testing"

	"funbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func sevenUpDownDetail() *models.GameDetail {
	return &models.GameDetail{
		Game: &models.Game{
			ID:          55,
			GameType:    models.GameTypeSevenUpDown,
			EntryFee:    10,
			PotAmount:   30,
			Status:      models.GameStatusActive,
			RoundNumber: 1,
		},
		Participants: []*models.GameParticipant{
			{GameID: 55, UserID: 1, Choice: models.ChoiceUp, RoundNumber: 1},
			{GameID: 55, UserID: 2, Choice: models.ChoiceUp, RoundNumber: 1},
			{GameID: 55, UserID: 3, Choice: models.ChoiceDown, RoundNumber: 1},
		},
	}
}

func TestSevenUpDownService_SelectWinner_SplitsPotAcrossSide(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, mockGameRepo)

	service := NewSevenUpDownService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(55)).Return(sevenUpDownDetail(), nil)
	mockGameRepo.On("MarkCompleted", ctx, int64(55), "up").Return(nil)

	// Two of three picked up, so each gets 30/2 = 15 from the pot
	mockPotRepo.On("Deduct", ctx, int64(15)).Return(nil).Times(2)
	mockUserRepo.On("AddBalance", ctx, int64(1), int64(15)).Return(nil)
	mockUserRepo.On("AddBalance", ctx, int64(2), int64(15)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.FromPot && txn.Amount == 15 &&
			txn.GameType != nil && *txn.GameType == models.GameTypeSevenUpDown
	})).Return(nil).Times(2)

	result, err := service.SelectWinner(ctx, 55, models.ChoiceUp)

	assert.NoError(t, err)
	assert.Equal(t, "up", result.Winner)
	assert.Equal(t, int64(30), result.TotalPaid)
	assert.Len(t, result.Payouts, 2)
	assert.Equal(t, models.GameStatusCompleted, result.Game.Status)

	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockPotRepo.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
}

func TestSevenUpDownService_SelectWinner_RemainderStaysInPot(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, mockGameRepo)

	service := NewSevenUpDownService(mockFactory)

	detail := sevenUpDownDetail()
	detail.Game.PotAmount = 31
	detail.Participants[2].Choice = models.ChoiceUp

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(55)).Return(detail, nil)
	mockGameRepo.On("MarkCompleted", ctx, int64(55), "up").Return(nil)

	// 31 / 3 = 10 each; the single leftover chip stays in the pot
	mockPotRepo.On("Deduct", ctx, int64(10)).Return(nil).Times(3)
	for _, id := range []int64{1, 2, 3} {
		mockUserRepo.On("AddBalance", ctx, id, int64(10)).Return(nil)
	}
	mockTxnRepo.On("Append", ctx, mock.Anything).Return(nil).Times(3)

	result, err := service.SelectWinner(ctx, 55, models.ChoiceUp)

	assert.NoError(t, err)
	assert.Equal(t, int64(30), result.TotalPaid)
}

func TestSevenUpDownService_SelectWinner_NoParticipantsForChoice(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockGameRepo)

	service := NewSevenUpDownService(mockFactory)

	detail := sevenUpDownDetail()
	for _, p := range detail.Participants {
		p.Choice = models.ChoiceUp
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(55)).Return(detail, nil)

	_, err := service.SelectWinner(ctx, 55, models.ChoiceDown)

	assert.ErrorIs(t, err, ErrNoParticipantsForChoice)
	mockGameRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestSevenUpDownService_SelectWinner_InvalidSide(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewSevenUpDownService(mockFactory)

	_, err := service.SelectWinner(ctx, 55, models.Choice("sideways"))

	assert.Error(t, err)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestSevenUpDownService_SelectWinner_AlreadyCompleted(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockGameRepo)

	service := NewSevenUpDownService(mockFactory)

	detail := sevenUpDownDetail()
	detail.Game.Status = models.GameStatusCompleted

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(55)).Return(detail, nil)

	_, err := service.SelectWinner(ctx, 55, models.ChoiceUp)

	assert.ErrorIs(t, err, ErrGameAlreadyCompleted)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestSevenUpDownService_SelectWinner_WrongGameType(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(nil, nil, nil, mockGameRepo)

	service := NewSevenUpDownService(mockFactory)

	detail := sevenUpDownDetail()
	detail.Game.GameType = models.GameTypePoker

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(55)).Return(detail, nil)

	_, err := service.SelectWinner(ctx, 55, models.ChoiceUp)

	assert.ErrorIs(t, err, ErrWrongGameType)
}

func TestSevenUpDownService_SelectWinner_ConcurrentSettlementLosesRace(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, nil, mockGameRepo)

	service := NewSevenUpDownService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// The read saw an active game, but another settlement committed
	// in between: the conditional completion update finds no row.
	mockGameRepo.On("GetDetailByID", ctx, int64(55)).Return(sevenUpDownDetail(), nil)
	mockGameRepo.On("MarkCompleted", ctx, int64(55), "up").Return(ErrGameAlreadyCompleted)

	_, err := service.SelectWinner(ctx, 55, models.ChoiceUp)

	assert.ErrorIs(t, err, ErrGameAlreadyCompleted)
	// No money moved
	mockPotRepo.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything)
	mockUserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}
