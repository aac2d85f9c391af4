package service

import (
	"context"
	"testing"

	"funbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func rollTheBallDetail() *models.GameDetail {
	return &models.GameDetail{
		Game: &models.Game{
			ID:          80,
			GameType:    models.GameTypeRollTheBall,
			EntryFee:    20,
			PotAmount:   60,
			Status:      models.GameStatusActive,
			RoundNumber: 1,
		},
		Participants: []*models.GameParticipant{
			{GameID: 80, UserID: 1, RoundNumber: 1},
			{GameID: 80, UserID: 2, RoundNumber: 1},
			{GameID: 80, UserID: 3, RoundNumber: 1},
		},
	}
}

func TestRollTheBallService_SelectWinner_TakesWholePot(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, mockGameRepo)

	service := NewRollTheBallService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(80)).Return(rollTheBallDetail(), nil)
	mockGameRepo.On("MarkCompleted", ctx, int64(80), "2").Return(nil)

	mockPotRepo.On("Deduct", ctx, int64(60)).Return(nil)
	mockUserRepo.On("AddBalance", ctx, int64(2), int64(60)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.FromPot && txn.ToUserID != nil && *txn.ToUserID == 2 &&
			txn.Amount == 60
	})).Return(nil)

	result, err := service.SelectWinner(ctx, 80, 2)

	assert.NoError(t, err)
	assert.Equal(t, "2", result.Winner)
	assert.Equal(t, int64(60), result.TotalPaid)
	assert.Len(t, result.Payouts, 1)

	mockUoW.AssertExpectations(t)
	mockPotRepo.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
}

func TestRollTheBallService_SelectWinner_NonParticipantRejected(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockPotRepo := new(MockPotRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(nil, mockPotRepo, nil, mockGameRepo)

	service := NewRollTheBallService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(80)).Return(rollTheBallDetail(), nil)

	_, err := service.SelectWinner(ctx, 80, 42)

	assert.ErrorIs(t, err, ErrNotAParticipant)
	mockGameRepo.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	mockPotRepo.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}
