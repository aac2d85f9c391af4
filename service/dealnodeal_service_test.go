package service

import (
	"context"
	"testing"

	"funbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func dealNoDealDetail() *models.GameDetail {
	return &models.GameDetail{
		Game: &models.Game{
			ID:          90,
			GameType:    models.GameTypeDealNoDeal,
			EntryFee:    10,
			PotAmount:   20,
			Status:      models.GameStatusActive,
			RoundNumber: 1,
		},
		Participants: []*models.GameParticipant{
			{GameID: 90, UserID: 1, RoundNumber: 1},
			{GameID: 90, UserID: 2, RoundNumber: 1},
		},
	}
}

func TestDealNoDealService_ApplyResult_CreditsContestant(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, mockGameRepo)

	service := NewDealNoDealService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(90)).Return(dealNoDealDetail(), nil)
	mockUserRepo.On("AddBalance", ctx, int64(1), int64(500)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.ToUserID != nil && *txn.ToUserID == 1 &&
			!txn.FromPot && txn.FromUserID == nil &&
			txn.Amount == 500 &&
			txn.GameID != nil && *txn.GameID == 90
	})).Return(nil)

	txn, err := service.ApplyResult(ctx, 90, 1, 500)

	assert.NoError(t, err)
	assert.Equal(t, int64(500), txn.Amount)

	// The shared pot never moves for deal-no-deal results
	mockPotRepo.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	mockPotRepo.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything)
	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestDealNoDealService_ApplyResult_DebitsContestant(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, mockTxnRepo, mockGameRepo)

	service := NewDealNoDealService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(90)).Return(dealNoDealDetail(), nil)
	mockUserRepo.On("DeductBalance", ctx, int64(2), int64(150)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.FromUserID != nil && *txn.FromUserID == 2 &&
			txn.Amount == 150
	})).Return(nil)

	txn, err := service.ApplyResult(ctx, 90, 2, -150)

	assert.NoError(t, err)
	assert.Equal(t, int64(-150), txn.SignedAmountFor(2))
}

func TestDealNoDealService_ApplyResult_NonParticipantRejected(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, mockGameRepo)

	service := NewDealNoDealService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(90)).Return(dealNoDealDetail(), nil)

	_, err := service.ApplyResult(ctx, 90, 42, 500)

	assert.ErrorIs(t, err, ErrNotAParticipant)
	mockUserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestDealNoDealService_Finish_NoPayout(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockGameRepo := new(MockGameRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, nil, mockGameRepo)

	service := NewDealNoDealService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetDetailByID", ctx, int64(90)).Return(dealNoDealDetail(), nil)
	mockGameRepo.On("MarkCompleted", ctx, int64(90), "1").Return(nil)

	err := service.Finish(ctx, 90, "1")

	assert.NoError(t, err)
	mockPotRepo.AssertNotCalled(t, "Deduct", mock.Anything, mock.Anything)
	mockUserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	mockGameRepo.AssertExpectations(t)
}
