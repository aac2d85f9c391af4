package service

import (
	"context"
	"errors"
	"testing"

	"funbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTransferService_Transfer_UserToPot(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, nil)

	service := NewTransferService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("DeductBalance", ctx, int64(7), int64(250)).Return(nil)
	mockPotRepo.On("Add", ctx, int64(250)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.FromUserID != nil && *txn.FromUserID == 7 &&
			txn.ToPot &&
			txn.Amount == 250
	})).Return(nil)

	txn, err := service.Transfer(ctx, models.UserAccount(7), models.PotAccount(), 250, nil)

	assert.NoError(t, err)
	assert.NotNil(t, txn)
	assert.Equal(t, int64(250), txn.Amount)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockPotRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestTransferService_Transfer_InvalidAmount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewTransferService(mockFactory)

	_, err := service.Transfer(ctx, models.UserAccount(1), models.UserAccount(2), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.Transfer(ctx, models.UserAccount(1), models.UserAccount(2), -10, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// Validation fails before any unit of work is created
	mockFactory.AssertNotCalled(t, "Create")
}

func TestTransferService_Transfer_PotToPotRejected(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewTransferService(mockFactory)

	_, err := service.Transfer(ctx, models.PotAccount(), models.PotAccount(), 100, nil)
	assert.ErrorIs(t, err, ErrInvalidTransfer)
}

func TestTransferService_Transfer_SameUserRejected(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewTransferService(mockFactory)

	_, err := service.Transfer(ctx, models.UserAccount(3), models.UserAccount(3), 100, nil)
	assert.ErrorIs(t, err, ErrInvalidTransfer)
}

func TestTransferService_Transfer_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, nil)

	service := NewTransferService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	fundsErr := &InsufficientFundsError{Account: "user 7", Requested: 500, Available: 120}
	mockUserRepo.On("DeductBalance", ctx, int64(7), int64(500)).Return(fundsErr)

	_, err := service.Transfer(ctx, models.UserAccount(7), models.UserAccount(8), 500, nil)

	var insufficientErr *InsufficientFundsError
	assert.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, int64(120), insufficientErr.Available)

	// The debit failed, so nothing was credited or recorded
	mockUserRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything)
	mockTxnRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestTransferService_TransferBatch_AbortsOnFirstFailure(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockPotRepo := new(MockPotRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, mockPotRepo, mockTxnRepo, nil)

	service := NewTransferService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// First transfer succeeds, second fails on the debit
	mockUserRepo.On("DeductBalance", ctx, int64(1), int64(100)).Return(nil)
	mockUserRepo.On("AddBalance", ctx, int64(2), int64(100)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.Anything).Return(nil).Once()

	fundsErr := &InsufficientFundsError{Account: "user 3", Requested: 100, Available: 40}
	mockUserRepo.On("DeductBalance", ctx, int64(3), int64(100)).Return(fundsErr)

	requests := []TransferRequest{
		{From: models.UserAccount(1), To: models.UserAccount(2), Amount: 100},
		{From: models.UserAccount(3), To: models.UserAccount(4), Amount: 100},
	}

	_, err := service.TransferBatch(ctx, requests)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "transfer 1")
	var insufficientErr *InsufficientFundsError
	assert.ErrorAs(t, err, &insufficientErr)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestTransferService_TransferBatch_ValidatesBeforeExecuting(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	service := NewTransferService(mockFactory)

	requests := []TransferRequest{
		{From: models.UserAccount(1), To: models.UserAccount(2), Amount: 100},
		{From: models.PotAccount(), To: models.PotAccount(), Amount: 50},
	}

	_, err := service.TransferBatch(ctx, requests)

	assert.ErrorIs(t, err, ErrInvalidTransfer)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestTransferService_AdjustBalance_Credit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, mockTxnRepo, nil)

	service := NewTransferService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("AddBalance", ctx, int64(5), int64(300)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.ToUserID != nil && *txn.ToUserID == 5 &&
			txn.FromUserID == nil && !txn.FromPot &&
			txn.Amount == 300
	})).Return(nil)

	txn, err := service.AdjustBalance(ctx, 5, 300, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(300), txn.Amount)
	mockUserRepo.AssertExpectations(t)
	mockTxnRepo.AssertExpectations(t)
}

func TestTransferService_AdjustBalance_DebitStoresPositiveAmount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockTxnRepo := new(MockTransactionRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, mockTxnRepo, nil)

	service := NewTransferService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("DeductBalance", ctx, int64(5), int64(200)).Return(nil)
	mockTxnRepo.On("Append", ctx, mock.MatchedBy(func(txn *models.Transaction) bool {
		return txn.FromUserID != nil && *txn.FromUserID == 5 &&
			txn.ToUserID == nil &&
			txn.Amount == 200
	})).Return(nil)

	txn, err := service.AdjustBalance(ctx, 5, -200, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(200), txn.Amount)
	assert.Equal(t, int64(-200), txn.SignedAmountFor(5))
}

func TestTransferService_AdjustBalance_ZeroRejected(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	service := NewTransferService(mockFactory)

	_, err := service.AdjustBalance(ctx, 5, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestTransferService_Transfer_BeginFails(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(errors.New("connection refused"))

	service := NewTransferService(mockFactory)

	_, err := service.Transfer(ctx, models.UserAccount(1), models.PotAccount(), 10, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
}
