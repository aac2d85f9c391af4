package service

import (
	"context"
	"fmt"

	"funbank/events"
	"funbank/models"
)

// TransferRequest describes one money movement between two accounts
type TransferRequest struct {
	From   models.Account
	To     models.Account
	Amount int64
	Tag    *models.GameTag
}

// Validate checks the transfer preconditions without touching the store
func (r TransferRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.From.IsPot() && r.To.IsPot() {
		return ErrInvalidTransfer
	}
	if !r.From.IsPot() && !r.To.IsPot() && r.From.UserID == r.To.UserID {
		return ErrInvalidTransfer
	}
	return nil
}

type transferService struct {
	uowFactory UnitOfWorkFactory
}

// NewTransferService creates a new transfer service
func NewTransferService(uowFactory UnitOfWorkFactory) TransferService {
	return &transferService{
		uowFactory: uowFactory,
	}
}

func (s *transferService) Transfer(ctx context.Context, from, to models.Account, amount int64, tag *models.GameTag) (*models.Transaction, error) {
	req := TransferRequest{From: from, To: to, Amount: amount, Tag: tag}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	txn, err := ExecuteTransfer(ctx, uow, req)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

func (s *transferService) TransferBatch(ctx context.Context, requests []TransferRequest) ([]*models.Transaction, error) {
	if len(requests) == 0 {
		return nil, fmt.Errorf("transfer batch must not be empty")
	}
	for i, req := range requests {
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Transfers are applied in input order so the resulting ledger rows
	// read in the same order as the request.
	txns := make([]*models.Transaction, 0, len(requests))
	for i, req := range requests {
		txn, err := ExecuteTransfer(ctx, uow, req)
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
		txns = append(txns, txn)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txns, nil
}

func (s *transferService) AdjustBalance(ctx context.Context, userID int64, amount int64, tag *models.GameTag) (*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	txn, err := ExecuteAdjustment(ctx, uow, userID, amount, tag)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// ExecuteTransfer applies one transfer inside an existing unit of work:
// debit the source, credit the destination, append one ledger entry.
// The debit is a conditional update, so an uncovered source aborts the
// whole unit with no partial effect.
func ExecuteTransfer(ctx context.Context, uow UnitOfWork, req TransferRequest) (*models.Transaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.From.IsPot() {
		if err := uow.PotRepository().Deduct(ctx, req.Amount); err != nil {
			return nil, fmt.Errorf("failed to debit %s: %w", req.From, err)
		}
	} else {
		if err := uow.UserRepository().DeductBalance(ctx, req.From.UserID, req.Amount); err != nil {
			return nil, fmt.Errorf("failed to debit %s: %w", req.From, err)
		}
	}

	if req.To.IsPot() {
		if err := uow.PotRepository().Add(ctx, req.Amount); err != nil {
			return nil, fmt.Errorf("failed to credit %s: %w", req.To, err)
		}
	} else {
		if err := uow.UserRepository().AddBalance(ctx, req.To.UserID, req.Amount); err != nil {
			return nil, fmt.Errorf("failed to credit %s: %w", req.To, err)
		}
	}

	txn := models.NewTransfer(req.From, req.To, req.Amount, req.Tag)
	if err := uow.TransactionRepository().Append(ctx, txn); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		TransactionID: txn.ID,
		FromUserID:    txn.FromUserID,
		ToUserID:      txn.ToUserID,
		Amount:        txn.Amount,
		GameType:      txn.GameType,
	})

	return txn, nil
}

// ExecuteAdjustment applies a direct single-endpoint credit or debit
// inside an existing unit of work. Used by deal-no-deal results and the
// initial registration grant; the pot is not involved.
func ExecuteAdjustment(ctx context.Context, uow UnitOfWork, userID int64, amount int64, tag *models.GameTag) (*models.Transaction, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	if amount > 0 {
		if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
			return nil, fmt.Errorf("failed to credit user %d: %w", userID, err)
		}
	} else {
		if err := uow.UserRepository().DeductBalance(ctx, userID, -amount); err != nil {
			return nil, fmt.Errorf("failed to debit user %d: %w", userID, err)
		}
	}

	txn := models.NewAdjustment(userID, amount, tag)
	if err := uow.TransactionRepository().Append(ctx, txn); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		TransactionID: txn.ID,
		FromUserID:    txn.FromUserID,
		ToUserID:      txn.ToUserID,
		Amount:        txn.Amount,
		GameType:      txn.GameType,
	})

	return txn, nil
}
