package repository

import (
	"context"
	"fmt"

	"funbank/database"
	"funbank/events"
	"funbank/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	userRepo         service.UserRepository
	potRepo          service.PotRepository
	transactionRepo  service.TransactionRepository
	gameRepo         service.GameRepository
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction and binds all repositories to it
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.potRepo = newPotRepositoryWithTx(tx)
	u.transactionRepo = newTransactionRepositoryWithTx(tx)
	u.gameRepo = newGameRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards pending events.
// Calling it after a successful commit is a no-op.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	if err := u.tx.Rollback(u.ctx); err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) PotRepository() service.PotRepository {
	if u.potRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.potRepo
}

func (u *unitOfWork) TransactionRepository() service.TransactionRepository {
	if u.transactionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionRepo
}

func (u *unitOfWork) GameRepository() service.GameRepository {
	if u.gameRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameRepo
}

func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
