package repository

import (
	"context"
	"fmt"

	"funbank/database"
	"funbank/models"
	"funbank/service"
)

// PotRepository implements the service.PotRepository interface over the
// singleton pot row.
type PotRepository struct {
	q queryable
}

// NewPotRepository creates a new pot repository
func NewPotRepository(db *database.DB) *PotRepository {
	return &PotRepository{q: db.Pool}
}

func newPotRepositoryWithTx(tx queryable) *PotRepository {
	return &PotRepository{q: tx}
}

// Get returns the pot
func (r *PotRepository) Get(ctx context.Context) (*models.Pot, error) {
	var pot models.Pot
	err := r.q.QueryRow(ctx,
		`SELECT id, balance FROM pot WHERE id = $1`, models.PotID).
		Scan(&pot.ID, &pot.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to get pot: %w", err)
	}
	return &pot, nil
}

// Add credits the pot balance atomically
func (r *PotRepository) Add(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	_, err := r.q.Exec(ctx,
		`UPDATE pot SET balance = balance + $1 WHERE id = $2`,
		amount, models.PotID)
	if err != nil {
		return fmt.Errorf("failed to add to pot: %w", err)
	}
	return nil
}

// Deduct debits the pot with a single conditional update so the pot can
// never be driven negative by a stale read.
func (r *PotRepository) Deduct(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	result, err := r.q.Exec(ctx,
		`UPDATE pot SET balance = balance - $1 WHERE id = $2 AND balance >= $1`,
		amount, models.PotID)
	if err != nil {
		return fmt.Errorf("failed to deduct from pot: %w", err)
	}
	if result.RowsAffected() == 0 {
		pot, err := r.Get(ctx)
		if err != nil {
			return err
		}
		return &service.InsufficientFundsError{
			Account:   models.PotAccount().String(),
			Requested: amount,
			Available: pot.Balance,
		}
	}
	return nil
}
