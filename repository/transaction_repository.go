package repository

import (
	"context"
	"fmt"

	"funbank/database"
	"funbank/models"

	"github.com/jackc/pgx/v5"
)

// TransactionRepository implements the service.TransactionRepository
// interface over the append-only ledger.
type TransactionRepository struct {
	q queryable
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{q: db.Pool}
}

func newTransactionRepositoryWithTx(tx queryable) *TransactionRepository {
	return &TransactionRepository{q: tx}
}

const transactionColumns = `id, from_user_id, to_user_id, from_pot, to_pot, amount, game_id, game_type, created_at`

// Append writes one immutable ledger entry and fills in its id and
// creation time. Entries are never updated or deleted.
func (r *TransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions
		(from_user_id, to_user_id, from_pot, to_pot, amount, game_id, game_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.FromUserID,
		txn.ToUserID,
		txn.FromPot,
		txn.ToPot,
		txn.Amount,
		txn.GameID,
		txn.GameType,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// GetByUser returns ledger entries touching a user, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// GetByGame returns all ledger entries tagged with a game, in insertion order
func (r *TransactionRepository) GetByGame(ctx context.Context, gameID int64) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE game_id = $1
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for game %d: %w", gameID, err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ReplayUserBalance reconstructs a user's balance from the ledger:
// sum of credits minus sum of debits. Used by audits and tests.
func (r *TransactionRepository) ReplayUserBalance(ctx context.Context, userID int64) (int64, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN to_user_id = $1 THEN amount ELSE 0 END), 0)
			- COALESCE(SUM(CASE WHEN from_user_id = $1 THEN amount ELSE 0 END), 0)
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
	`

	var balance int64
	if err := r.q.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to replay balance for user %d: %w", userID, err)
	}
	return balance, nil
}

func collectTransactions(rows pgx.Rows) ([]*models.Transaction, error) {
	var txns []*models.Transaction
	for rows.Next() {
		var txn models.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.FromUserID,
			&txn.ToUserID,
			&txn.FromPot,
			&txn.ToPot,
			&txn.Amount,
			&txn.GameID,
			&txn.GameType,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}
