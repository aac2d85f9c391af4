package repository

import (
	"context"
	"fmt"

	"funbank/database"
	"funbank/models"
	"funbank/service"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, name, balance, is_captain, captain_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Balance,
		&user.IsCaptain,
		&user.CaptainID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id, returning nil when no user exists
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByName retrieves a user by their normalized name
func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(TRIM(name)) = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, models.NormalizeName(name)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by name %q: %w", name, err)
	}
	return user, nil
}

// GetByIDs retrieves all users matching the given ids
func (r *UserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1)`

	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// Create creates a new user with the given starting balance
func (r *UserRepository) Create(ctx context.Context, name string, startingBalance int64) (*models.User, error) {
	query := `
		INSERT INTO users (name, balance)
		VALUES ($1, $2)
		RETURNING ` + userColumns

	user, err := scanUser(r.q.QueryRow(ctx, query, name, startingBalance))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", name, err)
	}
	return user, nil
}

// Delete removes a user. The caller is responsible for refusing to delete
// captains that still have members.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}
	return nil
}

// AddBalance credits a user's balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}
	return nil
}

// DeductBalance debits a user's balance with a single conditional update,
// so two concurrent debits can never both pass a stale funds check.
func (r *UserRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return service.ErrInvalidAmount
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, id)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to check user %d: %w", id, err)
		}
		if user == nil {
			return service.ErrUserNotFound
		}
		return &service.InsufficientFundsError{
			Account:   models.UserAccount(id).String(),
			Requested: amount,
			Available: user.Balance,
		}
	}
	return nil
}

// SetCaptain assigns a captain to a user and flags the captain row
func (r *UserRepository) SetCaptain(ctx context.Context, userID, captainID int64) error {
	result, err := r.q.Exec(ctx,
		`UPDATE users SET captain_id = $1, updated_at = NOW() WHERE id = $2`,
		captainID, userID)
	if err != nil {
		return fmt.Errorf("failed to set captain for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrUserNotFound
	}

	if _, err := r.q.Exec(ctx,
		`UPDATE users SET is_captain = TRUE, updated_at = NOW() WHERE id = $1`,
		captainID); err != nil {
		return fmt.Errorf("failed to flag captain %d: %w", captainID, err)
	}
	return nil
}

// ClearCaptain detaches a user from their captain and clears the captain
// flag once no members remain.
func (r *UserRepository) ClearCaptain(ctx context.Context, userID int64) error {
	var captainID *int64
	err := r.q.QueryRow(ctx, `SELECT captain_id FROM users WHERE id = $1`, userID).Scan(&captainID)
	if err == pgx.ErrNoRows {
		return service.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get captain for user %d: %w", userID, err)
	}

	if _, err := r.q.Exec(ctx,
		`UPDATE users SET captain_id = NULL, updated_at = NOW() WHERE id = $1`,
		userID); err != nil {
		return fmt.Errorf("failed to clear captain for user %d: %w", userID, err)
	}

	if captainID != nil {
		query := `
			UPDATE users SET is_captain = FALSE, updated_at = NOW()
			WHERE id = $1
			  AND NOT EXISTS (SELECT 1 FROM users WHERE captain_id = $1)
		`
		if _, err := r.q.Exec(ctx, query, *captainID); err != nil {
			return fmt.Errorf("failed to unflag captain %d: %w", *captainID, err)
		}
	}
	return nil
}

// GetMembers returns all users assigned to the given captain
func (r *UserRepository) GetMembers(ctx context.Context, captainID int64) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE captain_id = $1 ORDER BY name`

	rows, err := r.q.Query(ctx, query, captainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members of captain %d: %w", captainID, err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// GetAll returns all users ordered by balance, highest first
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY balance DESC, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	return collectUsers(rows)
}

// TotalBalance returns the sum of all user balances
func (r *UserRepository) TotalBalance(ctx context.Context) (int64, error) {
	var total int64
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(balance), 0) FROM users`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum user balances: %w", err)
	}
	return total, nil
}

func collectUsers(rows pgx.Rows) ([]*models.User, error) {
	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
