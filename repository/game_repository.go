package repository

import (
	"context"
	"fmt"

	"funbank/database"
	"funbank/models"
	"funbank/service"

	"github.com/jackc/pgx/v5"
)

// GameRepository implements the service.GameRepository interface for
// games and their per-round participants.
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

const gameColumns = `id, game_type, entry_fee, pot_amount, status, winner, spin_result, round_number, created_at, completed_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var game models.Game
	err := row.Scan(
		&game.ID,
		&game.GameType,
		&game.EntryFee,
		&game.PotAmount,
		&game.Status,
		&game.Winner,
		&game.SpinResult,
		&game.RoundNumber,
		&game.CreatedAt,
		&game.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// Create inserts a new game row and fills in its id and creation time
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (game_type, entry_fee, pot_amount, status, round_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		game.GameType,
		game.EntryFee,
		game.PotAmount,
		game.Status,
		game.RoundNumber,
	).Scan(&game.ID, &game.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

// GetByID retrieves a game by id, returning nil when no game exists
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	return game, nil
}

// GetDetailByID retrieves a game with its current-round participants
func (r *GameRepository) GetDetailByID(ctx context.Context, id int64) (*models.GameDetail, error) {
	game, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, nil
	}

	participants, err := r.GetParticipants(ctx, id, game.RoundNumber)
	if err != nil {
		return nil, err
	}

	return &models.GameDetail{Game: game, Participants: participants}, nil
}

// Update persists pot amount, spin result and round number changes
func (r *GameRepository) Update(ctx context.Context, game *models.Game) error {
	query := `
		UPDATE games
		SET pot_amount = $1, spin_result = $2, round_number = $3
		WHERE id = $4
	`

	result, err := r.q.Exec(ctx, query,
		game.PotAmount,
		game.SpinResult,
		game.RoundNumber,
		game.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update game %d: %w", game.ID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrGameNotFound
	}
	return nil
}

// MarkCompleted transitions a game to completed exactly once. The
// conditional update closes the double-settlement race: a second call
// matches zero rows and reports the game as already completed.
func (r *GameRepository) MarkCompleted(ctx context.Context, gameID int64, winner string) error {
	query := `
		UPDATE games
		SET status = $1, winner = $2, completed_at = NOW()
		WHERE id = $3 AND status = $4
	`

	result, err := r.q.Exec(ctx, query,
		models.GameStatusCompleted, winner, gameID, models.GameStatusActive)
	if err != nil {
		return fmt.Errorf("failed to complete game %d: %w", gameID, err)
	}
	if result.RowsAffected() == 0 {
		game, err := r.GetByID(ctx, gameID)
		if err != nil {
			return err
		}
		if game == nil {
			return service.ErrGameNotFound
		}
		return service.ErrGameAlreadyCompleted
	}
	return nil
}

// UpsertParticipant inserts a participant row for the given round, or
// updates the choice and number of the existing row. Rows of earlier
// rounds are never touched.
func (r *GameRepository) UpsertParticipant(ctx context.Context, p *models.GameParticipant) error {
	query := `
		INSERT INTO game_participants (game_id, user_id, choice, number, round_number)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, user_id, round_number)
		DO UPDATE SET choice = EXCLUDED.choice, number = EXCLUDED.number
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		p.GameID,
		p.UserID,
		p.Choice,
		p.Number,
		p.RoundNumber,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert participant %d for game %d: %w", p.UserID, p.GameID, err)
	}
	return nil
}

// GetParticipants returns the participant rows of one round of a game
func (r *GameRepository) GetParticipants(ctx context.Context, gameID int64, round int) ([]*models.GameParticipant, error) {
	query := `
		SELECT id, game_id, user_id, choice, number, round_number, created_at
		FROM game_participants
		WHERE game_id = $1 AND round_number = $2
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query, gameID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var participants []*models.GameParticipant
	for rows.Next() {
		var p models.GameParticipant
		err := rows.Scan(
			&p.ID,
			&p.GameID,
			&p.UserID,
			&p.Choice,
			&p.Number,
			&p.RoundNumber,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}
	return participants, nil
}

// GetRecent returns the most recently created games
func (r *GameRepository) GetRecent(ctx context.Context, limit int) ([]*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY created_at DESC, id DESC LIMIT $1`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}
	return games, nil
}
