package service

import (
	"context"

	"funbank/events"
	"funbank/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, returning nil when no user exists
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByName retrieves a user by their normalized name
	GetByName(ctx context.Context, name string) (*models.User, error)

	// GetByIDs retrieves all users matching the given ids
	GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error)

	// Create creates a new user with the given starting balance
	Create(ctx context.Context, name string, startingBalance int64) (*models.User, error)

	// Delete removes a user
	Delete(ctx context.Context, id int64) error

	// AddBalance credits a user's balance atomically
	AddBalance(ctx context.Context, id int64, amount int64) error

	// DeductBalance debits a user's balance atomically, failing if
	// the balance cannot cover the amount
	DeductBalance(ctx context.Context, id int64, amount int64) error

	// SetCaptain assigns a captain to a user
	SetCaptain(ctx context.Context, userID, captainID int64) error

	// ClearCaptain detaches a user from their captain
	ClearCaptain(ctx context.Context, userID int64) error

	// GetMembers returns all users assigned to the given captain
	GetMembers(ctx context.Context, captainID int64) ([]*models.User, error)

	// GetAll returns all users ordered by balance, highest first
	GetAll(ctx context.Context) ([]*models.User, error)

	// TotalBalance returns the sum of all user balances
	TotalBalance(ctx context.Context) (int64, error)
}

// PotRepository defines the interface for the singleton pot account
type PotRepository interface {
	// Get returns the pot
	Get(ctx context.Context) (*models.Pot, error)

	// Add credits the pot balance atomically
	Add(ctx context.Context, amount int64) error

	// Deduct debits the pot atomically, failing if the balance cannot
	// cover the amount
	Deduct(ctx context.Context, amount int64) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append writes one immutable ledger entry
	Append(ctx context.Context, txn *models.Transaction) error

	// GetByUser returns ledger entries touching a user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)

	// GetByGame returns all ledger entries tagged with a game
	GetByGame(ctx context.Context, gameID int64) ([]*models.Transaction, error)

	// ReplayUserBalance reconstructs a user's balance from the ledger
	ReplayUserBalance(ctx context.Context, userID int64) (int64, error)
}

// GameRepository defines the interface for game and participant data access
type GameRepository interface {
	// Create inserts a new game row
	Create(ctx context.Context, game *models.Game) error

	// GetByID retrieves a game by id, returning nil when no game exists
	GetByID(ctx context.Context, id int64) (*models.Game, error)

	// GetDetailByID retrieves a game with its current-round participants
	GetDetailByID(ctx context.Context, id int64) (*models.GameDetail, error)

	// Update persists pot amount, spin result and round number changes
	Update(ctx context.Context, game *models.Game) error

	// MarkCompleted transitions a game to completed exactly once
	MarkCompleted(ctx context.Context, gameID int64, winner string) error

	// UpsertParticipant inserts or updates a participant row for one round
	UpsertParticipant(ctx context.Context, p *models.GameParticipant) error

	// GetParticipants returns the participant rows of one round
	GetParticipants(ctx context.Context, gameID int64, round int) ([]*models.GameParticipant, error)

	// GetRecent returns the most recently created games
	GetRecent(ctx context.Context, limit int) ([]*models.Game, error)
}

// TransferService is the engine every money movement goes through
type TransferService interface {
	// Transfer moves amount between two accounts in one atomic unit
	Transfer(ctx context.Context, from, to models.Account, amount int64, tag *models.GameTag) (*models.Transaction, error)

	// TransferBatch applies every transfer in one atomic unit; the first
	// failure aborts the whole batch with no partial effect
	TransferBatch(ctx context.Context, requests []TransferRequest) ([]*models.Transaction, error)

	// AdjustBalance credits (positive) or debits (negative) a user
	// directly, outside the pot flow
	AdjustBalance(ctx context.Context, userID int64, amount int64, tag *models.GameTag) (*models.Transaction, error)
}

// GameService manages the game lifecycle up to settlement
type GameService interface {
	// StartGame creates a game and collects entry fees atomically
	StartGame(ctx context.Context, gameType models.GameType, entryFee int64, entries []ParticipantEntry) (*models.Game, error)

	// GetGame retrieves a game with its current-round participants
	GetGame(ctx context.Context, gameID int64) (*models.GameDetail, error)
}

// SevenUpDownService settles 7up7down games
type SevenUpDownService interface {
	// SelectWinner pays every participant who picked the winning side
	SelectWinner(ctx context.Context, gameID int64, side models.Choice) (*SettlementResult, error)
}

// RouletteService runs the multi-round roulette flow
type RouletteService interface {
	// SaveNumbers upserts the current round's number picks
	SaveNumbers(ctx context.Context, gameID int64, picks []NumberPick) error

	// Spin resolves the round's number, or auto-settles a lone survivor
	Spin(ctx context.Context, gameID int64, manualResult *int) (*SpinOutcome, error)

	// Winners returns the user ids whose pick matches the spin result
	Winners(ctx context.Context, gameID int64) ([]int64, error)

	// DeclareNearest returns the participants closest to the spin result
	// by physical wheel distance
	DeclareNearest(ctx context.Context, gameID int64) (*NearestResult, error)

	// Distribute splits the game pot evenly across the given winners
	Distribute(ctx context.Context, gameID int64, winnerIDs []int64) (*SettlementResult, error)

	// NextRound collects an additional bet from the continuing
	// participants and opens a fresh round
	NextRound(ctx context.Context, gameID int64, additionalBet int64, continuingIDs []int64) (*NextRoundResult, error)
}

// RollTheBallService settles roll-the-ball games
type RollTheBallService interface {
	// SelectWinner pays the whole game pot to one recorded participant
	SelectWinner(ctx context.Context, gameID int64, winnerUserID int64) (*SettlementResult, error)
}

// PokerService settles poker games
type PokerService interface {
	// Distribute pays the supplied shares, which must sum to the game pot
	Distribute(ctx context.Context, gameID int64, shares []PayoutShare) (*SettlementResult, error)
}

// DealNoDealService applies deal-no-deal results as direct adjustments
type DealNoDealService interface {
	// ApplyResult credits or debits a participant directly; the game pot
	// bookkeeping is bypassed by design
	ApplyResult(ctx context.Context, gameID int64, userID int64, amount int64) (*models.Transaction, error)

	// Finish closes the game once the episode is over; no payout happens
	Finish(ctx context.Context, gameID int64, winner string) error
}

// UserService defines the interface for user management
type UserService interface {
	// RegisterUser creates a user with the configured starting balance
	RegisterUser(ctx context.Context, name string) (*models.User, error)

	// GetUser retrieves a user by id
	GetUser(ctx context.Context, id int64) (*models.User, error)

	// GetUserByName retrieves a user by normalized name
	GetUserByName(ctx context.Context, name string) (*models.User, error)

	// ListUsers returns all users ordered by balance
	ListUsers(ctx context.Context) ([]*models.User, error)

	// AssignCaptain places a user under a captain (two levels at most)
	AssignCaptain(ctx context.Context, userID, captainID int64) error

	// RemoveCaptain detaches a user from their captain
	RemoveCaptain(ctx context.Context, userID int64) error

	// DeleteUser removes a user; captains with members are rejected
	DeleteUser(ctx context.Context, id int64) error
}

// StatsService defines the read-only reporting operations
type StatsService interface {
	// GetRankings returns all users ordered by balance, highest first
	GetRankings(ctx context.Context) ([]*models.User, error)

	// GetFamilyTotals aggregates balances per captain family
	GetFamilyTotals(ctx context.Context) ([]*FamilyTotal, error)

	// GetUserHistory returns a user's ledger entries, newest first
	GetUserHistory(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error)

	// GetGameHistory returns recently created games
	GetGameHistory(ctx context.Context, limit int) ([]*models.Game, error)

	// GetLedgerTotal returns the sum of all user balances plus the pot
	GetLedgerTotal(ctx context.Context) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	PotRepository() PotRepository
	TransactionRepository() TransactionRepository
	GameRepository() GameRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a fresh UnitOfWork
	Create() UnitOfWork
}
