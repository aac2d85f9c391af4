package service

import (
	"context"

	"funbank/events"
	"funbank/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, name string, startingBalance int64) (*models.User, error) {
	args := m.Called(ctx, name, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) SetCaptain(ctx context.Context, userID, captainID int64) error {
	args := m.Called(ctx, userID, captainID)
	return args.Error(0)
}

func (m *MockUserRepository) ClearCaptain(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) GetMembers(ctx context.Context, captainID int64) ([]*models.User, error) {
	args := m.Called(ctx, captainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) TotalBalance(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPotRepository is a mock implementation of PotRepository
type MockPotRepository struct {
	mock.Mock
}

func (m *MockPotRepository) Get(ctx context.Context) (*models.Pot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Pot), args.Error(1)
}

func (m *MockPotRepository) Add(ctx context.Context, amount int64) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

func (m *MockPotRepository) Deduct(ctx context.Context, amount int64) error {
	args := m.Called(ctx, amount)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByGame(ctx context.Context, gameID int64) ([]*models.Transaction, error) {
	args := m.Called(ctx, gameID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ReplayUserBalance(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) GetDetailByID(ctx context.Context, id int64) (*models.GameDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameDetail), args.Error(1)
}

func (m *MockGameRepository) Update(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) MarkCompleted(ctx context.Context, gameID int64, winner string) error {
	args := m.Called(ctx, gameID, winner)
	return args.Error(0)
}

func (m *MockGameRepository) UpsertParticipant(ctx context.Context, p *models.GameParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockGameRepository) GetParticipants(ctx context.Context, gameID int64, round int) ([]*models.GameParticipant, error) {
	args := m.Called(ctx, gameID, round)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameParticipant), args.Error(1)
}

func (m *MockGameRepository) GetRecent(ctx context.Context, limit int) ([]*models.Game, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Game), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// noopPublisher swallows events for tests that don't assert on them
type noopPublisher struct{}

func (noopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock

	userRepo UserRepository
	potRepo  PotRepository
	txnRepo  TransactionRepository
	gameRepo GameRepository
	eventBus EventPublisher
}

// SetRepositories wires the repository mocks the unit of work hands out.
// Pass nil for repositories the test never touches.
func (m *MockUnitOfWork) SetRepositories(user UserRepository, pot PotRepository, txn TransactionRepository, game GameRepository) {
	m.userRepo = user
	m.potRepo = pot
	m.txnRepo = txn
	m.gameRepo = game
}

// SetEventBus wires an event publisher; tests that don't care get a no-op
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) PotRepository() PotRepository {
	return m.potRepo
}

func (m *MockUnitOfWork) TransactionRepository() TransactionRepository {
	return m.txnRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	return m.gameRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return noopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
