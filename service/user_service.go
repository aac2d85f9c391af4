package service

import (
	"context"
	"fmt"
	"strings"

	"funbank/events"
	"funbank/models"
)

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewUserService creates a new user management service
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance int64) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// RegisterUser creates a user and grants the configured starting
// balance as the first ledger entry. Names are unique after
// normalization.
func (s *userService) RegisterUser(ctx context.Context, name string) (*models.User, error) {
	normalized := models.NormalizeName(name)
	if normalized == "" {
		return nil, fmt.Errorf("user name must not be empty")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.UserRepository().GetByName(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to check name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("name %q: %w", name, ErrNameTaken)
	}

	// The row is created empty and the grant flows through the ledger,
	// so replaying a user's transactions reproduces their balance from
	// day one. The display name keeps its casing; the unique index on
	// LOWER(TRIM(name)) enforces normalized uniqueness.
	user, err := uow.UserRepository().Create(ctx, strings.TrimSpace(name), 0)
	if err != nil {
		return nil, err
	}
	if s.startingBalance > 0 {
		if _, err := ExecuteAdjustment(ctx, uow, user.ID, s.startingBalance, nil); err != nil {
			return nil, err
		}
		user.Balance = s.startingBalance
	}

	uow.EventBus().Publish(events.UserCreatedEvent{
		UserID:          user.ID,
		Name:            user.Name,
		StartingBalance: s.startingBalance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByName(ctx, models.NormalizeName(name))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.UserRepository().GetAll(ctx)
}

// AssignCaptain places a user under a captain. The hierarchy is two
// levels at most: a captain cannot themselves have a captain, and a
// user who already leads a family cannot be placed under one.
func (s *userService) AssignCaptain(ctx context.Context, userID, captainID int64) error {
	if userID == captainID {
		return fmt.Errorf("user %d cannot be their own captain", userID)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	captain, err := uow.UserRepository().GetByID(ctx, captainID)
	if err != nil {
		return err
	}
	if captain == nil {
		return fmt.Errorf("captain %d: %w", captainID, ErrUserNotFound)
	}

	if captain.HasCaptain() {
		return fmt.Errorf("user %d already belongs to a family and cannot lead one", captainID)
	}
	if user.IsCaptain {
		return fmt.Errorf("user %d: %w", userID, ErrUserIsCaptain)
	}

	if err := uow.UserRepository().SetCaptain(ctx, userID, captainID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *userService) RemoveCaptain(ctx context.Context, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}
	if !user.HasCaptain() {
		return nil
	}

	if err := uow.UserRepository().ClearCaptain(ctx, userID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteUser removes a user. Captains must hand their family off first.
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", id, ErrUserNotFound)
	}

	members, err := uow.UserRepository().GetMembers(ctx, id)
	if err != nil {
		return err
	}
	if len(members) > 0 {
		return fmt.Errorf("user %d leads %d members: %w", id, len(members), ErrUserIsCaptain)
	}

	// Detach from the family first so a captain losing their last
	// member also loses the is_captain flag.
	if user.HasCaptain() {
		if err := uow.UserRepository().ClearCaptain(ctx, id); err != nil {
			return err
		}
	}

	if err := uow.UserRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
