package service

import (
	"context"
	"fmt"
	"sort"

	"funbank/models"
)

// FamilyTotal aggregates the balances of one captain family
type FamilyTotal struct {
	CaptainID   int64  `json:"captainId"`
	CaptainName string `json:"captainName"`
	Members     int    `json:"members"`
	Total       int64  `json:"total"`
}

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates the read-only reporting service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{
		uowFactory: uowFactory,
	}
}

func (s *statsService) GetRankings(ctx context.Context) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.UserRepository().GetAll(ctx)
}

// GetFamilyTotals sums each captain family's balances, the captain's
// own included. Users outside any family are not reported.
func (s *statsService) GetFamilyTotals(ctx context.Context) ([]*FamilyTotal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	totals := make(map[int64]*FamilyTotal)
	for _, user := range users {
		if !user.IsCaptain {
			continue
		}
		totals[user.ID] = &FamilyTotal{
			CaptainID:   user.ID,
			CaptainName: user.Name,
			Members:     1,
			Total:       user.Balance,
		}
	}
	for _, user := range users {
		if user.CaptainID == nil {
			continue
		}
		family, ok := totals[*user.CaptainID]
		if !ok {
			continue
		}
		family.Members++
		family.Total += user.Balance
	}

	result := make([]*FamilyTotal, 0, len(totals))
	for _, family := range totals {
		result = append(result, family)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Total != result[j].Total {
			return result[i].Total > result[j].Total
		}
		return result[i].CaptainID < result[j].CaptainID
	})
	return result, nil
}

func (s *statsService) GetUserHistory(ctx context.Context, userID int64, limit int) ([]*models.Transaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrUserNotFound)
	}

	return uow.TransactionRepository().GetByUser(ctx, userID, limit)
}

func (s *statsService) GetGameHistory(ctx context.Context, limit int) ([]*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.GameRepository().GetRecent(ctx, limit)
}

// GetLedgerTotal returns all user balances plus the pot. Watching this
// total across settlements is the cheapest way to spot a leak.
func (s *statsService) GetLedgerTotal(ctx context.Context) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	userTotal, err := uow.UserRepository().TotalBalance(ctx)
	if err != nil {
		return 0, err
	}
	pot, err := uow.PotRepository().Get(ctx)
	if err != nil {
		return 0, err
	}

	return userTotal + pot.Balance, nil
}
